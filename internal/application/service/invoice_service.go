package service

import (
	"context"
	"time"

	"github.com/fretline/buildtrack-api/internal/domain/entity"
	"github.com/fretline/buildtrack-api/internal/domain/enum"
	"github.com/fretline/buildtrack-api/internal/domain/repository"
	"github.com/fretline/buildtrack-api/pkg/apperror"
	"github.com/fretline/buildtrack-api/pkg/mailer"
	"github.com/fretline/buildtrack-api/pkg/pagination"
	"github.com/fretline/buildtrack-api/pkg/utils"
	"github.com/google/uuid"
)

// InvoiceService handles invoicing and the append-only payment ledger.
// Stage-scheduled invoices are raised inside the advance transaction; this
// service covers manual invoices and payments.
type InvoiceService struct {
	invoiceRepo  repository.InvoiceRepository
	clientRepo   repository.ClientRepository
	guitarRepo   repository.GuitarRepository
	settingsRepo repository.SettingsRepository
	composer     *mailer.Composer
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	clientRepo repository.ClientRepository,
	guitarRepo repository.GuitarRepository,
	settingsRepo repository.SettingsRepository,
	composer *mailer.Composer,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:  invoiceRepo,
		clientRepo:   clientRepo,
		guitarRepo:   guitarRepo,
		settingsRepo: settingsRepo,
		composer:     composer,
	}
}

// CreateInvoiceInput represents the create invoice input. Amount is in cents.
type CreateInvoiceInput struct {
	ClientID uuid.UUID
	GuitarID *uuid.UUID
	Amount   int64
	Memo     string
	DueAt    *time.Time
}

// CreateInvoice raises a manual invoice. The invoice and its notification
// email commit in one transaction.
func (s *InvoiceService) CreateInvoice(ctx context.Context, input *CreateInvoiceInput) (*entity.Invoice, error) {
	if input.Amount <= 0 {
		return nil, apperror.NewInvalidArgumentError("Invoice amount must be positive")
	}

	client, err := s.clientRepo.GetByID(ctx, input.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperror.NewNotFoundError("Client")
	}

	var model string
	if input.GuitarID != nil {
		guitar, err := s.guitarRepo.GetByID(ctx, *input.GuitarID)
		if err != nil {
			return nil, err
		}
		if guitar == nil {
			return nil, apperror.NewNotFoundError("Guitar")
		}
		model = guitar.Model
	}

	invoice := &entity.Invoice{
		ClientID:  input.ClientID,
		GuitarID:  input.GuitarID,
		InvoiceNo: utils.GenerateInvoiceNo(),
		Memo:      input.Memo,
		Amount:    input.Amount,
		Status:    enum.InvoiceStatusOpen,
		IssuedAt:  time.Now(),
		DueAt:     input.DueAt,
	}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	var emails []entity.EmailOutbox
	if settings.InvoiceEmails && client.Email != "" {
		rendered, err := s.composer.InvoiceIssued(client.Name, model,
			invoice.InvoiceNo, float64(invoice.Amount)/100, invoice.Memo)
		if err != nil {
			return nil, err
		}
		emails = append(emails, entity.EmailOutbox{
			Kind:      entity.EmailKindInvoice,
			Recipient: client.Email,
			Subject:   rendered.Subject,
			HTMLBody:  rendered.HTMLBody,
			TextBody:  rendered.TextBody,
		})
	}

	if err := s.invoiceRepo.Create(ctx, invoice, emails); err != nil {
		return nil, err
	}

	return invoice, nil
}

// GetInvoice retrieves an invoice with its payment ledger
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	invoice, err := s.invoiceRepo.GetWithPayments(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	return invoice, nil
}

// ListInvoices lists invoices with filters
func (s *InvoiceService) ListInvoices(ctx context.Context, params *repository.InvoiceFilterParams) (*pagination.PaginatedResult[entity.Invoice], error) {
	invoices, total, err := s.invoiceRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(invoices, pag), nil
}

// ListClientInvoices lists a client's invoices for the portal
func (s *InvoiceService) ListClientInvoices(ctx context.Context, clientID uuid.UUID, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Invoice], error) {
	return s.ListInvoices(ctx, &repository.InvoiceFilterParams{
		Pagination: params,
		ClientID:   &clientID,
	})
}

// RecordPaymentInput represents one payment ledger entry. Amount is in cents.
type RecordPaymentInput struct {
	InvoiceID  uuid.UUID
	Amount     int64
	Method     string
	Reference  string
	RecordedBy uuid.UUID
	PaidAt     *time.Time
}

// RecordPayment appends a payment to the invoice's ledger and derives the new
// status: Partial while the ledger covers less than the amount, Paid once
// covered. Ledger entries are never edited or removed.
func (s *InvoiceService) RecordPayment(ctx context.Context, input *RecordPaymentInput) (*entity.Invoice, error) {
	if input.Amount <= 0 {
		return nil, apperror.NewInvalidArgumentError("Payment amount must be positive")
	}

	invoice, err := s.invoiceRepo.GetWithPayments(ctx, input.InvoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	if invoice.Status == enum.InvoiceStatusVoid {
		return nil, apperror.NewFailedPreconditionError("Cannot record a payment on a void invoice")
	}
	if invoice.Status == enum.InvoiceStatusPaid {
		return nil, apperror.NewFailedPreconditionError("Invoice is already paid in full")
	}

	paidAt := time.Now()
	if input.PaidAt != nil {
		paidAt = *input.PaidAt
	}

	payment := &entity.Payment{
		InvoiceID:  invoice.ID,
		Amount:     input.Amount,
		Method:     input.Method,
		Reference:  input.Reference,
		RecordedBy: input.RecordedBy,
		PaidAt:     paidAt,
	}

	if err := s.invoiceRepo.AddPayment(ctx, payment); err != nil {
		return nil, err
	}

	invoice.Payments = append(invoice.Payments, *payment)
	if invoice.IsCovered() {
		invoice.Status = enum.InvoiceStatusPaid
	} else {
		invoice.Status = enum.InvoiceStatusPartial
	}

	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, err
	}

	return invoice, nil
}

// VoidInvoice voids an invoice that has no payments against it
func (s *InvoiceService) VoidInvoice(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	invoice, err := s.invoiceRepo.GetWithPayments(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	if invoice.Status == enum.InvoiceStatusVoid {
		return invoice, nil
	}
	if invoice.PaidCents() > 0 {
		return nil, apperror.NewFailedPreconditionError("Cannot void an invoice with payments recorded")
	}

	invoice.Status = enum.InvoiceStatusVoid
	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, err
	}

	return invoice, nil
}
