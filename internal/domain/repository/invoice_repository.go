package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/fretline/buildtrack-api/internal/domain/entity"
	"github.com/fretline/buildtrack-api/internal/domain/enum"
	"github.com/fretline/buildtrack-api/pkg/pagination"
)

// InvoiceFilterParams contains filtering parameters for invoice queries
type InvoiceFilterParams struct {
	Pagination *pagination.PaginationParams
	ClientID   *uuid.UUID
	GuitarID   *uuid.UUID
	Status     *enum.InvoiceStatus
}

// InvoiceRepository defines the interface for invoice data operations
type InvoiceRepository interface {
	// Create persists an invoice and its notification emails in one
	// transaction.
	Create(ctx context.Context, invoice *entity.Invoice, emails []entity.EmailOutbox) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	GetWithPayments(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	Update(ctx context.Context, invoice *entity.Invoice) error
	List(ctx context.Context, params *InvoiceFilterParams) ([]entity.Invoice, int64, error)
	CountOpen(ctx context.Context) (int64, error)

	AddPayment(ctx context.Context, payment *entity.Payment) error
}
