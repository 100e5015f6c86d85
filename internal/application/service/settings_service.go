package service

import (
	"context"

	"github.com/fretline/buildtrack-api/internal/domain/entity"
	"github.com/fretline/buildtrack-api/internal/domain/enum"
	"github.com/fretline/buildtrack-api/internal/domain/repository"
	"github.com/fretline/buildtrack-api/pkg/apperror"
	"github.com/fretline/buildtrack-api/pkg/mailer"
	"github.com/fretline/buildtrack-api/pkg/pagination"
)

// SettingsService handles the app settings singleton
type SettingsService struct {
	settingsRepo repository.SettingsRepository
	outboxRepo   repository.OutboxRepository
	composer     *mailer.Composer
}

// NewSettingsService creates a new settings service
func NewSettingsService(
	settingsRepo repository.SettingsRepository,
	outboxRepo repository.OutboxRepository,
	composer *mailer.Composer,
) *SettingsService {
	return &SettingsService{
		settingsRepo: settingsRepo,
		outboxRepo:   outboxRepo,
		composer:     composer,
	}
}

// GetSettings returns the settings singleton, creating the default row on
// first access
func (s *SettingsService) GetSettings(ctx context.Context) (*entity.AppSettings, error) {
	return s.settingsRepo.Get(ctx)
}

// UpdateSettingsInput represents a partial settings update
type UpdateSettingsInput struct {
	CompanyName *string
	LogoURL     *string
	PortalURL   *string

	Timezone   *string
	Currency   *string
	DateFormat *string

	FromName   *string
	FromEmail  *string
	CCEmail    *string
	StaffInbox *string
	ReplyTo    *string

	StageChangeEmails *bool
	RunUpdateEmails   *bool
	InvoiceEmails     *bool
	SMSNotifications  *bool

	ClientOnboarding *bool
	MaintenanceMode  *bool
}

// UpdateSettings merges the given fields into the singleton row
func (s *SettingsService) UpdateSettings(ctx context.Context, input *UpdateSettingsInput) (*entity.AppSettings, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	if input.CompanyName != nil {
		if *input.CompanyName == "" {
			return nil, apperror.NewInvalidArgumentError("Company name cannot be empty")
		}
		settings.CompanyName = *input.CompanyName
	}
	if input.LogoURL != nil {
		settings.LogoURL = *input.LogoURL
	}
	if input.PortalURL != nil {
		settings.PortalURL = *input.PortalURL
	}
	if input.Timezone != nil {
		settings.Timezone = *input.Timezone
	}
	if input.Currency != nil {
		settings.Currency = *input.Currency
	}
	if input.DateFormat != nil {
		settings.DateFormat = *input.DateFormat
	}
	if input.FromName != nil {
		settings.FromName = *input.FromName
	}
	if input.FromEmail != nil {
		settings.FromEmail = *input.FromEmail
	}
	if input.CCEmail != nil {
		settings.CCEmail = *input.CCEmail
	}
	if input.StaffInbox != nil {
		settings.StaffInbox = *input.StaffInbox
	}
	if input.ReplyTo != nil {
		settings.ReplyTo = *input.ReplyTo
	}
	if input.StageChangeEmails != nil {
		settings.StageChangeEmails = *input.StageChangeEmails
	}
	if input.RunUpdateEmails != nil {
		settings.RunUpdateEmails = *input.RunUpdateEmails
	}
	if input.InvoiceEmails != nil {
		settings.InvoiceEmails = *input.InvoiceEmails
	}
	if input.SMSNotifications != nil {
		settings.SMSNotifications = *input.SMSNotifications
	}
	if input.ClientOnboarding != nil {
		settings.ClientOnboarding = *input.ClientOnboarding
	}
	if input.MaintenanceMode != nil {
		settings.MaintenanceMode = *input.MaintenanceMode
	}

	if err := s.settingsRepo.Update(ctx, settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// ListEmailLog returns outbox rows, optionally filtered by delivery status
func (s *SettingsService) ListEmailLog(ctx context.Context, params *pagination.PaginationParams, status *enum.OutboxStatus) (*pagination.PaginatedResult[entity.EmailOutbox], error) {
	rows, total, err := s.outboxRepo.List(ctx, params, status)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(rows, pag), nil
}

// SendTestEmail queues a test email so admins can verify delivery end to end
func (s *SettingsService) SendTestEmail(ctx context.Context, recipient string) error {
	if recipient == "" {
		return apperror.NewInvalidArgumentError("Recipient is required")
	}

	rendered, err := s.composer.Test(recipient)
	if err != nil {
		return err
	}

	return s.outboxRepo.Enqueue(ctx, []entity.EmailOutbox{{
		Kind:      entity.EmailKindTest,
		Recipient: recipient,
		Subject:   rendered.Subject,
		HTMLBody:  rendered.HTMLBody,
		TextBody:  rendered.TextBody,
	}})
}
