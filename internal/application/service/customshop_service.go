package service

import (
	"context"
	"strings"

	"github.com/fretline/buildtrack-api/internal/domain/entity"
	"github.com/fretline/buildtrack-api/internal/domain/enum"
	"github.com/fretline/buildtrack-api/internal/domain/repository"
	"github.com/fretline/buildtrack-api/pkg/apperror"
	"github.com/fretline/buildtrack-api/pkg/mailer"
	"github.com/fretline/buildtrack-api/pkg/pagination"
	"github.com/google/uuid"
)

// CustomShopService handles one-off build enquiries
type CustomShopService struct {
	customShopRepo repository.CustomShopRepository
	clientRepo     repository.ClientRepository
	settingsRepo   repository.SettingsRepository
	composer       *mailer.Composer
	// staffInbox is the configured fallback when settings carry none
	staffInbox string
}

// NewCustomShopService creates a new custom shop service
func NewCustomShopService(
	customShopRepo repository.CustomShopRepository,
	clientRepo repository.ClientRepository,
	settingsRepo repository.SettingsRepository,
	composer *mailer.Composer,
	staffInbox string,
) *CustomShopService {
	return &CustomShopService{
		customShopRepo: customShopRepo,
		clientRepo:     clientRepo,
		settingsRepo:   settingsRepo,
		composer:       composer,
		staffInbox:     staffInbox,
	}
}

// SubmitRequestInput represents a custom shop enquiry submission
type SubmitRequestInput struct {
	Name    string
	Email   string
	Model   string
	Specs   entity.SpecMap
	Message string
}

// SubmitRequest stores an enquiry and queues two emails in the same
// transaction: an acknowledgement to the requester and a notification to the
// staff inbox. Known client emails get linked to their profile.
func (s *CustomShopService) SubmitRequest(ctx context.Context, input *SubmitRequestInput) (*entity.CustomShopRequest, error) {
	if input.Name == "" || input.Email == "" {
		return nil, apperror.NewInvalidArgumentError("Name and email are required")
	}

	request := &entity.CustomShopRequest{
		ID:             uuid.New(),
		RequesterName:  input.Name,
		RequesterEmail: input.Email,
		Model:          input.Model,
		Specs:          input.Specs,
		Message:        input.Message,
		Status:         enum.RequestStatusNew,
	}

	client, err := s.clientRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if client != nil {
		request.ClientID = &client.ID
	}

	ack, err := s.composer.CustomShopAck(input.Name)
	if err != nil {
		return nil, err
	}
	emails := []entity.EmailOutbox{{
		Kind:      entity.EmailKindCustomShop,
		Recipient: input.Email,
		Subject:   ack.Subject,
		HTMLBody:  ack.HTMLBody,
		TextBody:  ack.TextBody,
	}}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	inbox := settings.StaffInbox
	if inbox == "" {
		inbox = s.staffInbox
	}
	if inbox != "" {
		staff, err := s.composer.CustomShopStaff(input.Name, input.Email, requestSummary(input), request.ID.String())
		if err != nil {
			return nil, err
		}
		emails = append(emails, entity.EmailOutbox{
			Kind:      entity.EmailKindCustomShop,
			Recipient: inbox,
			Subject:   staff.Subject,
			HTMLBody:  staff.HTMLBody,
			TextBody:  staff.TextBody,
		})
	}

	if err := s.customShopRepo.Create(ctx, request, emails); err != nil {
		return nil, err
	}

	return request, nil
}

func requestSummary(input *SubmitRequestInput) string {
	var parts []string
	if input.Model != "" {
		parts = append(parts, "Model: "+input.Model)
	}
	for category, value := range input.Specs {
		parts = append(parts, category+": "+value)
	}
	if input.Message != "" {
		parts = append(parts, input.Message)
	}
	return strings.Join(parts, "\n")
}

// GetRequest retrieves a custom shop request by ID
func (s *CustomShopService) GetRequest(ctx context.Context, id uuid.UUID) (*entity.CustomShopRequest, error) {
	request, err := s.customShopRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, apperror.NewNotFoundError("Custom shop request")
	}
	return request, nil
}

// ListRequests lists custom shop requests with an optional status filter
func (s *CustomShopService) ListRequests(ctx context.Context, params *pagination.PaginationParams, status *enum.RequestStatus) (*pagination.PaginatedResult[entity.CustomShopRequest], error) {
	requests, total, err := s.customShopRepo.List(ctx, params, status)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(requests, pag), nil
}

// UpdateStatus moves a request through the review workflow
func (s *CustomShopService) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.RequestStatus) (*entity.CustomShopRequest, error) {
	request, err := s.customShopRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, apperror.NewNotFoundError("Custom shop request")
	}
	if request.Status == status {
		return request, nil
	}

	if err := s.customShopRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	request.Status = status
	return request, nil
}
