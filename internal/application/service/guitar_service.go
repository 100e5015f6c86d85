package service

import (
	"context"
	"time"

	"github.com/fretline/buildtrack-api/internal/domain/entity"
	"github.com/fretline/buildtrack-api/internal/domain/enum"
	"github.com/fretline/buildtrack-api/internal/domain/repository"
	"github.com/fretline/buildtrack-api/pkg/apperror"
	"github.com/fretline/buildtrack-api/pkg/mailer"
	"github.com/fretline/buildtrack-api/pkg/utils"
	"github.com/google/uuid"
)

// GuitarService handles build order operations, including the stage advance
// transaction
type GuitarService struct {
	guitarRepo   repository.GuitarRepository
	runRepo      repository.RunRepository
	clientRepo   repository.ClientRepository
	settingsRepo repository.SettingsRepository
	composer     *mailer.Composer
}

// NewGuitarService creates a new guitar service
func NewGuitarService(
	guitarRepo repository.GuitarRepository,
	runRepo repository.RunRepository,
	clientRepo repository.ClientRepository,
	settingsRepo repository.SettingsRepository,
	composer *mailer.Composer,
) *GuitarService {
	return &GuitarService{
		guitarRepo:   guitarRepo,
		runRepo:      runRepo,
		clientRepo:   clientRepo,
		settingsRepo: settingsRepo,
		composer:     composer,
	}
}

// CreateGuitarInput represents the create guitar input
type CreateGuitarInput struct {
	RunID         uuid.UUID
	ClientID      *uuid.UUID
	CustomerName  string
	CustomerEmail string
	Model         string
	Finish        string
	Specs         entity.SpecMap
	ActorID       uuid.UUID
}

// CreateGuitar creates a build order on the run's first stage. The guitar
// row and its placement transition commit together.
func (s *GuitarService) CreateGuitar(ctx context.Context, input *CreateGuitarInput) (*entity.Guitar, error) {
	run, err := s.runRepo.GetWithStages(ctx, input.RunID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, apperror.NewNotFoundError("Run")
	}
	if run.Archived {
		return nil, apperror.NewFailedPreconditionError("Run is archived")
	}

	firstStage := run.FirstStage()
	if firstStage == nil {
		return nil, apperror.NewFailedPreconditionError("Run has no stages")
	}

	if err := validateSpecs(run.SpecConstraints, input.Specs); err != nil {
		return nil, err
	}

	if input.ClientID != nil {
		client, err := s.clientRepo.GetByID(ctx, *input.ClientID)
		if err != nil {
			return nil, err
		}
		if client == nil {
			return nil, apperror.NewNotFoundError("Client")
		}
		if input.CustomerName == "" {
			input.CustomerName = client.Name
		}
		if input.CustomerEmail == "" {
			input.CustomerEmail = client.Email
		}
	}

	guitar := &entity.Guitar{
		RunID:         input.RunID,
		StageID:       firstStage.ID,
		ClientID:      input.ClientID,
		CustomerName:  input.CustomerName,
		CustomerEmail: input.CustomerEmail,
		OrderNumber:   utils.GenerateOrderNumber(),
		Model:         input.Model,
		Finish:        input.Finish,
		Specs:         input.Specs,
	}

	placement := &entity.StageTransition{
		FromStageID: nil,
		ToStageID:   firstStage.ID,
		ActorID:     input.ActorID,
	}

	if err := s.guitarRepo.Create(ctx, guitar, placement); err != nil {
		return nil, err
	}

	return guitar, nil
}

func validateSpecs(constraints entity.SpecConstraints, specs entity.SpecMap) error {
	if len(constraints) == 0 {
		return nil
	}
	var fieldErrors []apperror.FieldError
	for category, value := range specs {
		if !constraints.Allows(category, value) {
			fieldErrors = append(fieldErrors, apperror.FieldError{
				Field:   category,
				Message: "value " + value + " is not allowed for this run",
			})
		}
	}
	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}
	return nil
}

// GetGuitar retrieves a guitar with notes and transition history
func (s *GuitarService) GetGuitar(ctx context.Context, id uuid.UUID) (*entity.Guitar, error) {
	guitar, err := s.guitarRepo.GetWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	if guitar == nil {
		return nil, apperror.NewNotFoundError("Guitar")
	}
	return guitar, nil
}

// ListGuitars lists guitars with filters and page pagination
func (s *GuitarService) ListGuitars(ctx context.Context, params *repository.GuitarFilterParams) ([]entity.Guitar, int64, error) {
	return s.guitarRepo.List(ctx, params)
}

// ListGuitarsWithCursor lists guitars using cursor pagination
func (s *GuitarService) ListGuitarsWithCursor(ctx context.Context, params *repository.GuitarCursorFilterParams) ([]entity.Guitar, error) {
	return s.guitarRepo.ListWithCursor(ctx, params)
}

// ListClientBuilds lists a client's unarchived builds
func (s *GuitarService) ListClientBuilds(ctx context.Context, clientID uuid.UUID) ([]entity.Guitar, error) {
	return s.guitarRepo.ListByClient(ctx, clientID)
}

// GetClientBuild retrieves one of a client's builds, with notes filtered to
// the client-visible ones. Builds belonging to other clients read as not
// found.
func (s *GuitarService) GetClientBuild(ctx context.Context, clientID, guitarID uuid.UUID) (*entity.Guitar, error) {
	guitar, err := s.guitarRepo.GetWithDetails(ctx, guitarID)
	if err != nil {
		return nil, err
	}
	if guitar == nil || guitar.ClientID == nil || *guitar.ClientID != clientID {
		return nil, apperror.NewNotFoundError("Build")
	}

	visible := make([]entity.Note, 0, len(guitar.Notes))
	for _, note := range guitar.Notes {
		if note.VisibleToClient {
			visible = append(visible, note)
		}
	}
	guitar.Notes = visible

	return guitar, nil
}

// UpdateGuitarInput represents the update guitar input
type UpdateGuitarInput struct {
	ID            uuid.UUID
	ClientID      *uuid.UUID
	CustomerName  *string
	CustomerEmail *string
	Model         *string
	Finish        *string
	Specs         entity.SpecMap
}

// UpdateGuitar updates a guitar's order details. Stage changes go through
// AdvanceStage only.
func (s *GuitarService) UpdateGuitar(ctx context.Context, input *UpdateGuitarInput) (*entity.Guitar, error) {
	guitar, err := s.guitarRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if guitar == nil {
		return nil, apperror.NewNotFoundError("Guitar")
	}

	if input.Specs != nil {
		run, err := s.runRepo.GetByID(ctx, guitar.RunID)
		if err != nil {
			return nil, err
		}
		if err := validateSpecs(run.SpecConstraints, input.Specs); err != nil {
			return nil, err
		}
		guitar.Specs = input.Specs
	}

	if input.ClientID != nil {
		client, err := s.clientRepo.GetByID(ctx, *input.ClientID)
		if err != nil {
			return nil, err
		}
		if client == nil {
			return nil, apperror.NewNotFoundError("Client")
		}
		guitar.ClientID = input.ClientID
	}
	if input.CustomerName != nil {
		guitar.CustomerName = *input.CustomerName
	}
	if input.CustomerEmail != nil {
		guitar.CustomerEmail = *input.CustomerEmail
	}
	if input.Model != nil {
		guitar.Model = *input.Model
	}
	if input.Finish != nil {
		guitar.Finish = *input.Finish
	}

	if err := s.guitarRepo.Update(ctx, guitar); err != nil {
		return nil, err
	}

	return guitar, nil
}

// ArchiveGuitar archives a build order
func (s *GuitarService) ArchiveGuitar(ctx context.Context, id uuid.UUID) error {
	guitar, err := s.guitarRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if guitar == nil {
		return apperror.NewNotFoundError("Guitar")
	}

	return s.guitarRepo.Archive(ctx, id)
}

// AdvanceStageInput represents the stage advance input
type AdvanceStageInput struct {
	GuitarID      uuid.UUID
	StageID       uuid.UUID
	ActorID       uuid.UUID
	ActorName     string
	NoteMessage   string
	NoteType      enum.NoteType
	NoteVisible   bool
	NotePhotoURLs []string
}

// AdvanceStage moves a guitar to another stage of its run. Validation
// happens up front; then every write lands in one transaction: the stage
// pointer, the transition event, the optional note, the invoice raised by
// the target stage's schedule, and the notification outbox rows.
func (s *GuitarService) AdvanceStage(ctx context.Context, input *AdvanceStageInput) (*entity.Guitar, error) {
	guitar, err := s.guitarRepo.GetByID(ctx, input.GuitarID)
	if err != nil {
		return nil, err
	}
	if guitar == nil {
		return nil, apperror.NewNotFoundError("Guitar")
	}
	if guitar.Archived {
		return nil, apperror.NewFailedPreconditionError("Guitar is archived")
	}

	run, err := s.runRepo.GetWithStages(ctx, guitar.RunID)
	if err != nil {
		return nil, err
	}

	target := run.StageByID(input.StageID)
	if target == nil {
		return nil, apperror.NewInvalidArgumentError("Stage does not belong to the guitar's run")
	}
	if target.ID == guitar.StageID {
		return nil, apperror.NewInvalidArgumentError("Guitar is already on that stage")
	}

	if target.RequiresNote && input.NoteMessage == "" {
		return nil, apperror.NewInvalidArgumentError("Stage " + target.Label + " requires a note")
	}
	if target.RequiresPhoto && len(input.NotePhotoURLs) == 0 {
		return nil, apperror.NewInvalidArgumentError("Stage " + target.Label + " requires a photo")
	}

	fromStageID := guitar.StageID
	advance := &repository.StageAdvance{
		Guitar: guitar,
		Transition: &entity.StageTransition{
			GuitarID:    guitar.ID,
			FromStageID: &fromStageID,
			ToStageID:   target.ID,
			ActorID:     input.ActorID,
		},
	}

	if input.NoteMessage != "" {
		note := &entity.Note{
			GuitarID:        guitar.ID,
			StageID:         fromStageID,
			AuthorID:        input.ActorID,
			AuthorName:      input.ActorName,
			Message:         input.NoteMessage,
			Type:            input.NoteType,
			VisibleToClient: input.NoteVisible,
		}
		for _, url := range input.NotePhotoURLs {
			note.Photos = append(note.Photos, entity.NotePhoto{URL: url})
		}
		advance.Note = note
	}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	var client *entity.Client
	if guitar.ClientID != nil {
		client, err = s.clientRepo.GetByID(ctx, *guitar.ClientID)
		if err != nil {
			return nil, err
		}
	}

	if client != nil && target.SchedulesInvoice() {
		invoice := &entity.Invoice{
			ClientID:       client.ID,
			GuitarID:       &guitar.ID,
			TriggerStageID: &target.ID,
			InvoiceNo:      utils.GenerateInvoiceNo(),
			Amount:         *target.InvoiceAmount,
			Status:         enum.InvoiceStatusOpen,
			IssuedAt:       time.Now(),
		}
		if target.InvoiceMemo != nil {
			invoice.Memo = *target.InvoiceMemo
		}
		advance.Invoice = invoice

		if settings.InvoiceEmails && client.Email != "" {
			rendered, err := s.composer.InvoiceIssued(client.Name, guitar.Model,
				invoice.InvoiceNo, float64(invoice.Amount)/100, invoice.Memo)
			if err != nil {
				return nil, err
			}
			advance.Emails = append(advance.Emails, entity.EmailOutbox{
				Kind:      entity.EmailKindInvoice,
				Recipient: client.Email,
				Subject:   rendered.Subject,
				HTMLBody:  rendered.HTMLBody,
				TextBody:  rendered.TextBody,
			})
		}
	}

	// Internal stages are invisible to clients: no stage-change notification
	if client != nil && client.Email != "" && !target.InternalOnly && settings.StageChangeEmails {
		rendered, err := s.composer.StageChange(client.Name, guitar.Model,
			guitar.OrderNumber, target.DisplayLabel(), guitar.ID.String())
		if err != nil {
			return nil, err
		}
		row := entity.EmailOutbox{
			Kind:      entity.EmailKindStageChange,
			Recipient: client.Email,
			Subject:   rendered.Subject,
			HTMLBody:  rendered.HTMLBody,
			TextBody:  rendered.TextBody,
		}
		if settings.SMSNotifications && client.Phone != nil && *client.Phone != "" {
			row.SMSTo = *client.Phone
			row.SMSBody = "Your " + guitar.Model + " has moved to " + target.DisplayLabel() + "."
		}
		advance.Emails = append(advance.Emails, row)
	}

	if err := s.guitarRepo.AdvanceStage(ctx, advance); err != nil {
		return nil, err
	}

	guitar.StageID = target.ID
	guitar.Stage = *target
	return guitar, nil
}

// ListTransitions returns a guitar's transition history, oldest first
func (s *GuitarService) ListTransitions(ctx context.Context, guitarID uuid.UUID) ([]entity.StageTransition, error) {
	guitar, err := s.guitarRepo.GetByID(ctx, guitarID)
	if err != nil {
		return nil, err
	}
	if guitar == nil {
		return nil, apperror.NewNotFoundError("Guitar")
	}

	return s.guitarRepo.ListTransitions(ctx, guitarID)
}
