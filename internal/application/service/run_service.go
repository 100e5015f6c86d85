package service

import (
	"context"
	"time"

	"github.com/fretline/buildtrack-api/internal/domain/entity"
	"github.com/fretline/buildtrack-api/internal/domain/repository"
	"github.com/fretline/buildtrack-api/pkg/apperror"
	"github.com/fretline/buildtrack-api/pkg/mailer"
	"github.com/google/uuid"
)

// RunService handles production run and stage pipeline operations
type RunService struct {
	runRepo      repository.RunRepository
	factoryRepo  repository.FactoryRepository
	clientRepo   repository.ClientRepository
	settingsRepo repository.SettingsRepository
	composer     *mailer.Composer
}

// NewRunService creates a new run service
func NewRunService(
	runRepo repository.RunRepository,
	factoryRepo repository.FactoryRepository,
	clientRepo repository.ClientRepository,
	settingsRepo repository.SettingsRepository,
	composer *mailer.Composer,
) *RunService {
	return &RunService{
		runRepo:      runRepo,
		factoryRepo:  factoryRepo,
		clientRepo:   clientRepo,
		settingsRepo: settingsRepo,
		composer:     composer,
	}
}

// StageInput describes one stage of a new run's pipeline
type StageInput struct {
	Label             string
	ClientStatusLabel string
	InternalOnly      bool
	RequiresNote      bool
	RequiresPhoto     bool
	InvoiceAmount     *int64
	InvoiceMemo       *string
}

// CreateRunInput represents the create run input
type CreateRunInput struct {
	Name            string
	FactoryID       *uuid.UUID
	StartsAt        *time.Time
	SpecConstraints entity.SpecConstraints
	Stages          []StageInput
}

// CreateRun creates a run with its ordered stage pipeline. Stage order
// follows input order, dense from 0.
func (s *RunService) CreateRun(ctx context.Context, input *CreateRunInput) (*entity.Run, error) {
	if len(input.Stages) == 0 {
		return nil, apperror.NewInvalidArgumentError("A run needs at least one stage")
	}

	if input.FactoryID != nil {
		factory, err := s.factoryRepo.GetByID(ctx, *input.FactoryID)
		if err != nil {
			return nil, err
		}
		if factory == nil {
			return nil, apperror.NewNotFoundError("Factory")
		}
	}

	run := &entity.Run{
		Name:            input.Name,
		FactoryID:       input.FactoryID,
		IsActive:        true,
		StartsAt:        input.StartsAt,
		SpecConstraints: input.SpecConstraints,
	}

	if err := s.runRepo.Create(ctx, run); err != nil {
		return nil, err
	}

	for i, stageInput := range input.Stages {
		stage := &entity.RunStage{
			RunID:             run.ID,
			Label:             stageInput.Label,
			ClientStatusLabel: stageInput.ClientStatusLabel,
			Order:             i,
			InternalOnly:      stageInput.InternalOnly,
			RequiresNote:      stageInput.RequiresNote,
			RequiresPhoto:     stageInput.RequiresPhoto,
			InvoiceAmount:     stageInput.InvoiceAmount,
			InvoiceMemo:       stageInput.InvoiceMemo,
		}
		if err := s.runRepo.CreateStage(ctx, stage); err != nil {
			return nil, err
		}
	}

	return s.runRepo.GetWithStages(ctx, run.ID)
}

// GetRun retrieves a run with its stages
func (s *RunService) GetRun(ctx context.Context, id uuid.UUID) (*entity.Run, error) {
	run, err := s.runRepo.GetWithStages(ctx, id)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, apperror.NewNotFoundError("Run")
	}
	return run, nil
}

// ListRuns lists runs with filters
func (s *RunService) ListRuns(ctx context.Context, params *repository.RunFilterParams) ([]entity.Run, int64, error) {
	return s.runRepo.List(ctx, params)
}

// UpdateRunInput represents the update run input
type UpdateRunInput struct {
	ID              uuid.UUID
	Name            *string
	FactoryID       *uuid.UUID
	IsActive        *bool
	StartsAt        *time.Time
	SpecConstraints entity.SpecConstraints
}

// UpdateRun updates a run's metadata
func (s *RunService) UpdateRun(ctx context.Context, input *UpdateRunInput) (*entity.Run, error) {
	run, err := s.runRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, apperror.NewNotFoundError("Run")
	}

	if input.Name != nil {
		run.Name = *input.Name
	}
	if input.FactoryID != nil {
		run.FactoryID = input.FactoryID
	}
	if input.IsActive != nil {
		run.IsActive = *input.IsActive
	}
	if input.StartsAt != nil {
		run.StartsAt = input.StartsAt
	}
	if input.SpecConstraints != nil {
		run.SpecConstraints = input.SpecConstraints
	}

	if err := s.runRepo.Update(ctx, run); err != nil {
		return nil, err
	}

	return run, nil
}

// ArchiveRun archives a run; archived runs disappear from default listings
// but their guitars and history stay readable
func (s *RunService) ArchiveRun(ctx context.Context, id uuid.UUID) error {
	run, err := s.runRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if run == nil {
		return apperror.NewNotFoundError("Run")
	}

	return s.runRepo.Archive(ctx, id)
}

// AddStage appends a stage to the end of a run's pipeline
func (s *RunService) AddStage(ctx context.Context, runID uuid.UUID, input *StageInput) (*entity.RunStage, error) {
	stages, err := s.runRepo.ListStages(ctx, runID)
	if err != nil {
		return nil, err
	}

	stage := &entity.RunStage{
		RunID:             runID,
		Label:             input.Label,
		ClientStatusLabel: input.ClientStatusLabel,
		Order:             len(stages),
		InternalOnly:      input.InternalOnly,
		RequiresNote:      input.RequiresNote,
		RequiresPhoto:     input.RequiresPhoto,
		InvoiceAmount:     input.InvoiceAmount,
		InvoiceMemo:       input.InvoiceMemo,
	}

	if err := s.runRepo.CreateStage(ctx, stage); err != nil {
		return nil, err
	}

	return stage, nil
}

// UpdateStageInput represents the update stage input. Order is not
// updatable here; ReorderStages owns order changes.
type UpdateStageInput struct {
	ID                uuid.UUID
	Label             *string
	ClientStatusLabel *string
	InternalOnly      *bool
	RequiresNote      *bool
	RequiresPhoto     *bool
	InvoiceAmount     *int64
	InvoiceMemo       *string
	ClearInvoice      bool
}

// UpdateStage updates a stage's attributes
func (s *RunService) UpdateStage(ctx context.Context, input *UpdateStageInput) (*entity.RunStage, error) {
	stage, err := s.runRepo.GetStage(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if stage == nil {
		return nil, apperror.NewNotFoundError("Stage")
	}

	if input.Label != nil {
		stage.Label = *input.Label
	}
	if input.ClientStatusLabel != nil {
		stage.ClientStatusLabel = *input.ClientStatusLabel
	}
	if input.InternalOnly != nil {
		stage.InternalOnly = *input.InternalOnly
	}
	if input.RequiresNote != nil {
		stage.RequiresNote = *input.RequiresNote
	}
	if input.RequiresPhoto != nil {
		stage.RequiresPhoto = *input.RequiresPhoto
	}
	if input.ClearInvoice {
		stage.InvoiceAmount = nil
		stage.InvoiceMemo = nil
	} else {
		if input.InvoiceAmount != nil {
			stage.InvoiceAmount = input.InvoiceAmount
		}
		if input.InvoiceMemo != nil {
			stage.InvoiceMemo = input.InvoiceMemo
		}
	}

	if err := s.runRepo.UpdateStage(ctx, stage); err != nil {
		return nil, err
	}

	return stage, nil
}

// DeleteStage removes a stage when no guitar sits on it; remaining orders
// stay dense
func (s *RunService) DeleteStage(ctx context.Context, id uuid.UUID) error {
	stage, err := s.runRepo.GetStage(ctx, id)
	if err != nil {
		return err
	}
	if stage == nil {
		return apperror.NewNotFoundError("Stage")
	}

	occupied, err := s.runRepo.CountGuitarsOnStage(ctx, id)
	if err != nil {
		return err
	}
	if occupied > 0 {
		return apperror.NewFailedPreconditionError("Stage has guitars on it; move them first")
	}

	return s.runRepo.DeleteStage(ctx, id)
}

// ReorderStages rewrites a run's stage order to the given permutation
func (s *RunService) ReorderStages(ctx context.Context, runID uuid.UUID, orderedIDs []uuid.UUID) ([]entity.RunStage, error) {
	stages, err := s.runRepo.ListStages(ctx, runID)
	if err != nil {
		return nil, err
	}
	if len(orderedIDs) != len(stages) {
		return nil, apperror.NewInvalidArgumentError("Reorder must list every stage of the run exactly once")
	}

	known := make(map[uuid.UUID]bool, len(stages))
	for _, stage := range stages {
		known[stage.ID] = true
	}
	seen := make(map[uuid.UUID]bool, len(orderedIDs))
	for _, id := range orderedIDs {
		if !known[id] || seen[id] {
			return nil, apperror.NewInvalidArgumentError("Reorder must list every stage of the run exactly once")
		}
		seen[id] = true
	}

	if err := s.runRepo.ReorderStages(ctx, runID, orderedIDs); err != nil {
		return nil, err
	}

	return s.runRepo.ListStages(ctx, runID)
}

// PostUpdateInput represents a broadcast update to a run's clients
type PostUpdateInput struct {
	RunID    uuid.UUID
	AuthorID uuid.UUID
	Subject  string
	Body     string
}

// PostUpdate stores a run update and fans out one email per client holding
// an unarchived build in the run. The update row and its outbox rows commit
// in one transaction.
func (s *RunService) PostUpdate(ctx context.Context, input *PostUpdateInput) (*entity.RunUpdate, error) {
	run, err := s.runRepo.GetByID(ctx, input.RunID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, apperror.NewNotFoundError("Run")
	}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	update := &entity.RunUpdate{
		RunID:    input.RunID,
		AuthorID: input.AuthorID,
		Subject:  input.Subject,
		Body:     input.Body,
	}

	var emails []entity.EmailOutbox
	if settings.RunUpdateEmails {
		clients, err := s.clientRepo.ListWithBuildInRun(ctx, input.RunID)
		if err != nil {
			return nil, err
		}

		rendered, err := s.composer.RunUpdate(run.Name, input.Subject, input.Body)
		if err != nil {
			return nil, err
		}

		for _, client := range clients {
			if client.Email == "" {
				continue
			}
			emails = append(emails, entity.EmailOutbox{
				Kind:      entity.EmailKindRunUpdate,
				Recipient: client.Email,
				Subject:   rendered.Subject,
				HTMLBody:  rendered.HTMLBody,
				TextBody:  rendered.TextBody,
			})
		}
		update.Recipients = len(emails)
	}

	if err := s.runRepo.CreateUpdate(ctx, update, emails); err != nil {
		return nil, err
	}

	return update, nil
}

// ListUpdates returns a run's broadcast updates, newest first
func (s *RunService) ListUpdates(ctx context.Context, runID uuid.UUID) ([]entity.RunUpdate, error) {
	return s.runRepo.ListUpdates(ctx, runID)
}
