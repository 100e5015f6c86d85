package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/fretline/buildtrack-api/internal/domain/entity"
	"github.com/fretline/buildtrack-api/pkg/pagination"
)

// RunFilterParams contains filtering parameters for run queries
type RunFilterParams struct {
	Pagination      *pagination.PaginationParams
	Search          string
	FactoryID       *uuid.UUID
	ActiveOnly      bool
	IncludeArchived bool
}

// RunRepository defines the interface for run and stage data operations
type RunRepository interface {
	Create(ctx context.Context, run *entity.Run) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Run, error)
	GetWithStages(ctx context.Context, id uuid.UUID) (*entity.Run, error)
	Update(ctx context.Context, run *entity.Run) error
	Archive(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *RunFilterParams) ([]entity.Run, int64, error)

	CreateStage(ctx context.Context, stage *entity.RunStage) error
	GetStage(ctx context.Context, id uuid.UUID) (*entity.RunStage, error)
	UpdateStage(ctx context.Context, stage *entity.RunStage) error
	// DeleteStage removes a stage and renumbers the remaining stages so order
	// values stay dense from 0. Fails when any guitar currently sits on the
	// stage.
	DeleteStage(ctx context.Context, id uuid.UUID) error
	ListStages(ctx context.Context, runID uuid.UUID) ([]entity.RunStage, error)
	// ReorderStages rewrites the order column to match the given ID sequence,
	// which must be a permutation of the run's stages.
	ReorderStages(ctx context.Context, runID uuid.UUID, orderedIDs []uuid.UUID) error
	CountGuitarsOnStage(ctx context.Context, stageID uuid.UUID) (int64, error)

	// CreateUpdate persists a broadcast update and its fan-out emails in one
	// transaction.
	CreateUpdate(ctx context.Context, update *entity.RunUpdate, emails []entity.EmailOutbox) error
	ListUpdates(ctx context.Context, runID uuid.UUID) ([]entity.RunUpdate, error)
}
