package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/fretline/buildtrack-api/internal/domain/entity"
	"github.com/fretline/buildtrack-api/pkg/pagination"
)

// ClientRepository defines the interface for client data operations
type ClientRepository interface {
	Create(ctx context.Context, client *entity.Client) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Client, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*entity.Client, error)
	GetByEmail(ctx context.Context, email string) (*entity.Client, error)
	Update(ctx context.Context, client *entity.Client) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Client, int64, error)

	AssignRun(ctx context.Context, clientID, runID uuid.UUID) error
	RemoveRun(ctx context.Context, clientID, runID uuid.UUID) error
	// ListWithBuildInRun returns the distinct clients owning an unarchived
	// guitar in the run; the recipient set for run-update broadcasts.
	ListWithBuildInRun(ctx context.Context, runID uuid.UUID) ([]entity.Client, error)
}
