package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/fretline/buildtrack-api/internal/domain/entity"
	"github.com/fretline/buildtrack-api/pkg/pagination"
)

// FactoryRepository defines the interface for factory data operations
type FactoryRepository interface {
	Create(ctx context.Context, factory *entity.Factory) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Factory, error)
	Update(ctx context.Context, factory *entity.Factory) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Factory, int64, error)
}
