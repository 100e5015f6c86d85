package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/fretline/buildtrack-api/internal/domain/entity"
	"github.com/fretline/buildtrack-api/internal/domain/enum"
	"github.com/fretline/buildtrack-api/pkg/pagination"
)

// CustomShopRepository defines the interface for custom shop request data
// operations
type CustomShopRepository interface {
	// Create persists the request and its acknowledgement/staff emails in one
	// transaction.
	Create(ctx context.Context, request *entity.CustomShopRequest, emails []entity.EmailOutbox) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.CustomShopRequest, error)
	List(ctx context.Context, params *pagination.PaginationParams, status *enum.RequestStatus) ([]entity.CustomShopRequest, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enum.RequestStatus) error
}
