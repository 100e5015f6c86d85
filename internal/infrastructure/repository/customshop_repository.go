package repository

import (
	"context"
	"errors"

	"github.com/fretline/buildtrack-api/internal/domain/entity"
	"github.com/fretline/buildtrack-api/internal/domain/enum"
	domainRepo "github.com/fretline/buildtrack-api/internal/domain/repository"
	"github.com/fretline/buildtrack-api/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type customShopRepository struct {
	db *gorm.DB
}

// NewCustomShopRepository creates a new custom shop request repository
func NewCustomShopRepository(db *gorm.DB) domainRepo.CustomShopRepository {
	return &customShopRepository{db: db}
}

func (r *customShopRepository) Create(ctx context.Context, request *entity.CustomShopRequest, emails []entity.EmailOutbox) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(request).Error; err != nil {
			return err
		}
		if len(emails) > 0 {
			for i := range emails {
				emails[i].EnsureID()
			}
			if err := tx.Create(&emails).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *customShopRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.CustomShopRequest, error) {
	var request entity.CustomShopRequest
	err := r.db.WithContext(ctx).First(&request, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &request, err
}

func (r *customShopRepository) List(ctx context.Context, params *pagination.PaginationParams, status *enum.RequestStatus) ([]entity.CustomShopRequest, int64, error) {
	var requests []entity.CustomShopRequest
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.CustomShopRequest{})

	if status != nil {
		query = query.Where("status = ?", *status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("created_at DESC").
		Find(&requests).Error

	return requests, total, err
}

func (r *customShopRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.RequestStatus) error {
	return r.db.WithContext(ctx).Model(&entity.CustomShopRequest{}).
		Where("id = ?", id).
		Update("status", status).Error
}
