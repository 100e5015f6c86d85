package repository

import (
	"context"
	"errors"

	"github.com/fretline/buildtrack-api/internal/domain/entity"
	domainRepo "github.com/fretline/buildtrack-api/internal/domain/repository"
	"github.com/fretline/buildtrack-api/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type factoryRepository struct {
	db *gorm.DB
}

// NewFactoryRepository creates a new factory repository
func NewFactoryRepository(db *gorm.DB) domainRepo.FactoryRepository {
	return &factoryRepository{db: db}
}

func (r *factoryRepository) Create(ctx context.Context, factory *entity.Factory) error {
	return r.db.WithContext(ctx).Create(factory).Error
}

func (r *factoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Factory, error) {
	var factory entity.Factory
	err := r.db.WithContext(ctx).First(&factory, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &factory, err
}

func (r *factoryRepository) Update(ctx context.Context, factory *entity.Factory) error {
	return r.db.WithContext(ctx).Save(factory).Error
}

func (r *factoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Factory{}, "id = ?", id).Error
}

func (r *factoryRepository) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Factory, int64, error) {
	var factories []entity.Factory
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Factory{})

	if search != "" {
		query = query.Where("name ILIKE ? OR location ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("name ASC").
		Find(&factories).Error

	return factories, total, err
}
