package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/fretline/buildtrack-api/internal/domain/entity"
	domainRepo "github.com/fretline/buildtrack-api/internal/domain/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type runRepository struct {
	db *gorm.DB
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *gorm.DB) domainRepo.RunRepository {
	return &runRepository{db: db}
}

func (r *runRepository) Create(ctx context.Context, run *entity.Run) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *runRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Run, error) {
	var run entity.Run
	err := r.db.WithContext(ctx).First(&run, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &run, err
}

func (r *runRepository) GetWithStages(ctx context.Context, id uuid.UUID) (*entity.Run, error) {
	var run entity.Run
	err := r.db.WithContext(ctx).
		Preload("Factory").
		Preload("Stages", func(db *gorm.DB) *gorm.DB {
			return db.Order("stage_order ASC")
		}).
		First(&run, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &run, err
}

func (r *runRepository) Update(ctx context.Context, run *entity.Run) error {
	return r.db.WithContext(ctx).Save(run).Error
}

func (r *runRepository) Archive(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&entity.Run{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"archived": true, "is_active": false}).Error
}

func (r *runRepository) List(ctx context.Context, params *domainRepo.RunFilterParams) ([]entity.Run, int64, error) {
	var runs []entity.Run
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Run{}).
		Scopes(NotArchived(params.IncludeArchived))

	if params.Search != "" {
		query = query.Where("name ILIKE ?", "%"+params.Search+"%")
	}

	if params.FactoryID != nil {
		query = query.Where("factory_id = ?", *params.FactoryID)
	}

	if params.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Factory").
		Order("created_at DESC").
		Find(&runs).Error

	return runs, total, err
}

func (r *runRepository) CreateStage(ctx context.Context, stage *entity.RunStage) error {
	return r.db.WithContext(ctx).Create(stage).Error
}

func (r *runRepository) GetStage(ctx context.Context, id uuid.UUID) (*entity.RunStage, error) {
	var stage entity.RunStage
	err := r.db.WithContext(ctx).First(&stage, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &stage, err
}

func (r *runRepository) UpdateStage(ctx context.Context, stage *entity.RunStage) error {
	return r.db.WithContext(ctx).Save(stage).Error
}

func (r *runRepository) DeleteStage(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stage entity.RunStage
		if err := tx.First(&stage, "id = ?", id).Error; err != nil {
			return err
		}

		var occupied int64
		if err := tx.Model(&entity.Guitar{}).
			Where("stage_id = ?", id).
			Count(&occupied).Error; err != nil {
			return err
		}
		if occupied > 0 {
			return fmt.Errorf("stage %s has %d guitars on it", id, occupied)
		}

		if err := tx.Delete(&entity.RunStage{}, "id = ?", id).Error; err != nil {
			return err
		}

		// Close the gap so orders stay dense from 0
		return tx.Model(&entity.RunStage{}).
			Where("run_id = ? AND stage_order > ?", stage.RunID, stage.Order).
			UpdateColumn("stage_order", gorm.Expr("stage_order - 1")).Error
	})
}

func (r *runRepository) ListStages(ctx context.Context, runID uuid.UUID) ([]entity.RunStage, error) {
	var stages []entity.RunStage
	err := r.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("stage_order ASC").
		Find(&stages).Error
	return stages, err
}

func (r *runRepository) ReorderStages(ctx context.Context, runID uuid.UUID, orderedIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entity.RunStage{}).
			Where("run_id = ?", runID).
			Count(&count).Error; err != nil {
			return err
		}
		if int(count) != len(orderedIDs) {
			return fmt.Errorf("reorder must cover all %d stages, got %d", count, len(orderedIDs))
		}

		// Two passes: park orders out of range first so the composite unique
		// index on (run_id, stage_order) never trips mid-rewrite.
		for i, stageID := range orderedIDs {
			result := tx.Model(&entity.RunStage{}).
				Where("id = ? AND run_id = ?", stageID, runID).
				UpdateColumn("stage_order", -(i + 1))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("stage %s does not belong to run %s", stageID, runID)
			}
		}

		return tx.Model(&entity.RunStage{}).
			Where("run_id = ?", runID).
			UpdateColumn("stage_order", gorm.Expr("-stage_order - 1")).Error
	})
}

func (r *runRepository) CountGuitarsOnStage(ctx context.Context, stageID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Guitar{}).
		Where("stage_id = ?", stageID).
		Count(&count).Error
	return count, err
}

func (r *runRepository) CreateUpdate(ctx context.Context, update *entity.RunUpdate, emails []entity.EmailOutbox) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(update).Error; err != nil {
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

func (r *runRepository) ListUpdates(ctx context.Context, runID uuid.UUID) ([]entity.RunUpdate, error) {
	var updates []entity.RunUpdate
	err := r.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("created_at DESC").
		Find(&updates).Error
	return updates, err
}
