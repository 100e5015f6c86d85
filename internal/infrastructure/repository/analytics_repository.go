package repository

import (
	"context"

	"github.com/fretline/buildtrack-api/internal/domain/entity"
	domainRepo "github.com/fretline/buildtrack-api/internal/domain/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db *gorm.DB) domainRepo.AnalyticsRepository {
	return &analyticsRepository{db: db}
}

// StageDistribution counts unarchived guitars per stage of the run, stages
// with no guitars included
func (r *analyticsRepository) StageDistribution(ctx context.Context, runID uuid.UUID) ([]domainRepo.StageCount, error) {
	var counts []domainRepo.StageCount

	err := r.db.WithContext(ctx).
		Table("run_stages").
		Select(`run_stages.id AS stage_id,
			run_stages.label AS label,
			run_stages.stage_order AS "order",
			COUNT(guitars.id) AS count`).
		Joins(`LEFT JOIN guitars ON guitars.stage_id = run_stages.id
			AND guitars.archived = false AND guitars.deleted_at IS NULL`).
		Where("run_stages.run_id = ? AND run_stages.deleted_at IS NULL", runID).
		Group("run_stages.id, run_stages.label, run_stages.stage_order").
		Order("run_stages.stage_order ASC").
		Scan(&counts).Error

	return counts, err
}

func (r *analyticsRepository) CountActiveRuns(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Run{}).
		Where("is_active = ? AND archived = ?", true, false).
		Count(&count).Error
	return count, err
}

func (r *analyticsRepository) CountGuitarsInProgress(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Guitar{}).
		Scopes(NotArchived(false)).
		Count(&count).Error
	return count, err
}

func (r *analyticsRepository) CountClients(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Client{}).Count(&count).Error
	return count, err
}

func (r *analyticsRepository) RecentTransitions(ctx context.Context, limit int) ([]entity.StageTransition, error) {
	var transitions []entity.StageTransition
	err := r.db.WithContext(ctx).
		Preload("Guitar").
		Preload("ToStage").
		Order("created_at DESC").
		Limit(limit).
		Find(&transitions).Error
	return transitions, err
}
