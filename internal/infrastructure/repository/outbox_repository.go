package repository

import (
	"context"
	"time"

	"github.com/fretline/buildtrack-api/internal/domain/entity"
	"github.com/fretline/buildtrack-api/internal/domain/enum"
	domainRepo "github.com/fretline/buildtrack-api/internal/domain/repository"
	"github.com/fretline/buildtrack-api/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type outboxRepository struct {
	db *gorm.DB
}

// NewOutboxRepository creates a new email outbox repository
func NewOutboxRepository(db *gorm.DB) domainRepo.OutboxRepository {
	return &outboxRepository{db: db}
}

func (r *outboxRepository) Enqueue(ctx context.Context, rows []entity.EmailOutbox) error {
	if len(rows) == 0 {
		return nil
	}
	for i := range rows {
		rows[i].EnsureID()
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// ClaimPending locks a batch of pending rows for one worker. SELECT FOR
// UPDATE SKIP LOCKED keeps concurrent dispatchers from claiming the same
// rows; the lock columns survive the transaction so a crashed worker's rows
// become claimable again once staleBefore passes them.
func (r *outboxRepository) ClaimPending(ctx context.Context, workerID string, limit int, staleBefore time.Time) ([]entity.EmailOutbox, error) {
	var claimed []entity.EmailOutbox
	now := time.Now().UTC()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.
			Where("status = ?", enum.OutboxStatusPending).
			Where("(locked_at IS NULL OR locked_at <= ?)", staleBefore).
			Order("created_at ASC").
			Limit(limit).
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
		if err := q.Find(&claimed).Error; err != nil {
			return err
		}
		if len(claimed) == 0 {
			return nil
		}
		for i := range claimed {
			claimed[i].LockedAt = &now
			claimed[i].LockedBy = &workerID
			if err := tx.Model(&entity.EmailOutbox{}).
				Where("id = ?", claimed[i].ID).
				Updates(map[string]interface{}{
					"locked_at": claimed[i].LockedAt,
					"locked_by": claimed[i].LockedBy,
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})

	return claimed, err
}

func (r *outboxRepository) MarkSent(ctx context.Context, id uuid.UUID) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).Model(&entity.EmailOutbox{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":    enum.OutboxStatusSent,
			"sent_at":   now,
			"locked_at": nil,
			"locked_by": nil,
		}).Error
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, lastError string, final bool) error {
	status := enum.OutboxStatusPending
	if final {
		status = enum.OutboxStatusFailed
	}
	return r.db.WithContext(ctx).Model(&entity.EmailOutbox{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": lastError,
			"locked_at":  nil,
			"locked_by":  nil,
		}).Error
}

func (r *outboxRepository) ReleaseStale(ctx context.Context, olderThan time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&entity.EmailOutbox{}).
		Where("status = ? AND locked_at IS NOT NULL AND locked_at <= ?", enum.OutboxStatusPending, olderThan).
		Updates(map[string]interface{}{
			"locked_at": nil,
			"locked_by": nil,
		})
	return result.RowsAffected, result.Error
}

func (r *outboxRepository) List(ctx context.Context, params *pagination.PaginationParams, status *enum.OutboxStatus) ([]entity.EmailOutbox, int64, error) {
	var rows []entity.EmailOutbox
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.EmailOutbox{})

	if status != nil {
		query = query.Where("status = ?", *status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("created_at DESC").
		Find(&rows).Error

	return rows, total, err
}
