package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/fretline/buildtrack-api/internal/domain/entity"
	"github.com/fretline/buildtrack-api/internal/domain/enum"
	"github.com/fretline/buildtrack-api/pkg/pagination"
)

// OutboxRepository defines the interface for the transactional email outbox.
// Domain repositories insert rows inside their own transactions; this
// interface covers standalone enqueues and the dispatcher's draining
// protocol.
type OutboxRepository interface {
	Enqueue(ctx context.Context, rows []entity.EmailOutbox) error
	// ClaimPending locks up to limit pending rows for the worker, skipping
	// rows locked after staleBefore. Claimed rows carry the worker's lock.
	ClaimPending(ctx context.Context, workerID string, limit int, staleBefore time.Time) ([]entity.EmailOutbox, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
	// MarkFailed records the error, increments attempts and releases the
	// lock; final moves the row to the failed state instead of leaving it
	// pending for retry.
	MarkFailed(ctx context.Context, id uuid.UUID, lastError string, final bool) error
	// ReleaseStale clears locks older than the cutoff so crashed workers do
	// not strand rows.
	ReleaseStale(ctx context.Context, olderThan time.Time) (int64, error)
	List(ctx context.Context, params *pagination.PaginationParams, status *enum.OutboxStatus) ([]entity.EmailOutbox, int64, error)
}
