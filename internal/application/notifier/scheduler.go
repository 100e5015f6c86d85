package notifier

import (
	"context"
	"time"

	"github.com/fretline/buildtrack-api/internal/domain/repository"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler runs periodic maintenance: releasing outbox locks stranded by
// crashed workers and pruning expired idempotency keys.
type Scheduler struct {
	outboxRepo      repository.OutboxRepository
	idempotencyRepo repository.IdempotencyRepository
	logger          *logrus.Logger
	lockTTL         time.Duration
	cron            *cron.Cron
}

// NewScheduler creates a new maintenance scheduler
func NewScheduler(
	outboxRepo repository.OutboxRepository,
	idempotencyRepo repository.IdempotencyRepository,
	logger *logrus.Logger,
	lockTTL time.Duration,
) *Scheduler {
	return &Scheduler{
		outboxRepo:      outboxRepo,
		idempotencyRepo: idempotencyRepo,
		logger:          logger,
		lockTTL:         lockTTL,
		cron:            cron.New(),
	}
}

// Start registers the maintenance jobs and starts the cron loop
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("@every 5m", s.releaseStaleLocks); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("@hourly", s.pruneIdempotencyKeys); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("Maintenance scheduler started")
	return nil
}

// Stop stops the cron loop and waits for running jobs
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Maintenance scheduler stopped")
}

func (s *Scheduler) releaseStaleLocks() {
	released, err := s.outboxRepo.ReleaseStale(context.Background(), time.Now().Add(-s.lockTTL))
	if err != nil {
		s.logger.WithError(err).Error("Failed to release stale outbox locks")
		return
	}
	if released > 0 {
		s.logger.WithField("released", released).Warn("Released stale outbox locks")
	}
}

func (s *Scheduler) pruneIdempotencyKeys() {
	deleted, err := s.idempotencyRepo.DeleteExpired(context.Background())
	if err != nil {
		s.logger.WithError(err).Error("Failed to prune idempotency keys")
		return
	}
	if deleted > 0 {
		s.logger.WithField("deleted", deleted).Info("Pruned expired idempotency keys")
	}
}
