package notifier

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fretline/buildtrack-api/internal/config"
	"github.com/fretline/buildtrack-api/internal/domain/entity"
	"github.com/fretline/buildtrack-api/internal/domain/repository"
	"github.com/fretline/buildtrack-api/pkg/mailer"
	"github.com/fretline/buildtrack-api/pkg/sms"
	"github.com/sirupsen/logrus"
)

// Dispatcher drains the transactional outbox. It claims batches of pending
// rows under SKIP LOCKED, attempts delivery and records the result. Failed
// rows stay pending for retry until they exhaust their attempts.
type Dispatcher struct {
	outboxRepo  repository.OutboxRepository
	emailSender mailer.Sender
	smsSender   sms.Sender
	logger      *logrus.Logger

	workerID     string
	pollInterval time.Duration
	batchSize    int
	maxAttempts  int
	lockTTL      time.Duration

	stop chan struct{}
	done chan struct{}
}

// NewDispatcher creates a new outbox dispatcher
func NewDispatcher(
	outboxRepo repository.OutboxRepository,
	emailSender mailer.Sender,
	smsSender sms.Sender,
	logger *logrus.Logger,
	cfg config.OutboxConfig,
) *Dispatcher {
	hostname, _ := os.Hostname()
	return &Dispatcher{
		outboxRepo:   outboxRepo,
		emailSender:  emailSender,
		smsSender:    smsSender,
		logger:       logger,
		workerID:     fmt.Sprintf("%s-%d", hostname, os.Getpid()),
		pollInterval: cfg.PollInterval,
		batchSize:    cfg.BatchSize,
		maxAttempts:  cfg.MaxAttempts,
		lockTTL:      cfg.LockTTL,
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// Start runs the polling loop in a goroutine until Stop is called
func (d *Dispatcher) Start(ctx context.Context) {
	d.logger.WithFields(logrus.Fields{
		"worker_id":     d.workerID,
		"poll_interval": d.pollInterval.String(),
		"batch_size":    d.batchSize,
	}).Info("Starting outbox dispatcher")

	go func() {
		defer close(d.done)
		ticker := time.NewTicker(d.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-d.stop:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				if sent, failed := d.ProcessBatch(ctx); sent > 0 || failed > 0 {
					d.logger.WithFields(logrus.Fields{
						"worker_id": d.workerID,
						"sent":      sent,
						"failed":    failed,
					}).Info("Outbox batch processed")
				}
			}
		}
	}()
}

// Stop signals the loop to exit and waits for the in-flight batch
func (d *Dispatcher) Stop() {
	close(d.stop)
	<-d.done
	d.logger.WithField("worker_id", d.workerID).Info("Outbox dispatcher stopped")
}

// ProcessBatch claims and delivers one batch of pending rows. Returns the
// number of rows sent and the number that failed this attempt.
func (d *Dispatcher) ProcessBatch(ctx context.Context) (int, int) {
	staleBefore := time.Now().Add(-d.lockTTL)
	rows, err := d.outboxRepo.ClaimPending(ctx, d.workerID, d.batchSize, staleBefore)
	if err != nil {
		d.logger.WithError(err).Error("Failed to claim outbox rows")
		return 0, 0
	}

	var sent, failed int
	for i := range rows {
		if err := d.deliver(ctx, &rows[i]); err != nil {
			failed++
		} else {
			sent++
		}
	}
	return sent, failed
}

func (d *Dispatcher) deliver(ctx context.Context, row *entity.EmailOutbox) error {
	msg := mailer.Message{
		To:       row.Recipient,
		CC:       row.CC,
		Subject:  row.Subject,
		HTMLBody: row.HTMLBody,
		TextBody: row.TextBody,
	}

	if err := d.emailSender.Send(ctx, msg); err != nil {
		final := row.Attempts+1 >= d.maxAttempts
		d.logger.WithError(err).WithFields(logrus.Fields{
			"outbox_id": row.ID,
			"kind":      row.Kind,
			"recipient": row.Recipient,
			"attempt":   row.Attempts + 1,
			"final":     final,
		}).Warn("Email delivery failed")

		if markErr := d.outboxRepo.MarkFailed(ctx, row.ID, err.Error(), final); markErr != nil {
			d.logger.WithError(markErr).WithField("outbox_id", row.ID).Error("Failed to record delivery failure")
		}
		return err
	}

	// SMS rides along with the email and never fails the row
	if row.WantsSMS() {
		if err := d.smsSender.Send(row.SMSTo, row.SMSBody); err != nil {
			d.logger.WithError(err).WithFields(logrus.Fields{
				"outbox_id": row.ID,
				"sms_to":    row.SMSTo,
			}).Warn("SMS delivery failed")
		}
	}

	if err := d.outboxRepo.MarkSent(ctx, row.ID); err != nil {
		d.logger.WithError(err).WithField("outbox_id", row.ID).Error("Failed to mark outbox row sent")
		return err
	}
	return nil
}
