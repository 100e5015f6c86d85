package notifier

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/fretline/buildtrack-api/internal/config"
	"github.com/fretline/buildtrack-api/internal/domain/entity"
	"github.com/fretline/buildtrack-api/internal/domain/enum"
	"github.com/fretline/buildtrack-api/pkg/mailer"
	"github.com/fretline/buildtrack-api/pkg/pagination"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memOutboxRepo struct {
	rows []entity.EmailOutbox
}

func (r *memOutboxRepo) Enqueue(ctx context.Context, rows []entity.EmailOutbox) error {
	for i := range rows {
		rows[i].EnsureID()
		r.rows = append(r.rows, rows[i])
	}
	return nil
}

func (r *memOutboxRepo) ClaimPending(ctx context.Context, workerID string, limit int, staleBefore time.Time) ([]entity.EmailOutbox, error) {
	now := time.Now()
	var claimed []entity.EmailOutbox
	for i := range r.rows {
		if len(claimed) >= limit {
			break
		}
		row := &r.rows[i]
		if row.Status != enum.OutboxStatusPending {
			continue
		}
		if row.LockedAt != nil && row.LockedAt.After(staleBefore) {
			continue
		}
		row.LockedAt = &now
		row.LockedBy = &workerID
		claimed = append(claimed, *row)
	}
	return claimed, nil
}

func (r *memOutboxRepo) MarkSent(ctx context.Context, id uuid.UUID) error {
	for i := range r.rows {
		if r.rows[i].ID == id {
			now := time.Now()
			r.rows[i].Status = enum.OutboxStatusSent
			r.rows[i].SentAt = &now
			r.rows[i].LockedAt = nil
			r.rows[i].LockedBy = nil
		}
	}
	return nil
}

func (r *memOutboxRepo) MarkFailed(ctx context.Context, id uuid.UUID, lastError string, final bool) error {
	for i := range r.rows {
		if r.rows[i].ID == id {
			r.rows[i].Attempts++
			r.rows[i].LastError = &lastError
			r.rows[i].LockedAt = nil
			r.rows[i].LockedBy = nil
			if final {
				r.rows[i].Status = enum.OutboxStatusFailed
			}
		}
	}
	return nil
}

func (r *memOutboxRepo) ReleaseStale(ctx context.Context, olderThan time.Time) (int64, error) {
	var released int64
	for i := range r.rows {
		if r.rows[i].LockedAt != nil && r.rows[i].LockedAt.Before(olderThan) {
			r.rows[i].LockedAt = nil
			r.rows[i].LockedBy = nil
			released++
		}
	}
	return released, nil
}

func (r *memOutboxRepo) List(ctx context.Context, params *pagination.PaginationParams, status *enum.OutboxStatus) ([]entity.EmailOutbox, int64, error) {
	return r.rows, int64(len(r.rows)), nil
}

type stubEmailSender struct {
	sent []mailer.Message
	err  error
}

func (s *stubEmailSender) Send(ctx context.Context, msg mailer.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

type stubSMSSender struct {
	sent []string
	err  error
}

func (s *stubSMSSender) Send(to, body string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, to)
	return nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newDispatcherUnderTest(repo *memOutboxRepo, email *stubEmailSender, sms *stubSMSSender) *Dispatcher {
	return NewDispatcher(repo, email, sms, quietLogger(), config.OutboxConfig{
		PollInterval: time.Second,
		BatchSize:    10,
		MaxAttempts:  3,
		LockTTL:      5 * time.Minute,
	})
}

func enqueue(t *testing.T, repo *memOutboxRepo, rows ...entity.EmailOutbox) {
	t.Helper()
	require.NoError(t, repo.Enqueue(context.Background(), rows))
}

func TestProcessBatchSendsPendingRows(t *testing.T) {
	repo := &memOutboxRepo{}
	email := &stubEmailSender{}
	d := newDispatcherUnderTest(repo, email, &stubSMSSender{})

	enqueue(t, repo,
		entity.EmailOutbox{Kind: entity.EmailKindInvoice, Recipient: "a@example.com", Subject: "Invoice"},
		entity.EmailOutbox{Kind: entity.EmailKindStageChange, Recipient: "b@example.com", Subject: "Stage"},
	)

	sent, failed := d.ProcessBatch(context.Background())
	assert.Equal(t, 2, sent)
	assert.Equal(t, 0, failed)

	require.Len(t, email.sent, 2)
	for _, row := range repo.rows {
		assert.Equal(t, enum.OutboxStatusSent, row.Status)
		assert.NotNil(t, row.SentAt)
		assert.Nil(t, row.LockedBy)
	}

	// Nothing left to claim
	sent, failed = d.ProcessBatch(context.Background())
	assert.Zero(t, sent)
	assert.Zero(t, failed)
}

func TestProcessBatchRetriesUntilAttemptsExhausted(t *testing.T) {
	repo := &memOutboxRepo{}
	email := &stubEmailSender{err: errors.New("mailgun: 500")}
	d := newDispatcherUnderTest(repo, email, &stubSMSSender{})

	enqueue(t, repo, entity.EmailOutbox{Kind: entity.EmailKindInvite, Recipient: "a@example.com", Subject: "Invite"})

	// MarkFailed releases the lock, so each batch can reclaim the row
	for attempt := 1; attempt <= 2; attempt++ {
		sent, failed := d.ProcessBatch(context.Background())
		assert.Zero(t, sent)
		assert.Equal(t, 1, failed)
		assert.Equal(t, attempt, repo.rows[0].Attempts)
		assert.Equal(t, enum.OutboxStatusPending, repo.rows[0].Status)
	}

	_, failed := d.ProcessBatch(context.Background())
	assert.Equal(t, 1, failed)
	assert.Equal(t, 3, repo.rows[0].Attempts)
	assert.Equal(t, enum.OutboxStatusFailed, repo.rows[0].Status)
	require.NotNil(t, repo.rows[0].LastError)
	assert.Equal(t, "mailgun: 500", *repo.rows[0].LastError)
}

func TestProcessBatchSendsSMSAlongsideEmail(t *testing.T) {
	repo := &memOutboxRepo{}
	smsSender := &stubSMSSender{}
	d := newDispatcherUnderTest(repo, &stubEmailSender{}, smsSender)

	enqueue(t, repo, entity.EmailOutbox{
		Kind:      entity.EmailKindStageChange,
		Recipient: "a@example.com",
		Subject:   "Stage",
		SMSTo:     "+61400000000",
		SMSBody:   "Your build moved to Neck Carve",
	})

	sent, _ := d.ProcessBatch(context.Background())
	assert.Equal(t, 1, sent)
	require.Len(t, smsSender.sent, 1)
	assert.Equal(t, "+61400000000", smsSender.sent[0])
}

func TestSMSFailureDoesNotFailTheRow(t *testing.T) {
	repo := &memOutboxRepo{}
	d := newDispatcherUnderTest(repo, &stubEmailSender{}, &stubSMSSender{err: errors.New("twilio: 21211")})

	enqueue(t, repo, entity.EmailOutbox{
		Kind:      entity.EmailKindStageChange,
		Recipient: "a@example.com",
		Subject:   "Stage",
		SMSTo:     "+61400000000",
		SMSBody:   "Your build moved",
	})

	sent, failed := d.ProcessBatch(context.Background())
	assert.Equal(t, 1, sent)
	assert.Zero(t, failed)
	assert.Equal(t, enum.OutboxStatusSent, repo.rows[0].Status)
	assert.Zero(t, repo.rows[0].Attempts)
}

func TestClaimPendingSkipsRowsLockedByLiveWorkers(t *testing.T) {
	repo := &memOutboxRepo{}
	enqueue(t, repo, entity.EmailOutbox{Kind: entity.EmailKindTest, Recipient: "a@example.com", Subject: "Test"})

	now := time.Now()
	other := "other-worker"
	repo.rows[0].LockedAt = &now
	repo.rows[0].LockedBy = &other

	d := newDispatcherUnderTest(repo, &stubEmailSender{}, &stubSMSSender{})
	sent, failed := d.ProcessBatch(context.Background())
	assert.Zero(t, sent)
	assert.Zero(t, failed)
	assert.Equal(t, "other-worker", *repo.rows[0].LockedBy)
}
