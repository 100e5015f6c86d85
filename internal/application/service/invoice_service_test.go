package service

import (
	"context"
	"testing"

	"github.com/fretline/buildtrack-api/internal/domain/entity"
	"github.com/fretline/buildtrack-api/internal/domain/enum"
	"github.com/fretline/buildtrack-api/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type invoiceFixture struct {
	svc         *InvoiceService
	invoiceRepo *fakeInvoiceRepo
	clientRepo  *fakeClientRepo
	settings    *fakeSettingsRepo
	client      *entity.Client
}

func newInvoiceFixture(t *testing.T) *invoiceFixture {
	t.Helper()
	invoiceRepo := newFakeInvoiceRepo()
	clientRepo := newFakeClientRepo()
	settings := newFakeSettingsRepo()

	client := &entity.Client{Name: "June Park", Email: "june@example.com"}
	require.NoError(t, clientRepo.Create(context.Background(), client))

	return &invoiceFixture{
		svc:         NewInvoiceService(invoiceRepo, clientRepo, newFakeGuitarRepo(), settings, newTestComposer(t)),
		invoiceRepo: invoiceRepo,
		clientRepo:  clientRepo,
		settings:    settings,
		client:      client,
	}
}

func (f *invoiceFixture) createInvoice(t *testing.T, amount int64) *entity.Invoice {
	t.Helper()
	invoice, err := f.svc.CreateInvoice(context.Background(), &CreateInvoiceInput{
		ClientID: f.client.ID,
		Amount:   amount,
		Memo:     "Final balance",
	})
	require.NoError(t, err)
	return invoice
}

func TestCreateInvoiceRejectsNonPositiveAmount(t *testing.T) {
	f := newInvoiceFixture(t)

	for _, amount := range []int64{0, -100} {
		_, err := f.svc.CreateInvoice(context.Background(), &CreateInvoiceInput{
			ClientID: f.client.ID,
			Amount:   amount,
		})
		require.Error(t, err)
		assert.Equal(t, apperror.CodeInvalidArgument, apperror.GetAppError(err).Code)
	}
}

func TestCreateInvoiceQueuesNotification(t *testing.T) {
	f := newInvoiceFixture(t)

	invoice := f.createInvoice(t, 250000)

	assert.Equal(t, enum.InvoiceStatusOpen, invoice.Status)
	assert.NotEmpty(t, invoice.InvoiceNo)
	require.Len(t, f.invoiceRepo.createdEmails, 1)
	assert.Equal(t, entity.EmailKindInvoice, f.invoiceRepo.createdEmails[0].Kind)
	assert.Equal(t, "june@example.com", f.invoiceRepo.createdEmails[0].Recipient)
}

func TestCreateInvoiceHonorsNotificationToggle(t *testing.T) {
	f := newInvoiceFixture(t)
	f.settings.settings.InvoiceEmails = false

	f.createInvoice(t, 250000)

	assert.Empty(t, f.invoiceRepo.createdEmails)
}

func TestRecordPaymentMovesThroughStatuses(t *testing.T) {
	f := newInvoiceFixture(t)
	invoice := f.createInvoice(t, 100000)

	partial, err := f.svc.RecordPayment(context.Background(), &RecordPaymentInput{
		InvoiceID:  invoice.ID,
		Amount:     40000,
		Method:     "card",
		RecordedBy: uuid.New(),
	})
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceStatusPartial, partial.Status)
	assert.Equal(t, int64(40000), partial.PaidCents())

	paid, err := f.svc.RecordPayment(context.Background(), &RecordPaymentInput{
		InvoiceID:  invoice.ID,
		Amount:     60000,
		Method:     "transfer",
		RecordedBy: uuid.New(),
	})
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceStatusPaid, paid.Status)
	assert.True(t, paid.IsCovered())
	require.Len(t, paid.Payments, 2)
}

func TestRecordPaymentRejectsPaidInvoice(t *testing.T) {
	f := newInvoiceFixture(t)
	invoice := f.createInvoice(t, 100000)

	_, err := f.svc.RecordPayment(context.Background(), &RecordPaymentInput{
		InvoiceID:  invoice.ID,
		Amount:     100000,
		RecordedBy: uuid.New(),
	})
	require.NoError(t, err)

	_, err = f.svc.RecordPayment(context.Background(), &RecordPaymentInput{
		InvoiceID:  invoice.ID,
		Amount:     1,
		RecordedBy: uuid.New(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already paid in full")
}

func TestRecordPaymentRejectsVoidInvoice(t *testing.T) {
	f := newInvoiceFixture(t)
	invoice := f.createInvoice(t, 100000)

	_, err := f.svc.VoidInvoice(context.Background(), invoice.ID)
	require.NoError(t, err)

	_, err = f.svc.RecordPayment(context.Background(), &RecordPaymentInput{
		InvoiceID:  invoice.ID,
		Amount:     1000,
		RecordedBy: uuid.New(),
	})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeFailedPrecondition, apperror.GetAppError(err).Code)
}

func TestVoidInvoiceIsIdempotent(t *testing.T) {
	f := newInvoiceFixture(t)
	invoice := f.createInvoice(t, 100000)

	first, err := f.svc.VoidInvoice(context.Background(), invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceStatusVoid, first.Status)

	second, err := f.svc.VoidInvoice(context.Background(), invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceStatusVoid, second.Status)
}

func TestVoidInvoiceRefusesWithPayments(t *testing.T) {
	f := newInvoiceFixture(t)
	invoice := f.createInvoice(t, 100000)

	_, err := f.svc.RecordPayment(context.Background(), &RecordPaymentInput{
		InvoiceID:  invoice.ID,
		Amount:     5000,
		RecordedBy: uuid.New(),
	})
	require.NoError(t, err)

	_, err = f.svc.VoidInvoice(context.Background(), invoice.ID)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeFailedPrecondition, apperror.GetAppError(err).Code)
}
