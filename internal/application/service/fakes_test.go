package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/fretline/buildtrack-api/internal/domain/entity"
	"github.com/fretline/buildtrack-api/internal/domain/enum"
	"github.com/fretline/buildtrack-api/internal/domain/repository"
	"github.com/fretline/buildtrack-api/pkg/mailer"
	"github.com/fretline/buildtrack-api/pkg/pagination"
	"github.com/google/uuid"
)

// In-memory repository fakes shared by the service tests. They implement just
// enough of each interface's contract: nil,nil on not-found, and the bundled
// transactional writes applied atomically in memory.

func newTestComposer(t *testing.T) *mailer.Composer {
	t.Helper()
	composer, err := mailer.NewComposer(mailer.Branding{
		AppName:   "BuildTrack",
		PortalURL: "https://portal.test",
	})
	if err != nil {
		t.Fatalf("NewComposer: %v", err)
	}
	return composer
}

type fakeRunRepo struct {
	runs           map[uuid.UUID]*entity.Run
	stages         map[uuid.UUID]*entity.RunStage
	updates        []entity.RunUpdate
	updateEmails   []entity.EmailOutbox
	guitarsOnStage map[uuid.UUID]int64
}

func newFakeRunRepo() *fakeRunRepo {
	return &fakeRunRepo{
		runs:           make(map[uuid.UUID]*entity.Run),
		stages:         make(map[uuid.UUID]*entity.RunStage),
		guitarsOnStage: make(map[uuid.UUID]int64),
	}
}

func (r *fakeRunRepo) Create(ctx context.Context, run *entity.Run) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	copied := *run
	r.runs[run.ID] = &copied
	return nil
}

func (r *fakeRunRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Run, error) {
	run, ok := r.runs[id]
	if !ok {
		return nil, nil
	}
	copied := *run
	return &copied, nil
}

func (r *fakeRunRepo) GetWithStages(ctx context.Context, id uuid.UUID) (*entity.Run, error) {
	run, err := r.GetByID(ctx, id)
	if run == nil || err != nil {
		return run, err
	}
	stages, _ := r.ListStages(ctx, id)
	run.Stages = stages
	return run, nil
}

func (r *fakeRunRepo) Update(ctx context.Context, run *entity.Run) error {
	copied := *run
	r.runs[run.ID] = &copied
	return nil
}

func (r *fakeRunRepo) Archive(ctx context.Context, id uuid.UUID) error {
	if run, ok := r.runs[id]; ok {
		run.Archived = true
	}
	return nil
}

func (r *fakeRunRepo) List(ctx context.Context, params *repository.RunFilterParams) ([]entity.Run, int64, error) {
	var runs []entity.Run
	for _, run := range r.runs {
		runs = append(runs, *run)
	}
	return runs, int64(len(runs)), nil
}

func (r *fakeRunRepo) CreateStage(ctx context.Context, stage *entity.RunStage) error {
	if stage.ID == uuid.Nil {
		stage.ID = uuid.New()
	}
	copied := *stage
	r.stages[stage.ID] = &copied
	return nil
}

func (r *fakeRunRepo) GetStage(ctx context.Context, id uuid.UUID) (*entity.RunStage, error) {
	stage, ok := r.stages[id]
	if !ok {
		return nil, nil
	}
	copied := *stage
	return &copied, nil
}

func (r *fakeRunRepo) UpdateStage(ctx context.Context, stage *entity.RunStage) error {
	copied := *stage
	r.stages[stage.ID] = &copied
	return nil
}

func (r *fakeRunRepo) DeleteStage(ctx context.Context, id uuid.UUID) error {
	stage, ok := r.stages[id]
	if !ok {
		return nil
	}
	runID := stage.RunID
	delete(r.stages, id)
	remaining, _ := r.ListStages(context.Background(), runID)
	for i := range remaining {
		r.stages[remaining[i].ID].Order = i
	}
	return nil
}

func (r *fakeRunRepo) ListStages(ctx context.Context, runID uuid.UUID) ([]entity.RunStage, error) {
	var stages []entity.RunStage
	for _, stage := range r.stages {
		if stage.RunID == runID {
			stages = append(stages, *stage)
		}
	}
	sort.Slice(stages, func(i, j int) bool { return stages[i].Order < stages[j].Order })
	return stages, nil
}

func (r *fakeRunRepo) ReorderStages(ctx context.Context, runID uuid.UUID, orderedIDs []uuid.UUID) error {
	for i, id := range orderedIDs {
		if stage, ok := r.stages[id]; ok {
			stage.Order = i
		}
	}
	return nil
}

func (r *fakeRunRepo) CountGuitarsOnStage(ctx context.Context, stageID uuid.UUID) (int64, error) {
	return r.guitarsOnStage[stageID], nil
}

func (r *fakeRunRepo) CreateUpdate(ctx context.Context, update *entity.RunUpdate, emails []entity.EmailOutbox) error {
	if update.ID == uuid.Nil {
		update.ID = uuid.New()
	}
	r.updates = append(r.updates, *update)
	r.updateEmails = append(r.updateEmails, emails...)
	return nil
}

func (r *fakeRunRepo) ListUpdates(ctx context.Context, runID uuid.UUID) ([]entity.RunUpdate, error) {
	var updates []entity.RunUpdate
	for _, u := range r.updates {
		if u.RunID == runID {
			updates = append(updates, u)
		}
	}
	return updates, nil
}

type fakeGuitarRepo struct {
	guitars     map[uuid.UUID]*entity.Guitar
	transitions []entity.StageTransition
	advances    []*repository.StageAdvance
}

func newFakeGuitarRepo() *fakeGuitarRepo {
	return &fakeGuitarRepo{guitars: make(map[uuid.UUID]*entity.Guitar)}
}

func (r *fakeGuitarRepo) Create(ctx context.Context, guitar *entity.Guitar, placement *entity.StageTransition) error {
	if guitar.ID == uuid.Nil {
		guitar.ID = uuid.New()
	}
	copied := *guitar
	r.guitars[guitar.ID] = &copied

	placement.GuitarID = guitar.ID
	if placement.ID == uuid.Nil {
		placement.ID = uuid.New()
	}
	r.transitions = append(r.transitions, *placement)
	return nil
}

func (r *fakeGuitarRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Guitar, error) {
	guitar, ok := r.guitars[id]
	if !ok {
		return nil, nil
	}
	copied := *guitar
	return &copied, nil
}

func (r *fakeGuitarRepo) GetWithDetails(ctx context.Context, id uuid.UUID) (*entity.Guitar, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeGuitarRepo) GetByOrderNumber(ctx context.Context, orderNumber string) (*entity.Guitar, error) {
	for _, guitar := range r.guitars {
		if guitar.OrderNumber == orderNumber {
			copied := *guitar
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeGuitarRepo) Update(ctx context.Context, guitar *entity.Guitar) error {
	copied := *guitar
	r.guitars[guitar.ID] = &copied
	return nil
}

func (r *fakeGuitarRepo) Archive(ctx context.Context, id uuid.UUID) error {
	if guitar, ok := r.guitars[id]; ok {
		guitar.Archived = true
	}
	return nil
}

func (r *fakeGuitarRepo) List(ctx context.Context, params *repository.GuitarFilterParams) ([]entity.Guitar, int64, error) {
	var guitars []entity.Guitar
	for _, guitar := range r.guitars {
		if params.RunID != nil && guitar.RunID != *params.RunID {
			continue
		}
		guitars = append(guitars, *guitar)
	}
	return guitars, int64(len(guitars)), nil
}

func (r *fakeGuitarRepo) ListWithCursor(ctx context.Context, params *repository.GuitarCursorFilterParams) ([]entity.Guitar, error) {
	guitars, _, err := r.List(ctx, &repository.GuitarFilterParams{RunID: params.RunID})
	return guitars, err
}

func (r *fakeGuitarRepo) ListByClient(ctx context.Context, clientID uuid.UUID) ([]entity.Guitar, error) {
	var guitars []entity.Guitar
	for _, guitar := range r.guitars {
		if guitar.ClientID != nil && *guitar.ClientID == clientID && !guitar.Archived {
			guitars = append(guitars, *guitar)
		}
	}
	return guitars, nil
}

func (r *fakeGuitarRepo) CountByRun(ctx context.Context, runID uuid.UUID) (int64, error) {
	var count int64
	for _, guitar := range r.guitars {
		if guitar.RunID == runID {
			count++
		}
	}
	return count, nil
}

func (r *fakeGuitarRepo) AdvanceStage(ctx context.Context, advance *repository.StageAdvance) error {
	r.advances = append(r.advances, advance)
	if guitar, ok := r.guitars[advance.Guitar.ID]; ok {
		guitar.StageID = advance.Transition.ToStageID
	}
	r.transitions = append(r.transitions, *advance.Transition)
	return nil
}

func (r *fakeGuitarRepo) ListTransitions(ctx context.Context, guitarID uuid.UUID) ([]entity.StageTransition, error) {
	var transitions []entity.StageTransition
	for _, t := range r.transitions {
		if t.GuitarID == guitarID {
			transitions = append(transitions, t)
		}
	}
	return transitions, nil
}

func (r *fakeGuitarRepo) SetCoverPhoto(ctx context.Context, id uuid.UUID, url *string) error {
	if guitar, ok := r.guitars[id]; ok {
		guitar.CoverPhotoURL = url
	}
	return nil
}

func (r *fakeGuitarRepo) AddPhotoCount(ctx context.Context, id uuid.UUID, delta int) error {
	if guitar, ok := r.guitars[id]; ok {
		guitar.PhotoCount += delta
	}
	return nil
}

type fakeClientRepo struct {
	clients     map[uuid.UUID]*entity.Client
	buildsInRun map[uuid.UUID][]entity.Client
}

func newFakeClientRepo() *fakeClientRepo {
	return &fakeClientRepo{
		clients:     make(map[uuid.UUID]*entity.Client),
		buildsInRun: make(map[uuid.UUID][]entity.Client),
	}
}

func (r *fakeClientRepo) Create(ctx context.Context, client *entity.Client) error {
	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}
	copied := *client
	r.clients[client.ID] = &copied
	return nil
}

func (r *fakeClientRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Client, error) {
	client, ok := r.clients[id]
	if !ok {
		return nil, nil
	}
	copied := *client
	return &copied, nil
}

func (r *fakeClientRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*entity.Client, error) {
	for _, client := range r.clients {
		if client.UserID != nil && *client.UserID == userID {
			copied := *client
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeClientRepo) GetByEmail(ctx context.Context, email string) (*entity.Client, error) {
	for _, client := range r.clients {
		if client.Email == email {
			copied := *client
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeClientRepo) Update(ctx context.Context, client *entity.Client) error {
	copied := *client
	r.clients[client.ID] = &copied
	return nil
}

func (r *fakeClientRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.clients, id)
	return nil
}

func (r *fakeClientRepo) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Client, int64, error) {
	var clients []entity.Client
	for _, client := range r.clients {
		clients = append(clients, *client)
	}
	return clients, int64(len(clients)), nil
}

func (r *fakeClientRepo) AssignRun(ctx context.Context, clientID, runID uuid.UUID) error {
	return nil
}

func (r *fakeClientRepo) RemoveRun(ctx context.Context, clientID, runID uuid.UUID) error {
	return nil
}

func (r *fakeClientRepo) ListWithBuildInRun(ctx context.Context, runID uuid.UUID) ([]entity.Client, error) {
	return r.buildsInRun[runID], nil
}

type fakeSettingsRepo struct {
	settings *entity.AppSettings
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{
		settings: &entity.AppSettings{
			ID:                uuid.New(),
			CompanyName:       "Fretline Guitars",
			StageChangeEmails: true,
			RunUpdateEmails:   true,
			InvoiceEmails:     true,
			ClientOnboarding:  true,
		},
	}
}

func (r *fakeSettingsRepo) Get(ctx context.Context) (*entity.AppSettings, error) {
	copied := *r.settings
	return &copied, nil
}

func (r *fakeSettingsRepo) Update(ctx context.Context, settings *entity.AppSettings) error {
	copied := *settings
	r.settings = &copied
	return nil
}

type fakeFactoryRepo struct {
	factories map[uuid.UUID]*entity.Factory
}

func newFakeFactoryRepo() *fakeFactoryRepo {
	return &fakeFactoryRepo{factories: make(map[uuid.UUID]*entity.Factory)}
}

func (r *fakeFactoryRepo) Create(ctx context.Context, factory *entity.Factory) error {
	if factory.ID == uuid.Nil {
		factory.ID = uuid.New()
	}
	copied := *factory
	r.factories[factory.ID] = &copied
	return nil
}

func (r *fakeFactoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Factory, error) {
	factory, ok := r.factories[id]
	if !ok {
		return nil, nil
	}
	copied := *factory
	return &copied, nil
}

func (r *fakeFactoryRepo) Update(ctx context.Context, factory *entity.Factory) error {
	copied := *factory
	r.factories[factory.ID] = &copied
	return nil
}

func (r *fakeFactoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.factories, id)
	return nil
}

func (r *fakeFactoryRepo) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Factory, int64, error) {
	var factories []entity.Factory
	for _, factory := range r.factories {
		factories = append(factories, *factory)
	}
	return factories, int64(len(factories)), nil
}

type fakeInvoiceRepo struct {
	invoices      map[uuid.UUID]*entity.Invoice
	createdEmails []entity.EmailOutbox
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{invoices: make(map[uuid.UUID]*entity.Invoice)}
}

func (r *fakeInvoiceRepo) Create(ctx context.Context, invoice *entity.Invoice, emails []entity.EmailOutbox) error {
	if invoice.ID == uuid.Nil {
		invoice.ID = uuid.New()
	}
	copied := *invoice
	r.invoices[invoice.ID] = &copied
	r.createdEmails = append(r.createdEmails, emails...)
	return nil
}

func (r *fakeInvoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	invoice, ok := r.invoices[id]
	if !ok {
		return nil, nil
	}
	copied := *invoice
	return &copied, nil
}

func (r *fakeInvoiceRepo) GetWithPayments(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeInvoiceRepo) Update(ctx context.Context, invoice *entity.Invoice) error {
	copied := *invoice
	r.invoices[invoice.ID] = &copied
	return nil
}

func (r *fakeInvoiceRepo) List(ctx context.Context, params *repository.InvoiceFilterParams) ([]entity.Invoice, int64, error) {
	var invoices []entity.Invoice
	for _, invoice := range r.invoices {
		if params.ClientID != nil && invoice.ClientID != *params.ClientID {
			continue
		}
		if params.Status != nil && invoice.Status != *params.Status {
			continue
		}
		invoices = append(invoices, *invoice)
	}
	return invoices, int64(len(invoices)), nil
}

func (r *fakeInvoiceRepo) CountOpen(ctx context.Context) (int64, error) {
	var count int64
	for _, invoice := range r.invoices {
		if invoice.Status == enum.InvoiceStatusOpen || invoice.Status == enum.InvoiceStatusPartial {
			count++
		}
	}
	return count, nil
}

func (r *fakeInvoiceRepo) AddPayment(ctx context.Context, payment *entity.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	if invoice, ok := r.invoices[payment.InvoiceID]; ok {
		invoice.Payments = append(invoice.Payments, *payment)
	}
	return nil
}

type fakeOutboxRepo struct {
	rows []entity.EmailOutbox
}

func (r *fakeOutboxRepo) Enqueue(ctx context.Context, rows []entity.EmailOutbox) error {
	for i := range rows {
		rows[i].EnsureID()
	}
	r.rows = append(r.rows, rows...)
	return nil
}

func (r *fakeOutboxRepo) ClaimPending(ctx context.Context, workerID string, limit int, staleBefore time.Time) ([]entity.EmailOutbox, error) {
	var claimed []entity.EmailOutbox
	for i := range r.rows {
		if len(claimed) == limit {
			break
		}
		if r.rows[i].Status == enum.OutboxStatusPending && r.rows[i].LockedAt == nil {
			now := time.Now()
			r.rows[i].LockedAt = &now
			r.rows[i].LockedBy = &workerID
			claimed = append(claimed, r.rows[i])
		}
	}
	return claimed, nil
}

func (r *fakeOutboxRepo) MarkSent(ctx context.Context, id uuid.UUID) error {
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

func (r *fakeOutboxRepo) MarkFailed(ctx context.Context, id uuid.UUID, lastError string, final bool) error {
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

func (r *fakeOutboxRepo) ReleaseStale(ctx context.Context, olderThan time.Time) (int64, error) {
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

func (r *fakeOutboxRepo) List(ctx context.Context, params *pagination.PaginationParams, status *enum.OutboxStatus) ([]entity.EmailOutbox, int64, error) {
	return r.rows, int64(len(r.rows)), nil
}
