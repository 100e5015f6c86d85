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

type guitarFixture struct {
	svc        *GuitarService
	guitarRepo *fakeGuitarRepo
	runRepo    *fakeRunRepo
	clientRepo *fakeClientRepo
	settings   *fakeSettingsRepo
	run        *entity.Run
	stages     []entity.RunStage
}

// newGuitarFixture builds a three-stage run: an open first stage, an
// invoicing second stage, and an internal-only third stage.
func newGuitarFixture(t *testing.T) *guitarFixture {
	t.Helper()

	runRepo := newFakeRunRepo()
	run := &entity.Run{Name: "Autumn Batch", IsActive: true}
	require.NoError(t, runRepo.Create(context.Background(), run))

	deposit := int64(150000)
	memo := "Build deposit"
	stages := []entity.RunStage{
		{RunID: run.ID, Label: "Body Blank", Order: 0},
		{RunID: run.ID, Label: "Neck Carve", Order: 1, InvoiceAmount: &deposit, InvoiceMemo: &memo},
		{RunID: run.ID, Label: "QC Hold", Order: 2, InternalOnly: true},
	}
	for i := range stages {
		require.NoError(t, runRepo.CreateStage(context.Background(), &stages[i]))
	}

	guitarRepo := newFakeGuitarRepo()
	clientRepo := newFakeClientRepo()
	settings := newFakeSettingsRepo()

	return &guitarFixture{
		svc:        NewGuitarService(guitarRepo, runRepo, clientRepo, settings, newTestComposer(t)),
		guitarRepo: guitarRepo,
		runRepo:    runRepo,
		clientRepo: clientRepo,
		settings:   settings,
		run:        run,
		stages:     stages,
	}
}

func (f *guitarFixture) createGuitar(t *testing.T, clientID *uuid.UUID) *entity.Guitar {
	t.Helper()
	guitar, err := f.svc.CreateGuitar(context.Background(), &CreateGuitarInput{
		RunID:    f.run.ID,
		ClientID: clientID,
		Model:    "Nomad ST",
		Finish:   "Shell Pink",
		ActorID:  uuid.New(),
	})
	require.NoError(t, err)
	return guitar
}

func (f *guitarFixture) addClient(t *testing.T, phone string) *entity.Client {
	t.Helper()
	client := &entity.Client{Name: "June Park", Email: "june@example.com"}
	if phone != "" {
		client.Phone = &phone
	}
	require.NoError(t, f.clientRepo.Create(context.Background(), client))
	return client
}

func TestCreateGuitarStartsOnFirstStage(t *testing.T) {
	f := newGuitarFixture(t)

	guitar := f.createGuitar(t, nil)

	assert.Equal(t, f.stages[0].ID, guitar.StageID)
	assert.NotEmpty(t, guitar.OrderNumber)

	transitions, err := f.guitarRepo.ListTransitions(context.Background(), guitar.ID)
	require.NoError(t, err)
	require.Len(t, transitions, 1)
	assert.Nil(t, transitions[0].FromStageID)
	assert.Equal(t, f.stages[0].ID, transitions[0].ToStageID)
}

func TestCreateGuitarSnapshotsClientDetails(t *testing.T) {
	f := newGuitarFixture(t)
	client := f.addClient(t, "")

	guitar := f.createGuitar(t, &client.ID)

	assert.Equal(t, "June Park", guitar.CustomerName)
	assert.Equal(t, "june@example.com", guitar.CustomerEmail)
}

func TestCreateGuitarRejectsDisallowedSpecs(t *testing.T) {
	f := newGuitarFixture(t)
	f.run.SpecConstraints = entity.SpecConstraints{"body_wood": {"Alder", "Ash"}}
	require.NoError(t, f.runRepo.Update(context.Background(), f.run))

	_, err := f.svc.CreateGuitar(context.Background(), &CreateGuitarInput{
		RunID:   f.run.ID,
		Model:   "Nomad ST",
		ActorID: uuid.New(),
		Specs:   entity.SpecMap{"body_wood": "Basswood", "pickups": "HSS"},
	})
	require.Error(t, err)

	appErr := apperror.GetAppError(err)
	assert.Equal(t, apperror.CodeInvalidArgument, appErr.Code)
	require.Len(t, appErr.Errors, 1)
	assert.Equal(t, "body_wood", appErr.Errors[0].Field)
}

func TestCreateGuitarRequiresStages(t *testing.T) {
	f := newGuitarFixture(t)
	empty := &entity.Run{Name: "Empty Run", IsActive: true}
	require.NoError(t, f.runRepo.Create(context.Background(), empty))

	_, err := f.svc.CreateGuitar(context.Background(), &CreateGuitarInput{
		RunID:   empty.ID,
		Model:   "Nomad ST",
		ActorID: uuid.New(),
	})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeFailedPrecondition, apperror.GetAppError(err).Code)
}

func TestAdvanceStageRejectsForeignStage(t *testing.T) {
	f := newGuitarFixture(t)
	guitar := f.createGuitar(t, nil)

	_, err := f.svc.AdvanceStage(context.Background(), &AdvanceStageInput{
		GuitarID: guitar.ID,
		StageID:  uuid.New(),
		ActorID:  uuid.New(),
	})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeInvalidArgument, apperror.GetAppError(err).Code)
}

func TestAdvanceStageRejectsSameStage(t *testing.T) {
	f := newGuitarFixture(t)
	guitar := f.createGuitar(t, nil)

	_, err := f.svc.AdvanceStage(context.Background(), &AdvanceStageInput{
		GuitarID: guitar.ID,
		StageID:  f.stages[0].ID,
		ActorID:  uuid.New(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already on that stage")
}

func TestAdvanceStageEnforcesRequiredNote(t *testing.T) {
	f := newGuitarFixture(t)
	f.stages[2].RequiresNote = true
	require.NoError(t, f.runRepo.UpdateStage(context.Background(), &f.stages[2]))
	guitar := f.createGuitar(t, nil)

	_, err := f.svc.AdvanceStage(context.Background(), &AdvanceStageInput{
		GuitarID: guitar.ID,
		StageID:  f.stages[2].ID,
		ActorID:  uuid.New(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires a note")

	// Nothing was written
	assert.Empty(t, f.guitarRepo.advances)
}

func TestAdvanceStageEnforcesRequiredPhoto(t *testing.T) {
	f := newGuitarFixture(t)
	f.stages[2].RequiresPhoto = true
	require.NoError(t, f.runRepo.UpdateStage(context.Background(), &f.stages[2]))
	guitar := f.createGuitar(t, nil)

	_, err := f.svc.AdvanceStage(context.Background(), &AdvanceStageInput{
		GuitarID:    guitar.ID,
		StageID:     f.stages[2].ID,
		ActorID:     uuid.New(),
		NoteMessage: "looks good",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires a photo")
}

func TestAdvanceStageBundlesNoteAndTransition(t *testing.T) {
	f := newGuitarFixture(t)
	guitar := f.createGuitar(t, nil)
	fromStageID := guitar.StageID

	advanced, err := f.svc.AdvanceStage(context.Background(), &AdvanceStageInput{
		GuitarID:    guitar.ID,
		StageID:     f.stages[2].ID,
		ActorID:     uuid.New(),
		ActorName:   "Sam",
		NoteMessage: "fretwork checked",
		NoteType:    enum.NoteTypeStatusChange,
		NoteVisible: true,
	})
	require.NoError(t, err)
	assert.Equal(t, f.stages[2].ID, advanced.StageID)

	require.Len(t, f.guitarRepo.advances, 1)
	advance := f.guitarRepo.advances[0]
	require.NotNil(t, advance.Transition.FromStageID)
	assert.Equal(t, fromStageID, *advance.Transition.FromStageID)
	assert.Equal(t, f.stages[2].ID, advance.Transition.ToStageID)

	require.NotNil(t, advance.Note)
	assert.Equal(t, "fretwork checked", advance.Note.Message)
	// The note snapshots the stage the guitar was on when it was written
	assert.Equal(t, fromStageID, advance.Note.StageID)
	assert.True(t, advance.Note.VisibleToClient)
}

func TestAdvanceStageRaisesScheduledInvoice(t *testing.T) {
	f := newGuitarFixture(t)
	client := f.addClient(t, "")
	guitar := f.createGuitar(t, &client.ID)

	_, err := f.svc.AdvanceStage(context.Background(), &AdvanceStageInput{
		GuitarID: guitar.ID,
		StageID:  f.stages[1].ID,
		ActorID:  uuid.New(),
	})
	require.NoError(t, err)

	require.Len(t, f.guitarRepo.advances, 1)
	advance := f.guitarRepo.advances[0]
	require.NotNil(t, advance.Invoice)
	assert.Equal(t, int64(150000), advance.Invoice.Amount)
	assert.Equal(t, enum.InvoiceStatusOpen, advance.Invoice.Status)
	assert.Equal(t, "Build deposit", advance.Invoice.Memo)
	require.NotNil(t, advance.Invoice.TriggerStageID)
	assert.Equal(t, f.stages[1].ID, *advance.Invoice.TriggerStageID)

	// Invoice email and stage-change email ride the same transaction
	require.Len(t, advance.Emails, 2)
	assert.Equal(t, entity.EmailKindInvoice, advance.Emails[0].Kind)
	assert.Equal(t, entity.EmailKindStageChange, advance.Emails[1].Kind)
}

func TestAdvanceStageSkipsInvoiceWithoutClient(t *testing.T) {
	f := newGuitarFixture(t)
	guitar := f.createGuitar(t, nil)

	_, err := f.svc.AdvanceStage(context.Background(), &AdvanceStageInput{
		GuitarID: guitar.ID,
		StageID:  f.stages[1].ID,
		ActorID:  uuid.New(),
	})
	require.NoError(t, err)

	advance := f.guitarRepo.advances[0]
	assert.Nil(t, advance.Invoice)
	assert.Empty(t, advance.Emails)
}

func TestAdvanceStageInternalOnlySendsNoStageEmail(t *testing.T) {
	f := newGuitarFixture(t)
	client := f.addClient(t, "")
	guitar := f.createGuitar(t, &client.ID)

	_, err := f.svc.AdvanceStage(context.Background(), &AdvanceStageInput{
		GuitarID: guitar.ID,
		StageID:  f.stages[2].ID,
		ActorID:  uuid.New(),
	})
	require.NoError(t, err)

	advance := f.guitarRepo.advances[0]
	assert.Empty(t, advance.Emails)
}

func TestAdvanceStageHonorsNotificationToggle(t *testing.T) {
	f := newGuitarFixture(t)
	f.settings.settings.StageChangeEmails = false
	client := f.addClient(t, "")
	guitar := f.createGuitar(t, &client.ID)

	_, err := f.svc.AdvanceStage(context.Background(), &AdvanceStageInput{
		GuitarID: guitar.ID,
		StageID:  f.stages[1].ID,
		ActorID:  uuid.New(),
	})
	require.NoError(t, err)

	// The invoice email still goes out; the stage-change email is suppressed
	advance := f.guitarRepo.advances[0]
	require.Len(t, advance.Emails, 1)
	assert.Equal(t, entity.EmailKindInvoice, advance.Emails[0].Kind)
}

func TestAdvanceStageAttachesSMSWhenEnabled(t *testing.T) {
	f := newGuitarFixture(t)
	f.settings.settings.SMSNotifications = true
	client := f.addClient(t, "+61400000000")
	guitar := f.createGuitar(t, &client.ID)

	_, err := f.svc.AdvanceStage(context.Background(), &AdvanceStageInput{
		GuitarID: guitar.ID,
		StageID:  f.stages[1].ID,
		ActorID:  uuid.New(),
	})
	require.NoError(t, err)

	advance := f.guitarRepo.advances[0]
	require.Len(t, advance.Emails, 2)
	stageEmail := advance.Emails[1]
	assert.True(t, stageEmail.WantsSMS())
	assert.Equal(t, "+61400000000", stageEmail.SMSTo)
	assert.Contains(t, stageEmail.SMSBody, "Neck Carve")
}

func TestAdvanceStageRejectsArchivedGuitar(t *testing.T) {
	f := newGuitarFixture(t)
	guitar := f.createGuitar(t, nil)
	require.NoError(t, f.guitarRepo.Archive(context.Background(), guitar.ID))

	_, err := f.svc.AdvanceStage(context.Background(), &AdvanceStageInput{
		GuitarID: guitar.ID,
		StageID:  f.stages[1].ID,
		ActorID:  uuid.New(),
	})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeFailedPrecondition, apperror.GetAppError(err).Code)
}

func TestUpdateGuitarRevalidatesSpecs(t *testing.T) {
	f := newGuitarFixture(t)
	f.run.SpecConstraints = entity.SpecConstraints{"finish": {"Sunburst"}}
	require.NoError(t, f.runRepo.Update(context.Background(), f.run))
	guitar := f.createGuitar(t, nil)

	_, err := f.svc.UpdateGuitar(context.Background(), &UpdateGuitarInput{
		ID:    guitar.ID,
		Specs: entity.SpecMap{"finish": "Shell Pink"},
	})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeInvalidArgument, apperror.GetAppError(err).Code)
}

func TestGetClientBuildFiltersNotes(t *testing.T) {
	f := newGuitarFixture(t)
	client := f.addClient(t, "")
	guitar := f.createGuitar(t, &client.ID)

	stored := f.guitarRepo.guitars[guitar.ID]
	stored.Notes = []entity.Note{
		{GuitarID: guitar.ID, Message: "Neck pocket routed", VisibleToClient: true},
		{GuitarID: guitar.ID, Message: "Waiting on hardware PO", VisibleToClient: false},
	}

	build, err := f.svc.GetClientBuild(context.Background(), client.ID, guitar.ID)
	require.NoError(t, err)
	require.Len(t, build.Notes, 1)
	assert.Equal(t, "Neck pocket routed", build.Notes[0].Message)
}

func TestGetClientBuildHidesForeignBuilds(t *testing.T) {
	f := newGuitarFixture(t)
	client := f.addClient(t, "")
	guitar := f.createGuitar(t, &client.ID)

	_, err := f.svc.GetClientBuild(context.Background(), uuid.New(), guitar.ID)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeNotFound, apperror.GetAppError(err).Code)
}
