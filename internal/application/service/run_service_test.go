package service

import (
	"context"
	"testing"

	"github.com/fretline/buildtrack-api/internal/domain/entity"
	"github.com/fretline/buildtrack-api/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRunService(t *testing.T) (*RunService, *fakeRunRepo, *fakeClientRepo, *fakeSettingsRepo) {
	runRepo := newFakeRunRepo()
	clientRepo := newFakeClientRepo()
	settings := newFakeSettingsRepo()
	svc := NewRunService(runRepo, newFakeFactoryRepo(), clientRepo, settings, newTestComposer(t))
	return svc, runRepo, clientRepo, settings
}

func TestCreateRunOrdersStagesDensely(t *testing.T) {
	svc, _, _, _ := newRunService(t)

	run, err := svc.CreateRun(context.Background(), &CreateRunInput{
		Name: "Winter Batch",
		Stages: []StageInput{
			{Label: "Body Blank"},
			{Label: "Neck Carve"},
			{Label: "Finish"},
		},
	})
	require.NoError(t, err)
	require.Len(t, run.Stages, 3)

	for i, stage := range run.Stages {
		assert.Equal(t, i, stage.Order)
	}
	assert.Equal(t, "Body Blank", run.Stages[0].Label)
	assert.True(t, run.IsActive)
}

func TestCreateRunRequiresAtLeastOneStage(t *testing.T) {
	svc, _, _, _ := newRunService(t)

	_, err := svc.CreateRun(context.Background(), &CreateRunInput{Name: "No Stages"})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeInvalidArgument, apperror.GetAppError(err).Code)
}

func TestCreateRunRejectsUnknownFactory(t *testing.T) {
	svc, _, _, _ := newRunService(t)
	factoryID := uuid.New()

	_, err := svc.CreateRun(context.Background(), &CreateRunInput{
		Name:      "Winter Batch",
		FactoryID: &factoryID,
		Stages:    []StageInput{{Label: "Body Blank"}},
	})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeNotFound, apperror.GetAppError(err).Code)
}

func TestAddStageAppendsToEnd(t *testing.T) {
	svc, _, _, _ := newRunService(t)
	run, err := svc.CreateRun(context.Background(), &CreateRunInput{
		Name:   "Winter Batch",
		Stages: []StageInput{{Label: "Body Blank"}, {Label: "Neck Carve"}},
	})
	require.NoError(t, err)

	stage, err := svc.AddStage(context.Background(), run.ID, &StageInput{Label: "Final Setup"})
	require.NoError(t, err)
	assert.Equal(t, 2, stage.Order)
}

func TestReorderStagesRejectsBadPermutations(t *testing.T) {
	svc, _, _, _ := newRunService(t)
	run, err := svc.CreateRun(context.Background(), &CreateRunInput{
		Name:   "Winter Batch",
		Stages: []StageInput{{Label: "A"}, {Label: "B"}, {Label: "C"}},
	})
	require.NoError(t, err)

	ids := []uuid.UUID{run.Stages[0].ID, run.Stages[1].ID, run.Stages[2].ID}

	cases := map[string][]uuid.UUID{
		"too short":  {ids[0], ids[1]},
		"duplicate":  {ids[0], ids[1], ids[1]},
		"unknown id": {ids[0], ids[1], uuid.New()},
	}
	for name, ordered := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ReorderStages(context.Background(), run.ID, ordered)
			require.Error(t, err)
			assert.Equal(t, apperror.CodeInvalidArgument, apperror.GetAppError(err).Code)
		})
	}
}

func TestReorderStagesRewritesOrder(t *testing.T) {
	svc, _, _, _ := newRunService(t)
	run, err := svc.CreateRun(context.Background(), &CreateRunInput{
		Name:   "Winter Batch",
		Stages: []StageInput{{Label: "A"}, {Label: "B"}, {Label: "C"}},
	})
	require.NoError(t, err)

	reordered, err := svc.ReorderStages(context.Background(), run.ID, []uuid.UUID{
		run.Stages[2].ID, run.Stages[0].ID, run.Stages[1].ID,
	})
	require.NoError(t, err)
	require.Len(t, reordered, 3)
	assert.Equal(t, "C", reordered[0].Label)
	assert.Equal(t, "A", reordered[1].Label)
	assert.Equal(t, "B", reordered[2].Label)
}

func TestDeleteStageRefusesOccupiedStage(t *testing.T) {
	svc, runRepo, _, _ := newRunService(t)
	run, err := svc.CreateRun(context.Background(), &CreateRunInput{
		Name:   "Winter Batch",
		Stages: []StageInput{{Label: "A"}, {Label: "B"}},
	})
	require.NoError(t, err)

	runRepo.guitarsOnStage[run.Stages[0].ID] = 2

	err = svc.DeleteStage(context.Background(), run.Stages[0].ID)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeFailedPrecondition, apperror.GetAppError(err).Code)

	// The unoccupied stage deletes fine
	require.NoError(t, svc.DeleteStage(context.Background(), run.Stages[1].ID))
}

func TestUpdateStageClearsInvoiceSchedule(t *testing.T) {
	svc, _, _, _ := newRunService(t)
	amount := int64(50000)
	memo := "Deposit"
	run, err := svc.CreateRun(context.Background(), &CreateRunInput{
		Name:   "Winter Batch",
		Stages: []StageInput{{Label: "A", InvoiceAmount: &amount, InvoiceMemo: &memo}},
	})
	require.NoError(t, err)

	stage, err := svc.UpdateStage(context.Background(), &UpdateStageInput{
		ID:           run.Stages[0].ID,
		ClearInvoice: true,
	})
	require.NoError(t, err)
	assert.Nil(t, stage.InvoiceAmount)
	assert.Nil(t, stage.InvoiceMemo)
}

func TestPostUpdateFansOutToRunClients(t *testing.T) {
	svc, runRepo, clientRepo, _ := newRunService(t)
	run, err := svc.CreateRun(context.Background(), &CreateRunInput{
		Name:   "Winter Batch",
		Stages: []StageInput{{Label: "A"}},
	})
	require.NoError(t, err)

	clientRepo.buildsInRun[run.ID] = []entity.Client{
		{ID: uuid.New(), Name: "One", Email: "one@example.com"},
		{ID: uuid.New(), Name: "Two", Email: "two@example.com"},
		{ID: uuid.New(), Name: "No Email"},
	}

	update, err := svc.PostUpdate(context.Background(), &PostUpdateInput{
		RunID:    run.ID,
		AuthorID: uuid.New(),
		Subject:  "Necks are carved",
		Body:     "All necks came off the CNC this week.",
	})
	require.NoError(t, err)

	// Clients without an email are skipped
	assert.Equal(t, 2, update.Recipients)
	require.Len(t, runRepo.updateEmails, 2)
	assert.Equal(t, entity.EmailKindRunUpdate, runRepo.updateEmails[0].Kind)
	assert.Contains(t, runRepo.updateEmails[0].Subject, "Winter Batch")
}

func TestPostUpdateHonorsNotificationToggle(t *testing.T) {
	svc, runRepo, clientRepo, settings := newRunService(t)
	settings.settings.RunUpdateEmails = false

	run, err := svc.CreateRun(context.Background(), &CreateRunInput{
		Name:   "Winter Batch",
		Stages: []StageInput{{Label: "A"}},
	})
	require.NoError(t, err)

	clientRepo.buildsInRun[run.ID] = []entity.Client{
		{ID: uuid.New(), Name: "One", Email: "one@example.com"},
	}

	update, err := svc.PostUpdate(context.Background(), &PostUpdateInput{
		RunID:    run.ID,
		AuthorID: uuid.New(),
		Subject:  "Quiet update",
		Body:     "Stored but not emailed.",
	})
	require.NoError(t, err)

	assert.Equal(t, 0, update.Recipients)
	assert.Empty(t, runRepo.updateEmails)
	require.Len(t, runRepo.updates, 1)
}
