package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/tend/apperr"
	"github.com/harperreed/tend/models"
)

func buildOne(t *testing.T, f *fixture) *models.Task {
	t.Helper()
	task, err := f.svc.BuildTask(context.Background(), BuildTaskInput{
		UserID: f.userID, PersonID: f.person.ID, Trigger: models.TriggerFollowUp,
	}, now)
	require.NoError(t, err)
	return task
}

func TestGetTask(t *testing.T) {
	f := setup(t, nil)
	task := buildOne(t, f)

	view, err := f.svc.GetTask(context.Background(), f.userID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, view.ID)
	assert.Equal(t, PersonRef{ID: f.person.ID, FirstName: "Grace", LastName: "Hopper"}, view.Person)
	assert.Equal(t, models.TaskStatusOpen, view.Status)
	assert.Equal(t, models.ActionAddNote, view.SuggestedActionType)
	assert.Nil(t, view.CompletedAt)

	_, err = f.svc.GetTask(context.Background(), f.userID, uuid.New())
	assert.Equal(t, apperr.CodeTaskNotFound, apperr.CodeOf(err))

	_, err = f.svc.GetTask(context.Background(), uuid.New(), task.ID)
	assert.True(t, apperr.IsNotFound(err))
}

func TestTransitions(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()
	task := buildOne(t, f)

	until := now.AddDate(0, 0, 7)
	snoozed, err := f.svc.Snooze(ctx, f.userID, task.ID, until, now)
	require.NoError(t, err)
	assert.Equal(t, until, snoozed.EndAt)

	view, err := f.svc.GetTask(ctx, f.userID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusSnoozed, view.Status)
	assert.True(t, view.EndAt.Equal(until))

	_, err = f.svc.Snooze(ctx, f.userID, task.ID, now.Add(-time.Hour), now)
	assert.Equal(t, apperr.CodeInvalidEndDate, apperr.CodeOf(err))

	_, err = f.svc.Complete(ctx, f.userID, task.ID, now.Add(time.Hour))
	require.NoError(t, err)

	_, err = f.svc.Skip(ctx, f.userID, task.ID, now.Add(2*time.Hour))
	assert.Equal(t, apperr.CodeInvalidInput, apperr.CodeOf(err))

	flagged, err := f.svc.FlagBad(ctx, f.userID, task.ID, now.Add(3*time.Hour))
	require.NoError(t, err)
	assert.True(t, flagged.BadSuggestion)
	assert.Equal(t, models.TaskStatusCompleted, flagged.Status())

	open, err := f.svc.ListOpen(ctx, f.userID, now)
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestFlagBadSkipsOpenTask(t *testing.T) {
	f := setup(t, nil)
	task := buildOne(t, f)

	flagged, err := f.svc.FlagBad(context.Background(), f.userID, task.ID, now)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusSkipped, flagged.Status())

	_, err = f.svc.Complete(context.Background(), f.userID, uuid.New(), now)
	assert.Equal(t, apperr.CodeTaskNotFound, apperr.CodeOf(err))
}
