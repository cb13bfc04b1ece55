package handlers

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/tend/config"
	"github.com/harperreed/tend/followup"
	"github.com/harperreed/tend/llm/llmtest"
	"github.com/harperreed/tend/plan"
	"github.com/harperreed/tend/profile"
	"github.com/harperreed/tend/tasks"
)

type stack struct {
	db       *sql.DB
	gen      *llmtest.Fake
	userID   string
	personID string
	contacts *ContactHandlers
	tasks    *TaskHandlers
	plans    *PlanHandlers
	scores   *FollowUpHandlers
	res      *ResourceHandlers
	prompts  *PromptHandlers
}

func uuidOf(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	require.NoError(t, err)
	return id
}

func newStack(t *testing.T) *stack {
	t.Helper()
	database := setupTestDB(t)
	gen := llmtest.New().
		Reply(tasks.RequestTaskContext, `{"context": "It has been a month", "callToAction": "Send a quick hello", "actionType": "send-message"}`).
		Reply(tasks.RequestSendMessage, llmtest.MessagesJSON).
		Reply(tasks.RequestAddNote, llmtest.NotesJSON).
		Reply(followup.RequestScore, `{"score": 0.42, "reason": "Due for a check-in"}`)

	prompts := config.DefaultPrompts()
	log := zerolog.Nop()
	taskSvc := tasks.NewService(database, gen, tasks.Options{Prompts: prompts, ProfileInteractions: 5}, log)
	planSvc := plan.NewService(database, gen, taskSvc, plan.Options{Prompt: prompts.ActionPlan}, log)
	scoreSvc := followup.NewService(database, gen, followup.Options{Prompt: prompts.FollowUpScore}, log)
	profiles := profile.NewBuilder(database)

	s := &stack{
		db:       database,
		gen:      gen,
		userID:   seedUser(t, database),
		contacts: NewContactHandlers(database, fixedClock),
		tasks:    NewTaskHandlers(taskSvc, fixedClock),
		plans:    NewPlanHandlers(planSvc, fixedClock),
		scores:   NewFollowUpHandlers(scoreSvc, fixedClock),
		res:      NewResourceHandlers(planSvc, profiles, fixedClock),
		prompts:  NewPromptHandlers(planSvc, profiles, fixedClock),
	}
	_, person, err := s.contacts.AddContact(context.Background(), nil, AddContactInput{UserID: s.userID, FirstName: "Grace", LastName: "Hopper"})
	require.NoError(t, err)
	s.personID = person.ID
	return s
}

func TestBuildAndUpdateTask(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	_, built, err := s.tasks.BuildTask(ctx, nil, BuildTaskInput{UserID: s.userID, PersonID: s.personID, EndAt: "2026-03-20"})
	require.NoError(t, err)
	assert.Equal(t, "manual", built.Trigger)
	assert.Equal(t, "send-message", built.SuggestedActionType)
	assert.Equal(t, "2026-03-20T23:59:59Z", built.EndAt)
	assert.Equal(t, "Grace", built.Person.FirstName)
	assert.Equal(t, "open", built.Status)

	_, got, err := s.tasks.GetTask(ctx, nil, GetTaskInput{UserID: s.userID, TaskID: built.ID})
	require.NoError(t, err)
	assert.Equal(t, built.ID, got.ID)

	_, snoozed, err := s.tasks.UpdateTask(ctx, nil, UpdateTaskInput{UserID: s.userID, TaskID: built.ID, Action: "snooze", Until: "2026-03-25"})
	require.NoError(t, err)
	assert.Equal(t, "snoozed", snoozed.Status)
	assert.NotNil(t, snoozed.SnoozedAt)

	_, done, err := s.tasks.UpdateTask(ctx, nil, UpdateTaskInput{UserID: s.userID, TaskID: built.ID, Action: "complete"})
	require.NoError(t, err)
	assert.Equal(t, "completed", done.Status)

	_, _, err = s.tasks.UpdateTask(ctx, nil, UpdateTaskInput{UserID: s.userID, TaskID: built.ID, Action: "skip"})
	assert.ErrorContains(t, err, "INVALID_INPUT")

	_, _, err = s.tasks.UpdateTask(ctx, nil, UpdateTaskInput{UserID: s.userID, TaskID: built.ID, Action: "archive"})
	assert.ErrorContains(t, err, "unknown action")
}

func TestTaskErrorsHideCauses(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	_, _, err := s.tasks.GetTask(ctx, nil, GetTaskInput{UserID: s.userID, TaskID: uuid.NewString()})
	assert.EqualError(t, err, "TASK_NOT_FOUND: Task not found")

	_, _, err = s.tasks.BuildTask(ctx, nil, BuildTaskInput{UserID: s.userID, PersonID: s.personID, Trigger: "whim"})
	assert.ErrorContains(t, err, "INVALID_TRIGGER")

	s.gen.Reply(tasks.RequestTaskContext, `not json at all`)
	_, _, err = s.tasks.BuildTask(ctx, nil, BuildTaskInput{UserID: s.userID, PersonID: s.personID})
	assert.EqualError(t, err, "GENERATION_FAILED: Could not suggest a task")
}

func TestFollowUpTools(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	_, calc, err := s.scores.CalculateFollowUpScore(ctx, nil, ScoreInput{UserID: s.userID, PersonID: s.personID})
	require.NoError(t, err)
	assert.Equal(t, 0.42, calc.Score)

	manual := 0.9
	_, set, err := s.scores.UpdateFollowUpScore(ctx, nil, UpdateScoreInput{UserID: s.userID, PersonID: s.personID, Score: &manual})
	require.NoError(t, err)
	assert.Equal(t, followup.ManualReason, set.Reason)

	_, found, err := s.contacts.FindContacts(ctx, nil, FindContactsInput{UserID: s.userID})
	require.NoError(t, err)
	require.Len(t, found.Contacts, 1)
	assert.Equal(t, 0.9, found.Contacts[0].FollowUpScore)

	_, _, err = s.scores.CalculateFollowUpScore(ctx, nil, ScoreInput{UserID: s.userID, PersonID: uuid.NewString()})
	assert.ErrorContains(t, err, "PERSON_NOT_FOUND")
}
