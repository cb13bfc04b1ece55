package tasks

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/tend/apperr"
	"github.com/harperreed/tend/config"
	"github.com/harperreed/tend/db"
	"github.com/harperreed/tend/llm/llmtest"
	"github.com/harperreed/tend/models"
	"github.com/harperreed/tend/websearch"
)

var now = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

type fixture struct {
	db     *sql.DB
	gen    *llmtest.Fake
	svc    *Service
	userID uuid.UUID
	person *models.Person
}

func setup(t *testing.T, search *fakeSearch) *fixture {
	t.Helper()
	database, err := db.OpenDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	ctx := context.Background()
	u := &models.User{Name: "Ada"}
	require.NoError(t, db.CreateUser(ctx, database, u, now))
	p := &models.Person{
		UserID:    u.ID,
		FirstName: "Grace",
		LastName:  "Hopper",
		Bio:       "Computer scientist",
		AISummary: &models.AISummary{Summary: "Old friend", Interests: []string{"clocks"}},
	}
	require.NoError(t, db.CreatePerson(ctx, database, p, now))

	gen := llmtest.New().
		Reply(RequestTaskContext, `{"context": "You have not spoken in a month.", "callToAction": "Ask about her new project", "actionType": "add-note"}`).
		Reply(RequestSendMessage, llmtest.MessagesJSON).
		Reply(RequestShareContent, llmtest.ContentsJSON).
		Reply(RequestAddNote, llmtest.NotesJSON).
		Reply(RequestBuyGift, llmtest.GiftsJSON)

	opts := Options{Prompts: config.DefaultPrompts(), ProfileInteractions: 5}
	if search != nil {
		opts.Search = search
	}
	return &fixture{
		db:     database,
		gen:    gen,
		svc:    NewService(database, gen, opts, zerolog.Nop()),
		userID: u.ID,
		person: p,
	}
}

type fakeSearch struct {
	results []websearch.Result
	err     error
	queries []string
}

func (f *fakeSearch) Search(_ context.Context, q string) ([]websearch.Result, error) {
	f.queries = append(f.queries, q)
	return f.results, f.err
}

func TestBuildTaskTwoStage(t *testing.T) {
	f := setup(t, nil)

	task, err := f.svc.BuildTask(context.Background(), BuildTaskInput{
		UserID:      f.userID,
		PersonID:    f.person.ID,
		Trigger:     models.TriggerManual,
		TaskContext: "She just moved",
	}, now)
	require.NoError(t, err)

	assert.Equal(t, models.ActionAddNote, task.SuggestedActionType)
	assert.Equal(t, "Ask about her new project", task.CallToAction)
	assert.Equal(t, models.TriggerManual, task.Trigger)
	assert.Equal(t, models.EndOfDay(now.AddDate(0, 0, DefaultDueDays)), task.EndAt)
	require.IsType(t, models.NoteAction{}, task.SuggestedAction)

	inference := f.gen.Calls(RequestTaskContext)
	require.Len(t, inference, 1)
	assert.Contains(t, inference[0].Prompt, "She just moved")
	assert.Contains(t, inference[0].Prompt, `"slug": "buy-gift"`)
	assert.Contains(t, inference[0].Prompt, "Grace Hopper")
	assert.Contains(t, inference[0].System, `"enum"`)
	assert.Len(t, f.gen.Calls(RequestAddNote), 1)

	stored, err := db.GetTask(context.Background(), f.db, f.userID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.Context, stored.Context)
}

func TestBuildTaskRejectsBadInput(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()

	_, err := f.svc.BuildTask(ctx, BuildTaskInput{UserID: f.userID, PersonID: f.person.ID, Trigger: "whim"}, now)
	assert.Equal(t, apperr.CodeInvalidTrigger, apperr.CodeOf(err))

	_, err = f.svc.BuildTask(ctx, BuildTaskInput{UserID: f.userID, PersonID: f.person.ID, Trigger: models.TriggerManual, EndAt: now.Add(-time.Hour)}, now)
	assert.Equal(t, apperr.CodeInvalidEndDate, apperr.CodeOf(err))

	_, err = f.svc.BuildTask(ctx, BuildTaskInput{UserID: f.userID, Trigger: models.TriggerManual}, now)
	assert.Equal(t, apperr.CodeInvalidInput, apperr.CodeOf(err))

	assert.Empty(t, f.gen.Calls(""))
}

func TestBuildTaskPersonOwnership(t *testing.T) {
	f := setup(t, nil)

	_, err := f.svc.BuildTask(context.Background(), BuildTaskInput{
		UserID: uuid.New(), PersonID: f.person.ID, Trigger: models.TriggerManual,
	}, now)
	assert.Equal(t, apperr.CodePersonNotFound, apperr.CodeOf(err))
	assert.True(t, apperr.IsNotFound(err))
	assert.Empty(t, f.gen.Calls(""))
}

func TestInferContextRejectsUnknownActionType(t *testing.T) {
	f := setup(t, nil)
	f.gen.Reply(RequestTaskContext, `{"context": "c", "callToAction": "a", "actionType": "throw-party"}`)

	_, err := f.svc.InferContext(context.Background(), f.userID, f.person.ID, models.TriggerFollowUp, "", now)
	assert.Equal(t, apperr.CodeGenerationFailed, apperr.CodeOf(err))
	assert.Equal(t, apperr.KindGeneration, apperr.KindOf(err))
}

func TestBuildFromDraftSkipsInference(t *testing.T) {
	f := setup(t, nil)

	task, err := f.svc.BuildFromDraft(context.Background(), f.userID, models.TaskDraft{
		PersonID:     f.person.ID.String(),
		PersonName:   "Grace Hopper",
		TaskContext:  "Quiet for three weeks",
		TaskType:     models.ActionSendMessage,
		CallToAction: "Say hi",
		TaskDueDate:  "2026-03-15",
	}, now)
	require.NoError(t, err)

	assert.Empty(t, f.gen.Calls(RequestTaskContext))
	assert.Len(t, f.gen.Calls(RequestSendMessage), 1)
	assert.Equal(t, models.TriggerFollowUp, task.Trigger)
	assert.Equal(t, time.Date(2026, 3, 15, 23, 59, 59, 999999999, time.UTC), task.EndAt)
	assert.Len(t, task.SuggestedAction.(models.MessageAction).Messages, 4)
}

func TestBuildFromDraftValidation(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()
	base := models.TaskDraft{
		PersonID:     f.person.ID.String(),
		TaskContext:  "c",
		TaskType:     models.ActionSendMessage,
		CallToAction: "a",
		TaskDueDate:  "2026-03-20",
	}

	cases := []struct {
		name  string
		patch func(d *models.TaskDraft)
		code  string
	}{
		{"unknown action type", func(d *models.TaskDraft) { d.TaskType = "throw-party" }, apperr.CodeInvalidActionType},
		{"bad person id", func(d *models.TaskDraft) { d.PersonID = "grace" }, apperr.CodeInvalidInput},
		{"past due date", func(d *models.TaskDraft) { d.TaskDueDate = "2026-03-13" }, apperr.CodeInvalidEndDate},
		{"garbled due date", func(d *models.TaskDraft) { d.TaskDueDate = "next tuesday" }, apperr.CodeInvalidEndDate},
		{"unknown person", func(d *models.TaskDraft) { d.PersonID = uuid.NewString() }, apperr.CodePersonNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := base
			tc.patch(&d)
			_, err := f.svc.BuildFromDraft(ctx, f.userID, d, now)
			assert.Equal(t, tc.code, apperr.CodeOf(err))
		})
	}
	assert.Empty(t, f.gen.Calls(""))
}

func TestBuildFromDraftMissingCallToActionIsInvalid(t *testing.T) {
	f := setup(t, nil)

	_, err := f.svc.BuildFromDraft(context.Background(), f.userID, models.TaskDraft{
		PersonID: f.person.ID.String(), TaskContext: "c", TaskType: models.ActionAddNote, TaskDueDate: "2026-03-20",
	}, now)
	assert.Equal(t, apperr.CodeInvalidInput, apperr.CodeOf(err))
}

func TestGeneratedPayloadBelowMinimumFails(t *testing.T) {
	f := setup(t, nil)
	f.gen.Reply(RequestSendMessage, `{"messages": [{"tone": "casual", "message": "hi"}, {"tone": "funny", "message": "yo"}]}`)

	_, err := f.svc.BuildFromDraft(context.Background(), f.userID, models.TaskDraft{
		PersonID: f.person.ID.String(), TaskContext: "c", TaskType: models.ActionSendMessage, CallToAction: "a",
	}, now)
	assert.Equal(t, apperr.CodeGenerationFailed, apperr.CodeOf(err))
	assert.Equal(t, "Could not generate a suggestion", apperr.Display(err))
}

func TestGenerateSuggestedActionEveryType(t *testing.T) {
	f := setup(t, nil)
	prof, err := f.svc.loadProfile(context.Background(), f.userID, f.person.ID)
	require.NoError(t, err)

	for _, at := range models.ActionTypes() {
		action, err := f.svc.GenerateSuggestedAction(context.Background(), prof, at, "", now)
		require.NoError(t, err, at)
		assert.Equal(t, at, action.ActionType())
		assert.NoError(t, action.Validate())
	}

	_, err = f.svc.GenerateSuggestedAction(context.Background(), prof, "throw-party", "", now)
	assert.Equal(t, apperr.CodeInvalidActionType, apperr.CodeOf(err))
}

func TestGiftsUseSearchWhenAvailable(t *testing.T) {
	search := &fakeSearch{results: []websearch.Result{{Title: "Clock shop", URL: "https://example.com/clocks"}}}
	f := setup(t, search)
	prof, err := f.svc.loadProfile(context.Background(), f.userID, f.person.ID)
	require.NoError(t, err)

	_, err = f.svc.GenerateSuggestedAction(context.Background(), prof, models.ActionBuyGift, "", now)
	require.NoError(t, err)

	assert.Equal(t, []string{"gift ideas for someone who likes clocks"}, search.queries)
	calls := f.gen.Calls(RequestBuyGift)
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Prompt, "https://example.com/clocks")
}

func TestGiftsFallBackWhenSearchFails(t *testing.T) {
	search := &fakeSearch{err: errors.New("rate limited")}
	f := setup(t, search)
	prof, err := f.svc.loadProfile(context.Background(), f.userID, f.person.ID)
	require.NoError(t, err)

	action, err := f.svc.GenerateSuggestedAction(context.Background(), prof, models.ActionBuyGift, "", now)
	require.NoError(t, err)
	assert.Len(t, action.(models.GiftAction).Gifts, 3)

	calls := f.gen.Calls(RequestBuyGift)
	require.Len(t, calls, 1)
	assert.NotContains(t, calls[0].Prompt, "Web search results")
}

func TestValidateCodes(t *testing.T) {
	valid := func() *models.Task {
		return &models.Task{
			UserID:              uuid.New(),
			PersonID:            uuid.New(),
			Trigger:             models.TriggerFollowUp,
			Context:             "c",
			CallToAction:        "a",
			SuggestedActionType: models.ActionAddNote,
			SuggestedAction: models.NoteAction{Questions: []models.NoteQuestion{
				{Question: "1"}, {Question: "2"}, {Question: "3"},
			}},
			EndAt: now.Add(time.Hour),
		}
	}
	require.NoError(t, validate(valid(), now))

	cases := []struct {
		name  string
		patch func(*models.Task)
		code  string
	}{
		{"trigger", func(task *models.Task) { task.Trigger = "whim" }, apperr.CodeInvalidTrigger},
		{"action type", func(task *models.Task) { task.SuggestedActionType = "dance" }, apperr.CodeInvalidActionType},
		{"end now", func(task *models.Task) { task.EndAt = now }, apperr.CodeInvalidEndDate},
		{"payload mismatch", func(task *models.Task) { task.SuggestedAction = models.GiftAction{} }, apperr.CodeInvalidSuggestedAction},
		{"payload short", func(task *models.Task) { task.SuggestedAction = models.NoteAction{} }, apperr.CodeInvalidSuggestedAction},
		{"no context", func(task *models.Task) { task.Context = "" }, apperr.CodeInvalidInput},
		{"no person", func(task *models.Task) { task.PersonID = uuid.Nil }, apperr.CodeInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			task := valid()
			tc.patch(task)
			assert.Equal(t, tc.code, apperr.CodeOf(validate(task, now)))
		})
	}
}
