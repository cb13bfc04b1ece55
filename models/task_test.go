// ABOUTME: Tests for task suggestions and their payloads
// ABOUTME: Validates insert checks, status transitions and payload decoding
package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMessages() MessageAction {
	return MessageAction{Messages: []MessageVariant{
		{Tone: "casual", Message: "Hey! Been a while."},
		{Tone: "professional", Message: "Hope the quarter is going well."},
		{Tone: "friendly", Message: "Thinking of you, coffee soon?"},
		{Tone: "funny", Message: "Is it a crime to not text for three weeks?"},
	}}
}

func newTask(now time.Time) *Task {
	return &Task{
		ID:                  uuid.New(),
		UserID:              uuid.New(),
		PersonID:            uuid.New(),
		Trigger:             TriggerFollowUp,
		Context:             "No contact in three weeks",
		CallToAction:        "Send a quick hello",
		SuggestedActionType: ActionSendMessage,
		SuggestedAction:     validMessages(),
		EndAt:               now.Add(24 * time.Hour),
	}
}

func TestTaskValidate(t *testing.T) {
	now := time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC)

	require.NoError(t, newTask(now).Validate(now))

	tests := []struct {
		name   string
		mutate func(*Task)
	}{
		{"missing person", func(tk *Task) { tk.PersonID = uuid.Nil }},
		{"unknown trigger", func(tk *Task) { tk.Trigger = "whim" }},
		{"unknown action type", func(tk *Task) { tk.SuggestedActionType = "send-pigeon" }},
		{"payload mismatch", func(tk *Task) { tk.SuggestedAction = NoteAction{} }},
		{"too few variants", func(tk *Task) { tk.SuggestedAction = MessageAction{Messages: validMessages().Messages[:2]} }},
		{"end in past", func(tk *Task) { tk.EndAt = now.Add(-time.Minute) }},
		{"end exactly now", func(tk *Task) { tk.EndAt = now }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := newTask(now)
			tt.mutate(task)
			assert.Error(t, task.Validate(now))
		})
	}
}

func TestTaskTransitions(t *testing.T) {
	now := time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC)

	task := newTask(now)
	assert.Equal(t, TaskStatusOpen, task.Status())

	until := now.Add(72 * time.Hour)
	require.NoError(t, task.Snooze(until, now))
	assert.Equal(t, TaskStatusSnoozed, task.Status())
	assert.Equal(t, until, task.EndAt)

	require.NoError(t, task.Complete(now))
	assert.Equal(t, TaskStatusCompleted, task.Status())
	assert.ErrorIs(t, task.Skip(now), ErrTaskClosed)

	flagged := newTask(now)
	flagged.FlagBad(now)
	assert.True(t, flagged.BadSuggestion)
	assert.Equal(t, TaskStatusSkipped, flagged.Status())

	assert.Error(t, newTask(now).Snooze(now.Add(-time.Hour), now))
}

func TestDecodeSuggestedAction(t *testing.T) {
	raw, err := json.Marshal(GiftAction{Gifts: []GiftSuggestion{{Name: "Book", Reason: "loves sci-fi"}}})
	require.NoError(t, err)

	action, err := DecodeSuggestedAction(ActionBuyGift, raw)
	require.NoError(t, err)
	gift, ok := action.(GiftAction)
	require.True(t, ok)
	assert.Equal(t, "Book", gift.Gifts[0].Name)

	_, err = DecodeSuggestedAction("send-pigeon", raw)
	assert.Error(t, err)
}
