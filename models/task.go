// ABOUTME: Task suggestion model with status transitions
// ABOUTME: Provides completion, skipping, snoozing and bad-suggestion flagging
package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Trigger string

const (
	TriggerFollowUp         Trigger = "follow_up"
	TriggerBirthdayReminder Trigger = "birthday_reminder"
	TriggerManual           Trigger = "manual"
)

func (t Trigger) Valid() bool {
	switch t {
	case TriggerFollowUp, TriggerBirthdayReminder, TriggerManual:
		return true
	}
	return false
}

// Task statuses, derived from the terminal timestamps.
const (
	TaskStatusOpen      = "open"
	TaskStatusSnoozed   = "snoozed"
	TaskStatusCompleted = "completed"
	TaskStatusSkipped   = "skipped"
)

var ErrTaskClosed = errors.New("task is already completed or skipped")

// Task is a persisted suggestion for one person.
type Task struct {
	ID                  uuid.UUID       `json:"id"`
	UserID              uuid.UUID       `json:"user_id"`
	PersonID            uuid.UUID       `json:"person_id"`
	Trigger             Trigger         `json:"trigger"`
	Context             string          `json:"context"`
	CallToAction        string          `json:"call_to_action"`
	SuggestedActionType ActionType      `json:"suggested_action_type"`
	SuggestedAction     SuggestedAction `json:"suggested_action"`
	EndAt               time.Time       `json:"end_at"`
	CompletedAt         *time.Time      `json:"completed_at,omitempty"`
	SkippedAt           *time.Time      `json:"skipped_at,omitempty"`
	SnoozedAt           *time.Time      `json:"snoozed_at,omitempty"`
	BadSuggestion       bool            `json:"bad_suggestion"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

func (t *Task) Status() string {
	switch {
	case t.CompletedAt != nil:
		return TaskStatusCompleted
	case t.SkippedAt != nil:
		return TaskStatusSkipped
	case t.SnoozedAt != nil:
		return TaskStatusSnoozed
	}
	return TaskStatusOpen
}

func (t *Task) IsClosed() bool {
	return t.CompletedAt != nil || t.SkippedAt != nil
}

// Validate checks a task before it is inserted.
func (t *Task) Validate(now time.Time) error {
	if t.UserID == uuid.Nil {
		return errors.New("user id is required")
	}
	if t.PersonID == uuid.Nil {
		return errors.New("person id is required")
	}
	if !t.Trigger.Valid() {
		return fmt.Errorf("invalid trigger %q", t.Trigger)
	}
	if !t.SuggestedActionType.Valid() {
		return fmt.Errorf("invalid action type %q", t.SuggestedActionType)
	}
	if t.Context == "" || t.CallToAction == "" {
		return errors.New("context and call to action are required")
	}
	if t.SuggestedAction == nil {
		return errors.New("suggested action is required")
	}
	if t.SuggestedAction.ActionType() != t.SuggestedActionType {
		return fmt.Errorf("suggested action is %s, task declares %s", t.SuggestedAction.ActionType(), t.SuggestedActionType)
	}
	if err := t.SuggestedAction.Validate(); err != nil {
		return err
	}
	if !t.EndAt.After(now) {
		return fmt.Errorf("end date %s is not in the future", t.EndAt.Format(time.RFC3339))
	}
	return nil
}

// Complete marks the task done.
func (t *Task) Complete(now time.Time) error {
	if t.IsClosed() {
		return ErrTaskClosed
	}
	at := now.UTC()
	t.CompletedAt = &at
	t.UpdatedAt = at
	return nil
}

// Skip dismisses the task.
func (t *Task) Skip(now time.Time) error {
	if t.IsClosed() {
		return ErrTaskClosed
	}
	at := now.UTC()
	t.SkippedAt = &at
	t.UpdatedAt = at
	return nil
}

// Snooze pushes the due date to until.
func (t *Task) Snooze(until, now time.Time) error {
	if t.IsClosed() {
		return ErrTaskClosed
	}
	if !until.After(now) {
		return fmt.Errorf("snooze target %s is not in the future", until.Format(time.RFC3339))
	}
	at := now.UTC()
	t.SnoozedAt = &at
	t.EndAt = until.UTC()
	t.UpdatedAt = at
	return nil
}

// FlagBad records that the suggestion was unhelpful. Flagging also skips an open task.
func (t *Task) FlagBad(now time.Time) {
	t.BadSuggestion = true
	if !t.IsClosed() {
		at := now.UTC()
		t.SkippedAt = &at
	}
	t.UpdatedAt = now.UTC()
}

// IsOverdue returns true if the task is past its due date and still open.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.IsClosed() {
		return false
	}
	return now.After(t.EndAt)
}
