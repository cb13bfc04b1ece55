// ABOUTME: Task retrieval and status transitions
// ABOUTME: Views carry the person's name so callers need no second lookup
package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/tend/apperr"
	"github.com/harperreed/tend/db"
	"github.com/harperreed/tend/models"
)

type PersonRef struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
}

// TaskView is a task as shown to the user.
type TaskView struct {
	ID                  uuid.UUID              `json:"id"`
	Trigger             models.Trigger         `json:"trigger"`
	Context             string                 `json:"context"`
	CallToAction        string                 `json:"callToAction"`
	SuggestedActionType models.ActionType      `json:"suggestedActionType"`
	SuggestedAction     models.SuggestedAction `json:"suggestedAction"`
	EndAt               time.Time              `json:"endAt"`
	CompletedAt         *time.Time             `json:"completedAt"`
	SkippedAt           *time.Time             `json:"skippedAt"`
	SnoozedAt           *time.Time             `json:"snoozedAt"`
	BadSuggestion       bool                   `json:"badSuggestion"`
	Status              string                 `json:"status"`
	Person              PersonRef              `json:"person"`
}

func (s *Service) GetTask(ctx context.Context, userID, taskID uuid.UUID) (*TaskView, error) {
	task, err := s.loadTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	person, err := db.GetPerson(ctx, s.db, userID, task.PersonID)
	if err != nil {
		s.log.Error().Err(err).Str("task_id", taskID.String()).Msg("failed to load task person")
		return nil, apperr.Persistence(apperr.CodeFetchingFailed, "Could not load the task", err)
	}

	return &TaskView{
		ID:                  task.ID,
		Trigger:             task.Trigger,
		Context:             task.Context,
		CallToAction:        task.CallToAction,
		SuggestedActionType: task.SuggestedActionType,
		SuggestedAction:     task.SuggestedAction,
		EndAt:               task.EndAt,
		CompletedAt:         task.CompletedAt,
		SkippedAt:           task.SkippedAt,
		SnoozedAt:           task.SnoozedAt,
		BadSuggestion:       task.BadSuggestion,
		Status:              task.Status(),
		Person:              PersonRef{ID: person.ID, FirstName: person.FirstName, LastName: person.LastName},
	}, nil
}

func (s *Service) loadTask(ctx context.Context, userID, taskID uuid.UUID) (*models.Task, error) {
	task, err := db.GetTask(ctx, s.db, userID, taskID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperr.NotFound(apperr.CodeTaskNotFound, "Task not found")
	}
	if err != nil {
		s.log.Error().Err(err).Str("task_id", taskID.String()).Msg("failed to load task")
		return nil, apperr.Persistence(apperr.CodeFetchingFailed, "Could not load the task", err)
	}
	return task, nil
}

// ListOpen returns the user's tasks that are still actionable at now.
func (s *Service) ListOpen(ctx context.Context, userID uuid.UUID, now time.Time) ([]models.Task, error) {
	tasks, err := db.ListTasks(ctx, s.db, userID, db.TaskFilter{OpenAt: &now})
	if err != nil {
		return nil, apperr.Persistence(apperr.CodeFetchingFailed, "Could not load tasks", err)
	}
	return tasks, nil
}

func (s *Service) Complete(ctx context.Context, userID, taskID uuid.UUID, now time.Time) (*models.Task, error) {
	return s.transition(ctx, userID, taskID, "completed", func(t *models.Task) error { return t.Complete(now) })
}

func (s *Service) Skip(ctx context.Context, userID, taskID uuid.UUID, now time.Time) (*models.Task, error) {
	return s.transition(ctx, userID, taskID, "skipped", func(t *models.Task) error { return t.Skip(now) })
}

// Snooze moves the task's due date to until.
func (s *Service) Snooze(ctx context.Context, userID, taskID uuid.UUID, until, now time.Time) (*models.Task, error) {
	return s.transition(ctx, userID, taskID, "snoozed", func(t *models.Task) error { return t.Snooze(until, now) })
}

// FlagBad marks the suggestion unhelpful and closes it if still open.
func (s *Service) FlagBad(ctx context.Context, userID, taskID uuid.UUID, now time.Time) (*models.Task, error) {
	return s.transition(ctx, userID, taskID, "flagged", func(t *models.Task) error {
		t.FlagBad(now)
		return nil
	})
}

func (s *Service) transition(ctx context.Context, userID, taskID uuid.UUID, verb string, apply func(*models.Task) error) (*models.Task, error) {
	task, err := s.loadTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if err := apply(task); err != nil {
		if errors.Is(err, models.ErrTaskClosed) {
			return nil, apperr.Validation(apperr.CodeInvalidInput, "This task is already closed", err)
		}
		return nil, apperr.Validation(apperr.CodeInvalidEndDate, "The new due date must be in the future", err)
	}
	if err := db.UpdateTaskStatus(ctx, s.db, task); err != nil {
		s.log.Error().Err(err).Str("task_id", taskID.String()).Msg("failed to update task")
		return nil, apperr.Persistence(apperr.CodeSavingTaskFailed, "Could not update the task", err)
	}
	s.log.Info().Str("task_id", taskID.String()).Str("status", verb).Msg("task updated")
	return task, nil
}
