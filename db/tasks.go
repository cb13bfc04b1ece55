// ABOUTME: Task database operations
// ABOUTME: Stores the suggested action payload as JSON keyed by its action type
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/harperreed/tend/models"
)

var taskColumns = []string{
	"id", "user_id", "person_id", "trigger_type", "context", "call_to_action",
	"suggested_action_type", "suggested_action", "end_at", "completed_at", "skipped_at",
	"snoozed_at", "bad_suggestion", "created_at", "updated_at",
}

// InsertTask stores a new task. The caller is expected to have validated it.
func InsertTask(ctx context.Context, db *sql.DB, t *models.Task, now time.Time) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.CreatedAt = now.UTC()
	t.UpdatedAt = t.CreatedAt

	payload, err := json.Marshal(t.SuggestedAction)
	if err != nil {
		return fmt.Errorf("failed to encode suggested action: %w", err)
	}

	_, err = exec(ctx, db, sq.Insert("tasks").Columns(taskColumns...).Values(
		t.ID.String(), t.UserID.String(), t.PersonID.String(), string(t.Trigger), t.Context, t.CallToAction,
		string(t.SuggestedActionType), string(payload), ts(t.EndAt), tsPtr(t.CompletedAt), tsPtr(t.SkippedAt),
		tsPtr(t.SnoozedAt), t.BadSuggestion, ts(t.CreatedAt), ts(t.UpdatedAt),
	))
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

func scanTask(scan func(...any) error) (*models.Task, error) {
	t := &models.Task{}
	var trigger, actionType, payload string
	var completed, skipped, snoozed sql.NullTime
	if err := scan(&t.ID, &t.UserID, &t.PersonID, &trigger, &t.Context, &t.CallToAction,
		&actionType, &payload, &t.EndAt, &completed, &skipped, &snoozed,
		&t.BadSuggestion, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Trigger = models.Trigger(trigger)
	t.SuggestedActionType = models.ActionType(actionType)
	t.CompletedAt = timePtr(completed)
	t.SkippedAt = timePtr(skipped)
	t.SnoozedAt = timePtr(snoozed)

	action, err := models.DecodeSuggestedAction(t.SuggestedActionType, []byte(payload))
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", t.ID, err)
	}
	t.SuggestedAction = action
	return t, nil
}

// GetTask returns the task only when owned by userID.
func GetTask(ctx context.Context, db *sql.DB, userID, id uuid.UUID) (*models.Task, error) {
	b := sq.Select(taskColumns...).From("tasks").Where(sq.Eq{"id": id.String(), "user_id": userID.String()})
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	t, err := scanTask(db.QueryRowContext(ctx, query, args...).Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return t, err
}

// UpdateTaskStatus persists the status timestamps, flag and due date of t.
func UpdateTaskStatus(ctx context.Context, db *sql.DB, t *models.Task) error {
	return execOne(ctx, db, sq.Update("tasks").
		Set("end_at", ts(t.EndAt)).
		Set("completed_at", tsPtr(t.CompletedAt)).
		Set("skipped_at", tsPtr(t.SkippedAt)).
		Set("snoozed_at", tsPtr(t.SnoozedAt)).
		Set("bad_suggestion", t.BadSuggestion).
		Set("updated_at", ts(t.UpdatedAt)).
		Where(sq.Eq{"id": t.ID.String(), "user_id": t.UserID.String()}))
}

type TaskFilter struct {
	PersonID *uuid.UUID
	// OpenAt keeps only tasks that are neither completed nor skipped and are due at or after it.
	OpenAt *time.Time
	Limit  int
}

func ListTasks(ctx context.Context, db *sql.DB, userID uuid.UUID, f TaskFilter) ([]models.Task, error) {
	b := sq.Select(taskColumns...).From("tasks").
		Where(sq.Eq{"user_id": userID.String()}).
		OrderBy("end_at")
	if f.PersonID != nil {
		b = b.Where(sq.Eq{"person_id": f.PersonID.String()})
	}
	if f.OpenAt != nil {
		b = b.Where(sq.Eq{"completed_at": nil, "skipped_at": nil}).
			Where(sq.GtOrEq{"end_at": ts(*f.OpenAt)})
	}
	if f.Limit > 0 {
		b = b.Limit(uint64(f.Limit))
	}

	rows, err := query(ctx, db, b)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var out []models.Task
	for rows.Next() {
		t, err := scanTask(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// OpenTaskPersonIDs returns the people of the user who have an open task with the given trigger at now.
func OpenTaskPersonIDs(ctx context.Context, db *sql.DB, userID uuid.UUID, trigger models.Trigger, now time.Time) (map[uuid.UUID]bool, error) {
	rows, err := query(ctx, db, sq.Select("DISTINCT person_id").From("tasks").
		Where(sq.Eq{
			"user_id":      userID.String(),
			"trigger_type": string(trigger),
			"completed_at": nil,
			"skipped_at":   nil,
		}).
		Where(sq.GtOrEq{"end_at": ts(now)}))
	if err != nil {
		return nil, fmt.Errorf("failed to list open tasks: %w", err)
	}
	defer rows.Close()

	out := map[uuid.UUID]bool{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}
