// ABOUTME: Action plan database operations
// ABOUTME: Plans get time-ordered ULID ids and move from raw to injected
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/harperreed/tend/models"
)

var planColumns = []string{"id", "user_id", "state", "action_plan", "created_at", "updated_at"}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

func newPlanID(now time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(now), entropy).String()
}

// InsertActionPlan stores the plan in the raw state and returns the stored row.
func InsertActionPlan(ctx context.Context, db *sql.DB, userID uuid.UUID, plan models.ActionPlan, now time.Time) (*models.StoredPlan, error) {
	data, err := json.Marshal(plan)
	if err != nil {
		return nil, fmt.Errorf("failed to encode action plan: %w", err)
	}

	sp := &models.StoredPlan{
		ID:        newPlanID(now),
		UserID:    userID,
		State:     models.PlanStateRaw,
		Plan:      plan,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
	_, err = exec(ctx, db, sq.Insert("action_plans").Columns(planColumns...).Values(
		sp.ID, userID.String(), string(sp.State), string(data), ts(sp.CreatedAt), ts(sp.UpdatedAt),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to insert action plan: %w", err)
	}
	return sp, nil
}

// UpdateActionPlan replaces the stored plan body and state.
func UpdateActionPlan(ctx context.Context, db *sql.DB, id string, plan models.ActionPlan, state models.PlanState, now time.Time) error {
	data, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to encode action plan: %w", err)
	}
	return execOne(ctx, db, sq.Update("action_plans").
		Set("action_plan", string(data)).
		Set("state", string(state)).
		Set("updated_at", ts(now)).
		Where(sq.Eq{"id": id}))
}

func scanPlan(scan func(...any) error) (*models.StoredPlan, error) {
	sp := &models.StoredPlan{}
	var state, body string
	if err := scan(&sp.ID, &sp.UserID, &state, &body, &sp.CreatedAt, &sp.UpdatedAt); err != nil {
		return nil, err
	}
	sp.State = models.PlanState(state)
	if err := json.Unmarshal([]byte(body), &sp.Plan); err != nil {
		return nil, fmt.Errorf("failed to decode action plan %s: %w", sp.ID, err)
	}
	return sp, nil
}

func getPlan(ctx context.Context, db *sql.DB, b sq.SelectBuilder) (*models.StoredPlan, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	sp, err := scanPlan(db.QueryRowContext(ctx, query, args...).Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return sp, err
}

// GetActionPlan returns the plan only when owned by userID.
func GetActionPlan(ctx context.Context, db *sql.DB, userID uuid.UUID, id string) (*models.StoredPlan, error) {
	return getPlan(ctx, db, sq.Select(planColumns...).From("action_plans").
		Where(sq.Eq{"id": id, "user_id": userID.String()}))
}

// GetLatestPlan returns the most recent plan in state created within [start, end].
func GetLatestPlan(ctx context.Context, db *sql.DB, userID uuid.UUID, state models.PlanState, start, end time.Time) (*models.StoredPlan, error) {
	return getPlan(ctx, db, sq.Select(planColumns...).From("action_plans").
		Where(sq.Eq{"user_id": userID.String(), "state": string(state)}).
		Where(sq.GtOrEq{"created_at": ts(start)}).
		Where(sq.LtOrEq{"created_at": ts(end)}).
		OrderBy("created_at DESC", "id DESC").
		Limit(1))
}

// ListPlans returns the user's plans, newest first.
func ListPlans(ctx context.Context, db *sql.DB, userID uuid.UUID, state models.PlanState, limit int) ([]models.StoredPlan, error) {
	b := sq.Select(planColumns...).From("action_plans").
		Where(sq.Eq{"user_id": userID.String()}).
		OrderBy("created_at DESC", "id DESC")
	if state != "" {
		b = b.Where(sq.Eq{"state": string(state)})
	}
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}

	rows, err := query(ctx, db, b)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	var out []models.StoredPlan
	for rows.Next() {
		sp, err := scanPlan(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *sp)
	}
	return out, rows.Err()
}
