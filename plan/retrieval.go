// ABOUTME: Retrieval of today's injected plan with its tasks resolved
// ABOUTME: Raw plans are never returned
package plan

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/tend/apperr"
	"github.com/harperreed/tend/db"
	"github.com/harperreed/tend/models"
	"github.com/harperreed/tend/tasks"
)

// View is a stored plan together with the tasks its drafts point at.
type View struct {
	ID         string            `json:"id"`
	State      models.PlanState  `json:"state"`
	ActionPlan models.ActionPlan `json:"actionPlan"`
	Tasks      []tasks.TaskView  `json:"tasks"`
	CreatedAt  time.Time         `json:"createdAt"`
}

// GetActionPlan returns the most recent injected plan created on now's UTC day.
func (s *Service) GetActionPlan(ctx context.Context, userID uuid.UUID, now time.Time) (*View, error) {
	stored, err := db.GetLatestPlan(ctx, s.db, userID, models.PlanStateInjected, models.StartOfDay(now), models.EndOfDay(now))
	if errors.Is(err, db.ErrNotFound) {
		s.log.Debug().Str("user_id", userID.String()).Msg("no plan today")
		return nil, apperr.NotFound(apperr.CodeNotFound, "No plan has been generated today")
	}
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID.String()).Msg("failed to load plan")
		return nil, apperr.Persistence(apperr.CodeFetchingFailed, "Could not load your plan", err)
	}

	view := &View{
		ID:         stored.ID,
		State:      stored.State,
		ActionPlan: stored.Plan,
		Tasks:      []tasks.TaskView{},
		CreatedAt:  stored.CreatedAt,
	}
	for _, ref := range stored.Plan.Drafts() {
		if ref.Draft.ID == "" {
			continue
		}
		taskID, err := uuid.Parse(ref.Draft.ID)
		if err != nil {
			s.log.Warn().Err(err).Str("plan_id", stored.ID).Msg("skipping draft with malformed task id")
			continue
		}
		tv, err := s.tasks.GetTask(ctx, userID, taskID)
		if err != nil {
			s.log.Warn().Err(err).Str("plan_id", stored.ID).Str("task_id", taskID.String()).Msg("skipping unresolved task")
			continue
		}
		view.Tasks = append(view.Tasks, *tv)
	}
	return view, nil
}
