// ABOUTME: Plan materialization: persist raw, build every draft concurrently, inject task ids
// ABOUTME: A raw plan left behind by a crash can be resumed from the draft builds onward
package plan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/harperreed/tend/apperr"
	"github.com/harperreed/tend/db"
	"github.com/harperreed/tend/models"
)

// DraftFailure records a draft whose task could not be built.
type DraftFailure struct {
	Key      models.DraftKey `json:"key"`
	PersonID string          `json:"personId"`
	Code     string          `json:"code,omitempty"`
	Err      error           `json:"-"`
}

// Materialized is the outcome of turning a plan into tasks.
type Materialized struct {
	Plan     *models.StoredPlan `json:"plan"`
	TaskIDs  []uuid.UUID        `json:"taskIds"`
	Failures []DraftFailure     `json:"failures,omitempty"`
}

// BuildActionPlan stores the plan as raw, builds a task for every draft and
// stores the plan again as injected with the ids of the tasks that were built.
func (s *Service) BuildActionPlan(ctx context.Context, userID uuid.UUID, plan models.ActionPlan, now time.Time) (res *Materialized, err error) {
	defer recoverPipeline(&err)

	stored, err := db.InsertActionPlan(ctx, s.db, userID, plan.WithoutTaskIDs(), now)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID.String()).Msg("failed to insert raw plan")
		return nil, apperr.Persistence(apperr.CodeSavingActionPlanFailed, "Could not save your plan", err)
	}
	return s.materialize(ctx, stored, now)
}

// ResumeRawPlan finishes a plan that was stored but never injected.
func (s *Service) ResumeRawPlan(ctx context.Context, userID uuid.UUID, planID string, now time.Time) (res *Materialized, err error) {
	defer recoverPipeline(&err)

	stored, err := db.GetActionPlan(ctx, s.db, userID, planID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperr.NotFound(apperr.CodePlanNotFound, "Plan not found")
	}
	if err != nil {
		return nil, apperr.Persistence(apperr.CodeFetchingFailed, "Could not load the plan", err)
	}
	if stored.State != models.PlanStateRaw {
		return nil, apperr.Validation(apperr.CodeInvalidInput, "Only unfinished plans can be resumed", fmt.Errorf("plan %s is %s", planID, stored.State))
	}
	return s.materialize(ctx, stored, now)
}

func (s *Service) materialize(ctx context.Context, stored *models.StoredPlan, now time.Time) (*Materialized, error) {
	log := s.log.With().Str("user_id", stored.UserID.String()).Str("plan_id", stored.ID).Logger()
	drafts := stored.Plan.Drafts()

	type outcome struct {
		task *models.Task
		err  error
	}
	outcomes := make([]outcome, len(drafts))

	var g errgroup.Group
	for i, ref := range drafts {
		i, ref := i, ref
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					outcomes[i] = outcome{err: fmt.Errorf("task build panicked: %v", r)}
				}
			}()
			task, err := s.builder.BuildFromDraft(ctx, stored.UserID, ref.Draft, now)
			outcomes[i] = outcome{task: task, err: err}
			return nil
		})
	}
	// every build has settled past this point
	_ = g.Wait()

	res := &Materialized{}
	ids := make(map[models.DraftKey]uuid.UUID, len(drafts))
	for i, ref := range drafts {
		o := outcomes[i]
		if o.err == nil && o.task == nil {
			o.err = errors.New("task build returned no task")
		}
		if o.err != nil {
			log.Warn().Err(o.err).
				Str("person_id", ref.Draft.PersonID).
				Str("action_type", string(ref.Draft.TaskType)).
				Msg("task build failed, leaving draft without id")
			res.Failures = append(res.Failures, DraftFailure{
				Key: ref.Key, PersonID: ref.Draft.PersonID, Code: apperr.CodeOf(o.err), Err: o.err,
			})
			continue
		}
		ids[ref.Key] = o.task.ID
		res.TaskIDs = append(res.TaskIDs, o.task.ID)
	}

	injected := stored.Plan.WithTaskIDs(ids)
	if err := db.UpdateActionPlan(ctx, s.db, stored.ID, injected, models.PlanStateInjected, now); err != nil {
		log.Error().Err(err).Msg("failed to inject task ids into plan")
		return nil, apperr.Persistence(apperr.CodeSavingActionPlanFailed, "Could not save your plan", err)
	}

	out := *stored
	out.Plan = injected
	out.State = models.PlanStateInjected
	out.UpdatedAt = now.UTC()
	res.Plan = &out

	log.Info().Int("tasks", len(res.TaskIDs)).Int("failed", len(res.Failures)).Msg("action plan injected")
	return res, nil
}

func recoverPipeline(err *error) {
	if r := recover(); r != nil {
		*err = apperr.Generation(apperr.CodeGeneratingActionPlanFailed, "Could not build today's plan", fmt.Errorf("panic: %v", r))
	}
}
