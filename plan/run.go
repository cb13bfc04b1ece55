// ABOUTME: Daily and nightly entry points for the external scheduler
// ABOUTME: The nightly run processes users with bounded concurrency and isolates failures
package plan

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/harperreed/tend/apperr"
	"github.com/harperreed/tend/db"
)

// RunDaily generates and materializes today's plan for one user.
func (s *Service) RunDaily(ctx context.Context, userID uuid.UUID, now time.Time) (*Materialized, error) {
	plan, err := s.GenerateActionPlan(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	return s.BuildActionPlan(ctx, userID, plan, now)
}

// UserOutcome is one user's result in a nightly run.
type UserOutcome struct {
	UserID  uuid.UUID `json:"userId"`
	PlanID  string    `json:"planId,omitempty"`
	Tasks   int       `json:"tasks"`
	Failed  int       `json:"failedDrafts"`
	Code    string    `json:"code,omitempty"`
	Message string    `json:"message,omitempty"`
}

func (o UserOutcome) OK() bool { return o.Code == "" }

// RunNightly runs RunDaily for every user. A failing user never stops the others.
func (s *Service) RunNightly(ctx context.Context, now time.Time) ([]UserOutcome, error) {
	users, err := db.ListUsers(ctx, s.db)
	if err != nil {
		return nil, apperr.Persistence(apperr.CodeFetchingFailed, "Could not load users", err)
	}

	outcomes := make([]UserOutcome, len(users))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, u := range users {
		i, u := i, u
		g.Go(func() error {
			out := UserOutcome{UserID: u.ID}
			defer func() {
				if r := recover(); r != nil {
					s.log.Error().Str("user_id", u.ID.String()).Err(fmt.Errorf("panic: %v", r)).Msg("nightly plan panicked")
					out.Code = apperr.CodeGeneratingActionPlanFailed
					out.Message = "Could not build today's plan"
				}
				outcomes[i] = out
			}()

			if err := ctx.Err(); err != nil {
				out.Code, out.Message = apperr.CodeGeneratingActionPlanFailed, err.Error()
				return nil
			}
			res, err := s.RunDaily(ctx, u.ID, now)
			if err != nil {
				s.log.Error().Err(err).Str("user_id", u.ID.String()).Msg("nightly plan failed")
				out.Code, out.Message = apperr.CodeOf(err), apperr.Display(err)
				if out.Code == "" {
					out.Code = apperr.CodeGeneratingActionPlanFailed
				}
				return nil
			}
			out.PlanID = res.Plan.ID
			out.Tasks = len(res.TaskIDs)
			out.Failed = len(res.Failures)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, o := range outcomes {
		if !o.OK() {
			failed++
		}
	}
	s.log.Info().Int("users", len(users)).Int("failed", failed).Msg("nightly run finished")
	return outcomes, nil
}
