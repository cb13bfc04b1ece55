// ABOUTME: Daily action plan pipeline: assemble context, generate, materialize tasks, retrieve
// ABOUTME: Service wires the signal adapters, the task builder and the datastore together
package plan

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/harperreed/tend/llm"
	"github.com/harperreed/tend/models"
	"github.com/harperreed/tend/profile"
	"github.com/harperreed/tend/signals"
	"github.com/harperreed/tend/tasks"
)

// RequestActionPlan names the plan generation call.
const RequestActionPlan = "action_plan"

const defaultConcurrency = 4

// TaskBuilder materializes one plan draft into a task row.
type TaskBuilder interface {
	BuildFromDraft(ctx context.Context, userID uuid.UUID, draft models.TaskDraft, now time.Time) (*models.Task, error)
}

type Service struct {
	db       *sql.DB
	gen      llm.Generator
	builder  TaskBuilder
	tasks    *tasks.Service
	adapters []signals.InputAdapter
	profiles *profile.Builder
	prompt   string
	// profileInteractions caps the interactions in each profile sent to the model.
	profileInteractions int
	concurrency         int
	log                 zerolog.Logger
}

type Options struct {
	// Adapters defaults to signals.Default.
	Adapters            []signals.InputAdapter
	Prompt              string
	ProfileInteractions int
	// Concurrency bounds RunNightly.
	Concurrency int
	// Builder overrides the task service for draft materialization.
	Builder TaskBuilder
}

func NewService(database *sql.DB, gen llm.Generator, taskSvc *tasks.Service, opts Options, log zerolog.Logger) *Service {
	logger := log.With().Str("component", "plan").Logger()
	adapters := opts.Adapters
	if adapters == nil {
		adapters = signals.Default(database, log)
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	var builder TaskBuilder = taskSvc
	if opts.Builder != nil {
		builder = opts.Builder
	}
	return &Service{
		db:                  database,
		gen:                 gen,
		builder:             builder,
		tasks:               taskSvc,
		adapters:            adapters,
		profiles:            profile.NewBuilder(database),
		prompt:              opts.Prompt,
		profileInteractions: opts.ProfileInteractions,
		concurrency:         concurrency,
		log:                 logger,
	}
}
