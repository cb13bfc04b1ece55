// ABOUTME: Wires config, database, logger and services into one value the commands share
// ABOUTME: Also resolves which user a command acts for
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/harperreed/tend/config"
	"github.com/harperreed/tend/db"
	"github.com/harperreed/tend/followup"
	"github.com/harperreed/tend/llm"
	"github.com/harperreed/tend/plan"
	"github.com/harperreed/tend/profile"
	"github.com/harperreed/tend/tasks"
	"github.com/harperreed/tend/websearch"
)

type App struct {
	DB       *sql.DB
	Config   *config.Config
	Log      zerolog.Logger
	Tasks    *tasks.Service
	Plans    *plan.Service
	Scores   *followup.Service
	Profiles *profile.Builder
	Out      io.Writer
	Now      func() time.Time
}

// NewApp connects to the configured model provider and builds the services.
func NewApp(cfg *config.Config, database *sql.DB, log zerolog.Logger) (*App, error) {
	client, err := llm.NewClient(cfg.LLM, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm client: %w", err)
	}

	var search llm.Searcher
	if cfg.Search.Enabled {
		search = websearch.New(cfg.Search, nil)
	}
	return NewAppWithGenerator(cfg, database, client, search, log), nil
}

// NewAppWithGenerator builds the services around an existing generator. search may be nil.
func NewAppWithGenerator(cfg *config.Config, database *sql.DB, gen llm.Generator, search llm.Searcher, log zerolog.Logger) *App {
	taskSvc := tasks.NewService(database, gen, tasks.Options{
		Search:              search,
		Prompts:             cfg.Prompts,
		ProfileInteractions: cfg.Plan.ProfileInteractions,
	}, log)

	return &App{
		DB:     database,
		Config: cfg,
		Log:    log,
		Tasks:  taskSvc,
		Plans: plan.NewService(database, gen, taskSvc, plan.Options{
			Prompt:              cfg.Prompts.ActionPlan,
			ProfileInteractions: cfg.Plan.ProfileInteractions,
			Concurrency:         cfg.Plan.Concurrency,
		}, log),
		Scores: followup.NewService(database, gen, followup.Options{
			Prompt:            cfg.Prompts.FollowUpScore,
			InteractionWindow: cfg.FollowUp.InteractionWindow,
		}, log),
		Profiles: profile.NewBuilder(database),
		Out:      os.Stdout,
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

// ResolveUser parses --user, or picks the only user when the flag is empty.
func (a *App) ResolveUser(ctx context.Context, flagValue string) (uuid.UUID, error) {
	if flagValue != "" {
		id, err := uuid.Parse(flagValue)
		if err != nil {
			return uuid.Nil, fmt.Errorf("invalid --user: %w", err)
		}
		return id, nil
	}

	users, err := db.ListUsers(ctx, a.DB)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to list users: %w", err)
	}
	switch len(users) {
	case 0:
		return uuid.Nil, fmt.Errorf("no users yet: run 'tend crm add-user --name <name>' first")
	case 1:
		return users[0].ID, nil
	}
	return uuid.Nil, fmt.Errorf("--user is required when there is more than one user")
}

func parseUUIDArg(args []string, what string) (uuid.UUID, error) {
	if len(args) < 1 {
		return uuid.Nil, fmt.Errorf("%s ID is required", what)
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s ID: %w", what, err)
	}
	return id, nil
}
