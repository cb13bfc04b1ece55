// ABOUTME: Plan generation: one schema-validated request over the assembled context
// ABOUTME: Non-conforming replies fail the whole plan
package plan

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/google/uuid"

	"github.com/harperreed/tend/actions"
	"github.com/harperreed/tend/apperr"
	"github.com/harperreed/tend/db"
	"github.com/harperreed/tend/llm"
	"github.com/harperreed/tend/models"
)

const dateLayout = "2006-01-02"

// GenerateActionPlan builds today's plan for the user without persisting it.
func (s *Service) GenerateActionPlan(ctx context.Context, userID uuid.UUID, now time.Time) (models.ActionPlan, error) {
	user, err := db.GetUser(ctx, s.db, userID)
	if errors.Is(err, db.ErrNotFound) {
		return models.ActionPlan{}, apperr.NotFound(apperr.CodeNotFound, "User not found")
	}
	if err != nil {
		return models.ActionPlan{}, apperr.Persistence(apperr.CodeFetchingFailed, "Could not load your account", err)
	}

	ic, err := s.BuildInputContext(ctx, userID, now)
	if err != nil {
		return models.ActionPlan{}, err
	}

	schema, err := planSchema()
	if err != nil {
		return models.ActionPlan{}, apperr.Generation(apperr.CodeGeneratingActionPlanFailed, "Could not build today's plan", err)
	}

	plan, err := llm.GenerateObject[models.ActionPlan](ctx, s.gen, llm.Request{
		Name:   RequestActionPlan,
		System: s.prompt,
		Prompt: planPrompt(user, ic, now),
		Schema: schema,
	})
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID.String()).Msg("action plan generation failed")
		return models.ActionPlan{}, apperr.Generation(apperr.CodeGeneratingActionPlanFailed, "Could not build today's plan", err)
	}

	plan.BuildDate = now.UTC().Format(dateLayout)
	s.log.Info().
		Str("user_id", userID.String()).
		Int("people", len(ic.PeopleIDs)).
		Int("drafts", len(plan.Drafts())).
		Msg("action plan generated")
	return plan.WithoutTaskIDs(), nil
}

// planSchema is the ActionPlan schema with taskType closed over the action catalog.
func planSchema() (*jsonschema.Schema, error) {
	schema, err := llm.SchemaFor[models.ActionPlan]()
	if err != nil {
		return nil, err
	}
	taskType, err := property(schema, "groupSections", "[]", "tasks", "[]", "taskType")
	if err != nil {
		return nil, err
	}
	taskType.Enum = actions.Enum()
	return schema, nil
}

// property walks a schema path; "[]" steps into array items.
func property(schema *jsonschema.Schema, path ...string) (*jsonschema.Schema, error) {
	cur := schema
	for _, step := range path {
		if step == "[]" {
			cur = cur.Items
		} else {
			cur = cur.Properties[step]
		}
		if cur == nil {
			return nil, fmt.Errorf("schema has no %s", strings.Join(path, "."))
		}
	}
	return cur, nil
}

func planPrompt(user *models.User, ic InputContext, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Build date: %s\n", now.UTC().Format(dateLayout))
	fmt.Fprintf(&b, "User: %s\n", user.Name)
	fmt.Fprintf(&b, "Onboarding stage: %s\n", user.OnboardingStage)

	b.WriteString("\n# Signals\n")
	if ic.Text == "" {
		b.WriteString("No signals today.\n")
	} else {
		b.WriteString(ic.Text)
		b.WriteString("\n")
	}

	b.WriteString("\n# People\n")
	if len(ic.Profiles) == 0 {
		b.WriteString("No profiles.\n")
	}
	for _, p := range ic.Profiles {
		b.WriteString(p)
		b.WriteString("\n")
	}

	b.WriteString("\n# Available actions\n")
	b.WriteString(actions.JSON())
	b.WriteString("\n")
	return b.String()
}
