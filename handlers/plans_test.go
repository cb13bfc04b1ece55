package handlers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/tend/models"
	"github.com/harperreed/tend/plan"
)

func (s *stack) scriptPlan(t *testing.T) {
	t.Helper()
	ap := models.ActionPlan{
		BuildDate:        "2026-03-14",
		ExecutiveSummary: models.ExecutiveSummary{Title: "Today", Description: "One catch-up", Content: "Grace is due a hello"},
		GroupSections: []models.GroupSection{{
			Title: "Reconnect", Icon: "👋", Description: "Quiet lately",
			Tasks: []models.TaskDraft{{
				PersonID:     s.personID,
				PersonName:   "Grace Hopper",
				TaskContext:  "It has been a month",
				TaskType:     models.ActionSendMessage,
				CallToAction: "Say hello to Grace",
				TaskDueDate:  "2026-03-16",
			}},
		}},
		Quote: models.Quote{Text: "A friend is a gift you give yourself.", Author: "Robert Louis Stevenson"},
	}
	data, err := json.Marshal(ap)
	require.NoError(t, err)
	s.gen.Reply(plan.RequestActionPlan, string(data))
}

func TestGenerateAndGetActionPlan(t *testing.T) {
	s := newStack(t)
	s.scriptPlan(t)
	ctx := context.Background()

	_, _, err := s.plans.GetActionPlan(ctx, nil, UserInput{UserID: s.userID})
	assert.ErrorContains(t, err, "NOT_FOUND")

	_, gen, err := s.plans.GenerateActionPlan(ctx, nil, UserInput{UserID: s.userID})
	require.NoError(t, err)
	assert.Equal(t, "injected", gen.State)
	require.Len(t, gen.TaskIDs, 1)
	assert.Empty(t, gen.Failures)
	assert.Equal(t, gen.TaskIDs[0], gen.ActionPlan.GroupSections[0].Tasks[0].ID)

	_, got, err := s.plans.GetActionPlan(ctx, nil, UserInput{UserID: s.userID})
	require.NoError(t, err)
	assert.Equal(t, gen.PlanID, got.ID)
	require.Len(t, got.Tasks, 1)
	assert.Equal(t, gen.TaskIDs[0], got.Tasks[0].ID)
	assert.Equal(t, "2026-03-16T23:59:59Z", got.Tasks[0].EndAt)
	assert.Equal(t, "follow_up", got.Tasks[0].Trigger)
}

func TestGenerateActionPlanFailureIsSafe(t *testing.T) {
	s := newStack(t)
	s.gen.Reply(plan.RequestActionPlan, `{"groupSections": "nope"}`)

	_, _, err := s.plans.GenerateActionPlan(context.Background(), nil, UserInput{UserID: s.userID})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GENERATING_ACTION_PLAN_FAILED")
	assert.NotContains(t, err.Error(), "groupSections")
}

func TestReadResource(t *testing.T) {
	s := newStack(t)
	s.scriptPlan(t)
	ctx := context.Background()

	read := func(uri string) (*mcp.ReadResourceResult, error) {
		return s.res.ReadResource(ctx, &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: uri}})
	}

	res, err := read("tend://users/" + s.userID + "/people/" + s.personID)
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	assert.Contains(t, res.Contents[0].Text, "Grace Hopper")

	_, err = read("tend://users/" + s.userID + "/plan")
	assert.ErrorContains(t, err, "NOT_FOUND")

	_, _, err = s.plans.GenerateActionPlan(ctx, nil, UserInput{UserID: s.userID})
	require.NoError(t, err)
	res, err = read("tend://users/" + s.userID + "/plan")
	require.NoError(t, err)
	assert.Equal(t, "application/json", res.Contents[0].MIMEType)
	assert.Contains(t, res.Contents[0].Text, "Say hello to Grace")

	_, err = read("pagen://people")
	assert.Error(t, err)
	_, err = read("tend://users/" + s.userID + "/deals")
	assert.Error(t, err)
}

func TestGetPrompt(t *testing.T) {
	s := newStack(t)
	s.scriptPlan(t)
	ctx := context.Background()

	get := func(name string, args map[string]string) (*mcp.GetPromptResult, error) {
		return s.prompts.GetPrompt(ctx, &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{Name: name, Arguments: args}})
	}

	res, err := get("person-briefing", map[string]string{"user_id": s.userID, "person_id": s.personID})
	require.NoError(t, err)
	assert.Equal(t, "Briefing on Grace Hopper", res.Description)
	require.Len(t, res.Messages, 1)

	res, err = get("plan-review", map[string]string{"user_id": s.userID})
	require.NoError(t, err)
	assert.Equal(t, "No plan yet", res.Description)

	_, _, err = s.plans.GenerateActionPlan(ctx, nil, UserInput{UserID: s.userID})
	require.NoError(t, err)
	res, err = get("plan-review", map[string]string{"user_id": s.userID})
	require.NoError(t, err)
	text := res.Messages[0].Content.(*mcp.TextContent).Text
	assert.Contains(t, text, "Grace Hopper: Say hello to Grace")

	_, err = get("plan-review", map[string]string{})
	assert.ErrorContains(t, err, "user_id is required")
	_, err = get("mystery", nil)
	assert.ErrorContains(t, err, "unknown prompt")
}
