// ABOUTME: Action plan MCP tool handlers
// ABOUTME: Implements generate_action_plan and get_action_plan
package handlers

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/tend/models"
	"github.com/harperreed/tend/plan"
)

type PlanHandlers struct {
	plans *plan.Service
	now   Clock
}

func NewPlanHandlers(svc *plan.Service, now Clock) *PlanHandlers {
	return &PlanHandlers{plans: svc, now: clockOrSystem(now)}
}

type UserInput struct {
	UserID string `json:"user_id" jsonschema:"User ID (required)"`
}

type DraftFailureOutput struct {
	PersonID string `json:"person_id"`
	Code     string `json:"code,omitempty"`
}

type GeneratePlanOutput struct {
	PlanID     string               `json:"plan_id"`
	State      string               `json:"state"`
	TaskIDs    []string             `json:"task_ids"`
	Failures   []DraftFailureOutput `json:"failures"`
	ActionPlan models.ActionPlan    `json:"action_plan"`
}

func (h *PlanHandlers) GenerateActionPlan(ctx context.Context, _ *mcp.CallToolRequest, input UserInput) (*mcp.CallToolResult, GeneratePlanOutput, error) {
	userID, err := parseID("user_id", input.UserID)
	if err != nil {
		return nil, GeneratePlanOutput{}, err
	}

	res, err := h.plans.RunDaily(ctx, userID, h.now())
	if err != nil {
		return nil, GeneratePlanOutput{}, toolError(err)
	}

	out := GeneratePlanOutput{
		PlanID:     res.Plan.ID,
		State:      string(res.Plan.State),
		TaskIDs:    make([]string, 0, len(res.TaskIDs)),
		Failures:   make([]DraftFailureOutput, 0, len(res.Failures)),
		ActionPlan: res.Plan.Plan,
	}
	for _, id := range res.TaskIDs {
		out.TaskIDs = append(out.TaskIDs, id.String())
	}
	for _, f := range res.Failures {
		out.Failures = append(out.Failures, DraftFailureOutput{PersonID: f.PersonID, Code: f.Code})
	}
	return nil, out, nil
}

type PlanOutput struct {
	ID         string            `json:"id"`
	State      string            `json:"state"`
	CreatedAt  string            `json:"created_at"`
	ActionPlan models.ActionPlan `json:"action_plan"`
	Tasks      []TaskOutput      `json:"tasks"`
}

func planViewToOutput(v *plan.View) PlanOutput {
	out := PlanOutput{
		ID:         v.ID,
		State:      string(v.State),
		CreatedAt:  formatTime(v.CreatedAt),
		ActionPlan: v.ActionPlan,
		Tasks:      make([]TaskOutput, 0, len(v.Tasks)),
	}
	for i := range v.Tasks {
		out.Tasks = append(out.Tasks, taskViewToOutput(&v.Tasks[i]))
	}
	return out
}

func (h *PlanHandlers) GetActionPlan(ctx context.Context, _ *mcp.CallToolRequest, input UserInput) (*mcp.CallToolResult, PlanOutput, error) {
	userID, err := parseID("user_id", input.UserID)
	if err != nil {
		return nil, PlanOutput{}, err
	}
	view, err := h.plans.GetActionPlan(ctx, userID, h.now())
	if err != nil {
		return nil, PlanOutput{}, toolError(err)
	}
	return nil, planViewToOutput(view), nil
}
