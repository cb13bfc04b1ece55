// ABOUTME: Task MCP tool handlers
// ABOUTME: Implements build_task, get_task and update_task
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/tend/models"
	"github.com/harperreed/tend/tasks"
)

type TaskHandlers struct {
	tasks *tasks.Service
	now   Clock
}

func NewTaskHandlers(svc *tasks.Service, now Clock) *TaskHandlers {
	return &TaskHandlers{tasks: svc, now: clockOrSystem(now)}
}

type PersonRefOutput struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
}

type TaskOutput struct {
	ID                  string          `json:"id"`
	Trigger             string          `json:"trigger"`
	Context             string          `json:"context"`
	CallToAction        string          `json:"call_to_action"`
	SuggestedActionType string          `json:"suggested_action_type"`
	SuggestedAction     any             `json:"suggested_action"`
	EndAt               string          `json:"end_at"`
	CompletedAt         *string         `json:"completed_at,omitempty"`
	SkippedAt           *string         `json:"skipped_at,omitempty"`
	SnoozedAt           *string         `json:"snoozed_at,omitempty"`
	BadSuggestion       bool            `json:"bad_suggestion"`
	Status              string          `json:"status"`
	Person              PersonRefOutput `json:"person"`
}

func taskViewToOutput(v *tasks.TaskView) TaskOutput {
	return TaskOutput{
		ID:                  v.ID.String(),
		Trigger:             string(v.Trigger),
		Context:             v.Context,
		CallToAction:        v.CallToAction,
		SuggestedActionType: string(v.SuggestedActionType),
		SuggestedAction:     v.SuggestedAction,
		EndAt:               formatTime(v.EndAt),
		CompletedAt:         formatTimePtr(v.CompletedAt),
		SkippedAt:           formatTimePtr(v.SkippedAt),
		SnoozedAt:           formatTimePtr(v.SnoozedAt),
		BadSuggestion:       v.BadSuggestion,
		Status:              v.Status,
		Person: PersonRefOutput{
			ID:        v.Person.ID.String(),
			FirstName: v.Person.FirstName,
			LastName:  v.Person.LastName,
		},
	}
}

type BuildTaskInput struct {
	UserID      string `json:"user_id" jsonschema:"User ID (required)"`
	PersonID    string `json:"person_id" jsonschema:"Person the task is about (required)"`
	Trigger     string `json:"trigger,omitempty" jsonschema:"follow_up, birthday_reminder or manual (default manual)"`
	TaskContext string `json:"task_context,omitempty" jsonschema:"Free text about why the user wants to reach out"`
	EndAt       string `json:"end_at,omitempty" jsonschema:"Due date YYYY-MM-DD (default three days out)"`
}

func (h *TaskHandlers) BuildTask(ctx context.Context, _ *mcp.CallToolRequest, input BuildTaskInput) (*mcp.CallToolResult, TaskOutput, error) {
	userID, err := parseID("user_id", input.UserID)
	if err != nil {
		return nil, TaskOutput{}, err
	}
	personID, err := parseID("person_id", input.PersonID)
	if err != nil {
		return nil, TaskOutput{}, err
	}

	in := tasks.BuildTaskInput{
		UserID:      userID,
		PersonID:    personID,
		Trigger:     models.TriggerManual,
		TaskContext: input.TaskContext,
	}
	if input.Trigger != "" {
		in.Trigger = models.Trigger(input.Trigger)
	}
	if input.EndAt != "" {
		day, err := parseDay(input.EndAt)
		if err != nil {
			return nil, TaskOutput{}, err
		}
		in.EndAt = models.EndOfDay(day)
	}

	task, err := h.tasks.BuildTask(ctx, in, h.now())
	if err != nil {
		return nil, TaskOutput{}, toolError(err)
	}
	view, err := h.tasks.GetTask(ctx, userID, task.ID)
	if err != nil {
		return nil, TaskOutput{}, toolError(err)
	}
	return nil, taskViewToOutput(view), nil
}

type GetTaskInput struct {
	UserID string `json:"user_id" jsonschema:"User ID (required)"`
	TaskID string `json:"task_id" jsonschema:"Task ID (required)"`
}

func (h *TaskHandlers) GetTask(ctx context.Context, _ *mcp.CallToolRequest, input GetTaskInput) (*mcp.CallToolResult, TaskOutput, error) {
	userID, err := parseID("user_id", input.UserID)
	if err != nil {
		return nil, TaskOutput{}, err
	}
	taskID, err := parseID("task_id", input.TaskID)
	if err != nil {
		return nil, TaskOutput{}, err
	}
	view, err := h.tasks.GetTask(ctx, userID, taskID)
	if err != nil {
		return nil, TaskOutput{}, toolError(err)
	}
	return nil, taskViewToOutput(view), nil
}

type UpdateTaskInput struct {
	UserID string `json:"user_id" jsonschema:"User ID (required)"`
	TaskID string `json:"task_id" jsonschema:"Task ID (required)"`
	Action string `json:"action" jsonschema:"complete, skip, snooze or bad"`
	Until  string `json:"until,omitempty" jsonschema:"New due date YYYY-MM-DD, required for snooze"`
}

func (h *TaskHandlers) UpdateTask(ctx context.Context, _ *mcp.CallToolRequest, input UpdateTaskInput) (*mcp.CallToolResult, TaskOutput, error) {
	userID, err := parseID("user_id", input.UserID)
	if err != nil {
		return nil, TaskOutput{}, err
	}
	taskID, err := parseID("task_id", input.TaskID)
	if err != nil {
		return nil, TaskOutput{}, err
	}

	now := h.now()
	switch input.Action {
	case "complete":
		_, err = h.tasks.Complete(ctx, userID, taskID, now)
	case "skip":
		_, err = h.tasks.Skip(ctx, userID, taskID, now)
	case "bad":
		_, err = h.tasks.FlagBad(ctx, userID, taskID, now)
	case "snooze":
		if input.Until == "" {
			return nil, TaskOutput{}, fmt.Errorf("until is required to snooze")
		}
		day, perr := parseDay(input.Until)
		if perr != nil {
			return nil, TaskOutput{}, perr
		}
		_, err = h.tasks.Snooze(ctx, userID, taskID, models.EndOfDay(day), now)
	default:
		return nil, TaskOutput{}, fmt.Errorf("unknown action %q: use complete, skip, snooze or bad", input.Action)
	}
	if err != nil {
		return nil, TaskOutput{}, toolError(err)
	}

	view, err := h.tasks.GetTask(ctx, userID, taskID)
	if err != nil {
		return nil, TaskOutput{}, toolError(err)
	}
	return nil, taskViewToOutput(view), nil
}
