// ABOUTME: MCP prompt handlers for relationship workflows
// ABOUTME: Builds person briefings and plan reviews from stored data
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/tend/apperr"
	"github.com/harperreed/tend/plan"
	"github.com/harperreed/tend/profile"
)

type PromptHandlers struct {
	plans    *plan.Service
	profiles *profile.Builder
	now      Clock
}

func NewPromptHandlers(plans *plan.Service, profiles *profile.Builder, now Clock) *PromptHandlers {
	return &PromptHandlers{plans: plans, profiles: profiles, now: clockOrSystem(now)}
}

// Prompts lists the prompts GetPrompt serves.
func (h *PromptHandlers) Prompts() []*mcp.Prompt {
	return []*mcp.Prompt{
		{
			Name:        "person-briefing",
			Description: "Brief me on one person before I reach out",
			Arguments: []*mcp.PromptArgument{
				{Name: "user_id", Required: true},
				{Name: "person_id", Required: true},
			},
		},
		{
			Name:        "plan-review",
			Description: "Walk through today's action plan",
			Arguments: []*mcp.PromptArgument{
				{Name: "user_id", Required: true},
			},
		},
	}
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	args := request.Params.Arguments
	switch request.Params.Name {
	case "person-briefing":
		return h.personBriefing(ctx, args)
	case "plan-review":
		return h.planReview(ctx, args)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", request.Params.Name)
	}
}

func promptIDs(args map[string]string, names ...string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, len(names))
	for i, name := range names {
		id, err := parseID(name, args[name])
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

func userMessage(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: text},
			},
		},
	}
}

func (h *PromptHandlers) personBriefing(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	ids, err := promptIDs(args, "user_id", "person_id")
	if err != nil {
		return nil, err
	}
	p, err := h.profiles.GetPerson(ctx, ids[0], ids[1], profile.All(10))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch person: %w", err)
	}

	var b strings.Builder
	b.WriteString("Here is what I know about someone in my network:\n\n")
	b.WriteString(p.Narrative(h.now()))
	b.WriteString("\nPlease give me:")
	b.WriteString("\n1. A two-sentence refresher on who they are to me")
	b.WriteString("\n2. Anything time-sensitive, like a birthday or a long silence")
	b.WriteString("\n3. One natural opener for my next message")

	return userMessage(fmt.Sprintf("Briefing on %s", p.Person.FullName()), b.String()), nil
}

func (h *PromptHandlers) planReview(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	ids, err := promptIDs(args, "user_id")
	if err != nil {
		return nil, err
	}
	view, err := h.plans.GetActionPlan(ctx, ids[0], h.now())
	if apperr.IsNotFound(err) {
		return userMessage("No plan yet", "I have no action plan for today. Generate one with generate_action_plan, then walk me through it."), nil
	}
	if err != nil {
		return nil, toolError(err)
	}

	var b strings.Builder
	ap := view.ActionPlan
	fmt.Fprintf(&b, "Today's plan (%s): %s\n%s\n", ap.BuildDate, ap.ExecutiveSummary.Title, ap.ExecutiveSummary.Content)
	for _, section := range ap.GroupSections {
		fmt.Fprintf(&b, "\n%s %s\n", section.Icon, section.Title)
		for _, d := range section.Tasks {
			status := "not built"
			if d.ID != "" {
				status = "task " + d.ID
			}
			fmt.Fprintf(&b, "- %s: %s (%s, due %s, %s)\n", d.PersonName, d.CallToAction, d.TaskType, d.TaskDueDate, status)
		}
	}
	b.WriteString("\nHelp me decide what to do first and draft anything I need to send.")

	return userMessage("Review of today's plan", b.String()), nil
}
