// ABOUTME: MCP resource handlers for exposing plans and profiles
// ABOUTME: Read-only access by URI: tend://users/{user_id}/plan and tend://users/{user_id}/people/{person_id}
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/tend/plan"
	"github.com/harperreed/tend/profile"
)

const uriScheme = "tend://"

type ResourceHandlers struct {
	plans    *plan.Service
	profiles *profile.Builder
	now      Clock
}

func NewResourceHandlers(plans *plan.Service, profiles *profile.Builder, now Clock) *ResourceHandlers {
	return &ResourceHandlers{plans: plans, profiles: profiles, now: clockOrSystem(now)}
}

// Templates lists the resource templates ReadResource serves.
func (h *ResourceHandlers) Templates() []*mcp.ResourceTemplate {
	return []*mcp.ResourceTemplate{
		{
			Name:        "todays-plan",
			URITemplate: uriScheme + "users/{user_id}/plan",
			Description: "Today's action plan with its tasks",
			MIMEType:    "application/json",
		},
		{
			Name:        "person-profile",
			URITemplate: uriScheme + "users/{user_id}/people/{person_id}",
			Description: "Narrative profile of one person",
			MIMEType:    "text/markdown",
		},
	}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, uriScheme) {
		return nil, fmt.Errorf("invalid URI scheme: expected %s", uriScheme)
	}

	parts := strings.Split(strings.TrimPrefix(uri, uriScheme), "/")
	if len(parts) < 3 || parts[0] != "users" {
		return nil, mcp.ResourceNotFoundError(uri)
	}
	userID, err := uuid.Parse(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}

	switch {
	case len(parts) == 3 && parts[2] == "plan":
		return h.readPlan(ctx, uri, userID)
	case len(parts) == 4 && parts[2] == "people":
		personID, err := uuid.Parse(parts[3])
		if err != nil {
			return nil, fmt.Errorf("invalid person id: %w", err)
		}
		return h.readProfile(ctx, uri, userID, personID)
	}
	return nil, mcp.ResourceNotFoundError(uri)
}

func (h *ResourceHandlers) readPlan(ctx context.Context, uri string, userID uuid.UUID) (*mcp.ReadResourceResult, error) {
	view, err := h.plans.GetActionPlan(ctx, userID, h.now())
	if err != nil {
		return nil, toolError(err)
	}

	data, err := json.MarshalIndent(planViewToOutput(view), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal plan: %w", err)
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}

func (h *ResourceHandlers) readProfile(ctx context.Context, uri string, userID, personID uuid.UUID) (*mcp.ReadResourceResult, error) {
	p, err := h.profiles.GetPerson(ctx, userID, personID, profile.All(20))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch person: %w", err)
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "text/markdown",
			Text:     p.Narrative(h.now()),
		},
	}}, nil
}
