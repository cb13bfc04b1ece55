// ABOUTME: Follow-up score MCP tool handlers
// ABOUTME: Implements calculate_follow_up_score and update_follow_up_score
package handlers

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/tend/followup"
)

type FollowUpHandlers struct {
	scores *followup.Service
	now    Clock
}

func NewFollowUpHandlers(svc *followup.Service, now Clock) *FollowUpHandlers {
	return &FollowUpHandlers{scores: svc, now: clockOrSystem(now)}
}

type ScoreInput struct {
	UserID   string `json:"user_id" jsonschema:"User ID (required)"`
	PersonID string `json:"person_id" jsonschema:"Person to score (required)"`
}

type ScoreOutput struct {
	PersonID string  `json:"person_id"`
	Score    float64 `json:"score"`
	Reason   string  `json:"reason"`
}

func (h *FollowUpHandlers) CalculateFollowUpScore(ctx context.Context, _ *mcp.CallToolRequest, input ScoreInput) (*mcp.CallToolResult, ScoreOutput, error) {
	userID, err := parseID("user_id", input.UserID)
	if err != nil {
		return nil, ScoreOutput{}, err
	}
	personID, err := parseID("person_id", input.PersonID)
	if err != nil {
		return nil, ScoreOutput{}, err
	}
	score, err := h.scores.Calculate(ctx, userID, personID, h.now())
	if err != nil {
		return nil, ScoreOutput{}, toolError(err)
	}
	return nil, ScoreOutput{PersonID: input.PersonID, Score: score.Score, Reason: score.Reason}, nil
}

type UpdateScoreInput struct {
	UserID   string   `json:"user_id" jsonschema:"User ID (required)"`
	PersonID string   `json:"person_id" jsonschema:"Person to score (required)"`
	Score    *float64 `json:"score,omitempty" jsonschema:"Manual score between 0 and 1. Omit to recalculate"`
}

func (h *FollowUpHandlers) UpdateFollowUpScore(ctx context.Context, _ *mcp.CallToolRequest, input UpdateScoreInput) (*mcp.CallToolResult, ScoreOutput, error) {
	userID, err := parseID("user_id", input.UserID)
	if err != nil {
		return nil, ScoreOutput{}, err
	}
	personID, err := parseID("person_id", input.PersonID)
	if err != nil {
		return nil, ScoreOutput{}, err
	}
	score, err := h.scores.Update(ctx, userID, personID, input.Score, h.now())
	if err != nil {
		return nil, ScoreOutput{}, toolError(err)
	}
	return nil, ScoreOutput{PersonID: input.PersonID, Score: score.Score, Reason: score.Reason}, nil
}
