// ABOUTME: Contact MCP tool handlers
// ABOUTME: Implements add_contact, find_contacts, log_interaction and join_group
package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/tend/db"
	"github.com/harperreed/tend/models"
)

type ContactHandlers struct {
	db  *sql.DB
	now Clock
}

func NewContactHandlers(database *sql.DB, now Clock) *ContactHandlers {
	return &ContactHandlers{db: database, now: clockOrSystem(now)}
}

type AddContactInput struct {
	UserID    string `json:"user_id" jsonschema:"User ID (required)"`
	FirstName string `json:"first_name" jsonschema:"First name (required)"`
	LastName  string `json:"last_name,omitempty" jsonschema:"Last name"`
	Bio       string `json:"bio,omitempty" jsonschema:"A few words about the person"`
	Birthday  string `json:"birthday,omitempty" jsonschema:"Birthday YYYY-MM-DD"`
}

type ContactOutput struct {
	ID             string  `json:"id"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name,omitempty"`
	Bio            string  `json:"bio,omitempty"`
	Birthday       *string `json:"birthday,omitempty"`
	FollowUpScore  float64 `json:"follow_up_score"`
	FollowUpReason string  `json:"follow_up_reason,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

func contactToOutput(p *models.Person) ContactOutput {
	out := ContactOutput{
		ID:             p.ID.String(),
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		Bio:            p.Bio,
		FollowUpScore:  p.FollowUpScore,
		FollowUpReason: p.FollowUpReason,
		CreatedAt:      formatTime(p.CreatedAt),
	}
	if p.Birthday != nil {
		s := p.Birthday.Format("2006-01-02")
		out.Birthday = &s
	}
	return out
}

func (h *ContactHandlers) AddContact(ctx context.Context, _ *mcp.CallToolRequest, input AddContactInput) (*mcp.CallToolResult, ContactOutput, error) {
	userID, err := parseID("user_id", input.UserID)
	if err != nil {
		return nil, ContactOutput{}, err
	}
	if strings.TrimSpace(input.FirstName) == "" {
		return nil, ContactOutput{}, fmt.Errorf("first_name is required")
	}

	person := &models.Person{
		UserID:    userID,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Bio:       input.Bio,
	}
	if input.Birthday != "" {
		day, err := parseDay(input.Birthday)
		if err != nil {
			return nil, ContactOutput{}, err
		}
		person.Birthday = &day
	}

	if err := db.CreatePerson(ctx, h.db, person, h.now()); err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to create contact: %w", err)
	}
	return nil, contactToOutput(person), nil
}

type FindContactsInput struct {
	UserID string `json:"user_id" jsonschema:"User ID (required)"`
	Query  string `json:"query,omitempty" jsonschema:"Search by first or last name"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 10)"`
}

type FindContactsOutput struct {
	Contacts []ContactOutput `json:"contacts"`
}

func (h *ContactHandlers) FindContacts(ctx context.Context, _ *mcp.CallToolRequest, input FindContactsInput) (*mcp.CallToolResult, FindContactsOutput, error) {
	userID, err := parseID("user_id", input.UserID)
	if err != nil {
		return nil, FindContactsOutput{}, err
	}
	limit := input.Limit
	if limit == 0 {
		limit = 10
	}

	people, err := db.ListPeople(ctx, h.db, userID, input.Query, limit)
	if err != nil {
		return nil, FindContactsOutput{}, fmt.Errorf("failed to find contacts: %w", err)
	}

	result := make([]ContactOutput, len(people))
	for i := range people {
		result[i] = contactToOutput(&people[i])
	}
	return nil, FindContactsOutput{Contacts: result}, nil
}

type LogInteractionInput struct {
	UserID     string `json:"user_id" jsonschema:"User ID (required)"`
	PersonID   string `json:"person_id" jsonschema:"Person ID (required)"`
	Type       string `json:"type" jsonschema:"message, call, meeting, email, event or note"`
	Note       string `json:"note,omitempty" jsonschema:"What happened"`
	OccurredAt string `json:"occurred_at,omitempty" jsonschema:"When it happened, YYYY-MM-DD (default now)"`
}

type InteractionOutput struct {
	ID         string `json:"id"`
	PersonID   string `json:"person_id"`
	Type       string `json:"type"`
	Note       string `json:"note,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

func (h *ContactHandlers) LogInteraction(ctx context.Context, _ *mcp.CallToolRequest, input LogInteractionInput) (*mcp.CallToolResult, InteractionOutput, error) {
	userID, err := parseID("user_id", input.UserID)
	if err != nil {
		return nil, InteractionOutput{}, err
	}
	personID, err := parseID("person_id", input.PersonID)
	if err != nil {
		return nil, InteractionOutput{}, err
	}
	if !models.ValidInteractionType(input.Type) {
		return nil, InteractionOutput{}, fmt.Errorf("invalid type %q", input.Type)
	}

	if _, err := db.GetPerson(ctx, h.db, userID, personID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, InteractionOutput{}, fmt.Errorf("contact not found: %s", personID)
		}
		return nil, InteractionOutput{}, fmt.Errorf("failed to get contact: %w", err)
	}

	interaction := &models.Interaction{UserID: userID, PersonID: personID, Type: input.Type, Note: input.Note}
	if input.OccurredAt != "" {
		at, err := parseDay(input.OccurredAt)
		if err != nil {
			return nil, InteractionOutput{}, err
		}
		interaction.OccurredAt = at
	}
	if err := db.LogInteraction(ctx, h.db, interaction, h.now()); err != nil {
		return nil, InteractionOutput{}, fmt.Errorf("failed to log interaction: %w", err)
	}

	return nil, InteractionOutput{
		ID:         interaction.ID.String(),
		PersonID:   personID.String(),
		Type:       interaction.Type,
		Note:       interaction.Note,
		OccurredAt: formatTime(interaction.OccurredAt),
	}, nil
}

type JoinGroupInput struct {
	UserID   string `json:"user_id" jsonschema:"User ID (required)"`
	PersonID string `json:"person_id" jsonschema:"Person ID (required)"`
	Group    string `json:"group" jsonschema:"Group name or slug. inner-5, central-50 and strategic-100 are the reserved tiers"`
}

type JoinGroupOutput struct {
	PersonID  string `json:"person_id"`
	GroupID   string `json:"group_id"`
	GroupName string `json:"group_name"`
	GroupSlug string `json:"group_slug"`
}

// JoinGroup adds the person to the group, creating non-reserved groups on first use.
// Joining a reserved tier moves the person out of any other tier.
func (h *ContactHandlers) JoinGroup(ctx context.Context, _ *mcp.CallToolRequest, input JoinGroupInput) (*mcp.CallToolResult, JoinGroupOutput, error) {
	userID, err := parseID("user_id", input.UserID)
	if err != nil {
		return nil, JoinGroupOutput{}, err
	}
	personID, err := parseID("person_id", input.PersonID)
	if err != nil {
		return nil, JoinGroupOutput{}, err
	}

	group, err := EnsureGroup(ctx, h.db, userID, input.Group, h.now())
	if err != nil {
		return nil, JoinGroupOutput{}, err
	}
	if err := db.AddPersonToGroup(ctx, h.db, userID, personID, group.ID, h.now()); err != nil {
		return nil, JoinGroupOutput{}, fmt.Errorf("failed to join group: %w", err)
	}

	return nil, JoinGroupOutput{
		PersonID:  personID.String(),
		GroupID:   group.ID.String(),
		GroupName: group.Name,
		GroupSlug: group.Slug,
	}, nil
}
