// ABOUTME: Interaction database operations
// ABOUTME: Interactions are append-only and read newest first
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/harperreed/tend/models"
)

var interactionColumns = []string{"id", "user_id", "person_id", "type", "note", "occurred_at", "created_at"}

func LogInteraction(ctx context.Context, db *sql.DB, i *models.Interaction, now time.Time) error {
	if !models.ValidInteractionType(i.Type) {
		return fmt.Errorf("invalid interaction type %q", i.Type)
	}
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.OccurredAt.IsZero() {
		i.OccurredAt = now
	}
	i.OccurredAt = i.OccurredAt.UTC()
	i.CreatedAt = now.UTC()

	_, err := exec(ctx, db, sq.Insert("interactions").Columns(interactionColumns...).Values(
		i.ID.String(), i.UserID.String(), i.PersonID.String(), i.Type, nullString(i.Note), ts(i.OccurredAt), ts(i.CreatedAt),
	))
	if err != nil {
		return fmt.Errorf("failed to log interaction: %w", err)
	}
	return nil
}

// ListInteractions returns the person's interactions, newest first. limit <= 0 means all.
func ListInteractions(ctx context.Context, db *sql.DB, personID uuid.UUID, limit int) ([]models.Interaction, error) {
	b := sq.Select(interactionColumns...).From("interactions").
		Where(sq.Eq{"person_id": personID.String()}).
		OrderBy("occurred_at DESC")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}

	rows, err := query(ctx, db, b)
	if err != nil {
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}
	defer rows.Close()

	var out []models.Interaction
	for rows.Next() {
		var i models.Interaction
		var note sql.NullString
		if err := rows.Scan(&i.ID, &i.UserID, &i.PersonID, &i.Type, &note, &i.OccurredAt, &i.CreatedAt); err != nil {
			return nil, err
		}
		i.Note = note.String
		out = append(out, i)
	}
	return out, rows.Err()
}
