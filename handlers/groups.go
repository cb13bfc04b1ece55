// ABOUTME: Group lookup shared by the MCP tools and the CLI
// ABOUTME: Finds a group by name or slug and creates it when missing
package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/tend/db"
	"github.com/harperreed/tend/models"
)

// EnsureGroup finds the user's group by name or slug and creates it when missing.
// Reserved tiers are created on demand too.
func EnsureGroup(ctx context.Context, database *sql.DB, userID uuid.UUID, name string, now time.Time) (*models.Group, error) {
	slug := models.Slugify(name)
	if slug == "" {
		return nil, fmt.Errorf("group is required")
	}
	if models.IsReservedSlug(slug) {
		if err := db.EnsureReservedGroups(ctx, database, userID, now); err != nil {
			return nil, err
		}
	}

	group, err := db.GetGroupBySlug(ctx, database, userID, slug)
	if err == nil {
		return group, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up group: %w", err)
	}

	group = &models.Group{UserID: userID, Name: name, Slug: slug}
	if err := db.CreateGroup(ctx, database, group, now); err != nil {
		return nil, err
	}
	return group, nil
}
