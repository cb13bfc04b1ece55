// ABOUTME: Group and membership database operations
// ABOUTME: Keeps a person in at most one reserved tier group at a time
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

var groupColumns = []string{"id", "user_id", "name", "slug", "created_at"}

func CreateGroup(ctx context.Context, db *sql.DB, g *models.Group, now time.Time) error {
	if g.Slug == "" {
		g.Slug = models.Slugify(g.Name)
	}
	if g.Slug == "" {
		return fmt.Errorf("group name %q has no usable characters", g.Name)
	}
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	g.CreatedAt = now.UTC()

	_, err := exec(ctx, db, sq.Insert("person_groups").Columns(groupColumns...).Values(
		g.ID.String(), g.UserID.String(), g.Name, g.Slug, ts(g.CreatedAt),
	))
	if err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}
	return nil
}

// EnsureReservedGroups creates the reserved tier groups the user is missing.
func EnsureReservedGroups(ctx context.Context, db *sql.DB, userID uuid.UUID, now time.Time) error {
	for _, tier := range models.ReservedTiers {
		_, err := exec(ctx, db, sq.Insert("person_groups").Options("OR IGNORE").Columns(groupColumns...).Values(
			uuid.New().String(), userID.String(), tier.Name, tier.Slug, ts(now),
		))
		if err != nil {
			return fmt.Errorf("failed to create reserved group %s: %w", tier.Slug, err)
		}
	}
	return nil
}

func scanGroup(scan func(...any) error) (*models.Group, error) {
	g := &models.Group{}
	if err := scan(&g.ID, &g.UserID, &g.Name, &g.Slug, &g.CreatedAt); err != nil {
		return nil, err
	}
	return g, nil
}

func listGroups(ctx context.Context, q querier, b sq.SelectBuilder) ([]models.Group, error) {
	rows, err := query(ctx, q, b)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []models.Group
	for rows.Next() {
		g, err := scanGroup(rows.Scan)
		if err != nil {
			return nil, err
		}
		groups = append(groups, *g)
	}
	return groups, rows.Err()
}

func GetGroupBySlug(ctx context.Context, db *sql.DB, userID uuid.UUID, slug string) (*models.Group, error) {
	b := sq.Select(groupColumns...).From("person_groups").Where(sq.Eq{"user_id": userID.String(), "slug": slug})
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	g, err := scanGroup(db.QueryRowContext(ctx, query, args...).Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return g, err
}

func ListGroups(ctx context.Context, db *sql.DB, userID uuid.UUID) ([]models.Group, error) {
	return listGroups(ctx, db, sq.Select(groupColumns...).From("person_groups").
		Where(sq.Eq{"user_id": userID.String()}).
		OrderBy("name"))
}

func ListGroupsForPerson(ctx context.Context, db *sql.DB, personID uuid.UUID) ([]models.Group, error) {
	return listGroups(ctx, db, sq.Select(qualified("g", groupColumns)...).
		From("person_groups g").
		Join("group_members gm ON gm.group_id = g.id").
		Where(sq.Eq{"gm.person_id": personID.String()}).
		OrderBy("g.name"))
}

// AddPersonToGroup adds the membership. Joining a reserved group removes the person
// from any other reserved group of the same user in the same transaction.
func AddPersonToGroup(ctx context.Context, db *sql.DB, userID, personID, groupID uuid.UUID, now time.Time) error {
	return withTx(ctx, db, func(tx *sql.Tx) error {
		var slug string
		err := queryRow(ctx, tx, sq.Select("slug").From("person_groups").
			Where(sq.Eq{"id": groupID.String(), "user_id": userID.String()}), &slug)
		if err != nil {
			return fmt.Errorf("group %s: %w", groupID, err)
		}

		var owner string
		err = queryRow(ctx, tx, sq.Select("user_id").From("people").
			Where(sq.Eq{"id": personID.String(), "user_id": userID.String()}), &owner)
		if err != nil {
			return fmt.Errorf("person %s: %w", personID, err)
		}

		if models.IsReservedSlug(slug) {
			reserved := make([]string, 0, len(models.ReservedTiers))
			for _, t := range models.ReservedTiers {
				if t.Slug != slug {
					reserved = append(reserved, t.Slug)
				}
			}
			sub := sq.Select("id").From("person_groups").Where(sq.Eq{"user_id": userID.String(), "slug": reserved})
			subSQL, subArgs, err := sub.ToSql()
			if err != nil {
				return err
			}
			_, err = exec(ctx, tx, sq.Delete("group_members").
				Where(sq.Eq{"person_id": personID.String()}).
				Where(sq.Expr("group_id IN ("+subSQL+")", subArgs...)))
			if err != nil {
				return fmt.Errorf("failed to clear reserved groups: %w", err)
			}
		}

		_, err = exec(ctx, tx, sq.Insert("group_members").Options("OR IGNORE").
			Columns("group_id", "person_id", "created_at").
			Values(groupID.String(), personID.String(), ts(now)))
		return err
	})
}

func RemovePersonFromGroup(ctx context.Context, db *sql.DB, personID, groupID uuid.UUID) error {
	return execOne(ctx, db, sq.Delete("group_members").
		Where(sq.Eq{"group_id": groupID.String(), "person_id": personID.String()}))
}

func ListGroupMembers(ctx context.Context, db *sql.DB, groupID uuid.UUID) ([]models.Person, error) {
	return listPeople(ctx, db, sq.Select(qualified("p", personColumns)...).
		From("people p").
		Join("group_members gm ON gm.person_id = p.id").
		Where(sq.Eq{"gm.group_id": groupID.String()}).
		OrderBy("p.first_name"))
}
