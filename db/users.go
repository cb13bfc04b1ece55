// ABOUTME: User database operations
// ABOUTME: Every other row in the store is owned by exactly one user
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

var userColumns = []string{"id", "name", "email", "timezone", "onboarding_stage", "created_at"}

func CreateUser(ctx context.Context, db *sql.DB, u *models.User, now time.Time) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.OnboardingStage == "" {
		u.OnboardingStage = models.OnboardingNew
	}
	u.CreatedAt = now.UTC()

	_, err := exec(ctx, db, sq.Insert("users").Columns(userColumns...).Values(
		u.ID.String(), u.Name, nullString(u.Email), nullString(u.Timezone), u.OnboardingStage, ts(u.CreatedAt),
	))
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func scanUser(scan func(...any) error) (*models.User, error) {
	u := &models.User{}
	var email, tz sql.NullString
	if err := scan(&u.ID, &u.Name, &email, &tz, &u.OnboardingStage, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Email = email.String
	u.Timezone = tz.String
	return u, nil
}

func GetUser(ctx context.Context, db *sql.DB, id uuid.UUID) (*models.User, error) {
	b := sq.Select(userColumns...).From("users").Where(sq.Eq{"id": id.String()})
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	u, err := scanUser(db.QueryRowContext(ctx, query, args...).Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return u, err
}

func ListUsers(ctx context.Context, db *sql.DB) ([]models.User, error) {
	rows, err := query(ctx, db, sq.Select(userColumns...).From("users").OrderBy("created_at"))
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows.Scan)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func UpdateOnboardingStage(ctx context.Context, db *sql.DB, userID uuid.UUID, stage string) error {
	switch stage {
	case models.OnboardingNew, models.OnboardingGrowing, models.OnboardingEstablished:
	default:
		return fmt.Errorf("unknown onboarding stage %q", stage)
	}
	return execOne(ctx, db, sq.Update("users").Set("onboarding_stage", stage).Where(sq.Eq{"id": userID.String()}))
}
