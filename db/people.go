// ABOUTME: Person database operations
// ABOUTME: Owner-scoped CRUD plus follow-up score and summary updates
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/harperreed/tend/models"
)

const dateLayout = "2006-01-02"

var personColumns = []string{
	"id", "user_id", "first_name", "last_name", "bio", "birthday",
	"follow_up_score", "follow_up_reason", "ai_summary", "created_at", "updated_at",
}

func qualified(prefix string, cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = prefix + "." + c
	}
	return out
}

func CreatePerson(ctx context.Context, db *sql.DB, p *models.Person, now time.Time) error {
	if strings.TrimSpace(p.FirstName) == "" {
		return fmt.Errorf("first name is required")
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = now.UTC()
	p.UpdatedAt = p.CreatedAt

	var birthday any
	if p.Birthday != nil {
		birthday = p.Birthday.UTC().Format(dateLayout)
	}
	summary, err := encodeSummary(p.AISummary)
	if err != nil {
		return err
	}

	_, err = exec(ctx, db, sq.Insert("people").Columns(personColumns...).Values(
		p.ID.String(), p.UserID.String(), p.FirstName, nullString(p.LastName), nullString(p.Bio), birthday,
		p.FollowUpScore, nullString(p.FollowUpReason), summary, ts(p.CreatedAt), ts(p.UpdatedAt),
	))
	if err != nil {
		return fmt.Errorf("failed to create person: %w", err)
	}
	return nil
}

func encodeSummary(s *models.AISummary) (any, error) {
	if s == nil {
		return nil, nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode ai summary: %w", err)
	}
	return string(data), nil
}

func scanPerson(scan func(...any) error) (*models.Person, error) {
	p := &models.Person{}
	var lastName, bio, reason, summary sql.NullString
	var birthday sql.NullTime
	if err := scan(&p.ID, &p.UserID, &p.FirstName, &lastName, &bio, &birthday,
		&p.FollowUpScore, &reason, &summary, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.LastName = lastName.String
	p.Bio = bio.String
	p.FollowUpReason = reason.String
	p.Birthday = timePtr(birthday)
	if summary.Valid && summary.String != "" {
		var s models.AISummary
		if err := json.Unmarshal([]byte(summary.String), &s); err != nil {
			return nil, fmt.Errorf("failed to decode ai summary for %s: %w", p.ID, err)
		}
		p.AISummary = &s
	}
	return p, nil
}

// GetPerson returns the person only when owned by userID.
func GetPerson(ctx context.Context, db *sql.DB, userID, id uuid.UUID) (*models.Person, error) {
	b := sq.Select(personColumns...).From("people").Where(sq.Eq{"id": id.String(), "user_id": userID.String()})
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	p, err := scanPerson(db.QueryRowContext(ctx, query, args...).Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return p, err
}

func listPeople(ctx context.Context, db *sql.DB, b sq.SelectBuilder) ([]models.Person, error) {
	rows, err := query(ctx, db, b)
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}
	defer rows.Close()

	var people []models.Person
	for rows.Next() {
		p, err := scanPerson(rows.Scan)
		if err != nil {
			return nil, err
		}
		people = append(people, *p)
	}
	return people, rows.Err()
}

// ListPeople returns a user's people ordered by name. An empty search matches everyone.
func ListPeople(ctx context.Context, db *sql.DB, userID uuid.UUID, search string, limit int) ([]models.Person, error) {
	b := sq.Select(personColumns...).From("people").
		Where(sq.Eq{"user_id": userID.String()}).
		OrderBy("first_name", "last_name")
	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		b = b.Where(sq.Or{
			sq.Like{"LOWER(first_name)": pattern},
			sq.Like{"LOWER(last_name)": pattern},
		})
	}
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	return listPeople(ctx, db, b)
}

// ListPeopleWithBirthdays returns every person of the user with a birthday on file.
func ListPeopleWithBirthdays(ctx context.Context, db *sql.DB, userID uuid.UUID) ([]models.Person, error) {
	return listPeople(ctx, db, sq.Select(personColumns...).From("people").
		Where(sq.Eq{"user_id": userID.String()}).
		Where(sq.NotEq{"birthday": nil}).
		OrderBy("first_name"))
}

// ListPeopleByIDs returns the owned subset of ids. Unknown ids are ignored.
func ListPeopleByIDs(ctx context.Context, db *sql.DB, userID uuid.UUID, ids []uuid.UUID) ([]models.Person, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = id.String()
	}
	return listPeople(ctx, db, sq.Select(personColumns...).From("people").
		Where(sq.Eq{"user_id": userID.String(), "id": strs}).
		OrderBy("first_name"))
}

// ListPeopleInGroupWithoutContactSince returns members of the user's group with the given slug
// who have no communication interaction at or after since. Notes do not count.
func ListPeopleInGroupWithoutContactSince(ctx context.Context, db *sql.DB, userID uuid.UUID, slug string, since time.Time) ([]models.Person, error) {
	return listPeople(ctx, db, sq.Select(qualified("p", personColumns)...).
		From("people p").
		Join("group_members gm ON gm.person_id = p.id").
		Join("person_groups g ON g.id = gm.group_id").
		Where(sq.Eq{"p.user_id": userID.String(), "g.slug": slug}).
		Where(sq.Expr(
			"NOT EXISTS (SELECT 1 FROM interactions i WHERE i.person_id = p.id AND i.type != ? AND i.occurred_at >= ?)",
			models.InteractionNote, ts(since),
		)).
		OrderBy("p.first_name"))
}

// UpdateFollowUpScore writes the score and its reason onto the person row.
func UpdateFollowUpScore(ctx context.Context, db *sql.DB, userID, id uuid.UUID, score float64, reason string, now time.Time) error {
	return execOne(ctx, db, sq.Update("people").
		Set("follow_up_score", score).
		Set("follow_up_reason", reason).
		Set("updated_at", ts(now)).
		Where(sq.Eq{"id": id.String(), "user_id": userID.String()}))
}

func UpdateAISummary(ctx context.Context, db *sql.DB, userID, id uuid.UUID, summary *models.AISummary, now time.Time) error {
	enc, err := encodeSummary(summary)
	if err != nil {
		return err
	}
	return execOne(ctx, db, sq.Update("people").
		Set("ai_summary", enc).
		Set("updated_at", ts(now)).
		Where(sq.Eq{"id": id.String(), "user_id": userID.String()}))
}
