// ABOUTME: Profile detail database operations
// ABOUTME: Contact methods, addresses, websites, organizations and person relations
package db

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/harperreed/tend/models"
)

func ensureID(id *uuid.UUID) string {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
	return id.String()
}

func AddContactMethod(ctx context.Context, db *sql.DB, m *models.ContactMethod) error {
	_, err := exec(ctx, db, sq.Insert("contact_methods").
		Columns("id", "person_id", "kind", "value", "label").
		Values(ensureID(&m.ID), m.PersonID.String(), m.Kind, m.Value, nullString(m.Label)))
	if err != nil {
		return fmt.Errorf("failed to add contact method: %w", err)
	}
	return nil
}

func ListContactMethods(ctx context.Context, db *sql.DB, personID uuid.UUID) ([]models.ContactMethod, error) {
	rows, err := query(ctx, db, sq.Select("id", "person_id", "kind", "value", "label").
		From("contact_methods").Where(sq.Eq{"person_id": personID.String()}).OrderBy("kind"))
	if err != nil {
		return nil, fmt.Errorf("failed to list contact methods: %w", err)
	}
	defer rows.Close()

	var out []models.ContactMethod
	for rows.Next() {
		var m models.ContactMethod
		var label sql.NullString
		if err := rows.Scan(&m.ID, &m.PersonID, &m.Kind, &m.Value, &label); err != nil {
			return nil, err
		}
		m.Label = label.String
		out = append(out, m)
	}
	return out, rows.Err()
}

func AddAddress(ctx context.Context, db *sql.DB, a *models.Address) error {
	_, err := exec(ctx, db, sq.Insert("addresses").
		Columns("id", "person_id", "label", "line1", "city", "region", "postal_code", "country").
		Values(ensureID(&a.ID), a.PersonID.String(), nullString(a.Label), nullString(a.Line1),
			nullString(a.City), nullString(a.Region), nullString(a.PostalCode), nullString(a.Country)))
	if err != nil {
		return fmt.Errorf("failed to add address: %w", err)
	}
	return nil
}

func ListAddresses(ctx context.Context, db *sql.DB, personID uuid.UUID) ([]models.Address, error) {
	rows, err := query(ctx, db, sq.Select("id", "person_id", "label", "line1", "city", "region", "postal_code", "country").
		From("addresses").Where(sq.Eq{"person_id": personID.String()}))
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	defer rows.Close()

	var out []models.Address
	for rows.Next() {
		var a models.Address
		var label, line1, city, region, postal, country sql.NullString
		if err := rows.Scan(&a.ID, &a.PersonID, &label, &line1, &city, &region, &postal, &country); err != nil {
			return nil, err
		}
		a.Label, a.Line1, a.City = label.String, line1.String, city.String
		a.Region, a.PostalCode, a.Country = region.String, postal.String, country.String
		out = append(out, a)
	}
	return out, rows.Err()
}

func AddWebsite(ctx context.Context, db *sql.DB, w *models.Website) error {
	_, err := exec(ctx, db, sq.Insert("websites").
		Columns("id", "person_id", "url", "label").
		Values(ensureID(&w.ID), w.PersonID.String(), w.URL, nullString(w.Label)))
	if err != nil {
		return fmt.Errorf("failed to add website: %w", err)
	}
	return nil
}

func ListWebsites(ctx context.Context, db *sql.DB, personID uuid.UUID) ([]models.Website, error) {
	rows, err := query(ctx, db, sq.Select("id", "person_id", "url", "label").
		From("websites").Where(sq.Eq{"person_id": personID.String()}))
	if err != nil {
		return nil, fmt.Errorf("failed to list websites: %w", err)
	}
	defer rows.Close()

	var out []models.Website
	for rows.Next() {
		var w models.Website
		var label sql.NullString
		if err := rows.Scan(&w.ID, &w.PersonID, &w.URL, &label); err != nil {
			return nil, err
		}
		w.Label = label.String
		out = append(out, w)
	}
	return out, rows.Err()
}

func AddOrganization(ctx context.Context, db *sql.DB, o *models.Organization) error {
	_, err := exec(ctx, db, sq.Insert("organizations").
		Columns("id", "person_id", "name", "title").
		Values(ensureID(&o.ID), o.PersonID.String(), o.Name, nullString(o.Title)))
	if err != nil {
		return fmt.Errorf("failed to add organization: %w", err)
	}
	return nil
}

func ListOrganizations(ctx context.Context, db *sql.DB, personID uuid.UUID) ([]models.Organization, error) {
	rows, err := query(ctx, db, sq.Select("id", "person_id", "name", "title").
		From("organizations").Where(sq.Eq{"person_id": personID.String()}).OrderBy("name"))
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer rows.Close()

	var out []models.Organization
	for rows.Next() {
		var o models.Organization
		var title sql.NullString
		if err := rows.Scan(&o.ID, &o.PersonID, &o.Name, &title); err != nil {
			return nil, err
		}
		o.Title = title.String
		out = append(out, o)
	}
	return out, rows.Err()
}

func AddPersonRelation(ctx context.Context, db *sql.DB, r *models.PersonRelation) error {
	if r.PersonID == r.RelatedPersonID {
		return fmt.Errorf("a person cannot be related to themselves")
	}
	_, err := exec(ctx, db, sq.Insert("person_relations").
		Columns("id", "person_id", "related_person_id", "label").
		Values(ensureID(&r.ID), r.PersonID.String(), r.RelatedPersonID.String(), nullString(r.Label)))
	if err != nil {
		return fmt.Errorf("failed to add relation: %w", err)
	}
	return nil
}

// ListPersonRelations resolves the related person's name.
func ListPersonRelations(ctx context.Context, db *sql.DB, personID uuid.UUID) ([]models.PersonRelation, error) {
	rows, err := query(ctx, db, sq.Select("r.id", "r.person_id", "r.related_person_id", "r.label", "p.first_name", "p.last_name").
		From("person_relations r").
		Join("people p ON p.id = r.related_person_id").
		Where(sq.Eq{"r.person_id": personID.String()}))
	if err != nil {
		return nil, fmt.Errorf("failed to list relations: %w", err)
	}
	defer rows.Close()

	var out []models.PersonRelation
	for rows.Next() {
		var r models.PersonRelation
		var label, last sql.NullString
		var first string
		if err := rows.Scan(&r.ID, &r.PersonID, &r.RelatedPersonID, &label, &first, &last); err != nil {
			return nil, err
		}
		r.Label = label.String
		r.RelatedName = models.Person{FirstName: first, LastName: last.String}.FullName()
		out = append(out, r)
	}
	return out, rows.Err()
}
