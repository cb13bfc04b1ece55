// ABOUTME: Narrative profile builder for one person
// ABOUTME: Each section is loaded only when requested so callers can tell "not asked" from "none"
package profile

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/harperreed/tend/db"
	"github.com/harperreed/tend/models"
)

// Options selects the sections GetPerson loads.
type Options struct {
	ContactMethods bool
	Addresses      bool
	Websites       bool
	Interactions   bool
	Groups         bool
	Tasks          bool
	Organizations  bool
	Relations      bool
	// InteractionLimit caps the interactions loaded, newest first. Zero loads all.
	InteractionLimit int
}

// All requests every section with the given interaction cap.
func All(interactionLimit int) Options {
	return Options{
		ContactMethods:   true,
		Addresses:        true,
		Websites:         true,
		Interactions:     true,
		Groups:           true,
		Tasks:            true,
		Organizations:    true,
		Relations:        true,
		InteractionLimit: interactionLimit,
	}
}

// Profile is a person plus the requested sections. A nil section was not
// requested; a requested section with no rows is an empty, non-nil slice.
type Profile struct {
	Person         models.Person           `json:"person"`
	ContactMethods []models.ContactMethod  `json:"contact_methods,omitempty"`
	Addresses      []models.Address        `json:"addresses,omitempty"`
	Websites       []models.Website        `json:"websites,omitempty"`
	Interactions   []models.Interaction    `json:"interactions,omitempty"`
	Groups         []models.Group          `json:"groups,omitempty"`
	Tasks          []models.Task           `json:"tasks,omitempty"`
	Organizations  []models.Organization   `json:"organizations,omitempty"`
	Relations      []models.PersonRelation `json:"person_relations,omitempty"`
}

type Builder struct {
	db *sql.DB
}

func NewBuilder(database *sql.DB) *Builder {
	return &Builder{db: database}
}

// GetPerson loads the person owned by userID and the sections named in opts.
// A missing or foreign person returns an error wrapping db.ErrNotFound.
func (b *Builder) GetPerson(ctx context.Context, userID, personID uuid.UUID, opts Options) (*Profile, error) {
	person, err := db.GetPerson(ctx, b.db, userID, personID)
	if err != nil {
		return nil, fmt.Errorf("person %s: %w", personID, err)
	}
	p := &Profile{Person: *person}

	if opts.ContactMethods {
		if p.ContactMethods, err = db.ListContactMethods(ctx, b.db, personID); err != nil {
			return nil, err
		}
		p.ContactMethods = nonNil(p.ContactMethods)
	}
	if opts.Addresses {
		if p.Addresses, err = db.ListAddresses(ctx, b.db, personID); err != nil {
			return nil, err
		}
		p.Addresses = nonNil(p.Addresses)
	}
	if opts.Websites {
		if p.Websites, err = db.ListWebsites(ctx, b.db, personID); err != nil {
			return nil, err
		}
		p.Websites = nonNil(p.Websites)
	}
	if opts.Interactions {
		if p.Interactions, err = db.ListInteractions(ctx, b.db, personID, opts.InteractionLimit); err != nil {
			return nil, err
		}
		p.Interactions = nonNil(p.Interactions)
	}
	if opts.Groups {
		if p.Groups, err = db.ListGroupsForPerson(ctx, b.db, personID); err != nil {
			return nil, err
		}
		p.Groups = nonNil(p.Groups)
	}
	if opts.Tasks {
		if p.Tasks, err = db.ListTasks(ctx, b.db, userID, db.TaskFilter{PersonID: &personID}); err != nil {
			return nil, err
		}
		p.Tasks = nonNil(p.Tasks)
	}
	if opts.Organizations {
		if p.Organizations, err = db.ListOrganizations(ctx, b.db, personID); err != nil {
			return nil, err
		}
		p.Organizations = nonNil(p.Organizations)
	}
	if opts.Relations {
		if p.Relations, err = db.ListPersonRelations(ctx, b.db, personID); err != nil {
			return nil, err
		}
		p.Relations = nonNil(p.Relations)
	}

	return p, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Completeness is the share of profile facets that have something in them.
// Sections that were not loaded count as empty.
func (p *Profile) Completeness() float64 {
	facets := []bool{
		p.Person.Bio != "",
		p.Person.Birthday != nil,
		p.Person.AISummary != nil,
		len(p.ContactMethods) > 0,
		len(p.Addresses) > 0,
		len(p.Websites) > 0,
		len(p.Organizations) > 0,
		len(p.Relations) > 0,
		len(p.Groups) > 0,
		len(p.Interactions) > 0,
	}
	filled := 0
	for _, f := range facets {
		if f {
			filled++
		}
	}
	return float64(filled) / float64(len(facets))
}

// Tier returns the closest reserved tier among the loaded groups, and how many reserved groups were found.
func (p *Profile) Tier() (models.Tier, int) {
	return models.TightestTier(p.Groups)
}
