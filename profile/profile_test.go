package profile

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/tend/db"
	"github.com/harperreed/tend/models"
)

var now = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func seed(t *testing.T, database *sql.DB) (*models.User, *models.Person) {
	t.Helper()
	ctx := context.Background()
	u := &models.User{Name: "Ada"}
	require.NoError(t, db.CreateUser(ctx, database, u, now))
	require.NoError(t, db.EnsureReservedGroups(ctx, database, u.ID, now))

	bday := time.Date(1985, 3, 20, 0, 0, 0, 0, time.UTC)
	p := &models.Person{UserID: u.ID, FirstName: "Grace", LastName: "Hopper", Bio: "Navy", Birthday: &bday}
	require.NoError(t, db.CreatePerson(ctx, database, p, now))

	inner, err := db.GetGroupBySlug(ctx, database, u.ID, models.GroupInner5)
	require.NoError(t, err)
	require.NoError(t, db.AddPersonToGroup(ctx, database, u.ID, p.ID, inner.ID, now))
	require.NoError(t, db.AddOrganization(ctx, database, &models.Organization{PersonID: p.ID, Name: "Navy", Title: "Rear Admiral"}))
	require.NoError(t, db.LogInteraction(ctx, database, &models.Interaction{
		UserID: u.ID, PersonID: p.ID, Type: models.InteractionCall, Note: "talked COBOL", OccurredAt: now.AddDate(0, 0, -5),
	}, now))
	require.NoError(t, db.LogInteraction(ctx, database, &models.Interaction{
		UserID: u.ID, PersonID: p.ID, Type: models.InteractionNote, Note: "likes clocks", OccurredAt: now.AddDate(0, 0, -2),
	}, now))
	return u, p
}

func TestGetPersonSectionsAreIndependent(t *testing.T) {
	database := setupTestDB(t)
	u, p := seed(t, database)
	b := NewBuilder(database)

	prof, err := b.GetPerson(context.Background(), u.ID, p.ID, Options{Organizations: true, Websites: true})
	require.NoError(t, err)

	assert.Len(t, prof.Organizations, 1)
	// Requested but empty.
	assert.NotNil(t, prof.Websites)
	assert.Empty(t, prof.Websites)
	// Not requested.
	assert.Nil(t, prof.Groups)
	assert.Nil(t, prof.Interactions)
	assert.Nil(t, prof.ContactMethods)
	assert.Nil(t, prof.Tasks)
}

func TestGetPersonNotFound(t *testing.T) {
	database := setupTestDB(t)
	u, p := seed(t, database)
	b := NewBuilder(database)

	_, err := b.GetPerson(context.Background(), u.ID, uuid.New(), All(5))
	assert.ErrorIs(t, err, db.ErrNotFound)

	_, err = b.GetPerson(context.Background(), uuid.New(), p.ID, All(5))
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestNarrative(t *testing.T) {
	database := setupTestDB(t)
	u, p := seed(t, database)

	prof, err := NewBuilder(database).GetPerson(context.Background(), u.ID, p.ID, All(1))
	require.NoError(t, err)
	require.Len(t, prof.Interactions, 1)

	text := prof.Narrative(now)
	assert.Contains(t, text, "## Grace Hopper (id: "+p.ID.String()+")")
	assert.Contains(t, text, "Birthday: March 20 (in 6 days)")
	assert.Contains(t, text, "Tier: Inner 5, reach out weekly")
	assert.Contains(t, text, "Rear Admiral at Navy")
	assert.Contains(t, text, "note to self, 2 days ago: likes clocks")
	assert.Contains(t, text, "Addresses: none")
	assert.NotContains(t, text, "talked COBOL")
}

func TestNarrativeSkipsUnrequestedSections(t *testing.T) {
	database := setupTestDB(t)
	u, p := seed(t, database)

	prof, err := NewBuilder(database).GetPerson(context.Background(), u.ID, p.ID, Options{})
	require.NoError(t, err)

	text := prof.Narrative(now)
	assert.NotContains(t, text, "Groups:")
	assert.NotContains(t, text, "Recent interactions")
}

func TestCompleteness(t *testing.T) {
	empty := &Profile{Person: models.Person{FirstName: "X"}}
	assert.Equal(t, 0.0, empty.Completeness())

	bday := now
	full := &Profile{
		Person:         models.Person{Bio: "b", Birthday: &bday, AISummary: &models.AISummary{Summary: "s"}},
		ContactMethods: []models.ContactMethod{{}},
		Addresses:      []models.Address{{}},
		Websites:       []models.Website{{}},
		Organizations:  []models.Organization{{}},
		Relations:      []models.PersonRelation{{}},
		Groups:         []models.Group{{}},
		Interactions:   []models.Interaction{{}},
	}
	assert.Equal(t, 1.0, full.Completeness())
}
