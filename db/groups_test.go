package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/tend/models"
)

func TestCreateGroupSlug(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	u := seedUser(t, db)

	g := &models.Group{UserID: u.ID, Name: "Book Club!"}
	require.NoError(t, CreateGroup(ctx, db, g, testNow))
	assert.Equal(t, "book-club", g.Slug)

	// Slugs are unique per user.
	assert.Error(t, CreateGroup(ctx, db, &models.Group{UserID: u.ID, Name: "book club"}, testNow))
	assert.Error(t, CreateGroup(ctx, db, &models.Group{UserID: u.ID, Name: "!!!"}, testNow))

	got, err := GetGroupBySlug(ctx, db, u.ID, "book-club")
	require.NoError(t, err)
	assert.Equal(t, g.ID, got.ID)
}

func TestEnsureReservedGroupsIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	u := seedUser(t, db)

	require.NoError(t, EnsureReservedGroups(ctx, db, u.ID, testNow))
	require.NoError(t, EnsureReservedGroups(ctx, db, u.ID, testNow))

	groups, err := ListGroups(ctx, db, u.ID)
	require.NoError(t, err)
	assert.Len(t, groups, len(models.ReservedTiers))
}

func TestReservedMembershipIsExclusive(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	u := seedUser(t, db)
	p := seedPerson(t, db, u.ID, "Alan")
	require.NoError(t, EnsureReservedGroups(ctx, db, u.ID, testNow))

	inner, err := GetGroupBySlug(ctx, db, u.ID, models.GroupInner5)
	require.NoError(t, err)
	central, err := GetGroupBySlug(ctx, db, u.ID, models.GroupCentral50)
	require.NoError(t, err)
	hobby := &models.Group{UserID: u.ID, Name: "Chess"}
	require.NoError(t, CreateGroup(ctx, db, hobby, testNow))

	require.NoError(t, AddPersonToGroup(ctx, db, u.ID, p.ID, hobby.ID, testNow))
	require.NoError(t, AddPersonToGroup(ctx, db, u.ID, p.ID, central.ID, testNow))
	require.NoError(t, AddPersonToGroup(ctx, db, u.ID, p.ID, inner.ID, testNow))
	// Re-adding is a no-op.
	require.NoError(t, AddPersonToGroup(ctx, db, u.ID, p.ID, inner.ID, testNow))

	groups, err := ListGroupsForPerson(ctx, db, p.ID)
	require.NoError(t, err)
	var slugs []string
	for _, g := range groups {
		slugs = append(slugs, g.Slug)
	}
	assert.ElementsMatch(t, []string{"chess", models.GroupInner5}, slugs)

	members, err := ListGroupMembers(ctx, db, central.ID)
	require.NoError(t, err)
	assert.Empty(t, members)

	require.NoError(t, RemovePersonFromGroup(ctx, db, p.ID, hobby.ID))
	assert.ErrorIs(t, RemovePersonFromGroup(ctx, db, p.ID, hobby.ID), ErrNotFound)
}

func TestAddPersonToGroupRejectsForeignRows(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	u := seedUser(t, db)
	other := seedUser(t, db)
	p := seedPerson(t, db, other.ID, "Foreign")
	require.NoError(t, EnsureReservedGroups(ctx, db, u.ID, testNow))
	g, err := GetGroupBySlug(ctx, db, u.ID, models.GroupInner5)
	require.NoError(t, err)

	err = AddPersonToGroup(ctx, db, u.ID, p.ID, g.ID, testNow)
	assert.ErrorIs(t, err, ErrNotFound)
}
