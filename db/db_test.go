package db

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/tend/models"
)

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedUser(t *testing.T, db *sql.DB) *models.User {
	t.Helper()
	u := &models.User{Name: "Ada", OnboardingStage: models.OnboardingGrowing}
	require.NoError(t, CreateUser(context.Background(), db, u, testNow))
	return u
}

func seedPerson(t *testing.T, db *sql.DB, userID uuid.UUID, first string) *models.Person {
	t.Helper()
	p := &models.Person{UserID: userID, FirstName: first}
	require.NoError(t, CreatePerson(context.Background(), db, p, testNow))
	return p
}

func TestOpenDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")

	db, err := OpenDatabase(dbPath)
	require.NoError(t, err)
	defer db.Close()

	_, err = os.Stat(dbPath)
	assert.NoError(t, err)

	var mode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	var fk int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestOpenDatabaseInvalidPath(t *testing.T) {
	// A regular file where a directory is expected.
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, err := OpenDatabase(filepath.Join(blocker, "sub", "test.db"))
	assert.Error(t, err)
}

func TestOpenDatabaseTwice(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := OpenDatabase(dbPath)
	require.NoError(t, err)
	db.Close()

	db, err = OpenDatabase(dbPath)
	require.NoError(t, err)
	db.Close()
}

func TestTimestampOrdering(t *testing.T) {
	a := time.Date(2026, 1, 1, 0, 0, 5, 0, time.UTC)
	b := a.Add(500 * time.Millisecond)
	assert.Less(t, ts(a), ts(b))
	assert.Len(t, ts(a), len(ts(b)))
}
