package database

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite3", "file::memory:?_fk=1")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)
	return db
}

func TestInitializeSeedsSampleData(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, Initialize(ctx, db, false))

	var leads, tasks, activities, notes, logs int
	require.NoError(t, db.Get(&leads, "SELECT COUNT(*) FROM leads"))
	require.NoError(t, db.Get(&tasks, "SELECT COUNT(*) FROM tasks"))
	require.NoError(t, db.Get(&activities, "SELECT COUNT(*) FROM activities"))
	require.NoError(t, db.Get(&notes, "SELECT COUNT(*) FROM notes"))
	require.NoError(t, db.Get(&logs, "SELECT COUNT(*) FROM logs"))

	assert.Equal(t, 3, leads)
	assert.Equal(t, 3, tasks)
	assert.Equal(t, 8, activities)
	assert.Equal(t, 0, notes)
	assert.Equal(t, 0, logs)

	var name string
	require.NoError(t, db.Get(&name, "SELECT name FROM leads WHERE email = 'joao.silva@techcorp.com'"))
	assert.Equal(t, "João Silva", name)
}

func TestInitializeIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, Initialize(ctx, db, false))

	// a row added after the first run must survive a second run
	_, err := db.Exec(`INSERT INTO leads (name, email) VALUES ('Extra', 'extra@example.com')`)
	require.NoError(t, err)

	require.NoError(t, Initialize(ctx, db, false))

	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM leads"))
	assert.Equal(t, 4, count, "second init must not reseed or wipe data")
}

func TestInitializeForceReset(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, Initialize(ctx, db, false))

	_, err := db.Exec(`INSERT INTO leads (name, email) VALUES ('Extra', 'extra@example.com')`)
	require.NoError(t, err)

	require.NoError(t, Initialize(ctx, db, true))

	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM leads"))
	assert.Equal(t, 3, count, "force reset rebuilds the demo dataset")
}

func TestSeedActivitiesWithoutLead(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, Initialize(context.Background(), db, false))

	var unlinked int
	require.NoError(t, db.Get(&unlinked, "SELECT COUNT(*) FROM activities WHERE lead_id IS NULL"))
	assert.Equal(t, 2, unlinked)
}
