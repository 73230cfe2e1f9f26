package testdata

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordanlanch/leadpipe/pkg/database"
	"github.com/jordanlanch/leadpipe/pkg/models"
)

func TestGenerateLead(t *testing.T) {
	config := DefaultConfig(1)

	lead := GenerateLead(config)

	assert.NotEmpty(t, lead.Name)
	assert.Contains(t, lead.Email, "@")
	assert.True(t, models.ValidLeadStatus(lead.Status))
	require.NotNil(t, lead.Score)
	assert.GreaterOrEqual(t, *lead.Score, config.MinScore)
	assert.LessOrEqual(t, *lead.Score, config.MaxScore)
	require.NotNil(t, lead.Value)
	assert.Greater(t, *lead.Value, 0.0)
}

func TestGenerateLeadsCount(t *testing.T) {
	leads := GenerateLeads(DefaultConfig(50))
	assert.Len(t, leads, 50)
}

func TestBulkInsertLeads(t *testing.T) {
	db, err := sqlx.Open("sqlite3", "file::memory:?_fk=1")
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(1)
	require.NoError(t, database.Initialize(context.Background(), db, false))

	leads := GenerateLeads(DefaultConfig(25))
	require.NoError(t, BulkInsertLeads(context.Background(), db, leads, 10))

	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM leads"))
	assert.Equal(t, 28, count) // 3 sample rows + 25 generated
}
