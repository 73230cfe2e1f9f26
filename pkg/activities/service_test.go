package activities

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordanlanch/leadpipe/pkg/audit"
	"github.com/jordanlanch/leadpipe/pkg/database"
	"github.com/jordanlanch/leadpipe/pkg/domain"
	"github.com/jordanlanch/leadpipe/pkg/identity"
	"github.com/jordanlanch/leadpipe/pkg/models"
)

func newTestService(t *testing.T) (*Service, *sqlx.DB) {
	t.Helper()
	db, err := sqlx.Open("sqlite3", "file::memory:?_fk=1")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, database.Initialize(context.Background(), db, false))
	t.Cleanup(func() { db.Close() })

	return NewService(db, audit.NewRecorder(db), identity.New("Usuário Atual")), db
}

func strPtr(s string) *string { return &s }
func intPtr(v int) *int       { return &v }

func TestListOrderedBySchedule(t *testing.T) {
	svc, _ := newTestService(t)

	activities, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, activities, 8)

	assert.Equal(t, "Ligação de Follow-up - João Silva", activities[0].Title)
	assert.Equal(t, "Reunião de Planejamento", activities[7].Title)
}

func TestCreateWithLeadLogsLeadName(t *testing.T) {
	svc, db := newTestService(t)

	activity, err := svc.Create(context.Background(), models.ActivityRequest{
		LeadID:        intPtr(2),
		Type:          models.ActivityTypeCall,
		Title:         "Retorno",
		ScheduledDate: strPtr("2024-07-01T09:30:00"),
	})
	require.NoError(t, err)
	require.NotNil(t, activity.ScheduledDate)

	var description string
	require.NoError(t, db.Get(&description, "SELECT description FROM logs ORDER BY id DESC LIMIT 1"))
	assert.Equal(t, "Retorno para Ana Costa agendada", description)
}

func TestCreateWithoutLead(t *testing.T) {
	svc, db := newTestService(t)

	_, err := svc.Create(context.Background(), models.ActivityRequest{
		Type:          models.ActivityTypeMeeting,
		Title:         "Planejamento",
		ScheduledDate: strPtr("2024-07-02"),
	})
	require.NoError(t, err)

	var description string
	require.NoError(t, db.Get(&description, "SELECT description FROM logs ORDER BY id DESC LIMIT 1"))
	assert.Equal(t, "Planejamento agendada", description)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, models.ActivityRequest{Title: "Sem tipo"})
	assert.True(t, domain.IsValidation(err))

	_, err = svc.Create(ctx, models.ActivityRequest{
		Type: "lunch", Title: "Tipo inválido",
	})
	assert.True(t, domain.IsValidation(err))

	_, err = svc.Create(ctx, models.ActivityRequest{
		Type: models.ActivityTypeCall, Title: "Data inválida", ScheduledDate: strPtr("amanhã"),
	})
	assert.True(t, domain.IsValidation(err))

	_, err = svc.Create(ctx, models.ActivityRequest{
		Type: models.ActivityTypeCall, Title: "Lead fantasma", LeadID: intPtr(999),
	})
	assert.True(t, domain.IsValidation(err))
}

func TestUpdateNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Update(context.Background(), 999, models.ActivityRequest{
		Type: models.ActivityTypeCall, Title: "X",
	})
	assert.True(t, domain.IsNotFound(err))
}

func TestDeleteMissingReportsNotFound(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, 1))

	err := svc.Delete(ctx, 1)
	assert.True(t, domain.IsNotFound(err), "activity delete is not idempotent")

	var logs int
	require.NoError(t, db.Get(&logs, "SELECT COUNT(*) FROM logs WHERE type = 'activity'"))
	assert.Equal(t, 1, logs)
}
