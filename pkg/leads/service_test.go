package leads

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

	svc := NewService(db, audit.NewRecorder(db),
		identity.New("Usuário Atual"),
		identity.NewAssigner([]string{"João", "Maria", "Carlos"}))
	return svc, db
}

func strPtr(s string) *string { return &s }

func countLogs(t *testing.T, db *sqlx.DB, logType string) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, db.Rebind("SELECT COUNT(*) FROM logs WHERE type = ?"), logType))
	return n
}

func TestListNewestFirst(t *testing.T) {
	svc, db := newTestService(t)

	// the seed rows share one timestamp, so spread them out and add a
	// deliberately back-dated fourth lead
	for id, ts := range map[int]string{
		1: "2026-01-10 09:00:00",
		2: "2026-01-12 09:00:00",
		3: "2026-01-11 09:00:00",
	} {
		_, err := db.Exec(db.Rebind("UPDATE leads SET created_at = ? WHERE id = ?"), ts, id)
		require.NoError(t, err)
	}
	_, err := db.Exec(db.Rebind(
		`INSERT INTO leads (name, email, status, score, temperature, value, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`),
		"Antiga Ltda", "antiga@example.com", models.LeadStatusNovo, 50, models.TemperatureMorno, 0.0,
		"2025-12-01 09:00:00")
	require.NoError(t, err)

	leads, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, leads, 4)

	var ids []int
	for _, l := range leads {
		ids = append(ids, l.ID)
	}
	assert.Equal(t, []int{2, 3, 1, 4}, ids, "most recently created lead comes first")
}

func TestCreateAppliesDefaults(t *testing.T) {
	svc, db := newTestService(t)

	lead, err := svc.Create(context.Background(), models.LeadRequest{
		Name:  "Fernanda Lima",
		Email: "fernanda@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, models.LeadStatusNovo, lead.Status)
	assert.Equal(t, 50, lead.Score)
	assert.Equal(t, models.TemperatureMorno, lead.Temperature)
	assert.Equal(t, 0.0, lead.Value)
	require.NotNil(t, lead.Responsible)
	assert.Equal(t, "João", *lead.Responsible, "unassigned leads rotate through the team")

	assert.Equal(t, 1, countLogs(t, db, models.LogTypeLead))
}

func TestCreateRotatesResponsible(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	var got []string
	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com", "d@x.com"} {
		lead, err := svc.Create(ctx, models.LeadRequest{Name: "Lead", Email: email})
		require.NoError(t, err)
		got = append(got, *lead.Responsible)
	}
	assert.Equal(t, []string{"João", "Maria", "Carlos", "João"}, got)
}

func TestCreateValidation(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, models.LeadRequest{Email: "x@x.com"})
	assert.True(t, domain.IsValidation(err), "missing name must fail on create too")

	_, err = svc.Create(ctx, models.LeadRequest{Name: "X", Email: "not-an-email"})
	assert.True(t, domain.IsValidation(err))

	assert.Equal(t, 0, countLogs(t, db, models.LogTypeLead), "rejected creates leave no audit trace")
}

func TestCreateDuplicateEmailConflicts(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), models.LeadRequest{
		Name: "Clone", Email: "joao.silva@techcorp.com",
	})
	assert.True(t, domain.IsConflict(err))
}

func TestCreateNormalizesPhone(t *testing.T) {
	svc, _ := newTestService(t)

	lead, err := svc.Create(context.Background(), models.LeadRequest{
		Name: "Tel", Email: "tel@example.com", Phone: strPtr("(11) 98765-4321"),
	})
	require.NoError(t, err)
	require.NotNil(t, lead.Phone)
	assert.Equal(t, "+5511987654321", *lead.Phone)
}

func TestUpdateValidation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Update(context.Background(), 1, models.LeadRequest{Name: "", Email: "a@b.com"})
	assert.True(t, domain.IsValidation(err), "update path validates the same fields as create")
}

func TestUpdateNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Update(context.Background(), 999, models.LeadRequest{Name: "X", Email: "x@x.com"})
	assert.True(t, domain.IsNotFound(err))
}

func TestUpdateStatusWritesSingleLog(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	before := countLogs(t, db, models.LogTypeLead)

	lead, err := svc.UpdateStatus(ctx, 1, models.LeadStatusProposta)
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusProposta, lead.Status)

	assert.Equal(t, before+1, countLogs(t, db, models.LogTypeLead))

	var description string
	require.NoError(t, db.Get(&description,
		"SELECT description FROM logs ORDER BY id DESC LIMIT 1"))
	assert.Equal(t, "Lead João Silva movido de Novo para Proposta", description)
}

func TestUpdateStatusInvalidLeavesNothing(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	_, err := svc.UpdateStatus(ctx, 1, "inexistente")
	assert.True(t, domain.IsValidation(err))

	var status string
	require.NoError(t, db.Get(&status, "SELECT status FROM leads WHERE id = 1"))
	assert.Equal(t, models.LeadStatusNovo, status, "failed move must not change the stage")
	assert.Equal(t, 0, countLogs(t, db, models.LogTypeLead))
}

func TestUpdateStatusSameStageIsNoop(t *testing.T) {
	svc, db := newTestService(t)

	_, err := svc.UpdateStatus(context.Background(), 1, models.LeadStatusNovo)
	require.NoError(t, err)
	assert.Equal(t, 0, countLogs(t, db, models.LogTypeLead))
}

func TestDeleteCascadesNotesOnly(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	_, err := db.Exec(db.Rebind(
		`INSERT INTO notes (lead_id, content, color) VALUES (?, ?, ?)`), 1, "ligar amanhã", "blue")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, 1))

	var notes, tasks int
	require.NoError(t, db.Get(&notes, "SELECT COUNT(*) FROM notes WHERE lead_id = 1"))
	require.NoError(t, db.Get(&tasks, "SELECT COUNT(*) FROM tasks"))
	assert.Equal(t, 0, notes, "notes go with their lead")
	assert.Equal(t, 3, tasks, "tasks survive the lead")

	var orphans int
	require.NoError(t, db.Get(&orphans, "SELECT COUNT(*) FROM tasks WHERE lead_id IS NULL"))
	assert.Equal(t, 2, orphans)

	assert.Equal(t, 1, countLogs(t, db, models.LogTypeLead))
}

func TestDeleteMissingLeadSucceedsSilently(t *testing.T) {
	svc, db := newTestService(t)

	require.NoError(t, svc.Delete(context.Background(), 999))
	assert.Equal(t, 0, countLogs(t, db, models.LogTypeLead))
}
