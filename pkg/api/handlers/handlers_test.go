package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordanlanch/leadpipe/pkg/activities"
	"github.com/jordanlanch/leadpipe/pkg/audit"
	"github.com/jordanlanch/leadpipe/pkg/dashboard"
	"github.com/jordanlanch/leadpipe/pkg/database"
	"github.com/jordanlanch/leadpipe/pkg/identity"
	"github.com/jordanlanch/leadpipe/pkg/leads"
	"github.com/jordanlanch/leadpipe/pkg/metrics"
	"github.com/jordanlanch/leadpipe/pkg/models"
	"github.com/jordanlanch/leadpipe/pkg/notes"
	"github.com/jordanlanch/leadpipe/pkg/tasks"
)

// prometheus collectors register globally, so the test binary shares one set
var testMetrics = metrics.New()

func setupAPI(t *testing.T) (*echo.Echo, *sqlx.DB) {
	t.Helper()

	db, err := sqlx.Open("sqlite3", "file::memory:?_fk=1")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, database.Initialize(context.Background(), db, false))
	t.Cleanup(func() { db.Close() })

	recorder := audit.NewRecorder(db)
	actor := identity.New("Usuário Atual")
	assigner := identity.NewAssigner([]string{"João", "Maria", "Carlos"})
	dash := dashboard.NewService(db, nil, nil)

	e := echo.New()
	api := e.Group("/api")

	NewLeadHandler(leads.NewService(db, recorder, actor, assigner), dash, testMetrics).Register(api)
	NewTaskHandler(tasks.NewService(db, recorder, actor), dash, testMetrics).Register(api)
	NewActivityHandler(activities.NewService(db, recorder, actor), dash, testMetrics).Register(api)
	NewNoteHandler(notes.NewService(db, recorder, actor), testMetrics).Register(api)
	NewLogHandler(db, recorder).Register(api)
	NewDashboardHandler(dash).Register(api)
	NewExportHandler(leads.NewService(db, recorder, actor, assigner), testMetrics).Register(api)

	return e, db
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func logCount(t *testing.T, db *sqlx.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, "SELECT COUNT(*) FROM logs"))
	return n
}

func TestListLeads(t *testing.T) {
	e, _ := setupAPI(t)

	rec := doJSON(e, http.MethodGet, "/api/leads", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var result []models.Lead
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Len(t, result, 3)
}

func TestCreateLead(t *testing.T) {
	e, db := setupAPI(t)

	rec := doJSON(e, http.MethodPost, "/api/leads",
		`{"name":"Fernanda Lima","email":"fernanda@example.com","value":12000}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var lead models.Lead
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lead))
	assert.Equal(t, models.LeadStatusNovo, lead.Status)
	assert.Equal(t, 12000.0, lead.Value)

	assert.Equal(t, 1, logCount(t, db))
}

func TestCreateLeadValidation(t *testing.T) {
	e, db := setupAPI(t)

	rec := doJSON(e, http.MethodPost, "/api/leads", `{"email":"no-name@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/leads", `{"name":"X","email":"not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, 0, logCount(t, db))
}

func TestCreateLeadDuplicateEmail(t *testing.T) {
	e, _ := setupAPI(t)

	rec := doJSON(e, http.MethodPost, "/api/leads",
		`{"name":"Clone","email":"joao.silva@techcorp.com"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestKanbanMoveHappyPath(t *testing.T) {
	e, db := setupAPI(t)

	rec := doJSON(e, http.MethodPut, "/api/leads/1/status", `{"status":"proposta"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var lead models.Lead
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lead))
	assert.Equal(t, models.LeadStatusProposta, lead.Status)

	assert.Equal(t, 1, logCount(t, db), "a successful move writes exactly one log entry")
}

func TestKanbanMoveFailureRollsBack(t *testing.T) {
	e, db := setupAPI(t)

	rec := doJSON(e, http.MethodPut, "/api/leads/1/status", `{"status":"inexistente"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var status string
	require.NoError(t, db.Get(&status, "SELECT status FROM leads WHERE id = 1"))
	assert.Equal(t, models.LeadStatusNovo, status)
	assert.Equal(t, 0, logCount(t, db), "a failed move leaves no trace")
}

func TestDeleteLeadIsUnconditional(t *testing.T) {
	e, _ := setupAPI(t)

	rec := doJSON(e, http.MethodDelete, "/api/leads/999", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodDelete, "/api/leads/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTaskStatusToggle(t *testing.T) {
	e, db := setupAPI(t)

	rec := doJSON(e, http.MethodPut, "/api/tasks/1/status", `{"status":"completed"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var task models.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))
	assert.Equal(t, models.TaskStatusCompleted, task.Status)

	var title string
	require.NoError(t, db.Get(&title, "SELECT title FROM logs ORDER BY id DESC LIMIT 1"))
	assert.Equal(t, "Tarefa atualizada", title)
}

func TestTaskStatusRejectsUnknownValue(t *testing.T) {
	e, _ := setupAPI(t)

	rec := doJSON(e, http.MethodPut, "/api/tasks/1/status", `{"status":"done"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestActivityDeleteMissingIs404(t *testing.T) {
	e, _ := setupAPI(t)

	rec := doJSON(e, http.MethodDelete, "/api/activities/999", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNotesScopedToLead(t *testing.T) {
	e, _ := setupAPI(t)

	rec := doJSON(e, http.MethodPost, "/api/notes", `{"lead_id":1,"content":"ligar amanhã"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(e, http.MethodPost, "/api/notes", `{"lead_id":2,"content":"proposta"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(e, http.MethodGet, "/api/notes?lead_id=1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var result []models.Note
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result, 1)
	assert.Equal(t, "ligar amanhã", result[0].Content)
}

func TestLogsFilterByType(t *testing.T) {
	e, _ := setupAPI(t)

	rec := doJSON(e, http.MethodPost, "/api/logs",
		`{"type":"system","title":"Evento do cliente"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	doJSON(e, http.MethodPut, "/api/leads/1/status", `{"status":"contato"}`)

	rec = doJSON(e, http.MethodGet, "/api/logs?type=lead", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var result []models.Log
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result, 1)
	assert.Equal(t, "Status atualizado", result[0].Title)
}

func TestLogsRejectBadDates(t *testing.T) {
	e, _ := setupAPI(t)

	rec := doJSON(e, http.MethodGet, "/api/logs?start_date=15-01-2024", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardStats(t *testing.T) {
	e, _ := setupAPI(t)

	rec := doJSON(e, http.MethodGet, "/api/dashboard/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats models.DashboardStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 3, stats.TotalLeads)
	assert.Equal(t, 160000.0, stats.TotalPipelineValue)
}

func TestExportLeadsCSV(t *testing.T) {
	e, _ := setupAPI(t)

	rec := doJSON(e, http.MethodGet, "/api/exports/leads?format=csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/csv")
	assert.Contains(t, rec.Body.String(), "João Silva")
}

func TestExportLeadsUnknownFormat(t *testing.T) {
	e, _ := setupAPI(t)

	rec := doJSON(e, http.MethodGet, "/api/exports/leads?format=pdf", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
