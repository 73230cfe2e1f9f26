package crmclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordanlanch/leadpipe/pkg/models"
)

// fakeAPI is a minimal in-memory stand-in for the real server, with a
// switch to make the next status update fail.
type fakeAPI struct {
	mu          sync.Mutex
	leads       map[int]*models.Lead
	nextID      int
	failNext    bool
	statusCalls int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		leads: map[int]*models.Lead{
			1: {ID: 1, Name: "João Silva", Email: "joao@techcorp.com", Status: "novo"},
			2: {ID: 2, Name: "Ana Costa", Email: "ana@inovacao.com", Status: "proposta"},
		},
		nextID: 3,
	}
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/leads", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		switch r.Method {
		case http.MethodGet:
			out := make([]models.Lead, 0, len(f.leads))
			for _, l := range f.leads {
				out = append(out, *l)
			}
			json.NewEncoder(w).Encode(out)
		case http.MethodPost:
			var req models.LeadRequest
			json.NewDecoder(r.Body).Decode(&req)
			lead := &models.Lead{ID: f.nextID, Name: req.Name, Email: req.Email, Status: "novo"}
			f.leads[f.nextID] = lead
			f.nextID++
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(lead)
		}
	})
	mux.HandleFunc("/api/leads/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if strings.HasSuffix(r.URL.Path, "/status") {
			f.statusCalls++
			if f.failNext {
				f.failNext = false
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(models.ErrorResponse{Error: "validation_error", Message: "Status inválido"})
				return
			}
			id := pathID(r.URL.Path, "/status")
			var body struct {
				Status string `json:"status"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			lead, ok := f.leads[id]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(models.ErrorResponse{Error: "not_found", Message: "lead not found"})
				return
			}
			lead.Status = body.Status
			json.NewEncoder(w).Encode(lead)
			return
		}
		if r.Method == http.MethodDelete {
			id := pathID(r.URL.Path, "")
			delete(f.leads, id)
			json.NewEncoder(w).Encode(map[string]string{"message": "Lead excluído com sucesso"})
		}
	})
	emptyList := func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]any{})
	}
	mux.HandleFunc("/api/tasks", emptyList)
	mux.HandleFunc("/api/activities", emptyList)
	mux.HandleFunc("/api/notes", emptyList)
	mux.HandleFunc("/api/logs", emptyList)
	return mux
}

func pathID(path, suffix string) int {
	trimmed := strings.TrimSuffix(strings.TrimPrefix(path, "/api/leads/"), suffix)
	trimmed = strings.TrimSuffix(trimmed, "/")
	id := 0
	for _, ch := range trimmed {
		id = id*10 + int(ch-'0')
	}
	return id
}

func setupStore(t *testing.T) (*Store, *fakeAPI) {
	t.Helper()
	api := newFakeAPI()
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)

	store := NewStore(NewClient(srv.URL + "/api"))
	require.NoError(t, store.Refresh(context.Background()))
	return store, api
}

func TestRefreshLoadsLeads(t *testing.T) {
	store, _ := setupStore(t)
	assert.Len(t, store.Leads(), 2)
}

func TestMoveLeadCommitsOnSuccess(t *testing.T) {
	store, api := setupStore(t)

	require.NoError(t, store.MoveLead(context.Background(), 1, "qualificado"))

	status, ok := store.LeadStatus(1)
	require.True(t, ok)
	assert.Equal(t, "qualificado", status)
	assert.Equal(t, "qualificado", api.leads[1].Status)
}

func TestMoveLeadRollsBackOnFailure(t *testing.T) {
	store, api := setupStore(t)
	api.failNext = true

	err := store.MoveLead(context.Background(), 1, "qualificado")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "validation_error", apiErr.Code)

	// the optimistic update was reverted
	status, ok := store.LeadStatus(1)
	require.True(t, ok)
	assert.Equal(t, "novo", status)
	assert.Equal(t, "novo", api.leads[1].Status)
}

func TestMoveLeadUnknownLead(t *testing.T) {
	store, api := setupStore(t)

	err := store.MoveLead(context.Background(), 999, "qualificado")
	require.Error(t, err)
	// rejected locally, no request issued
	assert.Zero(t, api.statusCalls)
}

func TestCreateLeadPrepends(t *testing.T) {
	store, _ := setupStore(t)

	lead, err := store.CreateLead(context.Background(), models.LeadRequest{
		Name:  "Pedro Santos",
		Email: "pedro@startupxyz.com",
	})
	require.NoError(t, err)

	leads := store.Leads()
	require.Len(t, leads, 3)
	assert.Equal(t, lead.ID, leads[0].ID)
}

func TestDeleteLeadPrunesNotes(t *testing.T) {
	store, _ := setupStore(t)
	store.mu.Lock()
	store.notes = []models.Note{
		{ID: 1, LeadID: 1, Content: "ligar amanhã"},
		{ID: 2, LeadID: 2, Content: "enviar contrato"},
	}
	store.mu.Unlock()

	require.NoError(t, store.DeleteLead(context.Background(), 1))

	assert.Len(t, store.Leads(), 1)
	notes := store.Notes()
	require.Len(t, notes, 1)
	assert.Equal(t, 2, notes[0].LeadID)
}

func TestCreateNoteRejectsEmptyContent(t *testing.T) {
	store, _ := setupStore(t)

	_, err := store.CreateNote(context.Background(), models.NoteRequest{LeadID: 1})
	assert.ErrorIs(t, err, ErrEmptyNote)
}
