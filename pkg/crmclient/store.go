package crmclient

import (
	"context"
	"errors"
	"sync"

	"github.com/jordanlanch/leadpipe/pkg/models"
)

// ErrEmptyNote is returned when a note is created without content.
var ErrEmptyNote = errors.New("note content must not be empty")

// Store is the application-state cache over the API: one slice per
// entity, every mutation funneled through it and serialized behind a
// mutex. MoveLead is the only optimistic path; everything else applies
// the server's response.
type Store struct {
	client *Client

	mu         sync.Mutex
	leads      []models.Lead
	tasks      []models.Task
	activities []models.Activity
	notes      []models.Note
	logs       []models.Log
}

// NewStore creates a store backed by the given API client.
func NewStore(client *Client) *Store {
	return &Store{client: client}
}

// Refresh reloads every cached collection from the server.
func (s *Store) Refresh(ctx context.Context) error {
	leads, err := s.client.ListLeads(ctx)
	if err != nil {
		return err
	}
	tasks, err := s.client.ListTasks(ctx)
	if err != nil {
		return err
	}
	activities, err := s.client.ListActivities(ctx)
	if err != nil {
		return err
	}
	notes, err := s.client.ListNotes(ctx, nil)
	if err != nil {
		return err
	}
	logs, err := s.client.ListLogs(ctx, models.LogFilter{})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.leads, s.tasks, s.activities, s.notes, s.logs = leads, tasks, activities, notes, logs
	return nil
}

// Leads returns a copy of the cached leads.
func (s *Store) Leads() []models.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Lead, len(s.leads))
	copy(out, s.leads)
	return out
}

// Tasks returns a copy of the cached tasks.
func (s *Store) Tasks() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Activities returns a copy of the cached activities.
func (s *Store) Activities() []models.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Activity, len(s.activities))
	copy(out, s.activities)
	return out
}

// Notes returns a copy of the cached notes.
func (s *Store) Notes() []models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Note, len(s.notes))
	copy(out, s.notes)
	return out
}

// Logs returns a copy of the cached log entries.
func (s *Store) Logs() []models.Log {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Log, len(s.logs))
	copy(out, s.logs)
	return out
}

// LeadStatus returns the cached status of a lead, if present.
func (s *Store) LeadStatus(id int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.leads {
		if l.ID == id {
			return l.Status, true
		}
	}
	return "", false
}

// MoveLead drags a lead to another Kanban column: the cached status
// changes immediately, then the server is asked to confirm. On failure
// the cached status is rolled back to its previous value.
func (s *Store) MoveLead(ctx context.Context, id int, newStatus string) error {
	s.mu.Lock()
	idx := -1
	for i, l := range s.leads {
		if l.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return errors.New("lead not in store")
	}
	previous := s.leads[idx].Status
	s.leads[idx].Status = newStatus
	s.mu.Unlock()

	updated, err := s.client.UpdateLeadStatus(ctx, id, newStatus)

	s.mu.Lock()
	defer s.mu.Unlock()
	// the slice may have been reordered by a concurrent refresh
	for i := range s.leads {
		if s.leads[i].ID != id {
			continue
		}
		if err != nil {
			s.leads[i].Status = previous
		} else {
			s.leads[i] = *updated
		}
		break
	}
	return err
}

// CreateLead creates a lead and prepends the server's row to the cache.
func (s *Store) CreateLead(ctx context.Context, req models.LeadRequest) (*models.Lead, error) {
	lead, err := s.client.CreateLead(ctx, req)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.leads = append([]models.Lead{*lead}, s.leads...)
	s.mu.Unlock()
	return lead, nil
}

// UpdateLead updates a lead and replaces the cached row.
func (s *Store) UpdateLead(ctx context.Context, id int, req models.LeadRequest) (*models.Lead, error) {
	lead, err := s.client.UpdateLead(ctx, id, req)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	for i := range s.leads {
		if s.leads[i].ID == id {
			s.leads[i] = *lead
			break
		}
	}
	s.mu.Unlock()
	return lead, nil
}

// DeleteLead removes a lead from the server, then from the cache along
// with its notes.
func (s *Store) DeleteLead(ctx context.Context, id int) error {
	if err := s.client.DeleteLead(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leads = deleteByID(s.leads, func(l models.Lead) bool { return l.ID == id })
	s.notes = deleteByID(s.notes, func(n models.Note) bool { return n.LeadID == id })
	return nil
}

// CreateTask creates a task and caches the server's row.
func (s *Store) CreateTask(ctx context.Context, req models.TaskRequest) (*models.Task, error) {
	task, err := s.client.CreateTask(ctx, req)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.tasks = append(s.tasks, *task)
	s.mu.Unlock()
	return task, nil
}

// ToggleTask flips a task's status and applies the server's row.
func (s *Store) ToggleTask(ctx context.Context, id int) (*models.Task, error) {
	s.mu.Lock()
	status := models.TaskStatusCompleted
	for _, t := range s.tasks {
		if t.ID == id && t.Status == models.TaskStatusCompleted {
			status = models.TaskStatusPending
			break
		}
	}
	s.mu.Unlock()

	task, err := s.client.UpdateTaskStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i] = *task
			break
		}
	}
	s.mu.Unlock()
	return task, nil
}

// DeleteTask removes a task from the server and the cache.
func (s *Store) DeleteTask(ctx context.Context, id int) error {
	if err := s.client.DeleteTask(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	s.tasks = deleteByID(s.tasks, func(t models.Task) bool { return t.ID == id })
	s.mu.Unlock()
	return nil
}

// CreateActivity schedules an activity and caches the server's row.
func (s *Store) CreateActivity(ctx context.Context, req models.ActivityRequest) (*models.Activity, error) {
	activity, err := s.client.CreateActivity(ctx, req)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.activities = append(s.activities, *activity)
	s.mu.Unlock()
	return activity, nil
}

// DeleteActivity removes an activity from the server and the cache.
func (s *Store) DeleteActivity(ctx context.Context, id int) error {
	if err := s.client.DeleteActivity(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	s.activities = deleteByID(s.activities, func(a models.Activity) bool { return a.ID == id })
	s.mu.Unlock()
	return nil
}

// CreateNote attaches a sticky note. Empty content is rejected here,
// before the server is involved.
func (s *Store) CreateNote(ctx context.Context, req models.NoteRequest) (*models.Note, error) {
	if req.Content == "" {
		return nil, ErrEmptyNote
	}
	note, err := s.client.CreateNote(ctx, req)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.notes = append([]models.Note{*note}, s.notes...)
	s.mu.Unlock()
	return note, nil
}

// DeleteNote removes a sticky note from the server and the cache.
func (s *Store) DeleteNote(ctx context.Context, id int) error {
	if err := s.client.DeleteNote(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	s.notes = deleteByID(s.notes, func(n models.Note) bool { return n.ID == id })
	s.mu.Unlock()
	return nil
}

func deleteByID[T any](items []T, match func(T) bool) []T {
	out := items[:0]
	for _, it := range items {
		if !match(it) {
			out = append(out, it)
		}
	}
	return out
}
