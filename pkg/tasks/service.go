// Package tasks implements the to-do list: tasks optionally tied to a
// lead, ordered by due date, with a narrow status toggle used by the
// checkbox on the task list.
package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/jordanlanch/leadpipe/pkg/audit"
	"github.com/jordanlanch/leadpipe/pkg/domain"
	"github.com/jordanlanch/leadpipe/pkg/identity"
	"github.com/jordanlanch/leadpipe/pkg/models"
)

// Service handles task operations.
type Service struct {
	db       *sqlx.DB
	recorder *audit.Recorder
	identity *identity.Identity
	validate *validator.Validate
}

// NewService creates a new task service.
func NewService(db *sqlx.DB, recorder *audit.Recorder, id *identity.Identity) *Service {
	return &Service{
		db:       db,
		recorder: recorder,
		identity: id,
		validate: validator.New(),
	}
}

// List returns all tasks ordered by due date, earliest first.
func (s *Service) List(ctx context.Context) ([]models.Task, error) {
	tasks := []models.Task{}
	if err := s.db.SelectContext(ctx, &tasks, "SELECT * FROM tasks ORDER BY due_date ASC"); err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("failed to list tasks: %w", err))
	}
	return tasks, nil
}

// Get returns a single task by ID.
func (s *Service) Get(ctx context.Context, id int) (*models.Task, error) {
	var task models.Task
	err := s.db.GetContext(ctx, &task, s.db.Rebind("SELECT * FROM tasks WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError(fmt.Sprintf("task %d", id))
	}
	if err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("failed to get task: %w", err))
	}
	return &task, nil
}

// Create validates and inserts a new task.
func (s *Service) Create(ctx context.Context, req models.TaskRequest) (*models.Task, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	priority := req.Priority
	if priority == "" {
		priority = models.TaskPriorityMedium
	}
	status := req.Status
	if status == "" {
		status = models.TaskStatusPending
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("failed to start transaction: %w", err))
	}
	defer tx.Rollback()

	var task models.Task
	err = sqlx.GetContext(ctx, tx, &task, s.db.Rebind(`INSERT INTO tasks
		(title, description, due_date, priority, status, lead_id, assignee)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING *`),
		req.Title, req.Description, req.DueDate, priority, status, req.LeadID, req.Assignee)
	if err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("failed to create task: %w", err))
	}

	actor := s.identity.CurrentUser()
	if _, err := s.recorder.Record(ctx, tx, audit.TaskCreated(actor, task.Title, task.LeadID)); err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("failed to record task creation: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("failed to commit task creation: %w", err))
	}
	return &task, nil
}

// Update validates and replaces the editable fields of a task.
func (s *Service) Update(ctx context.Context, id int, req models.TaskRequest) (*models.Task, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	priority := req.Priority
	if priority == "" {
		priority = current.Priority
	}
	status := req.Status
	if status == "" {
		status = current.Status
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("failed to start transaction: %w", err))
	}
	defer tx.Rollback()

	var task models.Task
	err = sqlx.GetContext(ctx, tx, &task, s.db.Rebind(`UPDATE tasks SET
		title = ?, description = ?, due_date = ?, priority = ?, status = ?,
		lead_id = ?, assignee = ?, updated_at = ?
		WHERE id = ? RETURNING *`),
		req.Title, req.Description, req.DueDate, priority, status,
		req.LeadID, req.Assignee, time.Now().UTC(), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError(fmt.Sprintf("task %d", id))
	}
	if err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("failed to update task: %w", err))
	}

	actor := s.identity.CurrentUser()
	if _, err := s.recorder.Record(ctx, tx, audit.TaskUpdated(actor, task.Title, task.LeadID)); err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("failed to record task update: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("failed to commit task update: %w", err))
	}
	return &task, nil
}

// UpdateStatus toggles a task between pending and completed. Only the
// status and updated_at columns move; everything else stays untouched.
func (s *Service) UpdateStatus(ctx context.Context, id int, req models.TaskStatusRequest) (*models.Task, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("failed to start transaction: %w", err))
	}
	defer tx.Rollback()

	var task models.Task
	err = sqlx.GetContext(ctx, tx, &task, s.db.Rebind(`UPDATE tasks
		SET status = ?, updated_at = ? WHERE id = ? RETURNING *`),
		req.Status, time.Now().UTC(), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError(fmt.Sprintf("task %d", id))
	}
	if err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("failed to update task status: %w", err))
	}

	actor := s.identity.CurrentUser()
	entry := audit.TaskStatusChanged(actor, task.Title, task.Status, task.LeadID)
	if _, err := s.recorder.Record(ctx, tx, entry); err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("failed to record task status change: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("failed to commit task status change: %w", err))
	}
	return &task, nil
}

// Delete removes a task. Deleting an absent task is not an error.
func (s *Service) Delete(ctx context.Context, id int) error {
	var task models.Task
	err := s.db.GetContext(ctx, &task, s.db.Rebind("SELECT * FROM tasks WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return domain.NewInternalError(fmt.Errorf("failed to load task: %w", err))
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.NewInternalError(fmt.Errorf("failed to start transaction: %w", err))
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.db.Rebind("DELETE FROM tasks WHERE id = ?"), id); err != nil {
		return domain.NewInternalError(fmt.Errorf("failed to delete task: %w", err))
	}

	actor := s.identity.CurrentUser()
	if _, err := s.recorder.Record(ctx, tx, audit.TaskDeleted(actor, task.Title, task.LeadID)); err != nil {
		return domain.NewInternalError(fmt.Errorf("failed to record task deletion: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return domain.NewInternalError(fmt.Errorf("failed to commit task deletion: %w", err))
	}
	return nil
}
