// Package activities implements the agenda: dated interactions shown on
// the calendar widget, optionally tied to a lead.
package activities

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

// Accepted scheduled_date layouts: the calendar submits a local
// timestamp, the quick forms a bare date.
var scheduledLayouts = []string{"2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"}

// Service handles activity operations.
type Service struct {
	db       *sqlx.DB
	recorder *audit.Recorder
	identity *identity.Identity
	validate *validator.Validate
}

// NewService creates a new activity service.
func NewService(db *sqlx.DB, recorder *audit.Recorder, id *identity.Identity) *Service {
	return &Service{
		db:       db,
		recorder: recorder,
		identity: id,
		validate: validator.New(),
	}
}

// List returns all activities ordered by scheduled date, earliest first.
func (s *Service) List(ctx context.Context) ([]models.Activity, error) {
	activities := []models.Activity{}
	err := s.db.SelectContext(ctx, &activities, "SELECT * FROM activities ORDER BY scheduled_date ASC")
	if err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("failed to list activities: %w", err))
	}
	return activities, nil
}

// Get returns a single activity by ID.
func (s *Service) Get(ctx context.Context, id int) (*models.Activity, error) {
	var activity models.Activity
	err := s.db.GetContext(ctx, &activity, s.db.Rebind("SELECT * FROM activities WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError(fmt.Sprintf("activity %d", id))
	}
	if err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("failed to get activity: %w", err))
	}
	return &activity, nil
}

// Create validates and inserts a new activity.
func (s *Service) Create(ctx context.Context, req models.ActivityRequest) (*models.Activity, error) {
	scheduled, err := s.validateRequest(req)
	if err != nil {
		return nil, err
	}

	leadName, err := s.leadName(ctx, req.LeadID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("failed to start transaction: %w", err))
	}
	defer tx.Rollback()

	var activity models.Activity
	err = sqlx.GetContext(ctx, tx, &activity, s.db.Rebind(`INSERT INTO activities
		(lead_id, type, title, description, scheduled_date)
		VALUES (?, ?, ?, ?, ?)
		RETURNING *`),
		req.LeadID, req.Type, req.Title, req.Description, scheduled)
	if err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("failed to create activity: %w", err))
	}

	actor := s.identity.CurrentUser()
	entry := audit.ActivityScheduled(actor, activity.Title, leadName, activity.LeadID)
	if _, err := s.recorder.Record(ctx, tx, entry); err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("failed to record activity: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("failed to commit activity: %w", err))
	}
	return &activity, nil
}

// Update validates and replaces the editable fields of an activity.
func (s *Service) Update(ctx context.Context, id int, req models.ActivityRequest) (*models.Activity, error) {
	scheduled, err := s.validateRequest(req)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("failed to start transaction: %w", err))
	}
	defer tx.Rollback()

	var activity models.Activity
	err = sqlx.GetContext(ctx, tx, &activity, s.db.Rebind(`UPDATE activities SET
		lead_id = ?, type = ?, title = ?, description = ?, scheduled_date = ?
		WHERE id = ? RETURNING *`),
		req.LeadID, req.Type, req.Title, req.Description, scheduled, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError(fmt.Sprintf("activity %d", id))
	}
	if err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("failed to update activity: %w", err))
	}

	actor := s.identity.CurrentUser()
	if _, err := s.recorder.Record(ctx, tx, audit.ActivityUpdated(actor, activity.Title, activity.LeadID)); err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("failed to record activity update: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("failed to commit activity update: %w", err))
	}
	return &activity, nil
}

// Delete removes an activity. Unlike leads and tasks, removing an absent
// activity reports not found.
func (s *Service) Delete(ctx context.Context, id int) error {
	activity, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.NewInternalError(fmt.Errorf("failed to start transaction: %w", err))
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.db.Rebind("DELETE FROM activities WHERE id = ?"), id); err != nil {
		return domain.NewInternalError(fmt.Errorf("failed to delete activity: %w", err))
	}

	actor := s.identity.CurrentUser()
	if _, err := s.recorder.Record(ctx, tx, audit.ActivityDeleted(actor, activity.Title, activity.LeadID)); err != nil {
		return domain.NewInternalError(fmt.Errorf("failed to record activity deletion: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return domain.NewInternalError(fmt.Errorf("failed to commit activity deletion: %w", err))
	}
	return nil
}

// validateRequest runs tag validation plus the scheduled date layout
// check, returning the date string to store.
func (s *Service) validateRequest(req models.ActivityRequest) (*string, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	if req.ScheduledDate == nil || *req.ScheduledDate == "" {
		return nil, nil
	}
	for _, layout := range scheduledLayouts {
		if _, err := time.Parse(layout, *req.ScheduledDate); err == nil {
			return req.ScheduledDate, nil
		}
	}
	return nil, domain.NewValidationError(fmt.Sprintf("invalid scheduled_date %q", *req.ScheduledDate))
}

// leadName resolves the display name used in the audit entry. A missing
// lead is a validation problem on the request.
func (s *Service) leadName(ctx context.Context, leadID *int) (string, error) {
	if leadID == nil {
		return "", nil
	}
	var name string
	err := s.db.GetContext(ctx, &name, s.db.Rebind("SELECT name FROM leads WHERE id = ?"), *leadID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.NewValidationError(fmt.Sprintf("lead %d does not exist", *leadID))
	}
	if err != nil {
		return "", domain.NewInternalError(fmt.Errorf("failed to resolve lead: %w", err))
	}
	return name, nil
}
