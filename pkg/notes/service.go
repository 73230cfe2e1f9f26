// Package notes implements the sticky notes pinned to leads.
package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/jordanlanch/leadpipe/pkg/audit"
	"github.com/jordanlanch/leadpipe/pkg/domain"
	"github.com/jordanlanch/leadpipe/pkg/identity"
	"github.com/jordanlanch/leadpipe/pkg/models"
)

// DefaultColor is used when the request does not pick one.
const DefaultColor = "blue"

// Service handles note operations.
type Service struct {
	db       *sqlx.DB
	recorder *audit.Recorder
	identity *identity.Identity
	validate *validator.Validate
}

// NewService creates a new note service.
func NewService(db *sqlx.DB, recorder *audit.Recorder, id *identity.Identity) *Service {
	return &Service{
		db:       db,
		recorder: recorder,
		identity: id,
		validate: validator.New(),
	}
}

// List returns notes newest first, optionally scoped to one lead.
func (s *Service) List(ctx context.Context, leadID *int) ([]models.Note, error) {
	notes := []models.Note{}
	var err error
	if leadID != nil {
		err = s.db.SelectContext(ctx, &notes,
			s.db.Rebind("SELECT * FROM notes WHERE lead_id = ? ORDER BY created_at DESC"), *leadID)
	} else {
		err = s.db.SelectContext(ctx, &notes, "SELECT * FROM notes ORDER BY created_at DESC")
	}
	if err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("failed to list notes: %w", err))
	}
	return notes, nil
}

// Create validates and inserts a new note for a lead.
func (s *Service) Create(ctx context.Context, req models.NoteRequest) (*models.Note, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	var leadName string
	err := s.db.GetContext(ctx, &leadName, s.db.Rebind("SELECT name FROM leads WHERE id = ?"), req.LeadID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewValidationError(fmt.Sprintf("lead %d does not exist", req.LeadID))
	}
	if err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("failed to resolve lead: %w", err))
	}

	color := req.Color
	if color == "" {
		color = DefaultColor
	}
	userID := req.UserID
	if userID == nil || *userID == "" {
		actor := s.identity.CurrentUser()
		userID = &actor
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("failed to start transaction: %w", err))
	}
	defer tx.Rollback()

	var note models.Note
	err = sqlx.GetContext(ctx, tx, &note, s.db.Rebind(`INSERT INTO notes
		(lead_id, content, color, user_id)
		VALUES (?, ?, ?, ?)
		RETURNING *`),
		req.LeadID, req.Content, color, userID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.NewValidationError(fmt.Sprintf("lead %d does not exist", req.LeadID))
		}
		return nil, domain.NewInternalError(fmt.Errorf("failed to create note: %w", err))
	}

	actor := s.identity.CurrentUser()
	if _, err := s.recorder.Record(ctx, tx, audit.NoteAdded(actor, leadName, note.LeadID)); err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("failed to record note: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("failed to commit note: %w", err))
	}
	return &note, nil
}

// Delete removes a note, reporting not found when no row matches.
func (s *Service) Delete(ctx context.Context, id int) error {
	var note models.Note
	err := s.db.GetContext(ctx, &note, s.db.Rebind("SELECT * FROM notes WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewNotFoundError(fmt.Sprintf("note %d", id))
	}
	if err != nil {
		return domain.NewInternalError(fmt.Errorf("failed to load note: %w", err))
	}

	var leadName string
	if err := s.db.GetContext(ctx, &leadName, s.db.Rebind("SELECT name FROM leads WHERE id = ?"), note.LeadID); err != nil {
		leadName = fmt.Sprintf("lead %d", note.LeadID)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.NewInternalError(fmt.Errorf("failed to start transaction: %w", err))
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.db.Rebind("DELETE FROM notes WHERE id = ?"), id); err != nil {
		return domain.NewInternalError(fmt.Errorf("failed to delete note: %w", err))
	}

	actor := s.identity.CurrentUser()
	if _, err := s.recorder.Record(ctx, tx, audit.NoteDeleted(actor, leadName, note.LeadID)); err != nil {
		return domain.NewInternalError(fmt.Errorf("failed to record note deletion: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return domain.NewInternalError(fmt.Errorf("failed to commit note deletion: %w", err))
	}
	return nil
}

func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "FOREIGN KEY constraint failed") ||
		strings.Contains(msg, "violates foreign key constraint")
}
