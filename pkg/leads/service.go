// Package leads implements the sales pipeline: CRUD over leads plus the
// status moves behind the Kanban board. Every mutation writes its audit
// log entry in the same transaction, so the history never drifts from
// the data.
package leads

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jordanlanch/leadpipe/pkg/audit"
	"github.com/jordanlanch/leadpipe/pkg/domain"
	"github.com/jordanlanch/leadpipe/pkg/identity"
	"github.com/jordanlanch/leadpipe/pkg/models"
	"github.com/jordanlanch/leadpipe/pkg/phone"
)

// Service handles lead operations.
type Service struct {
	db       *sqlx.DB
	recorder *audit.Recorder
	identity *identity.Identity
	assigner *identity.Assigner
	validate *validator.Validate
}

// NewService creates a new lead service.
func NewService(db *sqlx.DB, recorder *audit.Recorder, id *identity.Identity, assigner *identity.Assigner) *Service {
	return &Service{
		db:       db,
		recorder: recorder,
		identity: id,
		assigner: assigner,
		validate: validator.New(),
	}
}

// List returns all leads, newest first.
func (s *Service) List(ctx context.Context) ([]models.Lead, error) {
	leads := []models.Lead{}
	if err := s.db.SelectContext(ctx, &leads, "SELECT * FROM leads ORDER BY created_at DESC"); err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("failed to list leads: %w", err))
	}
	return leads, nil
}

// Get returns a single lead by ID.
func (s *Service) Get(ctx context.Context, id int) (*models.Lead, error) {
	var lead models.Lead
	err := s.db.GetContext(ctx, &lead, s.db.Rebind("SELECT * FROM leads WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError(fmt.Sprintf("lead %d", id))
	}
	if err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("failed to get lead: %w", err))
	}
	return &lead, nil
}

// Create validates and inserts a new lead. Missing fields get the
// pipeline defaults and an unset responsible is assigned round-robin.
func (s *Service) Create(ctx context.Context, req models.LeadRequest) (*models.Lead, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, domain.NewValidationError(validationMessage(err))
	}

	status := req.Status
	if status == "" {
		status = models.LeadStatusNovo
	}
	temperature := req.Temperature
	if temperature == "" {
		temperature = models.TemperatureMorno
	}
	score := 50
	if req.Score != nil {
		score = *req.Score
	}
	value := 0.0
	if req.Value != nil {
		value = *req.Value
	}
	responsible := req.Responsible
	if responsible == nil || *responsible == "" {
		next := s.assigner.Next()
		responsible = &next
	}
	phoneNumber := req.Phone
	if phoneNumber != nil && *phoneNumber != "" {
		normalized := phone.Normalize(*phoneNumber)
		phoneNumber = &normalized
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("failed to start transaction: %w", err))
	}
	defer tx.Rollback()

	var lead models.Lead
	err = sqlx.GetContext(ctx, tx, &lead, s.db.Rebind(`INSERT INTO leads
		(name, company, email, phone, position, source, status, responsible, score, temperature, value, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING *`),
		req.Name, req.Company, req.Email, phoneNumber, req.Position, req.Source,
		status, responsible, score, temperature, value, req.Notes)
	if err != nil {
		return nil, mapLeadError(err)
	}

	actor := s.identity.CurrentUser()
	if _, err := s.recorder.Record(ctx, tx, audit.LeadCreated(actor, lead.Name, lead.ID)); err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("failed to record lead creation: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("failed to commit lead creation: %w", err))
	}
	return &lead, nil
}

// Update validates and replaces the editable fields of a lead.
func (s *Service) Update(ctx context.Context, id int, req models.LeadRequest) (*models.Lead, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, domain.NewValidationError(validationMessage(err))
	}
	if req.Status != "" && !models.ValidLeadStatus(req.Status) {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid status %q", req.Status))
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = current.Status
	}
	temperature := req.Temperature
	if temperature == "" {
		temperature = current.Temperature
	}
	score := current.Score
	if req.Score != nil {
		score = *req.Score
	}
	value := current.Value
	if req.Value != nil {
		value = *req.Value
	}
	phoneNumber := req.Phone
	if phoneNumber != nil && *phoneNumber != "" {
		normalized := phone.Normalize(*phoneNumber)
		phoneNumber = &normalized
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("failed to start transaction: %w", err))
	}
	defer tx.Rollback()

	var lead models.Lead
	err = sqlx.GetContext(ctx, tx, &lead, s.db.Rebind(`UPDATE leads SET
		name = ?, company = ?, email = ?, phone = ?, position = ?, source = ?,
		status = ?, responsible = ?, score = ?, temperature = ?, value = ?, notes = ?,
		updated_at = ?
		WHERE id = ? RETURNING *`),
		req.Name, req.Company, req.Email, phoneNumber, req.Position, req.Source,
		status, req.Responsible, score, temperature, value, req.Notes,
		time.Now().UTC(), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError(fmt.Sprintf("lead %d", id))
	}
	if err != nil {
		return nil, mapLeadError(err)
	}

	actor := s.identity.CurrentUser()
	if _, err := s.recorder.Record(ctx, tx, audit.LeadUpdated(actor, lead.Name, lead.ID)); err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("failed to record lead update: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("failed to commit lead update: %w", err))
	}
	return &lead, nil
}

// UpdateStatus moves a lead to another pipeline stage. This is the
// operation behind Kanban drag and drop: on success exactly one log row
// describes the move, on failure nothing is written at all.
func (s *Service) UpdateStatus(ctx context.Context, id int, newStatus string) (*models.Lead, error) {
	if !models.ValidLeadStatus(newStatus) {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid status %q", newStatus))
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == newStatus {
		return current, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("failed to start transaction: %w", err))
	}
	defer tx.Rollback()

	var lead models.Lead
	err = sqlx.GetContext(ctx, tx, &lead, s.db.Rebind(`UPDATE leads
		SET status = ?, updated_at = ? WHERE id = ? RETURNING *`),
		newStatus, time.Now().UTC(), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError(fmt.Sprintf("lead %d", id))
	}
	if err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("failed to update lead status: %w", err))
	}

	actor := s.identity.CurrentUser()
	entry := audit.LeadStatusChanged(actor, lead.Name, current.Status, newStatus, lead.ID)
	if _, err := s.recorder.Record(ctx, tx, entry); err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("failed to record status change: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("failed to commit status change: %w", err))
	}
	return &lead, nil
}

// Delete removes a lead and its notes. Deleting an absent lead is not an
// error; tasks, activities and logs keep their rows with lead_id nulled.
func (s *Service) Delete(ctx context.Context, id int) error {
	var lead models.Lead
	err := s.db.GetContext(ctx, &lead, s.db.Rebind("SELECT * FROM leads WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return domain.NewInternalError(fmt.Errorf("failed to load lead: %w", err))
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.NewInternalError(fmt.Errorf("failed to start transaction: %w", err))
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.db.Rebind("DELETE FROM leads WHERE id = ?"), id); err != nil {
		return domain.NewInternalError(fmt.Errorf("failed to delete lead: %w", err))
	}

	actor := s.identity.CurrentUser()
	if _, err := s.recorder.Record(ctx, tx, audit.LeadDeleted(actor, lead.Name, lead.ID)); err != nil {
		return domain.NewInternalError(fmt.Errorf("failed to record lead deletion: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return domain.NewInternalError(fmt.Errorf("failed to commit lead deletion: %w", err))
	}
	return nil
}

// mapLeadError converts driver errors into domain errors. A duplicate
// email surfaces as a conflict.
func mapLeadError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return domain.NewConflictError("a lead with this email already exists")
	}
	if isUniqueViolation(err) {
		return domain.NewConflictError("a lead with this email already exists")
	}
	return domain.NewInternalError(fmt.Errorf("failed to save lead: %w", err))
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		first := verrs[0]
		switch first.Tag() {
		case "required":
			return fmt.Sprintf("%s is required", first.Field())
		case "email":
			return "email must be a valid address"
		}
		return fmt.Sprintf("%s is invalid", first.Field())
	}
	return err.Error()
}
