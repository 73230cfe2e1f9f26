// Package audit writes and reads the append-only activity log. Entries
// produced by mutation paths are written inside the same transaction as
// the mutation itself, so a failed write never leaves a dangling log row.
package audit

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/jordanlanch/leadpipe/pkg/models"
)

// Recorder persists audit log entries.
type Recorder struct {
	db *sqlx.DB
}

// NewRecorder creates a Recorder over the given database.
func NewRecorder(db *sqlx.DB) *Recorder {
	return &Recorder{db: db}
}

// Entry is a log row about to be written.
type Entry struct {
	Type        string
	Title       string
	Description *string
	UserID      *string
	LeadID      *int
}

// Record writes an entry using the given executor, which may be a
// transaction in flight or the bare database handle.
func (r *Recorder) Record(ctx context.Context, ext sqlx.ExtContext, entry Entry) (*models.Log, error) {
	query := r.db.Rebind(`INSERT INTO logs (type, title, description, timestamp, user_id, lead_id)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING *`)

	var logRow models.Log
	err := sqlx.GetContext(ctx, ext, &logRow, query,
		entry.Type, entry.Title, entry.Description, time.Now().UTC(), entry.UserID, entry.LeadID)
	if err != nil {
		return nil, fmt.Errorf("recording audit log: %w", err)
	}
	return &logRow, nil
}

// List returns log entries newest first, optionally narrowed by type and
// an inclusive date window over the entry day.
func (r *Recorder) List(ctx context.Context, filter models.LogFilter) ([]models.Log, error) {
	builder := sq.Select("*").From("logs").OrderBy("timestamp DESC")

	if filter.Type != "" {
		builder = builder.Where(sq.Eq{"type": filter.Type})
	}
	if filter.StartDate != "" {
		builder = builder.Where(sq.GtOrEq{"DATE(timestamp)": filter.StartDate})
	}
	if filter.EndDate != "" {
		builder = builder.Where(sq.LtOrEq{"DATE(timestamp)": filter.EndDate})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building log query: %w", err)
	}

	logs := []models.Log{}
	if err := r.db.SelectContext(ctx, &logs, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("listing logs: %w", err)
	}
	return logs, nil
}

// CountByLead returns how many log entries reference the given lead.
func (r *Recorder) CountByLead(ctx context.Context, leadID int) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, r.db.Rebind("SELECT COUNT(*) FROM logs WHERE lead_id = ?"), leadID)
	if err != nil {
		return 0, fmt.Errorf("counting logs for lead %d: %w", leadID, err)
	}
	return count, nil
}
