package models

import "time"

// Log entry types as emitted by the mutation paths. The column is free-form
// VARCHAR; these are the values the application itself writes.
const (
	LogTypeLead     = "lead"
	LogTypeTask     = "task"
	LogTypeActivity = "activity"
	LogTypeNote     = "note"
	LogTypeSystem   = "system"
)

// Log represents an append-only audit record describing a past mutation
type Log struct {
	ID          int       `db:"id" json:"id"`
	Type        string    `db:"type" json:"type"`
	Title       string    `db:"title" json:"title"`
	Description *string   `db:"description" json:"description"`
	Timestamp   time.Time `db:"timestamp" json:"timestamp"`
	UserID      *string   `db:"user_id" json:"user_id"`
	LeadID      *int      `db:"lead_id" json:"lead_id"`
}

// LogRequest carries a client-sourced log entry.
type LogRequest struct {
	Type        string  `json:"type" validate:"required,max=50"`
	Title       string  `json:"title" validate:"required,max=255"`
	Description *string `json:"description"`
	UserID      *string `json:"user_id"`
	LeadID      *int    `json:"lead_id"`
}

// LogFilter narrows a log listing. Dates are inclusive day bounds
// (YYYY-MM-DD) compared against DATE(timestamp).
type LogFilter struct {
	Type      string `query:"type"`
	StartDate string `query:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `query:"end_date" validate:"omitempty,datetime=2006-01-02"`
}
