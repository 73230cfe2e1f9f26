package models

import "time"

// Activity types
const (
	ActivityTypeCall     = "call"
	ActivityTypeMeeting  = "meeting"
	ActivityTypeEmail    = "email"
	ActivityTypeTask     = "task"
	ActivityTypeDemo     = "demo"
	ActivityTypeFollowUp = "follow-up"
)

// Activity represents a scheduled, dated interaction, optionally tied to a lead
type Activity struct {
	ID            int        `db:"id" json:"id"`
	LeadID        *int       `db:"lead_id" json:"lead_id"`
	Type          string     `db:"type" json:"type"`
	Title         string     `db:"title" json:"title"`
	Description   *string    `db:"description" json:"description"`
	ScheduledDate *time.Time `db:"scheduled_date" json:"scheduled_date"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

// ActivityRequest carries the editable activity fields for create and update.
// ScheduledDate accepts the calendar widget's local timestamp format
// (2006-01-02T15:04:05) as well as a plain date.
type ActivityRequest struct {
	LeadID        *int    `json:"lead_id"`
	Type          string  `json:"type" validate:"required,oneof=call meeting email task demo follow-up"`
	Title         string  `json:"title" validate:"required,max=255"`
	Description   *string `json:"description"`
	ScheduledDate *string `json:"scheduled_date"`
}
