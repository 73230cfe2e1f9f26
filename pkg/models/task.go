package models

import "time"

// Task priorities
const (
	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
)

// Task statuses
const (
	TaskStatusPending   = "pending"
	TaskStatusCompleted = "completed"
)

// Task represents a scheduled to-do, optionally tied to a lead
type Task struct {
	ID          int        `db:"id" json:"id"`
	Title       string     `db:"title" json:"title"`
	Description *string    `db:"description" json:"description"`
	DueDate     *time.Time `db:"due_date" json:"due_date"`
	Priority    string     `db:"priority" json:"priority"`
	Status      string     `db:"status" json:"status"`
	LeadID      *int       `db:"lead_id" json:"lead_id"`
	Assignee    *string    `db:"assignee" json:"assignee"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// TaskRequest carries the editable task fields for create and update.
// DueDate is a date string (YYYY-MM-DD), as submitted by the frontend forms.
type TaskRequest struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Priority    string  `json:"priority" validate:"omitempty,oneof=low medium high"`
	Status      string  `json:"status" validate:"omitempty,oneof=pending completed"`
	LeadID      *int    `json:"lead_id"`
	Assignee    *string `json:"assignee"`
}

// TaskStatusRequest carries the narrow status-only update.
type TaskStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending completed"`
}
