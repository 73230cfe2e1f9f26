package models

import "time"

// Note represents a colored sticky note attached to a lead. Notes are the
// only child records removed when their lead is deleted.
type Note struct {
	ID        int       `db:"id" json:"id"`
	LeadID    int       `db:"lead_id" json:"lead_id"`
	Content   string    `db:"content" json:"content"`
	Color     string    `db:"color" json:"color"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UserID    *string   `db:"user_id" json:"user_id"`
}

// NoteRequest carries the note creation fields. Content emptiness is a
// frontend rule, not a data-layer one; the column is merely NOT NULL.
type NoteRequest struct {
	LeadID  int     `json:"lead_id" validate:"required,gt=0"`
	Content string  `json:"content"`
	Color   string  `json:"color"`
	UserID  *string `json:"user_id"`
}
