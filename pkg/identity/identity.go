// Package identity resolves the acting user and assigns lead ownership.
// The system runs without authentication, so the current user comes from
// configuration and new leads are distributed round-robin over a fixed
// rotation of salespeople.
package identity

import (
	"sync"
)

// Identity is the acting user attached to audit log entries and notes.
type Identity struct {
	currentUser string
}

// New creates an Identity for the configured current user.
func New(currentUser string) *Identity {
	if currentUser == "" {
		currentUser = "Usuário Atual"
	}
	return &Identity{currentUser: currentUser}
}

// CurrentUser returns the display name of the acting user.
func (i *Identity) CurrentUser() string {
	return i.currentUser
}

// Assigner hands out responsibles round-robin from a fixed rotation.
type Assigner struct {
	mu       sync.Mutex
	rotation []string
	next     int
}

// NewAssigner creates an Assigner over the given rotation. An empty
// rotation falls back to the default sales team.
func NewAssigner(rotation []string) *Assigner {
	if len(rotation) == 0 {
		rotation = []string{"João", "Maria", "Carlos"}
	}
	return &Assigner{rotation: rotation}
}

// Next returns the next responsible in the rotation.
func (a *Assigner) Next() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	responsible := a.rotation[a.next%len(a.rotation)]
	a.next++
	return responsible
}

// Rotation returns a copy of the configured rotation.
func (a *Assigner) Rotation() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.rotation))
	copy(out, a.rotation)
	return out
}
