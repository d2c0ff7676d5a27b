package domain

import "time"

// Credential is a typed, owner-scoped secret (a GitHub token, a registry
// password, and so on). Multiple credentials may share a type; the active
// one for a type is the most recently created row still flagged active.
type Credential struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"-"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Value       string    `json:"-"` // never serialized in listings
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}
