package domain

import "time"

// User is an account that owns agents, credentials, and API keys.
type User struct {
	ID                  int64     `json:"id"`
	Username            string    `json:"username"`
	GitName             string    `json:"gitName,omitempty"`
	GitEmail            string    `json:"gitEmail,omitempty"`
	CompletedOnboarding bool      `json:"hasCompletedOnboarding"`
	IsActive            bool      `json:"isActive"`
	LastLogin           time.Time `json:"lastLogin,omitzero"`
	CreatedAt           time.Time `json:"createdAt"`
}
