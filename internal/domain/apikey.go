package domain

import "time"

// APIKey is an owner-scoped API key row. Only a digest of the token is
// persisted; the raw token is handed out exactly once at creation time.
// Prefix holds the first few characters of the token so keys can still be
// recognized in listings.
type APIKey struct {
	ID         int64     `json:"id"`
	OwnerID    int64     `json:"-"`
	Name       string    `json:"name"`
	Prefix     string    `json:"prefix"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
	LastUsedAt time.Time `json:"lastUsedAt,omitzero"`
}

// APIKeyIdentity is the result of a successful token validation.
type APIKeyIdentity struct {
	OwnerID  int64  `json:"ownerId"`
	Username string `json:"username"`
	KeyID    int64  `json:"keyId"`
}
