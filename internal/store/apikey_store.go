package store

import (
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/soyeahso/agentdeck/internal/domain"
)

const (
	// tokenPrefix marks agentdeck API keys so they are recognizable in
	// logs and secret scanners.
	tokenPrefix = "ak_"
	// tokenBytes is the random payload size: 256 bits.
	tokenBytes = 32
	// prefixLen is how much of the token is stored for display purposes.
	prefixLen = 11 // "ak_" + 8 hex chars
)

// APIKeyStore manages owner-scoped API keys. Tokens are hashed at rest;
// the raw token leaves the store exactly once, from Create.
type APIKeyStore struct {
	db *DB
}

// NewAPIKeyStore creates an API key store using the given database.
func NewAPIKeyStore(db *DB) *APIKeyStore {
	return &APIKeyStore{db: db}
}

// GenerateToken returns a fresh API key token: the fixed prefix plus
// 256 bits of cryptographically random data, hex-encoded.
func GenerateToken() string {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(fmt.Sprintf("reading random bytes: %v", err))
	}
	return tokenPrefix + hex.EncodeToString(buf)
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Create issues a new API key for the owner. The returned string is the
// raw token; it is not recoverable afterwards.
func (s *APIKeyStore) Create(ownerID int64, name string) (*domain.APIKey, string, error) {
	if name == "" {
		return nil, "", &domain.ValidationError{Field: "name", Message: "key name is required"}
	}

	token := GenerateToken()
	now := time.Now()

	res, err := s.db.sql.Exec(
		`INSERT INTO api_keys (user_id, key_name, key_hash, key_prefix, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		ownerID, name, hashToken(token), token[:prefixLen], now.Format(time.DateTime),
	)
	if err != nil {
		return nil, "", fmt.Errorf("creating api key: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, "", fmt.Errorf("creating api key: %w", err)
	}

	key := &domain.APIKey{
		ID:        id,
		OwnerID:   ownerID,
		Name:      name,
		Prefix:    token[:prefixLen],
		IsActive:  true,
		CreatedAt: now,
	}
	return key, token, nil
}

// List returns the owner's API keys newest-first. Only the stored prefix
// is included; raw tokens are never listed.
func (s *APIKeyStore) List(ownerID int64) ([]domain.APIKey, error) {
	rows, err := s.db.sql.Query(
		`SELECT id, user_id, key_name, key_prefix, is_active, created_at, last_used
		 FROM api_keys WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing api keys: %w", err)
	}
	defer rows.Close()

	var keys []domain.APIKey
	for rows.Next() {
		var k domain.APIKey
		var isActive int
		var createdAt string
		var lastUsed sql.NullString
		if err := rows.Scan(&k.ID, &k.OwnerID, &k.Name, &k.Prefix, &isActive, &createdAt, &lastUsed); err != nil {
			return nil, fmt.Errorf("listing api keys: %w", err)
		}
		k.IsActive = isActive == 1
		k.CreatedAt, _ = time.Parse(time.DateTime, createdAt)
		if lastUsed.Valid {
			k.LastUsedAt, _ = time.Parse(time.DateTime, lastUsed.String)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Validate resolves a raw token to the owning user. On success the key's
// last_used timestamp is bumped on every validation, not just the first.
// An unknown, inactive, or disabled-owner token yields ErrNotFound.
func (s *APIKeyStore) Validate(token string) (*domain.APIKeyIdentity, error) {
	var ident domain.APIKeyIdentity
	err := s.db.sql.QueryRow(
		`SELECT u.id, u.username, ak.id
		 FROM api_keys ak
		 JOIN users u ON ak.user_id = u.id
		 WHERE ak.key_hash = ? AND ak.is_active = 1 AND u.is_active = 1`,
		hashToken(token),
	).Scan(&ident.OwnerID, &ident.Username, &ident.KeyID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("validating api key: %w", err)
	}

	if _, err := s.db.sql.Exec(
		`UPDATE api_keys SET last_used = ? WHERE id = ?`,
		time.Now().Format(time.DateTime), ident.KeyID,
	); err != nil {
		s.db.log.Warn().Err(err).Int64("key", ident.KeyID).Msg("failed to bump last_used")
	}

	return &ident, nil
}

// Delete removes the owner's API key. Returns false for both "no such
// id" and "id owned by someone else".
func (s *APIKeyStore) Delete(ownerID, id int64) (bool, error) {
	res, err := s.db.sql.Exec(`DELETE FROM api_keys WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("deleting api key: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting api key: %w", err)
	}
	return n > 0, nil
}

// ToggleActive flips the active flag on the owner's API key.
func (s *APIKeyStore) ToggleActive(ownerID, id int64, active bool) (bool, error) {
	res, err := s.db.sql.Exec(
		`UPDATE api_keys SET is_active = ? WHERE id = ? AND user_id = ?`,
		boolInt(active), id, ownerID,
	)
	if err != nil {
		return false, fmt.Errorf("toggling api key: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("toggling api key: %w", err)
	}
	return n > 0, nil
}
