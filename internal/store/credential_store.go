package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/soyeahso/agentdeck/internal/domain"
)

// CredentialStore manages typed, owner-scoped secrets (service tokens,
// registry passwords, and similar).
type CredentialStore struct {
	db *DB
}

// NewCredentialStore creates a credential store using the given database.
func NewCredentialStore(db *DB) *CredentialStore {
	return &CredentialStore{db: db}
}

// Create stores a new credential for the owner. Several credentials may
// share a type; resolution picks the newest active one.
func (s *CredentialStore) Create(ownerID int64, name, ctype, value, description string) (*domain.Credential, error) {
	if name == "" || ctype == "" || value == "" {
		return nil, &domain.ValidationError{Message: "name, type, and value are required"}
	}

	now := time.Now()
	res, err := s.db.sql.Exec(
		`INSERT INTO user_credentials (user_id, credential_name, credential_type, credential_value, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ownerID, name, ctype, value, description, now.Format(time.DateTime),
	)
	if err != nil {
		return nil, fmt.Errorf("creating credential: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("creating credential: %w", err)
	}

	return &domain.Credential{
		ID:          id,
		OwnerID:     ownerID,
		Name:        name,
		Type:        ctype,
		Value:       value,
		Description: description,
		IsActive:    true,
		CreatedAt:   now,
	}, nil
}

// List returns the owner's credentials newest-first, optionally filtered
// by type. Credential values are not included.
func (s *CredentialStore) List(ownerID int64, typeFilter string) ([]domain.Credential, error) {
	query := `SELECT id, user_id, credential_name, credential_type, description, is_active, created_at
	          FROM user_credentials WHERE user_id = ?`
	args := []any{ownerID}

	if typeFilter != "" {
		query += ` AND credential_type = ?`
		args = append(args, typeFilter)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.sql.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing credentials: %w", err)
	}
	defer rows.Close()

	var creds []domain.Credential
	for rows.Next() {
		var c domain.Credential
		var isActive int
		var createdAt string
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Type, &c.Description, &isActive, &createdAt); err != nil {
			return nil, fmt.Errorf("listing credentials: %w", err)
		}
		c.IsActive = isActive == 1
		c.CreatedAt, _ = time.Parse(time.DateTime, createdAt)
		creds = append(creds, c)
	}
	return creds, rows.Err()
}

// GetActive returns the value of the most recently created active
// credential of the given type, or ErrNotFound when the owner has none.
// Row id breaks ties between credentials created in the same second.
func (s *CredentialStore) GetActive(ownerID int64, ctype string) (string, error) {
	var value string
	err := s.db.sql.QueryRow(
		`SELECT credential_value FROM user_credentials
		 WHERE user_id = ? AND credential_type = ? AND is_active = 1
		 ORDER BY created_at DESC, id DESC LIMIT 1`,
		ownerID, ctype,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("resolving credential: %w", err)
	}
	return value, nil
}

// Delete removes the owner's credential. Returns false for both "no such
// id" and "id owned by someone else".
func (s *CredentialStore) Delete(ownerID, id int64) (bool, error) {
	res, err := s.db.sql.Exec(
		`DELETE FROM user_credentials WHERE id = ? AND user_id = ?`, id, ownerID,
	)
	if err != nil {
		return false, fmt.Errorf("deleting credential: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting credential: %w", err)
	}
	return n > 0, nil
}

// ToggleActive flips the active flag on the owner's credential.
func (s *CredentialStore) ToggleActive(ownerID, id int64, active bool) (bool, error) {
	res, err := s.db.sql.Exec(
		`UPDATE user_credentials SET is_active = ? WHERE id = ? AND user_id = ?`,
		boolInt(active), id, ownerID,
	)
	if err != nil {
		return false, fmt.Errorf("toggling credential: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("toggling credential: %w", err)
	}
	return n > 0, nil
}
