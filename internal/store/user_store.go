package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/soyeahso/agentdeck/internal/domain"
)

// UserStore manages user accounts.
type UserStore struct {
	db *DB
}

// NewUserStore creates a user store using the given database.
func NewUserStore(db *DB) *UserStore {
	return &UserStore{db: db}
}

// Create registers a new user with a bcrypt-hashed password.
func (s *UserStore) Create(username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, &domain.ValidationError{Message: "username and password are required"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now()
	res, err := s.db.sql.Exec(
		`INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?)`,
		username, string(hash), now.Format(time.DateTime),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, &domain.ConflictError{Resource: "user", Name: username}
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return &domain.User{
		ID:        id,
		Username:  username,
		IsActive:  true,
		CreatedAt: now,
	}, nil
}

// Authenticate checks a username/password pair and returns the user on
// success. Wrong password and unknown user are both ErrNotFound.
func (s *UserStore) Authenticate(username, password string) (*domain.User, error) {
	var hash string
	var user domain.User
	err := s.db.sql.QueryRow(
		`SELECT id, username, password_hash FROM users WHERE username = ? AND is_active = 1`,
		username,
	).Scan(&user.ID, &user.Username, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("authenticating user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, domain.ErrNotFound
	}
	user.IsActive = true
	return &user, nil
}

// GetByID returns the active user with the given id.
func (s *UserStore) GetByID(id int64) (*domain.User, error) {
	return s.scanOne(s.db.sql.QueryRow(
		`SELECT id, username, git_name, git_email, has_completed_onboarding, is_active, last_login, created_at
		 FROM users WHERE id = ? AND is_active = 1`, id,
	))
}

// GetByUsername returns the active user with the given username.
func (s *UserStore) GetByUsername(username string) (*domain.User, error) {
	return s.scanOne(s.db.sql.QueryRow(
		`SELECT id, username, git_name, git_email, has_completed_onboarding, is_active, last_login, created_at
		 FROM users WHERE username = ? AND is_active = 1`, username,
	))
}

// First returns the oldest active user. Local single-user deployments
// route unauthenticated requests to this account.
func (s *UserStore) First() (*domain.User, error) {
	return s.scanOne(s.db.sql.QueryRow(
		`SELECT id, username, git_name, git_email, has_completed_onboarding, is_active, last_login, created_at
		 FROM users WHERE is_active = 1 ORDER BY id ASC LIMIT 1`,
	))
}

// HasUsers reports whether any users exist at all.
func (s *UserStore) HasUsers() (bool, error) {
	var count int
	if err := s.db.sql.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return false, fmt.Errorf("counting users: %w", err)
	}
	return count > 0, nil
}

// TouchLogin updates the user's last_login timestamp.
func (s *UserStore) TouchLogin(id int64) error {
	_, err := s.db.sql.Exec(
		`UPDATE users SET last_login = ? WHERE id = ?`,
		time.Now().Format(time.DateTime), id,
	)
	if err != nil {
		return fmt.Errorf("updating last login: %w", err)
	}
	return nil
}

// SetGitConfig stores the user's git identity.
func (s *UserStore) SetGitConfig(id int64, name, email string) error {
	_, err := s.db.sql.Exec(
		`UPDATE users SET git_name = ?, git_email = ? WHERE id = ?`, name, email, id,
	)
	if err != nil {
		return fmt.Errorf("updating git config: %w", err)
	}
	return nil
}

// CompleteOnboarding marks the user's onboarding as finished.
func (s *UserStore) CompleteOnboarding(id int64) error {
	_, err := s.db.sql.Exec(
		`UPDATE users SET has_completed_onboarding = 1 WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("completing onboarding: %w", err)
	}
	return nil
}

func (s *UserStore) scanOne(row *sql.Row) (*domain.User, error) {
	var u domain.User
	var onboarded, isActive int
	var lastLogin sql.NullString
	var createdAt string

	err := row.Scan(
		&u.ID, &u.Username, &u.GitName, &u.GitEmail,
		&onboarded, &isActive, &lastLogin, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}

	u.CompletedOnboarding = onboarded == 1
	u.IsActive = isActive == 1
	if lastLogin.Valid {
		u.LastLogin, _ = time.Parse(time.DateTime, lastLogin.String)
	}
	u.CreatedAt, _ = time.Parse(time.DateTime, createdAt)
	return &u, nil
}
