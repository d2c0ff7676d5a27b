package store

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/soyeahso/agentdeck/internal/domain"
)

// agentNamePattern is the allowed shape for agent names: lowercase
// letters, digits, and hyphens.
var agentNamePattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// AgentStore manages owner-scoped mutable agent records.
type AgentStore struct {
	db *DB
}

// NewAgentStore creates an agent store using the given database.
func NewAgentStore(db *DB) *AgentStore {
	return &AgentStore{db: db}
}

// Create inserts a new agent for the owner. The name must match
// [a-z0-9-]+ and be unique among the owner's agents.
func (s *AgentStore) Create(ownerID int64, name, displayName, description, systemPrompt string, isTemplate bool) (*domain.AgentRecord, error) {
	if name == "" || displayName == "" || systemPrompt == "" {
		return nil, &domain.ValidationError{Message: "name, displayName, and systemPrompt are required"}
	}
	if !agentNamePattern.MatchString(name) {
		return nil, &domain.ValidationError{Field: "name", Message: "must be lowercase letters, numbers, and hyphens only"}
	}

	now := time.Now()
	res, err := s.db.sql.Exec(
		`INSERT INTO agents (user_id, name, display_name, description, system_prompt, is_template, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ownerID, name, displayName, description, systemPrompt, boolInt(isTemplate),
		now.Format(time.DateTime), now.Format(time.DateTime),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, &domain.ConflictError{Resource: "agent", Name: name}
		}
		return nil, fmt.Errorf("creating agent: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("creating agent: %w", err)
	}

	return &domain.AgentRecord{
		ID:           id,
		OwnerID:      ownerID,
		Name:         name,
		DisplayName:  displayName,
		Description:  description,
		SystemPrompt: systemPrompt,
		Category:     "general",
		IsTemplate:   isTemplate,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// List returns all of the owner's agents, templates first, then by
// display name ascending.
func (s *AgentStore) List(ownerID int64) ([]domain.AgentRecord, error) {
	rows, err := s.db.sql.Query(
		`SELECT id, user_id, name, display_name, description, system_prompt, category, is_template, is_active, created_at, updated_at
		 FROM agents WHERE user_id = ?
		 ORDER BY is_template DESC, display_name ASC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing agents: %w", err)
	}
	defer rows.Close()

	var agents []domain.AgentRecord
	for rows.Next() {
		rec, err := scanAgent(rows)
		if err != nil {
			return nil, fmt.Errorf("listing agents: %w", err)
		}
		agents = append(agents, *rec)
	}
	return agents, rows.Err()
}

// GetByName returns the owner's active agent with the given name.
func (s *AgentStore) GetByName(ownerID int64, name string) (*domain.AgentRecord, error) {
	row := s.db.sql.QueryRow(
		`SELECT id, user_id, name, display_name, description, system_prompt, category, is_template, is_active, created_at, updated_at
		 FROM agents WHERE user_id = ? AND name = ? AND is_active = 1`,
		ownerID, name,
	)
	return s.scanOne(row)
}

// GetByID returns the agent with the given row id regardless of owner.
// Callers that act on behalf of a user must check OwnerID themselves and
// collapse a mismatch into the same not-found outcome.
func (s *AgentStore) GetByID(id int64) (*domain.AgentRecord, error) {
	row := s.db.sql.QueryRow(
		`SELECT id, user_id, name, display_name, description, system_prompt, category, is_template, is_active, created_at, updated_at
		 FROM agents WHERE id = ?`,
		id,
	)
	return s.scanOne(row)
}

// AgentUpdate is a partial update: only non-nil fields are applied.
type AgentUpdate struct {
	Name         *string
	DisplayName  *string
	Description  *string
	SystemPrompt *string
	Category     *string
	IsActive     *bool
}

// Update applies the supplied fields to the owner's agent and bumps
// updated_at. Returns false for both "no such id" and "id owned by
// someone else".
func (s *AgentStore) Update(ownerID, id int64, upd AgentUpdate) (bool, error) {
	if upd.Name != nil && !agentNamePattern.MatchString(*upd.Name) {
		return false, &domain.ValidationError{Field: "name", Message: "must be lowercase letters, numbers, and hyphens only"}
	}

	var sets []string
	var args []any

	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.DisplayName != nil {
		sets = append(sets, "display_name = ?")
		args = append(args, *upd.DisplayName)
	}
	if upd.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *upd.Description)
	}
	if upd.SystemPrompt != nil {
		sets = append(sets, "system_prompt = ?")
		args = append(args, *upd.SystemPrompt)
	}
	if upd.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *upd.Category)
	}
	if upd.IsActive != nil {
		sets = append(sets, "is_active = ?")
		args = append(args, boolInt(*upd.IsActive))
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().Format(time.DateTime), id, ownerID)

	res, err := s.db.sql.Exec(
		"UPDATE agents SET "+strings.Join(sets, ", ")+" WHERE id = ? AND user_id = ?",
		args...,
	)
	if err != nil {
		if isUniqueViolation(err) && upd.Name != nil {
			return false, &domain.ConflictError{Resource: "agent", Name: *upd.Name}
		}
		return false, fmt.Errorf("updating agent: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("updating agent: %w", err)
	}
	return n > 0, nil
}

// Delete removes the owner's agent. Returns false for both "no such id"
// and "id owned by someone else".
func (s *AgentStore) Delete(ownerID, id int64) (bool, error) {
	res, err := s.db.sql.Exec(`DELETE FROM agents WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("deleting agent: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting agent: %w", err)
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *AgentStore) scanOne(row *sql.Row) (*domain.AgentRecord, error) {
	rec, err := scanAgent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading agent: %w", err)
	}
	return rec, nil
}

func scanAgent(row rowScanner) (*domain.AgentRecord, error) {
	var rec domain.AgentRecord
	var isTemplate, isActive int
	var createdAt, updatedAt string

	err := row.Scan(
		&rec.ID, &rec.OwnerID, &rec.Name, &rec.DisplayName, &rec.Description,
		&rec.SystemPrompt, &rec.Category, &isTemplate, &isActive, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.IsTemplate = isTemplate == 1
	rec.IsActive = isActive == 1
	rec.CreatedAt, _ = time.Parse(time.DateTime, createdAt)
	rec.UpdatedAt, _ = time.Parse(time.DateTime, updatedAt)
	return &rec, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
