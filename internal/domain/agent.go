// Package domain holds the core types shared across the agentdeck subsystems.
package domain

import "time"

// AgentSource identifies where a catalog entry came from.
type AgentSource string

const (
	SourceFile     AgentSource = "file"
	SourceDatabase AgentSource = "database"
)

// Fragment is one named content unit inside a knowledge, skill, or
// workflow directory.
type Fragment struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// AgentBundle is the filesystem-derived definition of one agent:
// a persona plus ordered knowledge, skill, and workflow fragments.
// Bundles are read-only; they are recomputed from disk, never mutated.
type AgentBundle struct {
	Name      string     `json:"name"`
	Persona   string     `json:"persona,omitempty"`
	Knowledge []Fragment `json:"knowledge"`
	Skills    []Fragment `json:"skills"`
	Workflows []Fragment `json:"workflows"`
}

// HasPersona reports whether the bundle carries persona text. A bundle
// without a persona does not describe a loadable agent.
func (b AgentBundle) HasPersona() bool {
	return b.Persona != ""
}

// AgentMetadata is the optional JSON sidecar next to a persona file.
type AgentMetadata struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
}

// AgentRecord is a mutable, owner-scoped agent stored in the database.
type AgentRecord struct {
	ID           int64     `json:"id"`
	OwnerID      int64     `json:"-"`
	Name         string    `json:"name"`
	DisplayName  string    `json:"displayName"`
	Description  string    `json:"description"`
	SystemPrompt string    `json:"systemPrompt"`
	Category     string    `json:"category"`
	IsTemplate   bool      `json:"isTemplate"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UnifiedAgentView is a single catalog entry, merged from either source.
// The ID is "file:<name>" for bundle agents and the stringified row id
// for database agents, so the two id spaces can never collide.
type UnifiedAgentView struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	DisplayName string      `json:"displayName"`
	Description string      `json:"description"`
	Category    string      `json:"category,omitempty"`
	Source      AgentSource `json:"source"`
	IsTemplate  bool        `json:"isTemplate"`
	IsActive    bool        `json:"isActive"`
}

// AgentDetail is the full view of a resolved agent, including its
// assembled system prompt. For file agents the fragment name lists are
// populated; for database agents they are empty.
type AgentDetail struct {
	UnifiedAgentView
	SystemPrompt string   `json:"systemPrompt"`
	Knowledge    []string `json:"knowledge,omitempty"`
	Skills       []string `json:"skills,omitempty"`
	Workflows    []string `json:"workflows,omitempty"`
}

// TemplateDefinition is one built-in agent template seeded for new owners.
type TemplateDefinition struct {
	Name         string `json:"name"`
	DisplayName  string `json:"displayName"`
	Description  string `json:"description"`
	SystemPrompt string `json:"systemPrompt"`
}
