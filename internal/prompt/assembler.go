// Package prompt compiles agent bundles into system prompt text.
package prompt

import (
	"strings"

	"github.com/soyeahso/agentdeck/internal/domain"
)

// Section headers, in assembly order.
const (
	personaHeader   = "# PERSONA & ROLE"
	knowledgeHeader = "# KNOWLEDGE BASE"
	skillsHeader    = "# SKILLS & CAPABILITIES"
	workflowsHeader = "# WORKFLOWS & PROCESSES"
)

// Assemble compiles a bundle into a single system prompt string. The
// output is deterministic: identical bundles always produce identical
// bytes, because downstream consumers treat the string as the literal
// instruction text for the agent.
//
// A section appears iff its source collection is non-empty. Sections are
// separated by a blank line; each fragment becomes a "## name" subsection.
func Assemble(b domain.AgentBundle) string {
	var sections []string

	if b.HasPersona() {
		sections = append(sections, personaHeader+"\n"+b.Persona)
	}
	if s := fragmentSection(knowledgeHeader, b.Knowledge); s != "" {
		sections = append(sections, s)
	}
	if s := fragmentSection(skillsHeader, b.Skills); s != "" {
		sections = append(sections, s)
	}
	if s := fragmentSection(workflowsHeader, b.Workflows); s != "" {
		sections = append(sections, s)
	}

	return strings.Join(sections, "\n\n")
}

func fragmentSection(header string, frags []domain.Fragment) string {
	if len(frags) == 0 {
		return ""
	}
	parts := make([]string, 0, len(frags)+1)
	parts = append(parts, header)
	for _, f := range frags {
		parts = append(parts, "## "+f.Name+"\n"+f.Content)
	}
	return strings.Join(parts, "\n\n")
}
