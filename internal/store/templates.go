package store

import (
	"fmt"
	"time"

	"github.com/soyeahso/agentdeck/internal/domain"
)

// builtinTemplates are the agent templates seeded for every owner.
var builtinTemplates = []domain.TemplateDefinition{
	{
		Name:        "code-reviewer",
		DisplayName: "Code Reviewer",
		Description: "Reviews code for quality, security, and best practices",
		SystemPrompt: `You are an expert code reviewer. Focus on:
- Code quality and readability
- Security vulnerabilities (OWASP top 10)
- Performance optimizations
- Best practices and design patterns
- Potential bugs and edge cases

Always provide specific, actionable feedback with code examples.`,
	},
	{
		Name:        "bug-fixer",
		DisplayName: "Bug Fixer",
		Description: "Systematic debugging and fix suggestions",
		SystemPrompt: `You are a debugging expert. Your approach:
- Analyze the error/bug systematically
- Identify root causes, not just symptoms
- Provide step-by-step fix instructions
- Explain why the bug occurred
- Suggest preventive measures

Be thorough but focused on solving the immediate issue.`,
	},
	{
		Name:        "doc-writer",
		DisplayName: "Documentation Writer",
		Description: "Generate documentation, comments, and README files",
		SystemPrompt: `You are a technical documentation specialist. You excel at:
- Writing clear, concise documentation
- Creating comprehensive README files
- Adding helpful code comments
- Generating API documentation
- Writing usage examples

Focus on clarity and completeness while avoiding unnecessary verbosity.`,
	},
	{
		Name:        "refactorer",
		DisplayName: "Refactorer",
		Description: "Code optimization and restructuring",
		SystemPrompt: `You are a refactoring expert. Focus on:
- Improving code structure and organization
- Reducing complexity and duplication
- Applying SOLID principles
- Optimizing performance
- Maintaining backwards compatibility

Always explain the reasoning behind refactoring decisions.`,
	},
	{
		Name:        "test-writer",
		DisplayName: "Test Writer",
		Description: "Generate unit tests and test scenarios",
		SystemPrompt: `You are a testing expert. Your focus:
- Writing comprehensive unit tests
- Identifying edge cases and boundary conditions
- Creating meaningful test descriptions
- Using appropriate testing patterns (AAA, etc.)
- Achieving good code coverage

Prioritize test quality over quantity.`,
	},
}

// TemplateDefinitions returns the built-in template definitions. The
// returned slice is shared; callers must not modify it.
func TemplateDefinitions() []domain.TemplateDefinition {
	return builtinTemplates
}

// SeedTemplates inserts any missing built-in templates for the owner.
// Idempotency rests on the UNIQUE(user_id, name) index: INSERT OR IGNORE
// makes concurrent seeding for the same owner safe without a transaction
// around the whole batch.
func (s *AgentStore) SeedTemplates(ownerID int64) error {
	now := time.Now().Format(time.DateTime)
	for _, t := range builtinTemplates {
		_, err := s.db.sql.Exec(
			`INSERT OR IGNORE INTO agents (user_id, name, display_name, description, system_prompt, is_template, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, 1, ?, ?)`,
			ownerID, t.Name, t.DisplayName, t.Description, t.SystemPrompt, now, now,
		)
		if err != nil {
			return fmt.Errorf("seeding template %s: %w", t.Name, err)
		}
	}
	return nil
}
