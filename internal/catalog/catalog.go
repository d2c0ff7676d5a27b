// Package catalog merges filesystem bundles and database agents into one
// addressable listing and resolves opaque agent ids to the right backend.
package catalog

import (
	"errors"

	"github.com/soyeahso/agentdeck/internal/bundle"
	"github.com/soyeahso/agentdeck/internal/domain"
	"github.com/soyeahso/agentdeck/internal/logging"
	"github.com/soyeahso/agentdeck/internal/prompt"
	"github.com/soyeahso/agentdeck/internal/store"
)

// Catalog unifies the two agent sources. File bundles are global and
// read-only; database agents are owner-scoped and mutable.
type Catalog struct {
	bundles *bundle.Loader
	agents  *store.AgentStore
	log     *logging.Logger
}

// New creates a catalog over the given bundle loader and agent store.
func New(bundles *bundle.Loader, agents *store.AgentStore, log *logging.Logger) *Catalog {
	return &Catalog{
		bundles: bundles,
		agents:  agents,
		log:     log.Sub("catalog"),
	}
}

// List returns the unified catalog for one owner: file-based entries
// first (curated agents take display priority), then the owner's database
// agents in store order (templates first, then display name). Built-in
// templates are seeded before listing; a seeding failure degrades the
// listing rather than failing it.
func (c *Catalog) List(ownerID int64) ([]domain.UnifiedAgentView, error) {
	if err := c.agents.SeedTemplates(ownerID); err != nil {
		c.log.Warn().Err(err).Int64("owner", ownerID).Msg("template seeding failed")
	}

	var views []domain.UnifiedAgentView
	for _, meta := range c.bundles.List() {
		views = append(views, domain.UnifiedAgentView{
			ID:          domain.FileAgentID(meta.Name),
			Name:        meta.Name,
			DisplayName: meta.DisplayName,
			Description: meta.Description,
			Category:    meta.Category,
			Source:      domain.SourceFile,
			IsTemplate:  true,
			IsActive:    true,
		})
	}

	records, err := c.agents.List(ownerID)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		views = append(views, recordView(rec))
	}
	return views, nil
}

// Resolve loads the full detail for a parsed agent id. File ids route to
// the bundle loader and ignore the owner (bundles are global); stored ids
// route to the database scoped to ownerID. A stored agent owned by a
// different user resolves exactly like a missing one.
func (c *Catalog) Resolve(id domain.AgentID, ownerID int64) (*domain.AgentDetail, error) {
	switch id.Kind {
	case domain.IDFile:
		return c.resolveFile(id.Name)
	case domain.IDStored:
		return c.resolveStored(id.Row, ownerID)
	default:
		return nil, &domain.ValidationError{Field: "id", Message: "unknown id kind"}
	}
}

// Templates returns the built-in template definitions together with the
// file-based agent metadata, for template pickers.
func (c *Catalog) Templates() ([]domain.TemplateDefinition, []domain.AgentMetadata) {
	return store.TemplateDefinitions(), c.bundles.List()
}

func (c *Catalog) resolveFile(name string) (*domain.AgentDetail, error) {
	b := c.bundles.Load(name)
	if !b.HasPersona() {
		return nil, domain.ErrNotFound
	}
	meta := c.bundles.Metadata(name)

	return &domain.AgentDetail{
		UnifiedAgentView: domain.UnifiedAgentView{
			ID:          domain.FileAgentID(name),
			Name:        name,
			DisplayName: meta.DisplayName,
			Description: meta.Description,
			Category:    meta.Category,
			Source:      domain.SourceFile,
			IsTemplate:  true,
			IsActive:    true,
		},
		SystemPrompt: prompt.Assemble(b),
		Knowledge:    fragmentNames(b.Knowledge),
		Skills:       fragmentNames(b.Skills),
		Workflows:    fragmentNames(b.Workflows),
	}, nil
}

func (c *Catalog) resolveStored(row, ownerID int64) (*domain.AgentDetail, error) {
	rec, err := c.agents.GetByID(row)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if rec.OwnerID != ownerID {
		// Indistinguishable from absent: ids must not leak existence.
		return nil, domain.ErrNotFound
	}

	return &domain.AgentDetail{
		UnifiedAgentView: recordView(*rec),
		SystemPrompt:     rec.SystemPrompt,
	}, nil
}

func recordView(rec domain.AgentRecord) domain.UnifiedAgentView {
	return domain.UnifiedAgentView{
		ID:          domain.StoredAgentID(rec.ID),
		Name:        rec.Name,
		DisplayName: rec.DisplayName,
		Description: rec.Description,
		Category:    rec.Category,
		Source:      domain.SourceDatabase,
		IsTemplate:  rec.IsTemplate,
		IsActive:    rec.IsActive,
	}
}

func fragmentNames(frags []domain.Fragment) []string {
	if len(frags) == 0 {
		return nil
	}
	names := make([]string, len(frags))
	for i, f := range frags {
		names[i] = f.Name
	}
	return names
}
