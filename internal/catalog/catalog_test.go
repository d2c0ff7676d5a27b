package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyeahso/agentdeck/internal/bundle"
	"github.com/soyeahso/agentdeck/internal/domain"
	"github.com/soyeahso/agentdeck/internal/logging"
	"github.com/soyeahso/agentdeck/internal/store"
)

type fixture struct {
	cat    *Catalog
	agents *store.AgentStore
	owner  int64
	other  int64
	root   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := store.Open(":memory:", logging.Silent())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	users := store.NewUserStore(db)
	alice, err := users.Create("alice", "password one")
	require.NoError(t, err)
	bob, err := users.Create("bob", "password two")
	require.NoError(t, err)

	root := t.TempDir()
	agents := store.NewAgentStore(db)
	loader := bundle.NewLoader(root, logging.Silent())

	return &fixture{
		cat:    New(loader, agents, logging.Silent()),
		agents: agents,
		owner:  alice.ID,
		other:  bob.ID,
		root:   root,
	}
}

func (f *fixture) writeBundle(t *testing.T, name, persona string, knowledge map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(f.root, "personas"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(f.root, "personas", name+".md"), []byte(persona), 0o644))
	for frag, content := range knowledge {
		dir := filepath.Join(f.root, "knowledge", name)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, frag+".md"), []byte(content), 0o644))
	}
}

func TestList_FileEntriesBeforeDatabase(t *testing.T) {
	f := newFixture(t)
	f.writeBundle(t, "curated", "You are curated.", nil)

	views, err := f.cat.List(f.owner)
	require.NoError(t, err)
	// 1 file agent + 5 seeded templates
	require.Len(t, views, 6)

	assert.Equal(t, "file:curated", views[0].ID)
	assert.Equal(t, domain.SourceFile, views[0].Source)
	assert.True(t, views[0].IsTemplate)
	for _, v := range views[1:] {
		assert.Equal(t, domain.SourceDatabase, v.Source)
	}
}

func TestList_SeedsTemplatesOnFirstCall(t *testing.T) {
	f := newFixture(t)

	views, err := f.cat.List(f.owner)
	require.NoError(t, err)
	assert.Len(t, views, 5)

	// Listing again does not duplicate.
	views, err = f.cat.List(f.owner)
	require.NoError(t, err)
	assert.Len(t, views, 5)
}

func TestList_IncludesOwnAgentsOnly(t *testing.T) {
	f := newFixture(t)

	_, err := f.agents.Create(f.other, "bobs", "Bobs Agent", "", "p", false)
	require.NoError(t, err)

	views, err := f.cat.List(f.owner)
	require.NoError(t, err)
	for _, v := range views {
		assert.NotEqual(t, "bobs", v.Name)
	}
}

func TestResolve_FileAgent(t *testing.T) {
	f := newFixture(t)
	f.writeBundle(t, "curated", "Expert", map[string]string{"api": "A", "db": "B"})

	id, err := domain.ParseAgentID("file:curated")
	require.NoError(t, err)

	detail, err := f.cat.Resolve(id, f.owner)
	require.NoError(t, err)
	assert.Equal(t, "file:curated", detail.ID)
	assert.Equal(t, domain.SourceFile, detail.Source)
	assert.Equal(t, "# PERSONA & ROLE\nExpert\n\n# KNOWLEDGE BASE\n\n## api\nA\n\n## db\nB", detail.SystemPrompt)
	assert.Equal(t, []string{"api", "db"}, detail.Knowledge)
	assert.Empty(t, detail.Skills)
}

func TestResolve_FileAgentMissingPersona(t *testing.T) {
	f := newFixture(t)

	id, err := domain.ParseAgentID("file:ghost")
	require.NoError(t, err)

	_, err = f.cat.Resolve(id, f.owner)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolve_StoredAgent(t *testing.T) {
	f := newFixture(t)

	rec, err := f.agents.Create(f.owner, "mine", "Mine", "d", "my prompt", false)
	require.NoError(t, err)

	id, err := domain.ParseAgentID(domain.StoredAgentID(rec.ID))
	require.NoError(t, err)

	detail, err := f.cat.Resolve(id, f.owner)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceDatabase, detail.Source)
	assert.Equal(t, "my prompt", detail.SystemPrompt)
	assert.Empty(t, detail.Knowledge)
}

func TestResolve_StoredAgentWrongOwner(t *testing.T) {
	f := newFixture(t)

	rec, err := f.agents.Create(f.other, "bobs", "Bobs", "", "p", false)
	require.NoError(t, err)

	id, err := domain.ParseAgentID(domain.StoredAgentID(rec.ID))
	require.NoError(t, err)

	_, err = f.cat.Resolve(id, f.owner)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolve_StoredAgentMissingRow(t *testing.T) {
	f := newFixture(t)

	id, err := domain.ParseAgentID("99999")
	require.NoError(t, err)

	_, err = f.cat.Resolve(id, f.owner)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolve_NumericNameNeverShadowsRows(t *testing.T) {
	f := newFixture(t)
	// A bundle named like a row id is only reachable through the file
	// namespace.
	f.writeBundle(t, "1", "Numeric name", nil)

	fileID, err := domain.ParseAgentID("file:1")
	require.NoError(t, err)
	detail, err := f.cat.Resolve(fileID, f.owner)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceFile, detail.Source)

	rowID, err := domain.ParseAgentID("1")
	require.NoError(t, err)
	_, err = f.cat.Resolve(rowID, f.owner)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTemplates(t *testing.T) {
	f := newFixture(t)
	f.writeBundle(t, "curated", "persona", nil)

	defs, fileAgents := f.cat.Templates()
	assert.Len(t, defs, 5)
	require.Len(t, fileAgents, 1)
	assert.Equal(t, "curated", fileAgents[0].Name)
}
