// Package bundle loads filesystem-declared agent bundles.
//
// An agent named "foo" is declared by the layout:
//
//	personas/foo.md        persona text (required for the agent to exist)
//	personas/foo.json      optional metadata sidecar
//	knowledge/foo/*.md     knowledge fragments
//	skills/foo/*.md        skill fragments
//	workflows/foo/*.md     workflow fragments
//
// The loader never fails hard: missing files and directories yield empty
// values, and unreadable or corrupt files are logged and replaced with
// defaults. Callers always get a usable bundle.
package bundle

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/soyeahso/agentdeck/internal/domain"
	"github.com/soyeahso/agentdeck/internal/logging"
)

const fragmentExt = ".md"

// Loader reads agent bundles from a root directory. Loaded bundles are
// cached keyed by the persona file's modification time; fragment edits
// alone do not bust the cache.
type Loader struct {
	root string
	log  *logging.Logger

	mu    sync.Mutex
	cache map[string]cachedBundle
}

type cachedBundle struct {
	modTime time.Time
	bundle  domain.AgentBundle
}

// NewLoader creates a loader rooted at dir.
func NewLoader(dir string, log *logging.Logger) *Loader {
	return &Loader{
		root:  dir,
		log:   log.Sub("bundle"),
		cache: make(map[string]cachedBundle),
	}
}

// Load assembles the complete bundle for the named agent. Every field of
// the result is optional; an agent with no persona file comes back with
// an empty Persona and HasPersona() == false.
func (l *Loader) Load(name string) domain.AgentBundle {
	personaPath := filepath.Join(l.root, "personas", name+fragmentExt)

	info, statErr := os.Stat(personaPath)
	if statErr == nil {
		l.mu.Lock()
		if c, ok := l.cache[name]; ok && c.modTime.Equal(info.ModTime()) {
			l.mu.Unlock()
			return c.bundle
		}
		l.mu.Unlock()
	}

	b := domain.AgentBundle{
		Name:      name,
		Persona:   l.readFile(personaPath),
		Knowledge: l.readFragments(filepath.Join(l.root, "knowledge", name)),
		Skills:    l.readFragments(filepath.Join(l.root, "skills", name)),
		Workflows: l.readFragments(filepath.Join(l.root, "workflows", name)),
	}

	if statErr == nil {
		l.mu.Lock()
		l.cache[name] = cachedBundle{modTime: info.ModTime(), bundle: b}
		l.mu.Unlock()
	}
	return b
}

// List enumerates all declared agents from the personas directory, merging
// each optional metadata sidecar. Entries are ordered by agent name.
func (l *Loader) List() []domain.AgentMetadata {
	dir := filepath.Join(l.root, "personas")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			l.log.Warn().Err(err).Str("dir", dir).Msg("cannot enumerate personas")
		}
		return nil
	}

	var agents []domain.AgentMetadata
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fragmentExt) {
			continue
		}
		name := strings.TrimSuffix(e.Name(), fragmentExt)
		agents = append(agents, l.Metadata(name))
	}
	sort.Slice(agents, func(i, j int) bool { return agents[i].Name < agents[j].Name })
	return agents
}

// Metadata returns the sidecar metadata for the named agent, or defaults
// (display name = name, category "general") when the sidecar is missing
// or unreadable.
func (l *Loader) Metadata(name string) domain.AgentMetadata {
	meta := domain.AgentMetadata{
		Name:        name,
		DisplayName: name,
		Category:    "general",
	}

	path := filepath.Join(l.root, "personas", name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			l.log.Warn().Err(err).Str("path", path).Msg("cannot read metadata sidecar")
		}
		return meta
	}

	var sidecar domain.AgentMetadata
	if err := json.Unmarshal(data, &sidecar); err != nil {
		l.log.Warn().Err(err).Str("path", path).Msg("corrupt metadata sidecar")
		return meta
	}

	if sidecar.DisplayName != "" {
		meta.DisplayName = sidecar.DisplayName
	}
	meta.Description = sidecar.Description
	if sidecar.Category != "" {
		meta.Category = sidecar.Category
	}
	return meta
}

// readFile returns the file's contents with surrounding whitespace
// trimmed, or "" when the file is absent. Trimming keeps trailing
// newlines out of assembled prompts. Present-but-unreadable files are
// logged as a distinct diagnostic; absent files are the expected case
// and stay quiet.
func (l *Loader) readFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			l.log.Debug().Str("path", path).Msg("optional file absent")
		} else {
			l.log.Warn().Err(err).Str("path", path).Msg("cannot read bundle file")
		}
		return ""
	}
	return strings.TrimSpace(string(data))
}

// readFragments loads every fragment file in dir, sorted by fragment name
// so assembled prompts are reproducible across platforms.
func (l *Loader) readFragments(dir string) []domain.Fragment {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			l.log.Warn().Err(err).Str("dir", dir).Msg("cannot enumerate fragments")
		}
		return nil
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fragmentExt) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var frags []domain.Fragment
	for _, n := range names {
		content := l.readFile(filepath.Join(dir, n))
		if content == "" {
			continue
		}
		frags = append(frags, domain.Fragment{
			Name:    strings.TrimSuffix(n, fragmentExt),
			Content: content,
		})
	}
	return frags
}
