package config

import (
	"os"
	"path/filepath"
)

const defaultBaseDir = ".agentdeck"

// Paths holds resolved filesystem paths for agentdeck data.
type Paths struct {
	Base    string // ~/.agentdeck
	Config  string // ~/.agentdeck/config.yaml
	Bundles string // ~/.agentdeck/bundles
	Data    string // ~/.agentdeck/data
	Logs    string // ~/.agentdeck/logs
}

// ResolvePaths computes all standard paths from the home directory.
// If AGENTDECK_HOME is set, it overrides the default base directory.
func ResolvePaths() (Paths, error) {
	base := os.Getenv("AGENTDECK_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, err
		}
		base = filepath.Join(home, defaultBaseDir)
	}

	return Paths{
		Base:    base,
		Config:  filepath.Join(base, "config.yaml"),
		Bundles: filepath.Join(base, "bundles"),
		Data:    filepath.Join(base, "data"),
		Logs:    filepath.Join(base, "logs"),
	}, nil
}

// EnsureDirs creates all standard directories if they don't exist.
func (p Paths) EnsureDirs() error {
	for _, d := range []string{p.Base, p.Bundles, p.Data, p.Logs} {
		if err := os.MkdirAll(d, 0o700); err != nil {
			return err
		}
	}
	return nil
}

// DatabasePath returns the configured database path, or the default
// location under the data directory.
func (p Paths) DatabasePath(cfg Config) string {
	if cfg.Database.Path != "" {
		return cfg.Database.Path
	}
	return filepath.Join(p.Data, "agentdeck.db")
}

// BundlesDir returns the configured bundles directory, or the default
// location under the base directory.
func (p Paths) BundlesDir(cfg Config) string {
	if cfg.Bundles.Dir != "" {
		return cfg.Bundles.Dir
	}
	return p.Bundles
}
