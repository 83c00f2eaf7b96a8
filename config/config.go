// Package config loads the optional .jasmin-lsp.yaml project file, found by
// walking up from the workspace root the same way the teacher's .scaf.yaml
// loader does.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when no config file exists anywhere between dir
// and the filesystem root.
var ErrNotFound = errors.New("jasmin-lsp: no .jasmin-lsp.yaml found")

// Config is the project config file's contents.
type Config struct {
	// Root sets the default master file path (relative to the config
	// file's directory) before any workspace/configuration round-trip.
	// LSP-provided configuration always overrides this once the client
	// responds.
	Root *string `yaml:"root,omitempty"`

	// Arch is reserved for a future target-architecture selector; it is
	// stored but not otherwise consulted by the core.
	Arch *string `yaml:"arch,omitempty"`
}

// Names are the filenames searched for, in preference order, at each
// directory level.
var Names = []string{".jasmin-lsp.yaml", ".jasmin-lsp.yml"}

// Load finds and loads the nearest config file walking up from dir.
func Load(dir string) (*Config, error) {
	path, err := Find(dir)
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// Find searches for a config file starting at dir and walking up through
// parent directories until one is found or the filesystem root is reached.
func Find(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for d := absDir; ; {
		for _, name := range Names {
			path := filepath.Join(d, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}

		parent := filepath.Dir(d)
		if parent == d {
			return "", ErrNotFound
		}
		d = parent
	}
}

// LoadFile loads a config from a specific path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ResolveRoot turns the config's Root (relative to the config file's
// directory) into an absolute path, or returns "" if Root wasn't set.
func ResolveRoot(configPath string, cfg *Config) string {
	if cfg == nil || cfg.Root == nil || *cfg.Root == "" {
		return ""
	}
	if filepath.IsAbs(*cfg.Root) {
		return filepath.Clean(*cfg.Root)
	}
	return filepath.Clean(filepath.Join(filepath.Dir(configPath), *cfg.Root))
}
