// Package home resolves and prepares the application directory layout.
//
// Everything ladle persists lives under one base directory, by default
// ~/.ladle, overridable with --home or LADLE_HOME:
//
//	config.yaml    runtime configuration
//	catalog.csv    product reference list
//	recipes/       one JSON document per imported recipe
//	logs/          events.jsonl audit trail
package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// EnvHome overrides the base directory.
	EnvHome = "LADLE_HOME"

	defaultDirName = ".ladle"
)

// Dir is a resolved application directory.
type Dir struct {
	base string
}

// Resolve determines the base directory: explicit flag value first, then the
// environment, then the home-directory default.
func Resolve(flagValue string) (*Dir, error) {
	if flagValue != "" {
		return &Dir{base: flagValue}, nil
	}
	if env := os.Getenv(EnvHome); env != "" {
		return &Dir{base: env}, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return &Dir{base: filepath.Join(userHome, defaultDirName)}, nil
}

// Ensure creates the directory tree if it does not exist.
func (d *Dir) Ensure() error {
	for _, dir := range []string{d.base, d.RecipesDir(), d.LogsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// Base returns the base directory.
func (d *Dir) Base() string { return d.base }

// ConfigPath returns the config file location.
func (d *Dir) ConfigPath() string { return filepath.Join(d.base, "config.yaml") }

// CatalogPath returns the default catalog location.
func (d *Dir) CatalogPath() string { return filepath.Join(d.base, "catalog.csv") }

// RecipesDir returns the recipe document directory.
func (d *Dir) RecipesDir() string { return filepath.Join(d.base, "recipes") }

// LogsDir returns the log directory.
func (d *Dir) LogsDir() string { return filepath.Join(d.base, "logs") }

// EventLogPath returns the JSONL audit file location.
func (d *Dir) EventLogPath() string { return filepath.Join(d.LogsDir(), "events.jsonl") }
