// Package store persists validated recipes as one JSON document per recipe.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/recipeops/ladle/internal/recipe"
)

// ErrDuplicateName is returned when a recipe with the same name (compared
// case-insensitively) already exists.
var ErrDuplicateName = errors.New("recipe name already exists")

// ErrNotSaveable is returned for drafts that failed validation.
var ErrNotSaveable = errors.New("recipe failed validation and cannot be saved")

// Store writes and reads recipe documents under a single directory.
type Store struct {
	dir string
}

// New creates the Store, making the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create recipe dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the backing directory.
func (s *Store) Dir() string { return s.dir }

// Save persists a draft. Invalid drafts are refused; valid and warning
// drafts are written as <slug>-<id-prefix>.json. Names are unique across the
// store, case-insensitively.
func (s *Store) Save(d *recipe.DraftRecipe) (string, error) {
	if d.Validation.Status == recipe.StatusInvalid {
		return "", ErrNotSaveable
	}
	if strings.TrimSpace(d.Name) == "" {
		return "", fmt.Errorf("recipe has no name")
	}

	existing, err := s.List()
	if err != nil {
		return "", err
	}
	for _, r := range existing {
		if strings.EqualFold(r.Name, d.Name) && r.ID != d.ID {
			return "", fmt.Errorf("%w: %q", ErrDuplicateName, r.Name)
		}
	}

	idPrefix := d.ID
	if len(idPrefix) > 8 {
		idPrefix = idPrefix[:8]
	}
	path := filepath.Join(s.dir, fmt.Sprintf("%s-%s.json", slug(d.Name), idPrefix))

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode recipe: %w", err)
	}
	// Write-then-rename so a crash never leaves a half-written document.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write recipe: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to finalize recipe: %w", err)
	}
	return path, nil
}

// List loads every stored recipe, sorted by name.
func (s *Store) List() ([]recipe.DraftRecipe, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe dir: %w", err)
	}

	var out []recipe.DraftRecipe
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", e.Name(), err)
		}
		var r recipe.DraftRecipe
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", e.Name(), err)
		}
		out = append(out, r)
	}

	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

// Get loads one recipe by ID.
func (s *Store) Get(id string) (*recipe.DraftRecipe, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("recipe %s not found", id)
}

// slug makes a filesystem-safe fragment from a recipe name.
func slug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('-')
		}
	}
	s := strings.Trim(b.String(), "-")
	if s == "" {
		s = "recipe"
	}
	if len(s) > 48 {
		s = s[:48]
	}
	return s
}
