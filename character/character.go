// Package character persists named character profiles as JSON files so a
// saved look can be reloaded or picked at random later.
package character

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"violet/logger"
)

const profileVersion = "2.0.0"

// Profile is one saved character: segment data keyed by segment name.
type Profile struct {
	Name    string                    `json:"name"`
	Created string                    `json:"created"`
	Version string                    `json:"violet_tools_version"`
	Data    map[string]map[string]any `json:"data"`
}

// Store reads and writes profiles under Dir. LegacyDir, when set, is
// consulted read-only for profiles saved by older releases.
type Store struct {
	Dir       string
	LegacyDir string
}

// NewStore returns a store rooted at dir with an optional legacy fallback.
func NewStore(dir, legacyDir string) *Store {
	return &Store{Dir: dir, LegacyDir: legacyDir}
}

// SanitizeFileName strips characters that are unsafe in file names,
// collapses runs of whitespace and trims trailing dots and spaces.
// An empty result falls back to "character".
func SanitizeFileName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`<>:"/\|?*`, r) {
			return '_'
		}
		return r
	}, name)
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	cleaned = strings.Trim(cleaned, ". ")
	if cleaned == "" {
		return "character"
	}
	return cleaned
}

// Save writes the profile to disk, stamping created time and version.
func (s *Store) Save(name string, data map[string]map[string]any) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("character name is required")
	}
	if data == nil {
		data = map[string]map[string]any{}
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create characters directory %s: %w", s.Dir, err)
	}

	profile := Profile{
		Name:    name,
		Created: time.Now().Format("2006-01-02 15:04:05"),
		Version: profileVersion,
		Data:    data,
	}
	encoded, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode character %s: %w", name, err)
	}

	path := filepath.Join(s.Dir, SanitizeFileName(name)+".json")
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return "", fmt.Errorf("failed to write character %s: %w", name, err)
	}

	logger.Character("saved character", "name", name, "path", path)
	return path, nil
}

// Load reads a profile by name, falling back to the legacy directory when
// the preferred one has no such file.
func (s *Store) Load(name string) (Profile, error) {
	var profile Profile
	if strings.TrimSpace(name) == "" {
		return profile, fmt.Errorf("character name is required")
	}

	stem := SanitizeFileName(name) + ".json"
	path := filepath.Join(s.Dir, stem)
	data, err := os.ReadFile(path)
	if err != nil && s.LegacyDir != "" {
		legacyPath := filepath.Join(s.LegacyDir, stem)
		if legacyData, legacyErr := os.ReadFile(legacyPath); legacyErr == nil {
			logger.Character("loaded character from legacy directory", "name", name, "path", legacyPath)
			data, err = legacyData, nil
		}
	}
	if err != nil {
		return profile, fmt.Errorf("character %s not found: %w", name, err)
	}

	if err := json.Unmarshal(data, &profile); err != nil {
		return profile, fmt.Errorf("failed to parse character %s: %w", name, err)
	}
	if profile.Data == nil {
		return Profile{}, fmt.Errorf("character %s has no data block", name)
	}
	return profile, nil
}

// Delete removes a saved profile from the preferred directory.
func (s *Store) Delete(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("character name is required")
	}
	path := filepath.Join(s.Dir, SanitizeFileName(name)+".json")
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete character %s: %w", name, err)
	}
	logger.Character("deleted character", "name", name)
	return nil
}

// List returns the saved character names from both directories, sorted
// and deduplicated.
func (s *Store) List() []string {
	seen := make(map[string]struct{})
	for _, dir := range []string{s.Dir, s.LegacyDir} {
		if dir == "" {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}
			seen[strings.TrimSuffix(entry.Name(), ".json")] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RandomName picks one saved character name, or "" when none exist.
func (s *Store) RandomName() string {
	names := s.List()
	if len(names) == 0 {
		return ""
	}
	return names[rand.Intn(len(names))]
}
