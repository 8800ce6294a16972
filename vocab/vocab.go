// Package vocab loads and holds the controlled vocabulary used by the
// prompt consolidator: allowlisted canonical tags, classification tag sets,
// an alias table and a modifier table. All tables are read once and are
// read-only afterwards.
package vocab

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"violet/logger"
)

// Vocabulary holds the consolidation tables. Missing or unreadable files
// degrade to empty collections so a broken install never blocks prompt
// output.
type Vocabulary struct {
	Allowlist  []string
	Weightable []string
	Media      []string
	Drift      []string

	// Aliases maps a single alias to its canonical tag. The on-disk map
	// keys are comma-joined alias lists; they are exploded once here so
	// lookups don't re-split on every phrase.
	Aliases map[string]string

	// Modifiers is auxiliary descriptor bookkeeping, loaded as-is.
	Modifiers map[string]any

	allowSet map[string]struct{}
	driftSet map[string]struct{}
}

// Load reads all vocabulary tables under baseDir. The data directory is
// resolved with a backward-compatible fallback, see ResolveDataDir.
func Load(baseDir string) *Vocabulary {
	dataDir := ResolveDataDir(baseDir)

	return New(
		loadLines(filepath.Join(dataDir, "allowlists", "allowlist.txt")),
		loadLines(filepath.Join(dataDir, "allowlists", "weightable_tags.txt")),
		loadLines(filepath.Join(dataDir, "allowlists", "media_tags.txt")),
		loadLines(filepath.Join(dataDir, "allowlists", "generic_drift.txt")),
		loadAliases(filepath.Join(dataDir, "maps", "alias_map.json")),
		loadModifiers(filepath.Join(dataDir, "features", "modifiers.json")),
	)
}

// New builds a Vocabulary from already-loaded tables.
func New(allowlist, weightable, media, drift []string, aliases map[string]string, modifiers map[string]any) *Vocabulary {
	if aliases == nil {
		aliases = make(map[string]string)
	}
	if modifiers == nil {
		modifiers = make(map[string]any)
	}
	v := &Vocabulary{
		Allowlist:  allowlist,
		Weightable: weightable,
		Media:      media,
		Drift:      drift,
		Aliases:    aliases,
		Modifiers:  modifiers,
	}
	v.allowSet = make(map[string]struct{}, len(v.Allowlist))
	for _, tag := range v.Allowlist {
		v.allowSet[tag] = struct{}{}
	}
	v.driftSet = make(map[string]struct{}, len(v.Drift))
	for _, tag := range v.Drift {
		v.driftSet[strings.ToLower(tag)] = struct{}{}
	}
	return v
}

// ResolveDataDir chooses the data directory that actually contains the
// allowlist sentinel file.
//
// Preference order:
//  1. <baseDir>/data (new layout), if allowlists/allowlist.txt exists
//  2. <baseDir>/essence-extractor/data (legacy), if the sentinel exists there
//
// Falls back to the new layout path for stable joins even if empty.
func ResolveDataDir(baseDir string) string {
	newDir := filepath.Join(baseDir, "data")
	legacyDir := filepath.Join(baseDir, "essence-extractor", "data")

	if hasSentinel(newDir) {
		return newDir
	}
	if hasSentinel(legacyDir) {
		logger.Info("Using legacy vocabulary layout", "dir", legacyDir)
		return legacyDir
	}
	return newDir
}

func hasSentinel(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, "allowlists", "allowlist.txt"))
	return err == nil && !info.IsDir()
}

// InAllowlist reports whether tag is an exact allowlist member.
func (v *Vocabulary) InAllowlist(tag string) bool {
	_, ok := v.allowSet[tag]
	return ok
}

// IsDrift reports whether tag is a generic drift term, case-insensitively.
func (v *Vocabulary) IsDrift(tag string) bool {
	_, ok := v.driftSet[strings.ToLower(tag)]
	return ok
}

// loadLines reads a line-oriented term file, trimming whitespace and
// dropping blank lines. Any read error yields an empty slice; the empty
// return IS the error handling here.
func loadLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Warn("Vocabulary file truncated mid-read", "path", path, "error", err)
	}
	return lines
}

// loadAliases reads the alias map and explodes its comma-joined keys into a
// flat alias -> canonical table. Malformed or missing JSON degrades to an
// empty map, mirroring the line-list loader.
func loadAliases(path string) map[string]string {
	aliases := make(map[string]string)

	data, err := os.ReadFile(path)
	if err != nil {
		return aliases
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.Warn("Ignoring malformed alias map", "path", path, "error", err)
		return aliases
	}

	// Iterate keys in sorted order so collisions between alias lists
	// resolve the same way on every load.
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, joined := range keys {
		canonical := raw[joined]
		for _, alias := range strings.Split(joined, ",") {
			alias = strings.TrimSpace(alias)
			if alias != "" {
				aliases[alias] = canonical
			}
		}
	}
	return aliases
}

func loadModifiers(path string) map[string]any {
	modifiers := make(map[string]any)

	data, err := os.ReadFile(path)
	if err != nil {
		return modifiers
	}
	if err := json.Unmarshal(data, &modifiers); err != nil {
		logger.Warn("Ignoring malformed modifier table", "path", path, "error", err)
		return map[string]any{}
	}
	return modifiers
}
