// Package consolidate reduces oversized, redundant comma-separated prompt
// strings to shorter deduplicated ones while keeping their meaning. It maps
// phrases onto a controlled vocabulary, merges repeated descriptor runs,
// drops near-duplicates and guarantees a minimum retention floor.
package consolidate

import (
	"math"
	"sort"
	"strings"

	"violet/vocab"
)

// Context groups a vocabulary with the content policy for one consolidation
// session. The vocabulary is read-only; a Context is safe for concurrent use.
type Context struct {
	Vocab   *vocab.Vocabulary
	SfwMode bool
}

// NewContext pairs a loaded vocabulary with a content policy.
func NewContext(v *vocab.Vocabulary, sfwMode bool) *Context {
	return &Context{Vocab: v, SfwMode: sfwMode}
}

const (
	// nearDupThreshold is the QRatio score at or above which two phrases
	// are treated as the same phrase.
	nearDupThreshold = 94

	// retentionFraction of the original phrase count that must survive,
	// subject to retentionMinimum. A tuned safety margin, not a derived
	// constant.
	retentionFraction = 0.35
	retentionMinimum  = 10
)

// Consolidate runs the full pipeline: canonicalize each phrase, apply the
// structural rewrite passes, drop near and exact duplicates, optionally
// apply the SFW substitutions, then enforce the retention floor against the
// original phrase list.
func Consolidate(text string, ctx *Context) string {
	original := Split(text)
	if len(original) == 0 {
		return ""
	}

	mapped := make([]string, 0, len(original))
	for _, phrase := range original {
		mapped = append(mapped, Canonicalize(phrase, ctx.Vocab))
	}

	mapped = collapsePersonCounts(mapped)
	mapped = dropFiller(mapped)
	mapped = rewriteSynonyms(mapped)
	mapped = mergeDescriptorGroups(mapped)

	mapped = dedupeNear(mapped, nearDupThreshold)
	mapped = dedupeExact(mapped)

	if ctx.SfwMode {
		mapped = coverExplicit(mapped)
	}

	mapped = enforceRetentionFloor(mapped, original)

	return strings.Join(mapped, ", ")
}

// ConsolidateLegacy is the compatibility entry point for callers that have
// not migrated off the old model-assisted name. It has always resolved to
// the algorithmic pipeline.
func ConsolidateLegacy(text string, ctx *Context) string {
	if ctx == nil {
		return text
	}
	return Consolidate(text, ctx)
}

// SoftCompact is the non-semantic fallback reducer: it trims generic drift
// terms down to a target retention ratio without any vocabulary remapping.
// Once the running kept count reaches the target, later tokens pass through
// unfiltered; the target is a no-filtering-past-this-point gate, not a cap.
// If nothing was dropped, the tokens are returned sorted case-insensitively
// so an explicit compaction request always has a visible effect.
func SoftCompact(text string, ctx *Context) string {
	tokens := Split(text)
	if len(tokens) == 0 {
		return ""
	}

	minKeep := retentionFloor(len(tokens))
	target := int(math.Ceil(0.85 * float64(len(tokens))))
	if target < minKeep {
		target = minKeep
	}

	keep := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if len(keep) >= target {
			keep = append(keep, tok)
			continue
		}
		if ctx != nil && ctx.Vocab != nil && ctx.Vocab.IsDrift(tok) {
			continue
		}
		keep = append(keep, tok)
	}

	if len(keep) == 0 || strings.Join(keep, ", ") == text {
		sorted := append([]string(nil), tokens...)
		sort.SliceStable(sorted, func(i, j int) bool {
			return strings.ToLower(sorted[i]) < strings.ToLower(sorted[j])
		})
		return strings.Join(sorted, ", ")
	}
	return strings.Join(keep, ", ")
}

func retentionFloor(originalCount int) int {
	minKeep := int(math.Ceil(retentionFraction * float64(originalCount)))
	if minKeep < retentionMinimum {
		minKeep = retentionMinimum
	}
	return minKeep
}

// enforceRetentionFloor re-adds lowercase-normalized original tokens, in
// original order, until the reduced list meets the floor or the originals
// are exhausted.
func enforceRetentionFloor(reduced, original []string) []string {
	minKeep := retentionFloor(len(original))
	if len(reduced) >= minKeep {
		return reduced
	}

	have := make(map[string]struct{}, len(reduced))
	for _, tok := range reduced {
		have[tok] = struct{}{}
	}
	for _, tok := range original {
		if len(reduced) >= minKeep {
			break
		}
		key := normalizeCase(tok)
		if _, ok := have[key]; !ok {
			reduced = append(reduced, key)
			have[key] = struct{}{}
		}
	}
	return reduced
}

// coverExplicit rewrites a fixed set of explicit tags to covered variants.
// Unmapped phrases are never altered.
func coverExplicit(tokens []string) []string {
	covered := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		switch tok {
		case "nipples", "areolae", "erect nipples":
			covered = append(covered, "covered nipples")
		case "penis":
			covered = append(covered, "covered penis")
		case "anus":
			covered = append(covered, "covered anus")
		case "pubic hair":
			covered = append(covered, "pubic hair peek")
		default:
			covered = append(covered, tok)
		}
	}
	return covered
}
