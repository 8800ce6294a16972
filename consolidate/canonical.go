package consolidate

import (
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
	"golang.org/x/text/unicode/norm"

	"violet/vocab"
)

// fuzzyAcceptScore is the minimum QRatio score for an approximate allowlist
// match to replace a phrase.
const fuzzyAcceptScore = 90

// Split breaks a comma-separated prompt into trimmed, non-empty phrases in
// input order. Unicode compatibility forms are folded so visually identical
// tags compare equal.
func Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var phrases []string
	for _, raw := range strings.Split(text, ",") {
		phrase := strings.TrimSpace(norm.NFKC.String(raw))
		if phrase != "" {
			phrases = append(phrases, phrase)
		}
	}
	return phrases
}

func normalizeCase(phrase string) string {
	return strings.ReplaceAll(strings.ToLower(phrase), "_", " ")
}

// Canonicalize maps a phrase to its canonical form. First match wins:
// exact allowlist membership, then alias lookup, then the best approximate
// allowlist match at or above fuzzyAcceptScore. Unresolved phrases pass
// through normalized but otherwise unchanged; recall beats precision here.
func Canonicalize(phrase string, v *vocab.Vocabulary) string {
	key := normalizeCase(phrase)

	if v == nil {
		return key
	}
	if v.InAllowlist(key) {
		return key
	}
	if canonical, ok := v.Aliases[key]; ok {
		return canonical
	}
	if best, score := bestAllowlistMatch(key, v.Allowlist); score >= fuzzyAcceptScore {
		return best
	}
	return key
}

func bestAllowlistMatch(key string, allowlist []string) (string, int) {
	best := ""
	bestScore := -1
	for _, candidate := range allowlist {
		score := fuzzy.QRatio(key, candidate)
		if score > bestScore {
			best = candidate
			bestScore = score
		}
	}
	return best, bestScore
}
