package consolidate

import (
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// dedupeNear walks the sequence once and drops any phrase whose QRatio
// against an already-kept phrase meets the threshold. Quadratic in phrase
// count, which stays in the tens here.
func dedupeNear(tokens []string, threshold int) []string {
	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		isDup := false
		for _, k := range kept {
			if qratioSafe(tok, k) >= threshold {
				isDup = true
				break
			}
		}
		if !isDup {
			kept = append(kept, tok)
		}
	}
	return kept
}

// qratioSafe scores two phrases, treating any scorer panic as "not a
// duplicate" so a bad input errs toward retention.
func qratioSafe(a, b string) (score int) {
	defer func() {
		if recover() != nil {
			score = 0
		}
	}()
	return fuzzy.QRatio(a, b)
}

func dedupeExact(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

// CleanPrompt deduplicates whole comma-separated phrases in a prompt and
// normalizes comma spacing, preserving first-occurrence order. Unlike
// Consolidate it does no vocabulary work; every node output passes through
// this before joining a larger prompt.
func CleanPrompt(text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	phrases := Split(text)
	return strings.Join(dedupeExact(phrases), ", ")
}
