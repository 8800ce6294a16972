package prompt

import (
	"math/rand"
	"regexp"
	"strings"
)

var wildcardRe = regexp.MustCompile(`\{([^{}]+)\}`)

// ResolveWildcards replaces every {a|b|c} group with one randomly chosen
// alternative. Groups are resolved innermost first, so nesting works by
// repeated passes until no group remains.
func ResolveWildcards(text string) string {
	for i := 0; i < 10 && strings.Contains(text, "{"); i++ {
		replaced := wildcardRe.ReplaceAllStringFunc(text, func(match string) string {
			body := match[1 : len(match)-1]
			choices := strings.Split(body, "|")
			return strings.TrimSpace(choices[rand.Intn(len(choices))])
		})
		if replaced == text {
			break
		}
		text = replaced
	}
	return text
}
