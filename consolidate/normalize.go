package consolidate

import (
	"regexp"
	"strings"
)

// personCountTags is the closed set of person/count tags. When more than one
// is present only the longest by character length survives, appended at the
// end of the sequence; these tags carry no internal ordering meaning.
var personCountTags = map[string]struct{}{
	"solo": {}, "duo": {}, "group": {},
	"1girl": {}, "1boy": {},
	"2girls": {}, "2boys": {},
	"3girls": {}, "3boys": {},
	"4girls": {}, "4boys": {},
	"multiple girls": {}, "multiple boys": {},
}

func collapsePersonCounts(tokens []string) []string {
	var seen []string
	for _, tok := range tokens {
		if _, ok := personCountTags[tok]; ok {
			seen = append(seen, tok)
		}
	}
	if len(seen) <= 1 {
		return tokens
	}

	keep := seen[0]
	for _, tok := range seen[1:] {
		if len(tok) > len(keep) {
			keep = tok
		}
	}

	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, ok := personCountTags[tok]; !ok {
			out = append(out, tok)
		}
	}
	return append(out, keep)
}

// dropFiller removes the bare word "hair", which has no standalone
// descriptive value.
func dropFiller(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok != "hair" {
			out = append(out, tok)
		}
	}
	return out
}

var glossLipstickRe = regexp.MustCompile(`\bgloss lipstick\b`)

func rewriteSynonyms(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, glossLipstickRe.ReplaceAllString(tok, "lip gloss"))
	}
	return out
}

// mergeNouns is the closed set of body/makeup nouns eligible for descriptor
// merging. Multi-word nouns must precede their suffixes so the regex
// alternation matches the longest noun.
var mergeNouns = []string{
	"pubic hair", "armpit hair", "lip gloss",
	"breasts", "ass", "skin", "areolas", "penis",
	"eyeliner", "blush", "eyeshadow", "brows", "fingernails", "lipstick",
}

var descriptorNounRe = func() *regexp.Regexp {
	quoted := make([]string, len(mergeNouns))
	for i, noun := range mergeNouns {
		quoted[i] = regexp.QuoteMeta(noun)
	}
	return regexp.MustCompile(`^(.+?)\s+(` + strings.Join(quoted, "|") + `)$`)
}()

type descriptorGroup struct {
	descs    []string
	firstIdx int
}

// mergeDescriptorGroups folds repeated "<descriptor> <noun>" phrases that
// share a noun into one phrase carrying the accumulated descriptors, placed
// where the first member appeared. Independent prompt fragments often emit
// separate adjectives for the same anatomical noun ("large breasts" +
// "perky breasts"); the encoder does better with one merged run than two
// separately weighted repeats.
func mergeDescriptorGroups(tokens []string) []string {
	lipGlossPresent := false
	for _, tok := range tokens {
		if tok == "lip gloss" || strings.HasSuffix(tok, " lip gloss") {
			lipGlossPresent = true
			break
		}
	}

	matchNoun := func(tok string) (desc, noun string, ok bool) {
		m := descriptorNounRe.FindStringSubmatch(tok)
		if m == nil {
			return "", "", false
		}
		desc, noun = strings.TrimSpace(m[1]), m[2]
		// A bare "red lipstick" rides along with an existing lip gloss
		// group rather than forming its own.
		if noun == "lipstick" && lipGlossPresent {
			noun = "lip gloss"
		}
		return desc, noun, true
	}

	groups := make(map[string]*descriptorGroup)
	for idx, tok := range tokens {
		desc, noun, ok := matchNoun(tok)
		if !ok {
			continue
		}
		g, exists := groups[noun]
		if !exists {
			g = &descriptorGroup{firstIdx: idx}
			groups[noun] = g
		}
		for _, word := range strings.Fields(desc) {
			if !containsString(g.descs, word) {
				g.descs = append(g.descs, word)
			}
		}
	}

	if len(groups) == 0 {
		return tokens
	}

	out := make([]string, 0, len(tokens))
	for idx, tok := range tokens {
		_, noun, ok := matchNoun(tok)
		if !ok {
			out = append(out, tok)
			continue
		}
		g := groups[noun]
		if idx != g.firstIdx {
			continue // later members of the group are suppressed
		}
		merged := strings.TrimSpace(strings.Join(g.descs, " ") + " " + noun)
		out = append(out, merged)
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
