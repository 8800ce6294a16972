package blend

import (
	"strings"

	"violet/prompt"
)

// Close-up variants that never appear in the scene catalog but show up in
// hand-typed extras.
var extraFramingTerms = []string{
	"close-up", "closeup", "medium shot", "long shot",
	"extreme close-up", "extreme closeup", "bust shot", "waist shot",
}

// fallbackFramingTerms covers the common framing vocabulary when no scene
// catalog is available.
var fallbackFramingTerms = []string{
	"portrait", "upper body", "cowboy shot", "cowboy-shot", "feet out of frame",
	"full body", "wide shot", "very wide shot", "lower body", "head out of frame",
	"eyes out of frame", "close-up", "closeup", "medium shot", "long shot",
	"extreme close-up", "extreme closeup", "bust shot", "waist shot",
	"panoramic view", "panoramic", "bird's eye view", "birds eye view",
	"aerial shot", "aerial view", "overhead shot", "overhead view",
	"worm's eye view", "low angle shot", "high angle shot", "dutch angle",
	"profile shot", "three-quarter view", "front view", "back view",
	"side view", "cropped", "framing",
}

// FramingFilter removes framing and angle terms from scene text so closeup
// and portrait modes can impose their own framing.
type FramingFilter struct {
	terms []string
}

// NewFramingFilter collects framing and angle terms, both display keys and
// tag values, from the scene catalog.
func NewFramingFilter(catalog prompt.SceneCatalog) *FramingFilter {
	var terms []string
	for _, opts := range []prompt.Options{catalog.Framing, catalog.Angle} {
		for _, key := range opts.Keys() {
			terms = append(terms, strings.ToLower(key), strings.ToLower(opts.Value(key)))
		}
	}
	if len(terms) == 0 {
		terms = append(terms, fallbackFramingTerms...)
	} else {
		terms = append(terms, extraFramingTerms...)
	}
	return &FramingFilter{terms: terms}
}

// Strip drops every comma-separated part of the scene that matches a
// framing term, including weighted forms like "(cowboy shot:1.2)".
func (f *FramingFilter) Strip(scene string) string {
	if f == nil || scene == "" {
		return scene
	}
	parts := strings.Split(scene, ",")
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !f.isFraming(strings.ToLower(part)) {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, ", ")
}

func (f *FramingFilter) isFraming(part string) bool {
	for _, term := range f.terms {
		if term == "" || !strings.Contains(part, term) {
			continue
		}
		if part == term ||
			strings.Contains(" "+part+" ", " "+term+" ") ||
			strings.HasPrefix(part, "("+term+":") ||
			strings.HasPrefix(part, term+":") {
			return true
		}
	}
	return false
}
