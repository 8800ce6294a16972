package prompt

import (
	"fmt"
	"strings"
)

// Sentinel choices shared by every composer dropdown.
const (
	Unspecified  = "Unspecified"
	RandomChoice = "Random"
	NoneChoice   = "None"
)

// pick resolves one field selection: Unspecified contributes nothing,
// Random draws from the field's options, and anything else looks up the
// option value with pass-through for hand-typed tags.
func pick(opts Options, choice string) string {
	switch choice {
	case Unspecified, "":
		return ""
	case RandomChoice:
		return opts.Random()
	default:
		return opts.Value(choice)
	}
}

// Composer joins a feature catalog's selections into a prompt fragment.
// Glamour, body and pose all share this shape.
type Composer struct {
	Features FeatureSet
}

// Compose walks the catalog fields in order, resolves each selection,
// lowercases the tags and appends any extra free text.
func (c Composer) Compose(selections map[string]string, extra string) string {
	var parts []string
	for _, field := range c.Features.Fields() {
		opts, _ := c.Features.Field(field)
		if val := pick(opts, selections[field]); val != "" {
			parts = append(parts, strings.ToLower(val))
		}
	}
	if extra = strings.TrimSpace(extra); extra != "" {
		parts = append(parts, extra)
	}
	return strings.Join(parts, ", ")
}

// Weighted renders tag text with prompt-weighting syntax when the weight
// deviates from neutral.
func Weighted(text string, weight float64) string {
	if text == "" || weight <= 0 {
		return ""
	}
	if weight == 1.0 {
		return text
	}
	return fmt.Sprintf("(%s:%s)", text, trimFloat(weight))
}

func trimFloat(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

// QualityComposer builds the quality segment from boilerplate tags, an
// optional style and extra text with wildcard resolution.
type QualityComposer struct {
	Catalog QualityCatalog
}

func (c QualityComposer) Compose(includeBoilerplate bool, style, extra string) string {
	var parts []string
	if includeBoilerplate && len(c.Catalog.Boilerplate) > 0 {
		parts = append(parts, strings.Join(c.Catalog.Boilerplate, ", "))
	}

	selected := style
	if style == RandomChoice {
		selected = c.Catalog.Styles.RandomKey()
	}
	if selected != NoneChoice && selected != "" {
		if text := c.Catalog.Styles.Value(selected); text != "" {
			parts = append(parts, text)
		}
	}

	if extra = strings.TrimSpace(extra); extra != "" {
		parts = append(parts, ResolveWildcards(extra))
	}
	return strings.TrimSpace(strings.Join(parts, ", "))
}

// SceneSelections carries one choice and strength per scene category.
type SceneSelections struct {
	Framing             string
	FramingStrength     float64
	Angle               string
	AngleStrength       float64
	Emotion             string
	EmotionStrength     float64
	TimeOfDay           string
	TimeOfDayStrength   float64
	Environment         string
	EnvironmentStrength float64
	Lighting            string
	LightingStrength    float64
	Extra               string
}

// SceneComposer builds the scene segment with per-category weighting.
type SceneComposer struct {
	Catalog SceneCatalog
}

func (c SceneComposer) Compose(sel SceneSelections) string {
	element := func(opts Options, choice string, weight float64) string {
		if choice == RandomChoice {
			choice = opts.RandomKey()
			if choice == "" {
				choice = NoneChoice
			}
		}
		if choice == NoneChoice || choice == "" || weight <= 0 {
			return ""
		}
		return Weighted(opts.Value(choice), weight)
	}

	var parts []string
	for _, text := range []string{
		element(c.Catalog.Framing, sel.Framing, sel.FramingStrength),
		element(c.Catalog.Angle, sel.Angle, sel.AngleStrength),
		element(c.Catalog.Emotion, sel.Emotion, sel.EmotionStrength),
		element(c.Catalog.TimeOfDay, sel.TimeOfDay, sel.TimeOfDayStrength),
		element(c.Catalog.Environment, sel.Environment, sel.EnvironmentStrength),
		element(c.Catalog.Lighting, sel.Lighting, sel.LightingStrength),
	} {
		if text != "" {
			parts = append(parts, text)
		}
	}

	if extra := strings.TrimSpace(sel.Extra); extra != "" {
		parts = append(parts, ResolveWildcards(extra))
	}
	return strings.Join(parts, ", ")
}

// AestheticComposer blends up to two named aesthetics with strengths.
type AestheticComposer struct {
	Styles Options
}

func (c AestheticComposer) Compose(first string, firstStrength float64, second string, secondStrength float64, extra string) string {
	selected1 := first
	if first == RandomChoice {
		selected1 = c.Styles.RandomKey()
	}
	selected2 := second
	if second == RandomChoice {
		selected2 = c.randomKeyExcluding(selected1)
	}

	// The original renders weight syntax only below neutral here; values
	// at or above 0.99 pass through bare.
	weighted := func(style string, weight float64) string {
		base := c.Styles.Value(style)
		if base == "" {
			return ""
		}
		if weight < 0.99 {
			return fmt.Sprintf("(%s:%s)", base, trimFloat(weight))
		}
		return base
	}

	var parts []string
	if selected1 != NoneChoice && selected1 != "" && firstStrength > 0 {
		if text := weighted(selected1, firstStrength); text != "" {
			parts = append(parts, text)
		}
	}
	if selected2 != NoneChoice && selected2 != "" && secondStrength > 0 {
		if text := weighted(selected2, secondStrength); text != "" {
			parts = append(parts, text)
		}
	}
	if extra = strings.TrimSpace(extra); extra != "" {
		parts = append(parts, extra)
	}
	return strings.Join(parts, ", ")
}

func (c AestheticComposer) randomKeyExcluding(exclude string) string {
	keys := c.Styles.Keys()
	filtered := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != exclude {
			filtered = append(filtered, k)
		}
	}
	if len(filtered) == 0 {
		return exclude
	}
	tmp := Options{order: filtered, values: c.Styles.values}
	return tmp.RandomKey()
}

// NegativeComposer builds the negative segment from boilerplate plus extra
// text with wildcard resolution.
type NegativeComposer struct {
	Catalog NegativeCatalog
}

func (c NegativeComposer) Compose(includeBoilerplate bool, extra string) string {
	var parts []string
	if includeBoilerplate {
		parts = append(parts, c.Catalog.Boilerplate...)
	}
	if extra = strings.TrimSpace(extra); extra != "" {
		parts = append(parts, ResolveWildcards(extra))
	}
	return strings.TrimSpace(strings.Join(parts, ", "))
}
