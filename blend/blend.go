// Package blend turns composed prompt segments into encode plans: ordered
// lists of text plus strength that an encoder submits as separate
// conditionings. The four modes trade smoothness against per-segment
// emphasis.
package blend

import (
	"strings"

	"violet/consolidate"
)

// Mode selects how segments are grouped before encoding.
type Mode string

const (
	ModeSmoothBlend    Mode = "smooth blend"
	ModeCloseup        Mode = "closeup"
	ModePortrait       Mode = "portrait"
	ModeCompeteCombine Mode = "compete combine"
)

// Segments carries the composed text for every prompt channel.
type Segments struct {
	Quality   string
	Scene     string
	Glamour   string
	Body      string
	Aesthetic string
	Pose      string
	Negative  string
}

// Encode is one encoder submission: text at a weight.
type Encode struct {
	Text     string
	Strength float64
}

// Strengths are the per-group multipliers applied outside smooth blend.
type Strengths struct {
	Body     float64
	Vibe     float64
	Negative float64
}

// CombineText joins non-empty parts with comma separation.
func CombineText(parts ...string) string {
	joined := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			joined = append(joined, p)
		}
	}
	return strings.Join(joined, ", ")
}

// PositiveText is the full combined positive prompt in channel order.
func (s Segments) PositiveText() string {
	return CombineText(s.Quality, s.Scene, s.Body, s.Glamour, s.Aesthetic, s.Pose)
}

// Clean scrubs repeated phrases and comma spacing from every channel, so
// no single composer output carries duplicates into the joined prompt.
func (s Segments) Clean() Segments {
	out := s
	out.Quality = consolidate.CleanPrompt(s.Quality)
	out.Scene = consolidate.CleanPrompt(s.Scene)
	out.Glamour = consolidate.CleanPrompt(s.Glamour)
	out.Body = consolidate.CleanPrompt(s.Body)
	out.Aesthetic = consolidate.CleanPrompt(s.Aesthetic)
	out.Pose = consolidate.CleanPrompt(s.Pose)
	out.Negative = consolidate.CleanPrompt(s.Negative)
	return out
}

// Consolidate runs the dedupe pipeline over every positive channel. The
// negative channel is left untouched.
func (s Segments) Consolidate(ctx *consolidate.Context) Segments {
	out := s
	out.Quality = consolidate.Consolidate(s.Quality, ctx)
	out.Scene = consolidate.Consolidate(s.Scene, ctx)
	out.Glamour = consolidate.Consolidate(s.Glamour, ctx)
	out.Body = consolidate.Consolidate(s.Body, ctx)
	out.Aesthetic = consolidate.Consolidate(s.Aesthetic, ctx)
	out.Pose = consolidate.Consolidate(s.Pose, ctx)
	return out
}

// CharacterData shapes the segments as a character profile data block,
// one {"text": ...} entry per non-empty channel.
func (s Segments) CharacterData() map[string]map[string]any {
	data := make(map[string]map[string]any)
	channels := []struct {
		name string
		text string
	}{
		{"quality", s.Quality},
		{"scene", s.Scene},
		{"glamour", s.Glamour},
		{"body", s.Body},
		{"aesthetic", s.Aesthetic},
		{"pose", s.Pose},
		{"negative", s.Negative},
	}
	for _, ch := range channels {
		if ch.text != "" {
			data[ch.name] = map[string]any{"text": ch.text}
		}
	}
	return data
}

// CowboyNegative returns the extra negative tag needed when the scene uses
// cowboy shot framing, which models tend to literalize.
func CowboyNegative(scene string) string {
	lower := strings.ToLower(scene)
	if strings.Contains(lower, "cowboy shot") || strings.Contains(lower, "cowboy-shot") {
		return "cowboy"
	}
	return ""
}

// Plan holds the encoder submissions for one prompt.
type Plan struct {
	Positive []Encode
	Negative []Encode
	// PositiveText and NegativeText are the human-readable combined
	// prompts, kept for metadata and caching.
	PositiveText string
	NegativeText string
}

// OverridePositive replaces the positive side of the plan with a single
// manual prompt at full strength. The negative side is untouched.
func (p Plan) OverridePositive(text string) Plan {
	p.Positive = []Encode{{Text: text, Strength: 1.0}}
	p.PositiveText = text
	return p
}

// Build produces the encode plan for the given mode. The framing filter
// strips scene framing terms in closeup and portrait modes so they do not
// fight the injected framing keywords.
func Build(mode Mode, seg Segments, st Strengths, framing *FramingFilter) Plan {
	negativeText := CombineText(seg.Negative, CowboyNegative(seg.Scene))

	plan := Plan{
		PositiveText: seg.PositiveText(),
		NegativeText: negativeText,
	}
	if negativeText != "" {
		plan.Negative = append(plan.Negative, Encode{Text: negativeText, Strength: st.Negative})
	}

	appendEncode := func(text string, strength float64) {
		if text != "" {
			plan.Positive = append(plan.Positive, Encode{Text: text, Strength: strength})
		}
	}

	switch mode {
	case ModeCloseup:
		scene := framing.Strip(seg.Scene)
		appendEncode(seg.Glamour, st.Body)
		appendEncode(CombineText(seg.Body, seg.Pose, "portrait, closeup, face focus"), st.Body)
		appendEncode(CombineText(seg.Quality, scene, seg.Aesthetic, "portrait, closeup, face focus"), st.Vibe)
	case ModePortrait:
		scene := framing.Strip(seg.Scene)
		appendEncode(CombineText(seg.Body, seg.Pose, "portrait"), st.Body)
		appendEncode(CombineText(seg.Glamour, seg.Quality, scene, seg.Aesthetic, "portrait"), st.Vibe)
	case ModeCompeteCombine:
		appendEncode(CombineText(seg.Quality, seg.Scene), st.Vibe)
		appendEncode(CombineText("(full body:1.2)", seg.Body, seg.Glamour), st.Body)
		appendEncode(seg.Pose, st.Body)
		appendEncode(seg.Aesthetic, st.Vibe)
	default:
		appendEncode(plan.PositiveText, 1.0)
	}

	return plan
}
