package blend

import (
	"strings"
	"testing"

	"violet/consolidate"
	"violet/prompt"
	"violet/vocab"
)

func TestCombineTextSkipsEmpty(t *testing.T) {
	got := CombineText("a", "", "  ", "b")
	if got != "a, b" {
		t.Errorf("CombineText = %q", got)
	}
}

func TestCowboyNegative(t *testing.T) {
	if got := CowboyNegative("night, Cowboy Shot, neon"); got != "cowboy" {
		t.Errorf("CowboyNegative = %q", got)
	}
	if got := CowboyNegative("cowboy-shot"); got != "cowboy" {
		t.Errorf("hyphenated = %q", got)
	}
	if got := CowboyNegative("full body, night"); got != "" {
		t.Errorf("unexpected cowboy tag: %q", got)
	}
}

func sampleSegments() Segments {
	return Segments{
		Quality:   "masterpiece",
		Scene:     "cowboy shot, night, forest",
		Glamour:   "black hair, red lips",
		Body:      "athletic build",
		Aesthetic: "soft focus",
		Pose:      "standing",
		Negative:  "lowres",
	}
}

// filter from an empty catalog uses the built-in fallback term list.
func fallbackFilter() *FramingFilter {
	return NewFramingFilter(prompt.SceneCatalog{})
}

func TestFramingFilterStrip(t *testing.T) {
	f := fallbackFilter()

	tests := []struct {
		in   string
		want string
	}{
		{"cowboy shot, night, forest", "night, forest"},
		{"(cowboy shot:1.2), night", "night"},
		{"full body, neon lighting", "neon lighting"},
		{"night, forest", "night, forest"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := f.Strip(tt.in); got != tt.want {
			t.Errorf("Strip(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildSmoothBlend(t *testing.T) {
	plan := Build(ModeSmoothBlend, sampleSegments(), Strengths{Body: 1.2, Vibe: 1.1, Negative: 1.0}, fallbackFilter())

	if len(plan.Positive) != 1 {
		t.Fatalf("smooth blend should produce one positive encode, got %d", len(plan.Positive))
	}
	if plan.Positive[0].Strength != 1.0 {
		t.Errorf("smooth blend strength = %v", plan.Positive[0].Strength)
	}
	want := "masterpiece, cowboy shot, night, forest, athletic build, black hair, red lips, soft focus, standing"
	if plan.Positive[0].Text != want {
		t.Errorf("positive text = %q", plan.Positive[0].Text)
	}
	if plan.NegativeText != "lowres, cowboy" {
		t.Errorf("negative text = %q", plan.NegativeText)
	}
}

func TestBuildCloseupFiltersFraming(t *testing.T) {
	plan := Build(ModeCloseup, sampleSegments(), Strengths{Body: 1.2, Vibe: 1.1, Negative: 1.0}, fallbackFilter())

	if len(plan.Positive) != 3 {
		t.Fatalf("closeup should produce three encodes, got %d", len(plan.Positive))
	}
	if plan.Positive[0].Text != "black hair, red lips" || plan.Positive[0].Strength != 1.2 {
		t.Errorf("glamour encode = %+v", plan.Positive[0])
	}
	if !strings.Contains(plan.Positive[1].Text, "portrait, closeup, face focus") {
		t.Errorf("body encode missing focus keywords: %q", plan.Positive[1].Text)
	}
	vibe := plan.Positive[2]
	if strings.Contains(vibe.Text, "cowboy shot") {
		t.Errorf("framing survived the filter: %q", vibe.Text)
	}
	if !strings.Contains(vibe.Text, "night") || vibe.Strength != 1.1 {
		t.Errorf("vibe encode = %+v", vibe)
	}
}

func TestBuildPortrait(t *testing.T) {
	plan := Build(ModePortrait, sampleSegments(), Strengths{Body: 1.0, Vibe: 1.0, Negative: 1.0}, fallbackFilter())

	if len(plan.Positive) != 2 {
		t.Fatalf("portrait should produce two encodes, got %d", len(plan.Positive))
	}
	if !strings.HasPrefix(plan.Positive[0].Text, "athletic build, standing") {
		t.Errorf("body encode = %q", plan.Positive[0].Text)
	}
	if !strings.HasSuffix(plan.Positive[1].Text, "portrait") {
		t.Errorf("vibe encode = %q", plan.Positive[1].Text)
	}
}

func TestBuildCompeteCombine(t *testing.T) {
	plan := Build(ModeCompeteCombine, sampleSegments(), Strengths{Body: 1.3, Vibe: 0.9, Negative: 1.0}, fallbackFilter())

	if len(plan.Positive) != 4 {
		t.Fatalf("compete combine should produce four encodes, got %d", len(plan.Positive))
	}
	if plan.Positive[0].Text != "masterpiece, cowboy shot, night, forest" || plan.Positive[0].Strength != 0.9 {
		t.Errorf("vibe encode = %+v", plan.Positive[0])
	}
	if !strings.HasPrefix(plan.Positive[1].Text, "(full body:1.2)") || plan.Positive[1].Strength != 1.3 {
		t.Errorf("body encode = %+v", plan.Positive[1])
	}
	if plan.Positive[2].Text != "standing" || plan.Positive[2].Strength != 1.3 {
		t.Errorf("pose encode = %+v", plan.Positive[2])
	}
}

func TestBuildEmptySegments(t *testing.T) {
	plan := Build(ModeSmoothBlend, Segments{}, Strengths{Negative: 1.0}, fallbackFilter())
	if len(plan.Positive) != 0 || len(plan.Negative) != 0 {
		t.Errorf("empty segments produced encodes: %+v", plan)
	}
}

func TestSegmentsConsolidate(t *testing.T) {
	ctx := consolidate.NewContext(vocab.New(nil, nil, nil, nil, nil, nil), false)

	seg := Segments{
		Glamour:  "black hair, black hair, red lips",
		Negative: "lowres, lowres",
	}
	out := seg.Consolidate(ctx)
	if out.Glamour != "black hair, red lips" {
		t.Errorf("Glamour = %q", out.Glamour)
	}
	if out.Negative != "lowres, lowres" {
		t.Errorf("negative channel should be untouched, got %q", out.Negative)
	}
}

func TestEstimateTokens(t *testing.T) {
	if got := EstimateTokens(""); got != 0 {
		t.Errorf("empty = %d", got)
	}
	// Three short words and two commas.
	got := EstimateTokens("red, blue, sky")
	if got != 5 {
		t.Errorf("EstimateTokens = %d, want 5", got)
	}
	// A long word splits into multiple tokens.
	if got := EstimateTokens("masterpiece"); got < 2 {
		t.Errorf("long word = %d, want >= 2", got)
	}
}

func TestChunkCounts(t *testing.T) {
	if got := ChunkCounts(0); got != nil {
		t.Errorf("zero tokens = %v", got)
	}
	got := ChunkCounts(80)
	if len(got) != 2 || got[0] != 75 || got[1] != 5 {
		t.Errorf("ChunkCounts(80) = %v", got)
	}
}

func TestTokenReportSkipsEmptyChannels(t *testing.T) {
	report := TokenReport([]ReportItem{
		{Label: "Quality", Text: "masterpiece, best quality"},
		{Label: "Scene", Text: ""},
	})
	if !strings.Contains(report, "Quality") {
		t.Errorf("missing quality section: %q", report)
	}
	if strings.Contains(report, "Scene") {
		t.Errorf("empty channel reported: %q", report)
	}
	if !strings.Contains(report, "chunk 0:") {
		t.Errorf("missing chunk line: %q", report)
	}
}

func TestSavingsReport(t *testing.T) {
	before := Segments{Glamour: "black hair, black hair, red lips"}
	after := Segments{Glamour: "black hair, red lips"}

	report := SavingsReport(before, after)
	if !strings.Contains(report, "glamour:") {
		t.Errorf("missing glamour line: %q", report)
	}
	if !strings.Contains(report, "total:") {
		t.Errorf("missing total line: %q", report)
	}
	if strings.Contains(report, "quality:") {
		t.Errorf("empty channel reported: %q", report)
	}
}

func TestCharacterDataSkipsEmptyChannels(t *testing.T) {
	seg := Segments{
		Glamour:  "black hair, red lips",
		Negative: "worst quality",
	}

	data := seg.CharacterData()
	if len(data) != 2 {
		t.Fatalf("expected 2 channels, got %d: %v", len(data), data)
	}
	if got := data["glamour"]["text"]; got != "black hair, red lips" {
		t.Errorf("glamour text = %v", got)
	}
	if _, ok := data["scene"]; ok {
		t.Errorf("empty scene channel present: %v", data)
	}
}

func TestCleanScrubsEveryChannel(t *testing.T) {
	seg := Segments{
		Glamour:  "red lips,red lips,  black hair",
		Negative: "lowres, lowres",
	}

	got := seg.Clean()
	if got.Glamour != "red lips, black hair" {
		t.Errorf("glamour = %q", got.Glamour)
	}
	if got.Negative != "lowres" {
		t.Errorf("negative = %q", got.Negative)
	}
}

func TestOverridePositive(t *testing.T) {
	plan := Build(ModeCompeteCombine, Segments{
		Quality:  "masterpiece",
		Body:     "athletic build",
		Negative: "lowres",
	}, Strengths{Body: 1.2, Vibe: 1.0, Negative: 1.0}, fallbackFilter())

	plan = plan.OverridePositive("one girl, manual prompt")
	if len(plan.Positive) != 1 {
		t.Fatalf("expected single positive encode, got %d", len(plan.Positive))
	}
	if plan.Positive[0].Text != "one girl, manual prompt" || plan.Positive[0].Strength != 1.0 {
		t.Errorf("positive encode = %+v", plan.Positive[0])
	}
	if plan.PositiveText != "one girl, manual prompt" {
		t.Errorf("positive text = %q", plan.PositiveText)
	}
	if plan.NegativeText != "lowres" {
		t.Errorf("negative text = %q", plan.NegativeText)
	}
}
