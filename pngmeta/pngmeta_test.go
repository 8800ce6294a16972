package pngmeta

import (
	"bytes"
	"image"
	"image/png"
	"strings"
	"testing"
)

func tinyPng(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestEmbedExtractRoundTrip(t *testing.T) {
	meta := GenerationMeta{
		ModelName:      "dreamshaper_8",
		Prompt:         "black hair, red lips",
		NegativePrompt: "lowres",
		Width:          512,
		Height:         768,
		CfgScale:       7.5,
		Sampler:        "euler_ancestral",
		Steps:          28,
		Seed:           1234567,
		Loras:          []LoraRef{{Lora: "detail_tweaker", Weight: 0.8}},
	}

	out, err := Embed(tinyPng(t), meta)
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}

	// The result must still decode as a valid PNG.
	if _, err := png.Decode(bytes.NewReader(out)); err != nil {
		t.Fatalf("decoded image after embed: %v", err)
	}

	got, err := Extract(out)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got.Prompt != meta.Prompt || got.Seed != meta.Seed || got.Sampler != meta.Sampler {
		t.Errorf("round trip = %+v", got)
	}
	if got.Size != "512x768" {
		t.Errorf("derived size = %q", got.Size)
	}
	if len(got.Loras) != 1 || got.Loras[0].Lora != "detail_tweaker" {
		t.Errorf("loras = %+v", got.Loras)
	}
}

func TestEmbedRejectsNonPng(t *testing.T) {
	if _, err := Embed([]byte("JFIF not a png"), GenerationMeta{}); err == nil {
		t.Fatal("expected error for non-PNG input")
	}
}

func TestExtractMissingMetadata(t *testing.T) {
	if _, err := Extract(tinyPng(t)); err == nil {
		t.Fatal("expected error when no metadata chunk present")
	}
}

func TestTextChunksMirrorsHumanKeys(t *testing.T) {
	meta := GenerationMeta{Prompt: "night, forest", Steps: 20}
	chunks, err := meta.TextChunks()
	if err != nil {
		t.Fatalf("TextChunks: %v", err)
	}

	keys := make([]string, 0, len(chunks))
	for _, kv := range chunks {
		keys = append(keys, kv[0])
	}
	joined := strings.Join(keys, ",")
	for _, want := range []string{"generation_data", "Prompt", "Steps"} {
		if !strings.Contains(joined, want) {
			t.Errorf("missing key %q in %v", want, keys)
		}
	}
	for _, kv := range chunks {
		if kv[0] == "Seed" {
			t.Error("zero seed should not be mirrored")
		}
	}
}
