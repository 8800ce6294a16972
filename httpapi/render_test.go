package httpapi

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"violet/blend"
	"violet/prompt"
	"violet/queue"
)

func writeCatalog(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func testCatalogs(t *testing.T) prompt.Catalogs {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		prompt.GlamourFile:   "hair_color:\n  Jet Black: black hair\nlips:\n  Red: red lips\n",
		prompt.BodyFile:      "build:\n  Athletic: athletic build\n",
		prompt.PoseFile:      "pose:\n  Standing: standing\n",
		prompt.QualityFile:   "boilerplate:\n  - masterpiece\nstyles:\n  Film Grain: film grain\n",
		prompt.SceneFile:     "framing:\n  Cowboy Shot: cowboy shot\nangle:\n  From Above: from above\nemotion:\n  Joy: smile\ntime_of_day:\n  Night: night\nenvironment:\n  Forest: forest\nlighting:\n  Neon: neon lighting\n",
		prompt.AestheticFile: "styles:\n  Dreamy: soft focus\n",
		prompt.NegativeFile:  "boilerplate:\n  - lowres\n",
	}
	for name, content := range files {
		writeCatalog(t, dir, name, content)
	}

	c, err := prompt.LoadCatalogs(dir)
	if err != nil {
		t.Fatalf("LoadCatalogs: %v", err)
	}
	return c
}

func renderingServer(t *testing.T) *Server {
	t.Helper()
	catalogs := testCatalogs(t)
	return testServer(t).WithRendering(RenderDeps{
		Catalogs: catalogs,
		Framing:  blend.NewFramingFilter(catalogs.Scene),
		Renders:  queue.New(2),
	})
}

func TestComposeEndpoint(t *testing.T) {
	s := renderingServer(t)

	body := `{
		"glamour": {"selections": {"hair_color": "Jet Black", "lips": "Red"}},
		"quality": {"boilerplate": true, "style": "Film Grain"},
		"scene": {"framing": "Cowboy Shot", "framing_strength": 1.0, "lighting": "Neon", "lighting_strength": 0.8},
		"aesthetic": {"first": "Dreamy", "first_strength": 1.0},
		"negative": {"boilerplate": true}
	}`
	rec := doRequest(t, s, http.MethodPost, "/violet/compose", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := resp["glamour"]; got != "black hair, red lips" {
		t.Errorf("glamour = %q", got)
	}
	if got := resp["quality"]; got != "masterpiece, film grain" {
		t.Errorf("quality = %q", got)
	}
	scene, _ := resp["scene"].(string)
	if !strings.Contains(scene, "cowboy shot") || !strings.Contains(scene, "(neon lighting:0.8)") {
		t.Errorf("scene = %q", scene)
	}
	if got := resp["aesthetic"]; got != "soft focus" {
		t.Errorf("aesthetic = %q", got)
	}
	if got := resp["negative"]; got != "lowres" {
		t.Errorf("negative = %q", got)
	}
	positive, _ := resp["positive"].(string)
	if !strings.Contains(positive, "black hair") {
		t.Errorf("positive = %q", positive)
	}
}

func TestComposeEndpointQuantizesColors(t *testing.T) {
	s := renderingServer(t)

	rec := doRequest(t, s, http.MethodPost, "/violet/compose",
		`{"glamour": {"selections": {"hair_color": "#000000"}}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]any
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if got := resp["glamour"]; got != "black" {
		t.Errorf("glamour = %q", got)
	}
}

func TestComposeEndpointWithoutCatalogs(t *testing.T) {
	s := testServer(t)
	rec := doRequest(t, s, http.MethodPost, "/violet/compose", `{}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestRenderEndpointWithoutBackend(t *testing.T) {
	s := renderingServer(t)
	// Renders queue is set but Encoder is nil.
	s.render.Encoder = nil
	rec := doRequest(t, s, http.MethodPost, "/violet/render", `{"workflow":"sdxl"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestQueueEndpoint(t *testing.T) {
	s := renderingServer(t)
	s.render.Renders.Enqueue(queue.Job{Name: "sdxl"})

	rec := doRequest(t, s, http.MethodGet, "/violet/queue", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["enabled"] != true {
		t.Error("queue should be enabled")
	}
	if resp["length"].(float64) != 1 {
		t.Errorf("length = %v", resp["length"])
	}
}

func TestQueueEndpointDisabled(t *testing.T) {
	s := testServer(t)
	rec := doRequest(t, s, http.MethodGet, "/violet/queue", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]any
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["enabled"] != false {
		t.Error("queue should be disabled")
	}
}

func TestComposeEndpointScrubsDuplicatePhrases(t *testing.T) {
	s := renderingServer(t)

	rec := doRequest(t, s, http.MethodPost, "/violet/compose",
		`{"glamour": {"selections": {"lips": "Red"}, "extra": "red lips, red lips"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]any
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if got := resp["glamour"]; got != "red lips" {
		t.Errorf("glamour = %q", got)
	}
}

func TestComposeEndpointConsolidateReportsSavings(t *testing.T) {
	s := renderingServer(t)

	body := `{"glamour": {"selections": {"hair_color": "Jet Black", "lips": "Red"}}, "consolidate": true}`
	rec := doRequest(t, s, http.MethodPost, "/violet/compose", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]any
	json.Unmarshal(rec.Body.Bytes(), &resp)
	report, _ := resp["token_report"].(string)
	if !strings.Contains(report, "Token savings (approx):") {
		t.Errorf("missing savings section: %q", report)
	}

	rec = doRequest(t, s, http.MethodPost, "/violet/compose",
		`{"glamour": {"selections": {"lips": "Red"}}}`)
	json.Unmarshal(rec.Body.Bytes(), &resp)
	report, _ = resp["token_report"].(string)
	if strings.Contains(report, "Token savings") {
		t.Errorf("savings section without consolidation: %q", report)
	}
}

func TestComposeEndpointOverride(t *testing.T) {
	s := renderingServer(t)

	body := `{"glamour": {"selections": {"lips": "Red"}}, "override": "one girl, manual prompt"}`
	rec := doRequest(t, s, http.MethodPost, "/violet/compose", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]any
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if got := resp["positive"]; got != "one girl, manual prompt" {
		t.Errorf("positive = %q", got)
	}
	if got := resp["glamour"]; got != "red lips" {
		t.Errorf("glamour still composed, got %q", got)
	}
}
