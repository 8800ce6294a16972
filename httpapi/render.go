package httpapi

import (
	"encoding/json"
	"net/http"
	"os"

	"violet/blend"
	"violet/encoder"
	"violet/logger"
	"violet/pngmeta"
	"violet/prompt"
	"violet/queue"
)

// RenderDeps wires the optional rendering surface: composition catalogs,
// the ComfyUI encoder and the render queue. When Encoder is nil the render
// endpoint reports the backend as unavailable.
type RenderDeps struct {
	Catalogs prompt.Catalogs
	Framing  *blend.FramingFilter
	Encoder  *encoder.Encoder
	Renders  *queue.Queue
}

// WithRendering attaches the render surface to the server.
func (s *Server) WithRendering(deps RenderDeps) *Server {
	s.render = &deps
	return s
}

type glamourPayload struct {
	Selections map[string]string `json:"selections"`
	Extra      string            `json:"extra"`
}

type qualityPayload struct {
	Boilerplate bool   `json:"boilerplate"`
	Style       string `json:"style"`
	Extra       string `json:"extra"`
}

type scenePayload struct {
	Framing             string  `json:"framing"`
	FramingStrength     float64 `json:"framing_strength"`
	Angle               string  `json:"angle"`
	AngleStrength       float64 `json:"angle_strength"`
	Emotion             string  `json:"emotion"`
	EmotionStrength     float64 `json:"emotion_strength"`
	TimeOfDay           string  `json:"time_of_day"`
	TimeOfDayStrength   float64 `json:"time_of_day_strength"`
	Environment         string  `json:"environment"`
	EnvironmentStrength float64 `json:"environment_strength"`
	Lighting            string  `json:"lighting"`
	LightingStrength    float64 `json:"lighting_strength"`
	Extra               string  `json:"extra"`
}

type aestheticPayload struct {
	First          string  `json:"first"`
	FirstStrength  float64 `json:"first_strength"`
	Second         string  `json:"second"`
	SecondStrength float64 `json:"second_strength"`
	Extra          string  `json:"extra"`
}

type negativePayload struct {
	Boilerplate bool   `json:"boilerplate"`
	Extra       string `json:"extra"`
}

type composeRequest struct {
	Glamour   glamourPayload   `json:"glamour"`
	Body      glamourPayload   `json:"body"`
	Pose      glamourPayload   `json:"pose"`
	Quality   qualityPayload   `json:"quality"`
	Scene     scenePayload     `json:"scene"`
	Aesthetic aestheticPayload `json:"aesthetic"`
	Negative  negativePayload  `json:"negative"`
	// Consolidate runs the dedupe pipeline over the composed segments.
	Consolidate bool `json:"consolidate"`
	// Override is a manual positive prompt. When set, it replaces the
	// composed positive side entirely.
	Override string `json:"override"`
}

// composeSegments resolves every selection against the loaded catalogs.
func (s *Server) composeSegments(req composeRequest) blend.Segments {
	c := s.render.Catalogs

	quantize := func(selections map[string]string) map[string]string {
		out := make(map[string]string, len(selections))
		for k, v := range selections {
			out[k] = prompt.QuantizeColor(v)
		}
		return out
	}

	seg := blend.Segments{
		Glamour: prompt.Composer{Features: c.Glamour}.Compose(quantize(req.Glamour.Selections), req.Glamour.Extra),
		Body:    prompt.Composer{Features: c.Body}.Compose(quantize(req.Body.Selections), req.Body.Extra),
		Pose:    prompt.Composer{Features: c.Pose}.Compose(req.Pose.Selections, req.Pose.Extra),
		Quality: prompt.QualityComposer{Catalog: c.Quality}.Compose(req.Quality.Boilerplate, req.Quality.Style, req.Quality.Extra),
		Scene: prompt.SceneComposer{Catalog: c.Scene}.Compose(prompt.SceneSelections{
			Framing:             req.Scene.Framing,
			FramingStrength:     req.Scene.FramingStrength,
			Angle:               req.Scene.Angle,
			AngleStrength:       req.Scene.AngleStrength,
			Emotion:             req.Scene.Emotion,
			EmotionStrength:     req.Scene.EmotionStrength,
			TimeOfDay:           req.Scene.TimeOfDay,
			TimeOfDayStrength:   req.Scene.TimeOfDayStrength,
			Environment:         req.Scene.Environment,
			EnvironmentStrength: req.Scene.EnvironmentStrength,
			Lighting:            req.Scene.Lighting,
			LightingStrength:    req.Scene.LightingStrength,
			Extra:               req.Scene.Extra,
		}),
		Aesthetic: prompt.AestheticComposer{Styles: c.Aesthetic.Styles}.Compose(
			req.Aesthetic.First, req.Aesthetic.FirstStrength,
			req.Aesthetic.Second, req.Aesthetic.SecondStrength,
			req.Aesthetic.Extra),
		Negative: prompt.NegativeComposer{Catalog: c.Negative}.Compose(req.Negative.Boilerplate, req.Negative.Extra),
	}

	seg = seg.Clean()
	logger.Segment("composed segments", "positive", seg.PositiveText(), "negative", seg.Negative)
	return seg
}

// composeText builds prompt segments from catalog selections.
func (s *Server) composeText(w http.ResponseWriter, r *http.Request) {
	if s.render == nil {
		writeError(w, http.StatusServiceUnavailable, "composition catalogs not loaded")
		return
	}

	var req composeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	raw := s.composeSegments(req)
	seg := raw
	if req.Consolidate {
		seg = raw.Consolidate(s.Consolidator)
	}

	report := blend.TokenReport([]blend.ReportItem{
		{Label: "quality", Text: seg.Quality},
		{Label: "scene", Text: seg.Scene},
		{Label: "glamour", Text: seg.Glamour},
		{Label: "body", Text: seg.Body},
		{Label: "aesthetic", Text: seg.Aesthetic},
		{Label: "pose", Text: seg.Pose},
		{Label: "negative", Text: seg.Negative},
	})
	if req.Consolidate {
		report = report + "\n\n" + blend.SavingsReport(raw, seg)
	}

	positive := seg.PositiveText()
	if req.Override != "" {
		positive = req.Override
	}

	writeJson(w, http.StatusOK, map[string]any{
		"quality":      seg.Quality,
		"scene":        seg.Scene,
		"glamour":      seg.Glamour,
		"body":         seg.Body,
		"aesthetic":    seg.Aesthetic,
		"pose":         seg.Pose,
		"negative":     seg.Negative,
		"positive":     positive,
		"character":    seg.CharacterData(),
		"token_report": report,
	})
}

type renderRequest struct {
	composeRequest
	Workflow         string  `json:"workflow"`
	Mode             string  `json:"mode"`
	BodyStrength     float64 `json:"body_strength"`
	VibeStrength     float64 `json:"vibe_strength"`
	NegativeStrength float64 `json:"negative_strength"`
	Seed             int64   `json:"seed"`
	PositiveNode     string  `json:"positive_node"`
	NegativeNode     string  `json:"negative_node"`
	SeedNode         string  `json:"seed_node"`
}

// renderPrompt composes, builds the encode plan and queues the render.
func (s *Server) renderPrompt(w http.ResponseWriter, r *http.Request) {
	if s.render == nil || s.render.Encoder == nil || s.render.Renders == nil {
		writeError(w, http.StatusServiceUnavailable, "rendering backend not configured")
		return
	}

	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Workflow == "" {
		writeError(w, http.StatusBadRequest, "missing workflow")
		return
	}

	mode := blend.Mode(req.Mode)
	if mode == "" {
		mode = blend.ModeSmoothBlend
	}
	strengths := blend.Strengths{Body: req.BodyStrength, Vibe: req.VibeStrength, Negative: req.NegativeStrength}
	if strengths.Body == 0 {
		strengths.Body = 1.0
	}
	if strengths.Vibe == 0 {
		strengths.Vibe = 1.0
	}
	if strengths.Negative == 0 {
		strengths.Negative = 1.0
	}

	seg := s.composeSegments(req.composeRequest)
	if req.Consolidate {
		seg = seg.Consolidate(s.Consolidator)
	}
	plan := blend.Build(mode, seg, strengths, s.render.Framing)
	if req.Override != "" {
		plan = plan.OverridePositive(req.Override)
	}

	enc := s.render.Encoder
	sub := encoder.Submission{
		Workflow:     req.Workflow,
		Plan:         plan,
		Seed:         req.Seed,
		PositiveNode: req.PositiveNode,
		NegativeNode: req.NegativeNode,
		SeedNode:     req.SeedNode,
	}

	position, err := s.render.Renders.Enqueue(queue.Job{
		Name: req.Workflow,
		Run: func() {
			filename, err := enc.Render(sub)
			if err != nil {
				logger.Error("Render failed", "workflow", req.Workflow, "error", err)
				return
			}
			if err := embedMetadata(filename, plan, sub.Seed); err != nil {
				logger.Error("Failed to embed metadata", "file", filename, "error", err)
			}
			logger.Service("Render complete", "workflow", req.Workflow, "file", filename)
		},
	})
	if err != nil {
		writeError(w, http.StatusTooManyRequests, err.Error())
		return
	}

	writeJson(w, http.StatusOK, map[string]any{
		"queued":   true,
		"message":  position,
		"positive": plan.PositiveText,
		"negative": plan.NegativeText,
	})
}

// embedMetadata rewrites a rendered PNG with its generation metadata.
func embedMetadata(filename string, plan blend.Plan, seed int64) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	out, err := pngmeta.Embed(data, pngmeta.GenerationMeta{
		Prompt:         plan.PositiveText,
		NegativePrompt: plan.NegativeText,
		Seed:           seed,
	})
	if err != nil {
		return err
	}
	return os.WriteFile(filename, out, 0o644)
}

// queueStatus reports pending and running renders.
func (s *Server) queueStatus(w http.ResponseWriter, r *http.Request) {
	if s.render == nil || s.render.Renders == nil {
		writeJson(w, http.StatusOK, map[string]any{"enabled": false})
		return
	}
	writeJson(w, http.StatusOK, map[string]any{
		"enabled":    true,
		"length":     s.render.Renders.Len(),
		"pending":    s.render.Renders.NameList(),
		"processing": s.render.Renders.ProcessingName(),
	})
}
