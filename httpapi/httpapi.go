// Package httpapi exposes the character store, consolidation pipeline and
// service status over HTTP for the browser UI.
package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/google/uuid"
	"github.com/hako/durafmt"
	"github.com/rs/cors"

	"violet/character"
	"violet/consolidate"
	"violet/logger"
	"violet/promptbase"
	"violet/settings"
)

// Server wires the HTTP surface to the stores and pipeline.
type Server struct {
	Characters   *character.Store
	Consolidator *consolidate.Context
	Config       settings.Config

	instanceId string
	startedAt  time.Time
	cacheHours int
	render     *RenderDeps
}

// NewServer stamps the instance identity used by the status endpoint.
func NewServer(characters *character.Store, consolidator *consolidate.Context, config settings.Config) *Server {
	return &Server{
		Characters:   characters,
		Consolidator: consolidator,
		Config:       config,
		instanceId:   uuid.NewString(),
		startedAt:    time.Now(),
		cacheHours:   config.Cache.ExpiryHours,
	}
}

// Router builds the chi router with CORS for the in-browser UI.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.New(cors.Options{
		AllowCredentials: true,
		AllowedOrigins:   []string{"*"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Accept"},
		AllowedMethods:   []string{"GET", "POST", "DELETE"},
	}).Handler)

	r.Get("/violet/character", s.getCharacter)
	r.Post("/violet/character", s.saveCharacter)
	r.Delete("/violet/character", s.deleteCharacter)
	r.Post("/violet/consolidate", s.consolidateText)
	r.Post("/violet/compose", s.composeText)
	r.Post("/violet/render", s.renderPrompt)
	r.Get("/violet/queue", s.queueStatus)
	r.Get("/violet/status", s.status)

	return r
}

// ListenAndServe blocks serving the API on the configured address.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Server.Host, s.Config.Server.Port)
	logger.Service("HTTP API listening", "addr", addr)
	return http.ListenAndServe(addr, s.Router())
}

func writeJson(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJson(w, status, map[string]string{"error": message})
}

// getCharacter returns one profile by name, or the list of saved names
// when no name (or list=1) is given.
func (s *Server) getCharacter(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	name := query.Get("name")
	wantList := name == "" || query.Get("list") == "1" || query.Get("list") == "true"
	if wantList {
		writeJson(w, http.StatusOK, map[string][]string{"names": s.Characters.List()})
		return
	}

	profile, err := s.Characters.Load(name)
	if err != nil {
		writeError(w, http.StatusNotFound, "character not found")
		return
	}
	writeJson(w, http.StatusOK, profile)
}

type savePayload struct {
	Name string                    `json:"name"`
	Data map[string]map[string]any `json:"data"`
}

func (s *Server) saveCharacter(w http.ResponseWriter, r *http.Request) {
	var payload savePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if payload.Name == "" {
		writeError(w, http.StatusBadRequest, "missing name")
		return
	}

	path, err := s.Characters.Save(payload.Name, payload.Data)
	if err != nil {
		logger.Error("Failed to save character", "name", payload.Name, "error", err)
		writeError(w, http.StatusInternalServerError, "save failed")
		return
	}
	writeJson(w, http.StatusOK, map[string]any{"ok": true, "path": path})
}

func (s *Server) deleteCharacter(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "missing name")
		return
	}
	if err := s.Characters.Delete(name); err != nil {
		writeError(w, http.StatusNotFound, "character not found")
		return
	}
	writeJson(w, http.StatusOK, map[string]bool{"ok": true})
}

type consolidateRequest struct {
	Text string `json:"text"`
	Sfw  bool   `json:"sfw"`
	Soft bool   `json:"soft"`
}

// consolidateText runs the dedupe pipeline over one prompt. Results are
// cached by input text when the cache database is open.
func (s *Server) consolidateText(w http.ResponseWriter, r *http.Request) {
	var req consolidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	cacheKey := fmt.Sprintf("consolidate|%v|%v|%s", req.Sfw, req.Soft, req.Text)
	if promptbase.Data != nil {
		if cached, err := promptbase.Get(cacheKey); err == nil {
			writeJson(w, http.StatusOK, map[string]string{"text": string(cached)})
			return
		}
	}

	ctx := s.Consolidator
	if req.Sfw != ctx.SfwMode {
		ctx = consolidate.NewContext(ctx.Vocab, req.Sfw)
	}

	var out string
	if req.Soft {
		out = consolidate.SoftCompact(req.Text, ctx)
	} else {
		out = consolidate.Consolidate(req.Text, ctx)
	}

	if promptbase.Data != nil {
		if err := promptbase.PutStringExpireHours(cacheKey, out, s.cacheHours); err != nil {
			logger.Error("Failed to cache consolidation result", "error", err)
		}
	}
	writeJson(w, http.StatusOK, map[string]string{"text": out})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	vocab := s.Consolidator.Vocab
	writeJson(w, http.StatusOK, map[string]any{
		"instance_id": s.instanceId,
		"uptime":      durafmt.Parse(time.Since(s.startedAt).Round(time.Second)).String(),
		"sfw_mode":    s.Consolidator.SfwMode,
		"vocab": map[string]int{
			"allowlist":  len(vocab.Allowlist),
			"weightable": len(vocab.Weightable),
			"media":      len(vocab.Media),
			"drift":      len(vocab.Drift),
			"aliases":    len(vocab.Aliases),
		},
	})
}
