package main

import (
	"os"

	"violet/blend"
	"violet/character"
	"violet/consolidate"
	"violet/encoder"
	"violet/httpapi"
	"violet/logger"
	"violet/prompt"
	"violet/promptbase"
	"violet/queue"
	"violet/settings"
	"violet/vocab"
)

func main() {
	config, err := settings.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Init(config.Logging)
	logger.Service("Starting violet tools service")

	if config.Cache.Path != "" {
		promptbase.Init(config.Cache.Path)
		defer func() {
			if err := promptbase.Close(); err != nil {
				logger.Error("Error closing cache database", "error", err)
			}
		}()
	}

	vocabulary := vocab.Load(config.Consolidator.BaseDir)
	logger.Service("Vocabulary loaded",
		"allowlist", len(vocabulary.Allowlist),
		"aliases", len(vocabulary.Aliases),
		"drift", len(vocabulary.Drift))

	consolidator := consolidate.NewContext(vocabulary, config.Consolidator.SfwMode)
	characters := character.NewStore(config.Characters.Dir, config.Characters.LegacyDir)

	server := httpapi.NewServer(characters, consolidator, *config)

	catalogs, err := prompt.LoadCatalogs(config.Prompt.FeatureDir)
	if err != nil {
		logger.Warn("Feature catalogs unavailable, composition disabled", "error", err)
	} else {
		deps := httpapi.RenderDeps{
			Catalogs: catalogs,
			Framing:  blend.NewFramingFilter(catalogs.Scene),
		}
		if config.ComfyUi.Url != "" {
			enc, err := encoder.New(config.ComfyUi, "")
			if err != nil {
				logger.Warn("ComfyUI backend unavailable, rendering disabled", "error", err)
			} else {
				deps.Encoder = enc
				deps.Renders = queue.New(config.ComfyUi.MaxQueueSize)
				go deps.Renders.ProcessQueue()
			}
		}
		server.WithRendering(deps)
	}
	if err := server.ListenAndServe(); err != nil {
		logger.Error("HTTP server stopped", "error", err)
		os.Exit(1)
	}
}
