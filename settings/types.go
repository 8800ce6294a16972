package settings

import (
	"violet/logger"
)

type (
	Config struct {
		Server       ServerConfig       `toml:"server" validate:"required"`
		Prompt       PromptConfig       `toml:"prompt" validate:"required"`
		Characters   CharactersConfig   `toml:"characters" validate:"required"`
		Consolidator ConsolidatorConfig `toml:"consolidator" validate:"required"`
		ComfyUi      ComfyUiConfig      `toml:"comfyui"`
		Cache        CacheConfig        `toml:"cache"`
		Logging      logger.Config      `toml:"logging" validate:"required"`
	}

	ServerConfig struct {
		Host string `toml:"host"`
		Port int    `toml:"port" validate:"required,gte=1,lte=65535"`
	}

	// PromptConfig points at the YAML feature catalogs the segment
	// composers are built from.
	PromptConfig struct {
		FeatureDir string `toml:"featureDir" validate:"required"`
	}

	CharactersConfig struct {
		Dir       string `toml:"dir" validate:"required"`
		LegacyDir string `toml:"legacyDir"`
	}

	// ConsolidatorConfig locates the vocabulary tables and sets the
	// content policy for the consolidation pipeline.
	ConsolidatorConfig struct {
		BaseDir string `toml:"baseDir" validate:"required"`
		SfwMode bool   `toml:"sfwMode"`
	}

	ComfyUiConfig struct {
		Url          string        `toml:"url"`
		Ports        []ComfyUiPort `toml:"ports" validate:"dive"`
		WorkflowDir  string        `toml:"workflowDir"`
		MaxQueueSize int           `toml:"maxQueueSize" validate:"gte=0"`
	}

	ComfyUiPort struct {
		Name string `toml:"name" validate:"required"`
		Port int    `toml:"port" validate:"required"`
	}

	CacheConfig struct {
		Path        string `toml:"path"`
		ExpiryHours int    `toml:"expiryHours" validate:"gte=0"`
	}
)
