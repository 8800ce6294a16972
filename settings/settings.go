package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return validate.Struct(c)
}

// LoadConfig loads the configuration from the config.toml file.
// It returns a pointer to the Config struct or an error if loading fails.
func LoadConfig() (*Config, error) {
	return LoadConfigFrom("config.toml")
}

// LoadConfigFrom loads the configuration from the given path.
func LoadConfigFrom(configPath string) (*Config, error) {
	var config Config

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	// Get absolute path for better error messages
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		absPath = configPath // fallback to relative path
	}

	_, err = toml.DecodeFile(configPath, &config)
	if err != nil {
		return nil, fmt.Errorf("error parsing config file %s: %w", absPath, err)
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func applyDefaults(config *Config) {
	if config.Server.Host == "" {
		config.Server.Host = "127.0.0.1"
	}
	if config.Cache.Path == "" {
		config.Cache.Path = "violet.db"
	}
	if config.Cache.ExpiryHours == 0 {
		config.Cache.ExpiryHours = 24
	}
	if config.ComfyUi.WorkflowDir == "" {
		config.ComfyUi.WorkflowDir = "workflows"
	}
}
