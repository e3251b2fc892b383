package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"

	"github.com/chuckhq/chuck-hq/src/internal/log"
)

const (
	DefaultConfigPath     = "chuck-hq.toml"
	DefaultPort           = 3001
	DefaultMaxAttempts    = 5
	DefaultReclaimDelayMs = 500
	DefaultDataDir        = "data"
	DefaultReclaimCommand = "lsof -t -i tcp:{{port}} -s TCP:LISTEN"
)

// DefaultResources returns the dashboard's six documents.
func DefaultResources() []*ResourceConfig {
	return []*ResourceConfig{
		{Route: "mission", File: "mission.json", Kind: KindSingleton},
		{Route: "ideas", File: "ideas.json", Kind: KindCollection},
		{Route: "projects", File: "projects.json", Kind: KindCollection},
		{Route: "activities", File: "activities.json", Kind: KindCollection},
		{Route: "health", File: "health.json", Kind: KindCollection},
		{Route: "review", File: "review.json", Kind: KindSingleton},
	}
}

// Default returns a configuration with every field set to its default.
func Default() *Config {
	return &Config{
		Listen: ListenConfig{
			Port:           DefaultPort,
			MaxAttempts:    DefaultMaxAttempts,
			ReclaimDelayMs: DefaultReclaimDelayMs,
			Reclaim:        true,
			ReclaimCommand: DefaultReclaimCommand,
		},
		Storage: StorageConfig{
			DataDir:  DefaultDataDir,
			IDFormat: IDFormatTimestamp,
		},
		Resources: DefaultResources(),
	}
}

// ParseEnv loads configuration overrides from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadConfig builds a Config from defaults, the TOML file at configPath (if it
// exists) and the environment. A missing file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	config := Default()

	if configPath != "" {
		configFile, err := filepath.Abs(filepath.Clean(configPath))
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path: %v", err)
		}

		content, err := os.ReadFile(configFile)
		switch {
		case errors.Is(err, os.ErrNotExist):
			log.Debugf("Configuration file %s not found, using defaults", configFile)
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %v", err)
		default:
			if err := decodeConfig(content, config); err != nil {
				return nil, err
			}
		}

		config._absConfigFilePath = configFile
	}

	if err := ParseEnv(config); err != nil {
		return nil, err
	}

	log.Debugf("Data directory: %s", config.GetAbsDataDir())

	return config, nil
}

// decodeConfig overlays TOML content onto config. A file that declares any
// resources replaces the default set entirely.
func decodeConfig(content []byte, config *Config) error {
	defaults := config.Resources
	config.Resources = nil

	if err := toml.Unmarshal(content, config); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			log.Errorf(derr.String())
			row, col := derr.Position()
			log.Errorf("Error at line %d, column %d", row, col)
			return fmt.Errorf("failed to parse config file")
		}
		return fmt.Errorf("failed to parse config file: %v", err)
	}

	if len(config.Resources) == 0 {
		config.Resources = defaults
	}
	return nil
}

func (c *Config) SerializeConfig() (*bytes.Buffer, error) {
	buf := bytes.Buffer{}
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	return &buf, nil
}

// WriteConfig writes the configuration to path.
func (c *Config) WriteConfig(path string) error {
	config, err := c.SerializeConfig()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, config.Bytes(), 0644)
}
