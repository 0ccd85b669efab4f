// Package config loads the leadlift.yml configuration file with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/leadlift/leadlift/internal/abtest"
)

// Config is the full runtime configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Content ContentConfig `yaml:"content"`
	Tests   []abtest.Test `yaml:"tests"`
}

type ServerConfig struct {
	Port      int    `yaml:"port"`
	TokenFile string `yaml:"token_file"`
}

type StorageConfig struct {
	Path string `yaml:"path"`
}

type ContentConfig struct {
	Dir string `yaml:"dir"`
}

// Default returns the built-in configuration: port 8080, a local
// database file, ./posts for content and the default CTA tests.
func Default() *Config {
	return &Config{
		Server:  ServerConfig{Port: 8080},
		Storage: StorageConfig{Path: "./leadlift.db"},
		Content: ContentConfig{Dir: "./posts"},
		Tests:   abtest.DefaultTests(),
	}
}

// Load reads the config file at path, falling back to defaults when the
// file does not exist. Environment variables override file values:
// LL_PORT, LL_DB_PATH, LL_CONTENT_DIR.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		} else if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if len(cfg.Tests) == 0 {
		cfg.Tests = abtest.DefaultTests()
	}

	cfg.applyEnv()

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", cfg.Server.Port)
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	if p := os.Getenv("LL_PORT"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil {
			c.Server.Port = parsed
		}
	}
	if path := os.Getenv("LL_DB_PATH"); path != "" {
		c.Storage.Path = path
	}
	if dir := os.Getenv("LL_CONTENT_DIR"); dir != "" {
		c.Content.Dir = dir
	}
}
