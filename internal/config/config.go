package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
)

// Config holds everything jobdesk needs to run: where the backend lives, where
// to serve the local UI, and where local state is kept.
type Config struct {
	// Base URL of the job board REST API.
	APIBaseURL string `yaml:"api_base_url"`

	// Address the local UI listens on.
	Listen string `yaml:"listen"`

	// Directory for token/user/theme state.
	StateDir string `yaml:"state_dir"`
}

const defaultListen = "127.0.0.1:8787"

var ErrMissingAPIURL = errors.New("JOBDESK_API_URL (or api_base_url in the config file) is required")

// Load reads the optional YAML config file and then the environment, with
// environment variables taking precedence.
//
// Environment variables:
//   - JOBDESK_CONFIG: path to a YAML config file (default: ./jobdesk.yaml if present)
//   - JOBDESK_API_URL: backend base URL
//   - JOBDESK_LISTEN: local listen address (default: 127.0.0.1:8787)
//   - JOBDESK_STATE_DIR: state directory (default: <user config dir>/jobdesk)
func Load() (Config, error) {
	var cfg Config

	path := strings.TrimSpace(os.Getenv("JOBDESK_CONFIG"))
	if path == "" {
		if _, err := os.Stat("jobdesk.yaml"); err == nil {
			path = "jobdesk.yaml"
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if v := strings.TrimSpace(os.Getenv("JOBDESK_API_URL")); v != "" {
		cfg.APIBaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("JOBDESK_LISTEN")); v != "" {
		cfg.Listen = v
	}
	if v := strings.TrimSpace(os.Getenv("JOBDESK_STATE_DIR")); v != "" {
		cfg.StateDir = v
	}

	if cfg.Listen == "" {
		cfg.Listen = defaultListen
	}
	if cfg.StateDir == "" {
		if base, err := os.UserConfigDir(); err == nil {
			cfg.StateDir = filepath.Join(base, "jobdesk")
		} else {
			cfg.StateDir = ".jobdesk"
		}
	}

	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.APIBaseURL == "" {
		return ErrMissingAPIURL
	}
	return nil
}
