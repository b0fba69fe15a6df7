// Package config loads settings for the pymments command line tool from a
// YAML file, a .env file and PYMMENTS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration.
type Config struct {
	URL        string        `yaml:"url"`
	UserAgent  string        `yaml:"user_agent"`
	SessionDir string        `yaml:"session_dir"`
	LogLevel   string        `yaml:"log_level"`
	Timeout    time.Duration `yaml:"timeout"`
	RateLimit  RateLimit     `yaml:"rate_limit"`
}

// RateLimit mirrors the transport's throttling knobs.
type RateLimit struct {
	RequestsPerMinute float64 `yaml:"requests_per_minute"`
	Burst             int     `yaml:"burst"`
}

const (
	DefaultSessionDir = ".pymments"
	DefaultLogLevel   = "warn"
	DefaultTimeout    = 30 * time.Second
)

// Load reads path (if it exists), applies environment overrides and fills
// defaults. A missing file is not an error; an unreadable or malformed one is.
// A .env file in the working directory is loaded first when present; an
// unreadable or malformed one is an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case os.IsNotExist(err):
		default:
			return nil, err
		}
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// ApplyEnv overrides cfg with any PYMMENTS_* variables that are set.
func ApplyEnv(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv("PYMMENTS_URL")); v != "" {
		cfg.URL = v
	}
	if v := strings.TrimSpace(os.Getenv("PYMMENTS_USER_AGENT")); v != "" {
		cfg.UserAgent = v
	}
	if v := strings.TrimSpace(os.Getenv("PYMMENTS_SESSION_DIR")); v != "" {
		cfg.SessionDir = v
	}
	if v := strings.TrimSpace(os.Getenv("PYMMENTS_LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv("PYMMENTS_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("PYMMENTS_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}
	if v := strings.TrimSpace(os.Getenv("PYMMENTS_REQUESTS_PER_MINUTE")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("PYMMENTS_REQUESTS_PER_MINUTE: %w", err)
		}
		cfg.RateLimit.RequestsPerMinute = f
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.SessionDir == "" {
		c.SessionDir = DefaultSessionDir
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
}

// Level maps LogLevel onto a slog level. Unknown names fall back to warn.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
