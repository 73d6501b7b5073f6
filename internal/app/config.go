package app

import (
	"errors"
	"fmt"
	"time"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Paths         []string // source files or directories
	Properties    map[string]string
	PropertyFiles []string
	EnvProperties bool

	Dev         bool
	DevDebounce time.Duration
	// Duration stops the run after the given time when positive.
	Duration time.Duration

	LogFormat       string
	LogLevel        string
	LogFile         string
	HealthcheckPort int
}

var (
	validLevels  = map[string]bool{"": true, "debug": true, "info": true, "warn": true, "error": true}
	validFormats = map[string]bool{"": true, "text": true, "json": true}
)

func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.Paths) == 0 {
		return nil, errors.New("at least one integration source path is required")
	}
	if !validLevels[cfg.LogLevel] {
		return nil, fmt.Errorf("invalid log level %q: expected debug, info, warn or error", cfg.LogLevel)
	}
	if !validFormats[cfg.LogFormat] {
		return nil, fmt.Errorf("invalid log format %q: expected text or json", cfg.LogFormat)
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("invalid healthcheck port %d", cfg.HealthcheckPort)
	}
	if cfg.Duration < 0 {
		return nil, fmt.Errorf("duration must not be negative")
	}
	if cfg.Properties == nil {
		cfg.Properties = map[string]string{}
	}
	return &cfg, nil
}
