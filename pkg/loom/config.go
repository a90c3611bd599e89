package loom

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// DefaultMaxRenderDepth bounds block recursion when no configuration is
// supplied.
const DefaultMaxRenderDepth = 100

// Config contains all configuration options for the engine
type Config struct {
	// CacheMaxSize is the maximum number of templates to cache. Zero or
	// negative disables caching.
	CacheMaxSize int `env:"LOOM_CACHE_MAX_SIZE" envDefault:"100"`
	// CacheTTL is the time-to-live for cached templates. 0 means no expiration.
	CacheTTL time.Duration `env:"LOOM_CACHE_TTL" envDefault:"0"`
	// LogLevel controls the verbosity of logging (debug, info, warn, error)
	LogLevel string `env:"LOOM_LOG_LEVEL" envDefault:"info"`
	// MaxRenderDepth controls the maximum recursion into nested blocks
	MaxRenderDepth int `env:"LOOM_MAX_RENDER_DEPTH" envDefault:"100"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		CacheMaxSize:   100,
		CacheTTL:       0,
		LogLevel:       "info",
		MaxRenderDepth: DefaultMaxRenderDepth,
	}
}

// ConfigFromEnv loads configuration from LOOM_* environment variables,
// falling back to the defaults for unset values.
func ConfigFromEnv() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// NewConfigWithDefaults creates a new configuration with defaults applied
// to unset fields. CacheMaxSize is taken as given: zero disables caching.
func NewConfigWithDefaults(overrides *Config) *Config {
	defaults := DefaultConfig()
	if overrides == nil {
		return defaults
	}

	config := *overrides
	if config.LogLevel == "" {
		config.LogLevel = defaults.LogLevel
	}
	if config.MaxRenderDepth == 0 {
		config.MaxRenderDepth = defaults.MaxRenderDepth
	}
	return &config
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.CacheTTL < 0 {
		return errors.New("cache TTL cannot be negative")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return errors.New("invalid log level: " + c.LogLevel)
	}

	if c.MaxRenderDepth < 0 {
		return errors.New("max render depth cannot be negative")
	}

	return nil
}
