package loom

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 100, cfg.CacheMaxSize)
	assert.Equal(t, time.Duration(0), cfg.CacheTTL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, DefaultMaxRenderDepth, cfg.MaxRenderDepth)
	require.NoError(t, cfg.Validate())
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("LOOM_CACHE_MAX_SIZE", "10")
	t.Setenv("LOOM_CACHE_TTL", "5m")
	t.Setenv("LOOM_LOG_LEVEL", "debug")
	t.Setenv("LOOM_MAX_RENDER_DEPTH", "7")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.CacheMaxSize)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 7, cfg.MaxRenderDepth)
}

func TestConfigFromEnvDefaults(t *testing.T) {
	cfg, err := ConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig(), cfg)
}

func TestConfigFromEnvInvalid(t *testing.T) {
	t.Run("bad log level", func(t *testing.T) {
		t.Setenv("LOOM_LOG_LEVEL", "verbose")
		_, err := ConfigFromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid config")
	})

	t.Run("negative ttl", func(t *testing.T) {
		t.Setenv("LOOM_CACHE_TTL", "-1s")
		_, err := ConfigFromEnv()
		require.Error(t, err)
	})

	t.Run("unparseable number", func(t *testing.T) {
		t.Setenv("LOOM_MAX_RENDER_DEPTH", "lots")
		_, err := ConfigFromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config")
	})
}

func TestNewConfigWithDefaults(t *testing.T) {
	t.Run("nil gives defaults", func(t *testing.T) {
		assert.Equal(t, DefaultConfig(), NewConfigWithDefaults(nil))
	})

	t.Run("fills unset fields", func(t *testing.T) {
		cfg := NewConfigWithDefaults(&Config{CacheMaxSize: 5})
		assert.Equal(t, 5, cfg.CacheMaxSize)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, DefaultMaxRenderDepth, cfg.MaxRenderDepth)
	})

	t.Run("zero cache size stays zero", func(t *testing.T) {
		cfg := NewConfigWithDefaults(&Config{LogLevel: "debug"})
		assert.Equal(t, 0, cfg.CacheMaxSize)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("overrides are not mutated", func(t *testing.T) {
		overrides := &Config{CacheMaxSize: 5}
		NewConfigWithDefaults(overrides)
		assert.Equal(t, "", overrides.LogLevel)
	})
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{"valid", Config{LogLevel: "warn"}, ""},
		{"negative ttl", Config{LogLevel: "info", CacheTTL: -time.Second}, "cache TTL cannot be negative"},
		{"unknown level", Config{LogLevel: "trace"}, "invalid log level"},
		{"negative depth", Config{LogLevel: "info", MaxRenderDepth: -1}, "max render depth cannot be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
