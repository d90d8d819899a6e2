package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Defaults(t *testing.T) {
	assert.NoError(t, Validate(DefaultConfig()))
}

func TestValidate_FieldErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"empty base url", func(c *Config) { c.API.BaseURL = "" }, "api.base_url: must not be empty"},
		{"non-http base url", func(c *Config) { c.API.BaseURL = "ftp://x" }, "api.base_url: must be an http or https URL"},
		{"path without slash", func(c *Config) { c.API.LoginPath = "log-in" }, `api.login_path: must start with "/"`},
		{"bad backend", func(c *Config) { c.Storage.Backend = "floppy" }, "storage.backend: must be one of"},
		{"key with slash", func(c *Config) { c.Storage.Key = "a/b" }, "storage.key: must not contain"},
		{"dot key", func(c *Config) { c.Storage.Key = ".." }, "storage.key"},
		{"bad redis addr", func(c *Config) { c.Storage.RedisAddr = "nohost" }, "storage.redis_addr: must be host:port"},
		{"redis db range", func(c *Config) { c.Storage.RedisDB = 16 }, "storage.redis_db: must be <= 15"},
		{"bad log level", func(c *Config) { c.Logging.LogLevel = "trace" }, "logging.log_level"},
		{"negative rate", func(c *Config) { c.Network.RateLimit = -1 }, "network.rate_limit: must be >= 0"},
		{"bad color", func(c *Config) { c.UI.Color = "rainbow" }, "ui.color"},
		{"empty language", func(c *Config) { c.UI.Language = "" }, "ui.language: must not be empty"},
		{"bad timeout", func(c *Config) { c.API.Timeout = "soon" }, `api.timeout: invalid duration "soon"`},
		{"timeout too large", func(c *Config) { c.API.Timeout = "1h" }, "api.timeout: must be between"},
		{"probe too small", func(c *Config) { c.API.ProbeTimeout = "10ms" }, "api.probe_timeout: must be between"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_RedisRequiresAddr(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.Backend = "redis"
	cfg.Storage.RedisAddr = ""

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.redis_addr: required")
}

func TestValidate_AccumulatesErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.API.BaseURL = ""
	cfg.UI.Output = "xml"
	cfg.API.Timeout = "never"

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api.base_url")
	assert.Contains(t, err.Error(), "ui.output")
	assert.Contains(t, err.Error(), "api.timeout")
}

func TestValidateResolved(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.Dir = "relative"
	assert.Error(t, ValidateResolved(cfg))

	cfg.Storage.Backend = "memory"
	assert.NoError(t, ValidateResolved(cfg))

	cfg.Storage.Backend = "file"
	cfg.Storage.Dir = "/abs"
	assert.NoError(t, ValidateResolved(cfg))
}

func TestDurations(t *testing.T) {
	a := APIConfig{Timeout: "2s", ProbeTimeout: "garbage"}
	assert.Equal(t, 2*time.Second, a.TimeoutDuration())
	assert.Equal(t, 10*time.Second, a.ProbeTimeoutDuration())
}
