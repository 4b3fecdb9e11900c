package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seotooler/internal/constants"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, constants.DefaultPort, cfg.Server.Port)
	assert.Equal(t, "/api/contact", cfg.Server.ContactPath)
	assert.Equal(t, 3, cfg.RateLimit.MaxRequests)
	assert.Equal(t, time.Hour, cfg.RateLimit.Window)
	assert.Equal(t, constants.StoreMemory, cfg.RateLimit.Store)
	assert.Equal(t, []string{"X-Forwarded-For", "Client-Ip"}, cfg.RateLimit.IdentityHeaders)
	assert.Equal(t, constants.FallbackAllow, cfg.RateLimit.OnStoreError)
	assert.Equal(t, "https://api.telegram.org", cfg.Relay.APIBaseURL)
	assert.Equal(t, "HTML", cfg.Relay.ParseMode)
	assert.False(t, cfg.Relay.Configured())
	assert.False(t, cfg.Tracing.Enabled)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", " 123:abc ")
	t.Setenv("TELEGRAM_CHAT_ID", "-1001")
	t.Setenv("RATE_LIMIT_MAX_REQUESTS", "5")
	t.Setenv("RATE_LIMIT_WINDOW", "30m")
	t.Setenv("RATE_LIMIT_IDENTITY_HEADERS", "X-Real-Ip, Client-Ip")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Relay.BotToken)
	assert.Equal(t, "-1001", cfg.Relay.ChatID)
	assert.True(t, cfg.Relay.Configured())
	assert.Equal(t, 5, cfg.RateLimit.MaxRequests)
	assert.Equal(t, 30*time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, []string{"X-Real-Ip", "Client-Ip"}, cfg.RateLimit.IdentityHeaders)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9090
  contact_path: /.netlify/functions/contact
rate_limit:
  max_requests: 10
  window: 2h
  store: redis
redis:
  host: localhost
  port: 6380
relay:
  chat_id: "42"
  circuit_breaker:
    enabled: true
    failure_ratio: 0.25
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/.netlify/functions/contact", cfg.Server.ContactPath)
	assert.Equal(t, 10, cfg.RateLimit.MaxRequests)
	assert.Equal(t, 2*time.Hour, cfg.RateLimit.Window)
	assert.Equal(t, constants.StoreRedis, cfg.RateLimit.Store)
	assert.Equal(t, "localhost", cfg.Redis.Host)
	assert.Equal(t, 6380, cfg.Redis.Port)
	assert.Equal(t, "42", cfg.Relay.ChatID)
	assert.True(t, cfg.Relay.CircuitBreaker.Enabled)
	assert.Equal(t, 0.25, cfg.Relay.CircuitBreaker.FailureRatio)
	assert.Equal(t, 30*time.Second, cfg.Relay.CircuitBreaker.Timeout)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidateStatic(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{
				Port:         8080,
				ReadTimeout:  time.Second,
				WriteTimeout: time.Second,
				ContactPath:  "/api/contact",
				MaxBodyBytes: 1024,
			},
			RateLimit: RateLimitConfig{
				MaxRequests:  3,
				Window:       time.Hour,
				Store:        constants.StoreMemory,
				OnStoreError: constants.FallbackAllow,
			},
			Relay: RelayConfig{
				APIBaseURL: "https://api.telegram.org",
			},
		}
	}

	tests := []struct {
		name      string
		mutate    func(*Config)
		wantError string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }, wantError: "server.port"},
		{name: "relative path", mutate: func(c *Config) { c.Server.ContactPath = "contact" }, wantError: "server.contact_path"},
		{name: "zero quota", mutate: func(c *Config) { c.RateLimit.MaxRequests = 0 }, wantError: "rate_limit.max_requests"},
		{name: "zero window", mutate: func(c *Config) { c.RateLimit.Window = 0 }, wantError: "rate_limit.window"},
		{name: "unknown store", mutate: func(c *Config) { c.RateLimit.Store = "memcached" }, wantError: "rate_limit.store"},
		{name: "bad fallback", mutate: func(c *Config) { c.RateLimit.OnStoreError = "maybe" }, wantError: "rate_limit.on_store_error"},
		{name: "redis without host", mutate: func(c *Config) { c.RateLimit.Store = constants.StoreRedis }, wantError: "redis.host"},
		{name: "relative relay url", mutate: func(c *Config) { c.Relay.APIBaseURL = "api.telegram.org" }, wantError: "relay.api_base_url"},
		{name: "pacing without burst", mutate: func(c *Config) { c.Relay.RatePerSecond = 1 }, wantError: "relay.burst"},
		{
			name: "breaker ratio",
			mutate: func(c *Config) {
				c.Relay.CircuitBreaker.Enabled = true
				c.Relay.CircuitBreaker.FailureRatio = 2
			},
			wantError: "relay.circuit_breaker.failure_ratio",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := ValidateStatic(cfg)
			if tt.wantError == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantError)
		})
	}
}
