package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("COLLABORATOR_URL", "")
	t.Setenv("FRONTEND_URL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, cfg.StoreBackend)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, time.Second, cfg.Engine.FallbackDelay)
	assert.Equal(t, 2*time.Second, cfg.Engine.CompletionDelay)
	assert.Equal(t, 1500*time.Millisecond, cfg.Engine.FallbackCompletionDelay)
	assert.Equal(t, "WhatsApp/SMS", cfg.Engine.Platform)
	assert.Empty(t, cfg.Collaborator.URL)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins())
	assert.Equal(t, []string{"*"}, cfg.WebSocketOrigins())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "Redis")
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("COLLABORATOR_URL", "https://hooks.example.com/converse")
	t.Setenv("COLLABORATOR_TIMEOUT", "5000")
	t.Setenv("CONVERSATION_LOG_ENABLED", "yes")
	t.Setenv("FRONTEND_URL", "https://app.example.com, https://admin.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendRedis, cfg.StoreBackend)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 5*time.Second, cfg.Collaborator.Timeout)
	assert.True(t, cfg.ConversationLog.Enabled)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.AllowedOrigins())
	assert.Equal(t, []string{"app.example.com", "admin.example.com"}, cfg.WebSocketOrigins())
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", "postgres")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE_BACKEND")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Port:         "8080",
			StoreBackend: BackendMemory,
			RateLimit:    RateLimitConfig{Requests: 1, Window: time.Second},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"empty port", func(c *Config) { c.Port = "" }, true},
		{"sqlite without path", func(c *Config) { c.StoreBackend = BackendSQLite }, true},
		{"redis without addr", func(c *Config) { c.StoreBackend = BackendRedis }, true},
		{"negative delay", func(c *Config) { c.Engine.FallbackDelay = -time.Second }, true},
		{"collaborator without timeout", func(c *Config) { c.Collaborator.URL = "http://x" }, true},
		{"zero rate limit", func(c *Config) { c.RateLimit.Requests = 0 }, true},
		{"log without dir", func(c *Config) { c.ConversationLog.Enabled = true }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("D_GO", "90s")
	t.Setenv("D_MS", "250")
	t.Setenv("D_BAD", "soon")

	assert.Equal(t, 90*time.Second, getEnvDuration("D_GO", 0))
	assert.Equal(t, 250*time.Millisecond, getEnvDuration("D_MS", 0))
	assert.Equal(t, time.Minute, getEnvDuration("D_BAD", time.Minute))
	assert.Equal(t, time.Hour, getEnvDuration("D_UNSET_KEY", time.Hour))
}
