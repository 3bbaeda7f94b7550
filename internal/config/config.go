// Package config provides application configuration.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config holds all application configuration.
type Config struct {
	Port            string
	FrontendURL     string
	StoreBackend    string
	DBPath          string
	Redis           RedisConfig
	SessionTTL      time.Duration
	SweepInterval   time.Duration
	Collaborator    CollaboratorConfig
	Engine          EngineConfig
	RateLimit       RateLimitConfig
	ConversationLog ConversationLogConfig
}

// RedisConfig locates the Redis slot store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// CollaboratorConfig points at the reply-generation webhook. An empty URL
// means every turn takes the fallback path.
type CollaboratorConfig struct {
	URL     string
	Timeout time.Duration
}

// EngineConfig holds the orchestrator's pacing.
type EngineConfig struct {
	Platform                string
	FallbackDelay           time.Duration
	CompletionDelay         time.Duration
	FallbackCompletionDelay time.Duration
}

// RateLimitConfig bounds message submissions per client IP.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// ConversationLogConfig controls JSON conversation logging.
type ConversationLogConfig struct {
	Enabled   bool
	Dir       string
	QueueSize int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	queueSize := getEnvInt("CONVERSATION_LOG_QUEUE_SIZE", 1000)
	if queueSize <= 0 {
		queueSize = 1000
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		FrontendURL:   getEnv("FRONTEND_URL", ""),
		StoreBackend:  strings.ToLower(getEnv("STORE_BACKEND", BackendSQLite)),
		DBPath:        getEnv("DB_PATH", "./data/scamdex.db"),
		SessionTTL:    getEnvDuration("SESSION_TTL", 24*time.Hour),
		SweepInterval: getEnvDuration("SWEEP_INTERVAL", 10*time.Minute),
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Collaborator: CollaboratorConfig{
			URL:     getEnv("COLLABORATOR_URL", ""),
			Timeout: getEnvDuration("COLLABORATOR_TIMEOUT", 30*time.Second),
		},
		Engine: EngineConfig{
			Platform:                getEnv("PLATFORM", "WhatsApp/SMS"),
			FallbackDelay:           getEnvDuration("FALLBACK_DELAY", time.Second),
			CompletionDelay:         getEnvDuration("COMPLETION_DELAY", 2*time.Second),
			FallbackCompletionDelay: getEnvDuration("FALLBACK_COMPLETION_DELAY", 1500*time.Millisecond),
		},
		RateLimit: RateLimitConfig{
			Requests: getEnvInt("RATE_LIMIT_REQUESTS", 30),
			Window:   getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		ConversationLog: ConversationLogConfig{
			Enabled:   getEnvBool("CONVERSATION_LOG_ENABLED", false),
			Dir:       getEnv("CONVERSATION_LOG_DIR", "./data/logs/conversations"),
			QueueSize: queueSize,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT cannot be empty")
	}
	switch c.StoreBackend {
	case BackendSQLite:
		if c.DBPath == "" {
			return errors.New("DB_PATH cannot be empty")
		}
	case BackendRedis:
		if c.Redis.Addr == "" {
			return errors.New("REDIS_ADDR cannot be empty")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("STORE_BACKEND %q is not one of sqlite, redis, memory", c.StoreBackend)
	}
	if c.SessionTTL < 0 || c.SweepInterval < 0 {
		return errors.New("SESSION_TTL and SWEEP_INTERVAL must not be negative")
	}
	if c.Collaborator.URL != "" && c.Collaborator.Timeout <= 0 {
		return errors.New("COLLABORATOR_TIMEOUT must be > 0")
	}
	if c.Engine.FallbackDelay < 0 || c.Engine.CompletionDelay < 0 || c.Engine.FallbackCompletionDelay < 0 {
		return errors.New("engine delays must not be negative")
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		return errors.New("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be > 0")
	}
	if c.ConversationLog.Enabled && c.ConversationLog.Dir == "" {
		return errors.New("CONVERSATION_LOG_DIR cannot be empty")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

// AllowedOrigins returns the CORS origins for the configured frontend.
func (c *Config) AllowedOrigins() []string {
	if c.FrontendURL == "" {
		return []string{"*"}
	}
	var origins []string
	for _, o := range strings.Split(c.FrontendURL, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// WebSocketOrigins returns the host patterns accepted on feed upgrades.
func (c *Config) WebSocketOrigins() []string {
	var hosts []string
	for _, o := range c.AllowedOrigins() {
		if o == "*" {
			return []string{"*"}
		}
		u, err := url.Parse(o)
		if err != nil || u.Host == "" {
			continue
		}
		hosts = append(hosts, u.Host)
	}
	return hosts
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

// getEnvDuration accepts Go duration strings ("90s") or bare milliseconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value = strings.TrimSpace(value)
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return fallback
}
