// Package config loads application configuration from environment variables.
// All variables use the LEARN_ prefix.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/learnflow/learnflow/internal/mastery"
)

// Config holds all application configuration.
type Config struct {
	Server         ServerConfig
	Database       DatabaseConfig
	Cache          CacheConfig
	Upstream       UpstreamConfig
	Mastery        MasteryConfig
	Session        SessionConfig
	Quiz           QuizConfig
	Instructor     InstructorConfig
	Log            LogConfig
	CurriculumPath string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int
	Host string
}

// DatabaseConfig holds PostgreSQL connection settings. An empty URL disables
// the Postgres event log.
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

// CacheConfig holds Dragonfly/Redis connection settings. An empty URL keeps
// the session cache in process memory.
type CacheConfig struct {
	URL string
}

// UpstreamConfig holds base URLs of the collaborator services.
type UpstreamConfig struct {
	CurriculumURL string
	ProgressURL   string
	QuizURL       string
	AuthURL       string
	Timeout       time.Duration
}

// MasteryConfig holds the level thresholds as "learning,proficient,mastered".
type MasteryConfig struct {
	Thresholds string
}

// SessionConfig holds current-session cache settings.
type SessionConfig struct {
	CacheTTL   time.Duration
	CookieName string
}

// QuizConfig holds in-memory quiz session settings. Sessions not touched for
// IdleTTL are evicted.
type QuizConfig struct {
	IdleTTL time.Duration
}

// InstructorConfig holds the struggle-alert feed settings.
type InstructorConfig struct {
	FeedEnabled  bool
	PollInterval time.Duration
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with LEARN_ prefix.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("LEARN_SERVER_PORT", 8080),
			Host: envStr("LEARN_SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			URL:      envStr("LEARN_DATABASE_URL", ""),
			MaxConns: envInt("LEARN_DATABASE_MAX_CONNS", 10),
			MinConns: envInt("LEARN_DATABASE_MIN_CONNS", 2),
		},
		Cache: CacheConfig{
			URL: envStr("LEARN_CACHE_URL", ""),
		},
		Upstream: UpstreamConfig{
			CurriculumURL: envStr("LEARN_UPSTREAM_CURRICULUM_URL", "http://localhost:8003"),
			ProgressURL:   envStr("LEARN_UPSTREAM_PROGRESS_URL", "http://localhost:8003"),
			QuizURL:       envStr("LEARN_UPSTREAM_QUIZ_URL", "http://localhost:8004"),
			AuthURL:       envStr("LEARN_UPSTREAM_AUTH_URL", "http://localhost:3000"),
			Timeout:       envDuration("LEARN_UPSTREAM_TIMEOUT", 10*time.Second),
		},
		Mastery: MasteryConfig{
			Thresholds: envStr("LEARN_MASTERY_THRESHOLDS", "25,60,85"),
		},
		Session: SessionConfig{
			CacheTTL:   envDuration("LEARN_SESSION_CACHE_TTL", time.Minute),
			CookieName: envStr("LEARN_SESSION_COOKIE", "better-auth.session_token"),
		},
		Quiz: QuizConfig{
			IdleTTL: envDuration("LEARN_QUIZ_IDLE_TTL", 2*time.Hour),
		},
		Instructor: InstructorConfig{
			FeedEnabled:  envBool("LEARN_INSTRUCTOR_FEED_ENABLED", true),
			PollInterval: envDuration("LEARN_INSTRUCTOR_POLL_INTERVAL", 15*time.Second),
		},
		Log: LogConfig{
			Level:  envStr("LEARN_LOG_LEVEL", "info"),
			Format: envStr("LEARN_LOG_FORMAT", "json"),
		},
		CurriculumPath: envStr("LEARN_CURRICULUM_PATH", ""),
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("LEARN_SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}

	upstreams := []struct {
		key   string
		value string
	}{
		{"LEARN_UPSTREAM_CURRICULUM_URL", c.Upstream.CurriculumURL},
		{"LEARN_UPSTREAM_PROGRESS_URL", c.Upstream.ProgressURL},
		{"LEARN_UPSTREAM_QUIZ_URL", c.Upstream.QuizURL},
		{"LEARN_UPSTREAM_AUTH_URL", c.Upstream.AuthURL},
	}
	for _, u := range upstreams {
		if err := validateBaseURL(u.value); err != nil {
			return fmt.Errorf("%s: %w", u.key, err)
		}
	}

	if _, err := mastery.ParseThresholds(c.Mastery.Thresholds); err != nil {
		return fmt.Errorf("LEARN_MASTERY_THRESHOLDS: %w", err)
	}

	if c.Upstream.Timeout <= 0 {
		return fmt.Errorf("LEARN_UPSTREAM_TIMEOUT must be positive")
	}
	if c.Session.CacheTTL < 0 {
		return fmt.Errorf("LEARN_SESSION_CACHE_TTL must not be negative")
	}
	if c.Quiz.IdleTTL <= 0 {
		return fmt.Errorf("LEARN_QUIZ_IDLE_TTL must be positive")
	}
	if c.Instructor.PollInterval <= 0 {
		return fmt.Errorf("LEARN_INSTRUCTOR_POLL_INTERVAL must be positive")
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("LEARN_DATABASE_MIN_CONNS (%d) exceeds LEARN_DATABASE_MAX_CONNS (%d)",
			c.Database.MinConns, c.Database.MaxConns)
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("LEARN_LOG_FORMAT must be 'json' or 'text', got %q", c.Log.Format)
	}

	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func validateBaseURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("base URL is empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base URL must be http or https, got %q", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("base URL has no host: %q", raw)
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return fallback
}

// envDuration accepts Go durations ("15s") or a bare number of seconds.
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
