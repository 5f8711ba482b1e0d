package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"tidytab/internal/errors"
)

// Session storage backends
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig
	Session SessionConfig
	Limits  LimitsConfig
	Convert ConvertConfig
	Site    SiteConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port            string
	GinMode         string
	ShutdownTimeout time.Duration
}

// SessionConfig selects and configures the session blob store
type SessionConfig struct {
	Backend     string
	DatabaseURL string
	SQLitePath  string
	Dir         string
	CookieName  string
	MaxAge      time.Duration
}

// LimitsConfig bounds request and session payloads
type LimitsConfig struct {
	MaxUploadBytes  int64
	MaxSessionBytes int64
	PreviewRows     int
	PreviewColumns  int
}

// ConvertConfig holds document conversion settings
type ConvertConfig struct {
	MaxConcurrent int64
}

// SiteConfig holds settings for public pages
type SiteConfig struct {
	BaseURL string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:  *loadServerConfig(),
		Session: *loadSessionConfig(),
		Limits:  *loadLimitsConfig(),
		Convert: ConvertConfig{
			MaxConcurrent: int64(getEnvIntOrDefault("CONVERT_MAX_CONCURRENT", 2)),
		},
		Site: SiteConfig{
			BaseURL: strings.TrimRight(getEnvOrDefault("SITE_BASE_URL", "http://localhost:8080"), "/"),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Default returns the configuration used when no environment is set.
func Default() *Config {
	return &Config{
		Server:  ServerConfig{Port: "8080", GinMode: "release", ShutdownTimeout: 10 * time.Second},
		Session: SessionConfig{Backend: BackendMemory, CookieName: "tidytab_session", MaxAge: 24 * time.Hour},
		Limits: LimitsConfig{
			MaxUploadBytes:  50 << 20,
			MaxSessionBytes: 16 << 20,
			PreviewRows:     10,
			PreviewColumns:  10,
		},
		Convert: ConvertConfig{MaxConcurrent: 2},
		Site:    SiteConfig{BaseURL: "http://localhost:8080"},
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:            getEnvOrDefault("PORT", "8080"),
		GinMode:         getEnvOrDefault("GIN_MODE", "debug"),
		ShutdownTimeout: getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func loadSessionConfig() *SessionConfig {
	return &SessionConfig{
		Backend:     strings.ToLower(getEnvOrDefault("SESSION_BACKEND", BackendMemory)),
		DatabaseURL: getEnvOrDefault("DATABASE_URL", ""),
		SQLitePath:  getEnvOrDefault("SQLITE_PATH", "tidytab.db"),
		Dir:         getEnvOrDefault("SESSION_DIR", "./data/sessions"),
		CookieName:  getEnvOrDefault("SESSION_COOKIE", "tidytab_session"),
		MaxAge:      getEnvDurationOrDefault("SESSION_MAX_AGE", 24*time.Hour),
	}
}

func loadLimitsConfig() *LimitsConfig {
	return &LimitsConfig{
		MaxUploadBytes:  getEnvInt64OrDefault("MAX_UPLOAD_BYTES", 50<<20),
		MaxSessionBytes: getEnvInt64OrDefault("MAX_SESSION_BYTES", 16<<20),
		PreviewRows:     getEnvIntOrDefault("PREVIEW_ROWS", 10),
		PreviewColumns:  getEnvIntOrDefault("PREVIEW_COLUMNS", 10),
	}
}

func validateConfig(config *Config) error {
	switch config.Session.Backend {
	case BackendMemory, BackendFile, BackendSQLite:
	case BackendPostgres:
		if config.Session.DatabaseURL == "" {
			return errors.ConfigInvalid("DATABASE_URL is required for the postgres session backend")
		}
	default:
		return errors.ConfigInvalid("unknown SESSION_BACKEND: " + config.Session.Backend)
	}
	if config.Limits.MaxUploadBytes <= 0 || config.Limits.MaxSessionBytes <= 0 {
		return errors.ConfigInvalid("size limits must be positive")
	}
	if config.Limits.PreviewRows <= 0 || config.Limits.PreviewColumns <= 0 {
		return errors.ConfigInvalid("preview sizes must be positive")
	}
	if config.Convert.MaxConcurrent <= 0 {
		return errors.ConfigInvalid("CONVERT_MAX_CONCURRENT must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
