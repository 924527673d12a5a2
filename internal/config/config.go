// Package config provides configuration management for the hook engine.
// Configuration is loaded from environment variables with sensible defaults
// and validated before the application starts.
//
// Environment Variables:
//
// Application Settings:
//   - PORT: Server port (default: 8080)
//   - LOG_LEVEL: Logging level (default: info)
//
// Database Configuration:
//   - DATABASE_TYPE: "sqlite" or "postgres" (default: sqlite)
//   - DATABASE_PATH: SQLite database file path (default: ./hook_engine.db)
//   - POSTGRES_HOST: PostgreSQL host (required if using PostgreSQL)
//   - POSTGRES_PORT: PostgreSQL port (default: 5432)
//   - POSTGRES_DB: PostgreSQL database name
//   - POSTGRES_USER: PostgreSQL username
//   - POSTGRES_PASSWORD: PostgreSQL password
//   - POSTGRES_SSL_MODE: PostgreSQL SSL mode (default: disable)
//
// Hook Cache (optional):
//   - HOOK_CACHE_ENABLED: Enable the Redis hook cache (default: false)
//   - REDIS_ADDRESS: Redis server address (default: localhost:6379)
//   - REDIS_PASSWORD: Redis password
//   - REDIS_DB: Redis database number 0-15 (default: 0)
//   - HOOK_CACHE_TTL: Cache entry TTL (default: 30s)
//
// Webhook Delivery Defaults:
//   - WEBHOOK_TIMEOUT: Per-attempt HTTP timeout (default: 30s)
//   - WEBHOOK_MAX_RETRIES: Total delivery attempts for transient failures (default: 3)
//   - WEBHOOK_RETRY_DELAY: Delay between attempts (default: 2s)
//
// Email Action (optional):
//   - SMTP_ENABLED: Enable the SMTP email action handler (default: false)
//   - SMTP_HOST, SMTP_PORT, SMTP_USERNAME, SMTP_PASSWORD, SMTP_FROM
//   - SMTP_USE_TLS: Use STARTTLS (default: true)
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values for the hook engine.
type Config struct {
	// Application settings
	Port     string
	LogLevel string

	// Database configuration
	DatabaseType     string
	DatabasePath     string
	PostgresHost     string
	PostgresPort     string
	PostgresDB       string
	PostgresUser     string
	PostgresPassword string
	PostgresSSLMode  string

	// Hook cache configuration
	HookCacheEnabled bool
	RedisAddress     string
	RedisPassword    string
	RedisDB          string
	HookCacheTTL     string

	// Webhook delivery defaults
	WebhookTimeout    string
	WebhookMaxRetries string
	WebhookRetryDelay string

	// SMTP configuration for the email action handler
	SMTPEnabled  bool
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPUseTLS   bool
}

// Load creates a new Config instance with values loaded from environment
// variables. Call Validate() on the result before use.
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseType:     getEnv("DATABASE_TYPE", "sqlite"),
		DatabasePath:     getEnv("DATABASE_PATH", "./hook_engine.db"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresDB:       getEnv("POSTGRES_DB", "hook_engine"),
		PostgresUser:     getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", ""),
		PostgresSSLMode:  getEnv("POSTGRES_SSL_MODE", "disable"),

		HookCacheEnabled: getBoolEnv("HOOK_CACHE_ENABLED", false),
		RedisAddress:     getEnv("REDIS_ADDRESS", "localhost:6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          getEnv("REDIS_DB", "0"),
		HookCacheTTL:     getEnv("HOOK_CACHE_TTL", "30s"),

		WebhookTimeout:    getEnv("WEBHOOK_TIMEOUT", "30s"),
		WebhookMaxRetries: getEnv("WEBHOOK_MAX_RETRIES", "3"),
		WebhookRetryDelay: getEnv("WEBHOOK_RETRY_DELAY", "2s"),

		SMTPEnabled:  getBoolEnv("SMTP_ENABLED", false),
		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", ""),
		SMTPUseTLS:   getBoolEnv("SMTP_USE_TLS", true),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Validate checks that all required fields are present and all values are
// valid. The application should call this after Load and before starting.
func (c *Config) Validate() error {
	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("PORT must be a valid port number between 1 and 65535")
	}

	switch c.DatabaseType {
	case "sqlite", "postgres", "postgresql":
	default:
		return fmt.Errorf("DATABASE_TYPE must be 'sqlite' or 'postgres'")
	}

	if c.DatabaseType == "postgres" || c.DatabaseType == "postgresql" {
		if c.PostgresHost == "" {
			return fmt.Errorf("POSTGRES_HOST is required when using PostgreSQL")
		}
		if c.PostgresDB == "" {
			return fmt.Errorf("POSTGRES_DB is required when using PostgreSQL")
		}
		if c.PostgresUser == "" {
			return fmt.Errorf("POSTGRES_USER is required when using PostgreSQL")
		}
		if port, err := strconv.Atoi(c.PostgresPort); err != nil || port < 1 || port > 65535 {
			return fmt.Errorf("POSTGRES_PORT must be a valid port number")
		}
	}

	if c.HookCacheEnabled {
		if c.RedisAddress == "" {
			return fmt.Errorf("REDIS_ADDRESS is required when the hook cache is enabled")
		}
		if db, err := strconv.Atoi(c.RedisDB); err != nil || db < 0 || db > 15 {
			return fmt.Errorf("REDIS_DB must be a number between 0 and 15")
		}
		if _, err := time.ParseDuration(c.HookCacheTTL); err != nil {
			return fmt.Errorf("HOOK_CACHE_TTL must be a valid duration (e.g. '30s')")
		}
	}

	if _, err := time.ParseDuration(c.WebhookTimeout); err != nil {
		return fmt.Errorf("WEBHOOK_TIMEOUT must be a valid duration (e.g. '30s')")
	}
	if retries, err := strconv.Atoi(c.WebhookMaxRetries); err != nil || retries < 1 {
		return fmt.Errorf("WEBHOOK_MAX_RETRIES must be a positive number")
	}
	if _, err := time.ParseDuration(c.WebhookRetryDelay); err != nil {
		return fmt.Errorf("WEBHOOK_RETRY_DELAY must be a valid duration (e.g. '2s')")
	}

	if c.SMTPEnabled {
		if c.SMTPHost == "" {
			return fmt.Errorf("SMTP_HOST is required when SMTP is enabled")
		}
		if c.SMTPFrom == "" {
			return fmt.Errorf("SMTP_FROM is required when SMTP is enabled")
		}
		if port, err := strconv.Atoi(c.SMTPPort); err != nil || port < 1 || port > 65535 {
			return fmt.Errorf("SMTP_PORT must be a valid port number")
		}
	}

	return nil
}

// WebhookTimeoutDuration returns the parsed per-attempt timeout.
func (c *Config) WebhookTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.WebhookTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// WebhookRetryDelayDuration returns the parsed delay between attempts.
func (c *Config) WebhookRetryDelayDuration() time.Duration {
	d, err := time.ParseDuration(c.WebhookRetryDelay)
	if err != nil {
		return 2 * time.Second
	}
	return d
}

// WebhookMaxRetriesInt returns the parsed total attempt count.
func (c *Config) WebhookMaxRetriesInt() int {
	n, err := strconv.Atoi(c.WebhookMaxRetries)
	if err != nil || n < 1 {
		return 3
	}
	return n
}

// RedisDBInt returns the parsed Redis database number.
func (c *Config) RedisDBInt() int {
	n, err := strconv.Atoi(c.RedisDB)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// HookCacheTTLDuration returns the parsed cache TTL.
func (c *Config) HookCacheTTLDuration() time.Duration {
	d, err := time.ParseDuration(c.HookCacheTTL)
	if err != nil {
		return 30 * time.Second
	}
	return d
}
