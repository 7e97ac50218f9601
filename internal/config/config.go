// Package config provides configuration management for the relay router.
// It loads configuration from environment variables with sensible defaults
// and validates the result before the application starts.
//
// Environment Variables:
//
// Application Settings:
//   - PORT: Server port (default: 8080)
//   - LOG_LEVEL: Logging level (default: info)
//
// Database Configuration:
//   - DATABASE_TYPE: Database type - "sqlite" or "postgres" (default: sqlite)
//   - DATABASE_PATH: SQLite database file path (default: ./relay_router.db)
//   - POSTGRES_HOST: PostgreSQL host (default: localhost)
//   - POSTGRES_PORT: PostgreSQL port (default: 5432)
//   - POSTGRES_DB: PostgreSQL database name (default: relay_router)
//   - POSTGRES_USER: PostgreSQL username (default: postgres)
//   - POSTGRES_PASSWORD: PostgreSQL password
//   - POSTGRES_SSL_MODE: PostgreSQL SSL mode (default: disable)
//
// Redis Configuration (optional - rule caching and rate limiting):
//   - REDIS_ENABLED: Enable redis (default: false)
//   - REDIS_ADDRESS: Redis server address (default: localhost:6379)
//   - REDIS_PASSWORD: Redis password
//   - REDIS_DB: Redis database number 0-15 (default: 0)
//   - REDIS_POOL_SIZE: Redis connection pool size (default: 10)
//   - RULE_CACHE_TTL: Active-rule cache TTL (default: 30s)
//
// Rate Limiting:
//   - RATE_LIMIT_ENABLED: Enable rate limiting (default: true)
//   - RATE_LIMIT_DEFAULT: Default rate limit per window (default: 100)
//   - RATE_LIMIT_WINDOW: Rate limit time window (default: 60s)
//
// Messaging Gateway:
//   - GATEWAY_BASE_URL: Base URL of the chat platform API
//   - GATEWAY_TOKEN: Bearer token for gateway calls
//
// Retention:
//   - LOG_RETENTION_DAYS: Relay log retention in days, 0 disables the
//     sweep (default: 90)
//   - LOG_RETENTION_SCHEDULE: Cron expression for the sweep (default:
//     "0 3 * * *")
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values for the relay router. Each
// field corresponds to an environment variable documented above.
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

	// Redis configuration for rule caching and rate limiting
	RedisEnabled  bool
	RedisAddress  string
	RedisPassword string
	RedisDB       string
	RedisPoolSize string
	RuleCacheTTL  string

	// Rate limiting configuration
	RateLimitEnabled bool
	RateLimitDefault string
	RateLimitWindow  string

	// Messaging gateway configuration
	GatewayBaseURL string
	GatewayToken   string

	// Relay log retention
	LogRetentionDays     int
	LogRetentionSchedule string
}

// Load creates a new Config instance with values loaded from environment
// variables. Defaults apply for anything unset. Call Validate before use.
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseType:     getEnv("DATABASE_TYPE", "sqlite"),
		DatabasePath:     getEnv("DATABASE_PATH", "./relay_router.db"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresDB:       getEnv("POSTGRES_DB", "relay_router"),
		PostgresUser:     getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", ""),
		PostgresSSLMode:  getEnv("POSTGRES_SSL_MODE", "disable"),

		RedisEnabled:  getBoolEnv("REDIS_ENABLED", false),
		RedisAddress:  getEnv("REDIS_ADDRESS", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnv("REDIS_DB", "0"),
		RedisPoolSize: getEnv("REDIS_POOL_SIZE", "10"),
		RuleCacheTTL:  getEnv("RULE_CACHE_TTL", "30s"),

		RateLimitEnabled: getBoolEnv("RATE_LIMIT_ENABLED", true),
		RateLimitDefault: getEnv("RATE_LIMIT_DEFAULT", "100"),
		RateLimitWindow:  getEnv("RATE_LIMIT_WINDOW", "60s"),

		GatewayBaseURL: getEnv("GATEWAY_BASE_URL", ""),
		GatewayToken:   getEnv("GATEWAY_TOKEN", ""),

		LogRetentionDays:     getIntEnv("LOG_RETENTION_DAYS", 90),
		LogRetentionSchedule: getEnv("LOG_RETENTION_SCHEDULE", "0 3 * * *"),
	}
}

// getEnv retrieves an environment variable value or returns a default
// value if not set.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getBoolEnv retrieves a boolean environment variable value or returns
// a default value when unset or unparsable.
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getIntEnv retrieves an integer environment variable value or returns
// a default value when unset or unparsable.
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Validate checks required fields, value formats, and cross-field
// dependencies. Call after Load and before starting the service.
func (c *Config) Validate() error {
	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("PORT must be a valid port number between 1 and 65535")
	}

	switch c.DatabaseType {
	case "sqlite":
		if c.DatabasePath == "" {
			return fmt.Errorf("DATABASE_PATH is required when using SQLite")
		}
	case "postgres", "postgresql":
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
	default:
		return fmt.Errorf("DATABASE_TYPE must be 'sqlite' or 'postgres'")
	}

	if c.RedisEnabled {
		if c.RedisAddress == "" {
			return fmt.Errorf("REDIS_ADDRESS is required when redis is enabled")
		}
		if db, err := strconv.Atoi(c.RedisDB); err != nil || db < 0 || db > 15 {
			return fmt.Errorf("REDIS_DB must be a number between 0 and 15")
		}
		if _, err := time.ParseDuration(c.RuleCacheTTL); err != nil {
			return fmt.Errorf("RULE_CACHE_TTL must be a valid duration: %v", err)
		}
	}

	if c.RateLimitEnabled {
		if limit, err := strconv.Atoi(c.RateLimitDefault); err != nil || limit < 1 {
			return fmt.Errorf("RATE_LIMIT_DEFAULT must be a positive number")
		}
		if _, err := time.ParseDuration(c.RateLimitWindow); err != nil {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be a valid duration: %v", err)
		}
	}

	if c.LogRetentionDays < 0 {
		return fmt.Errorf("LOG_RETENTION_DAYS must not be negative")
	}

	return nil
}

// CacheTTL returns the parsed rule cache TTL, falling back to 30
// seconds if the configured value is invalid.
func (c *Config) CacheTTL() time.Duration {
	ttl, err := time.ParseDuration(c.RuleCacheTTL)
	if err != nil || ttl <= 0 {
		return 30 * time.Second
	}
	return ttl
}

// RateWindow returns the parsed rate limit window, falling back to one
// minute if the configured value is invalid.
func (c *Config) RateWindow() time.Duration {
	window, err := time.ParseDuration(c.RateLimitWindow)
	if err != nil || window <= 0 {
		return time.Minute
	}
	return window
}

// RateLimit returns the parsed default rate limit, falling back to 100
// if the configured value is invalid.
func (c *Config) RateLimit() int {
	limit, err := strconv.Atoi(c.RateLimitDefault)
	if err != nil || limit < 1 {
		return 100
	}
	return limit
}
