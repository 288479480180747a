// Package config provides configuration management for the webhook fan-out
// service. It loads configuration from environment variables with sensible
// defaults and validates it so the application starts safely.
//
// Environment Variables:
//
// Application Settings:
//   - PORT: Server port (default: 8080)
//   - LOG_LEVEL: Logging level (default: info)
//   - LOG_FILE: Log file path, stdout when empty
//   - METRICS_ENABLED: Expose Prometheus metrics on /metrics (default: true)
//
// Fan-out Settings:
//   - FORWARD_TIMEOUT: Timeout for a single forwarded request (default: 10s)
//   - MAX_BODY_BYTES: Largest inbound body accepted for fan-out (default: 10485760)
//   - SHUTDOWN_TIMEOUT: Time allowed for in-flight forwards on shutdown (default: 30s)
//
// Route Storage:
//   - STORE_TYPE: "memory", "file", "sqlite", "postgres" or "redis" (default: memory)
//   - ROUTES_FILE: Routes document for the file store (default: ./routes.json)
//   - ROUTES_FILE_WATCH: Reload routes when the file changes (default: false)
//   - ROUTES_RESYNC_SCHEDULE: Cron schedule for reloading routes from the store
//   - DATABASE_PATH: SQLite database file path (default: ./webhook_fanout.db)
//
// PostgreSQL Configuration:
//   - POSTGRES_HOST: PostgreSQL host (default: localhost)
//   - POSTGRES_PORT: PostgreSQL port (default: 5432)
//   - POSTGRES_DB: PostgreSQL database name (default: webhook_fanout)
//   - POSTGRES_USER: PostgreSQL username (default: postgres)
//   - POSTGRES_PASSWORD: PostgreSQL password
//   - POSTGRES_SSL_MODE: PostgreSQL SSL mode (default: disable)
//
// Redis Configuration:
//   - REDIS_ADDRESS: Redis server address (default: localhost:6379)
//   - REDIS_PASSWORD: Redis password
//   - REDIS_DB: Redis database number 0-15 (default: 0)
//   - REDIS_POOL_SIZE: Redis connection pool size (default: 10)
//   - REDIS_KEY: Hash holding the routes (default: fanout:routes)
//
// Example usage:
//
//	cfg := config.Load()
//	if err := cfg.Validate(); err != nil {
//		log.Fatalf("Invalid configuration: %v", err)
//	}
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
)

// Supported STORE_TYPE values.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Config holds all configuration values for the fan-out service.
// String fields are kept as read from the environment; Validate checks
// that the numeric and duration ones parse.
type Config struct {
	// Application settings
	Port           string // Server port number
	LogLevel       string // Logging level (debug, info, warn, error)
	LogFile        string // Log file path, empty for stdout
	MetricsEnabled bool   // Whether /metrics is served

	// Fan-out settings
	ForwardTimeout  string // Per-forward timeout (e.g. "10s")
	MaxBodyBytes    string // Inbound body limit in bytes
	ShutdownTimeout string // Drain deadline for in-flight forwards

	// Route storage
	StoreType       string // memory, file, sqlite, postgres or redis
	RoutesFile      string // Path of the JSON or YAML routes document
	RoutesFileWatch bool   // Reload on external edits of RoutesFile
	ResyncSchedule  string // Cron schedule for reloading from the store
	DatabasePath    string // Path to SQLite database file

	// Database configuration for PostgreSQL
	PostgresHost     string
	PostgresPort     string
	PostgresDB       string
	PostgresUser     string
	PostgresPassword string
	PostgresSSLMode  string // disable, require, verify-full, ...

	// Redis configuration
	RedisAddress  string // Redis server address (host:port)
	RedisPassword string
	RedisDB       string // Redis database number (0-15)
	RedisPoolSize string
	RedisKey      string // Hash key holding the routes
}

// Load creates a new Config instance with values loaded from environment variables.
// If an environment variable is not set, the corresponding default value is used.
//
// This function does not validate the configuration - call Validate() on the
// returned Config before use.
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFile:        getEnv("LOG_FILE", ""),
		MetricsEnabled: getBoolEnv("METRICS_ENABLED", true),

		ForwardTimeout:  getEnv("FORWARD_TIMEOUT", "10s"),
		MaxBodyBytes:    getEnv("MAX_BODY_BYTES", "10485760"),
		ShutdownTimeout: getEnv("SHUTDOWN_TIMEOUT", "30s"),

		StoreType:       getEnv("STORE_TYPE", StoreMemory),
		RoutesFile:      getEnv("ROUTES_FILE", "./routes.json"),
		RoutesFileWatch: getBoolEnv("ROUTES_FILE_WATCH", false),
		ResyncSchedule:  getEnv("ROUTES_RESYNC_SCHEDULE", ""),
		DatabasePath:    getEnv("DATABASE_PATH", "./webhook_fanout.db"),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresDB:       getEnv("POSTGRES_DB", "webhook_fanout"),
		PostgresUser:     getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", ""),
		PostgresSSLMode:  getEnv("POSTGRES_SSL_MODE", "disable"),

		RedisAddress:  getEnv("REDIS_ADDRESS", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnv("REDIS_DB", "0"),
		RedisPoolSize: getEnv("REDIS_POOL_SIZE", "10"),
		RedisKey:      getEnv("REDIS_KEY", "fanout:routes"),
	}
}

// getEnv retrieves an environment variable value or returns a default value if not set.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getBoolEnv retrieves a boolean environment variable value or returns a default value.
//
// This function accepts the representations strconv.ParseBool understands:
//   - "true", "1", "t", "TRUE", "True" -> true
//   - "false", "0", "f", "FALSE", "False" -> false
//   - Any other value -> returns defaultValue
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Validate performs validation on the configuration to ensure all values
// are well formed.
//
// This method checks:
//   - Field format validation (ports, durations, sizes, cron schedule)
//   - Cross-field dependencies (store specific settings)
//
// Returns:
//   - error: A descriptive error if validation fails, nil if configuration is valid
func (c *Config) Validate() error {
	if !validPort(c.Port) {
		return fmt.Errorf("PORT must be a valid port number between 1 and 65535")
	}

	if d, err := time.ParseDuration(c.ForwardTimeout); err != nil || d <= 0 {
		return fmt.Errorf("FORWARD_TIMEOUT must be a positive duration (e.g., '10s', '1m')")
	}
	if d, err := time.ParseDuration(c.ShutdownTimeout); err != nil || d <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be a positive duration (e.g., '30s')")
	}
	if n, err := strconv.ParseInt(c.MaxBodyBytes, 10, 64); err != nil || n < 1 {
		return fmt.Errorf("MAX_BODY_BYTES must be a positive number")
	}

	switch c.StoreType {
	case StoreMemory:
	case StoreFile:
		if c.RoutesFile == "" {
			return fmt.Errorf("ROUTES_FILE is required when using the file store")
		}
	case StoreSQLite:
		if c.DatabasePath == "" {
			return fmt.Errorf("DATABASE_PATH is required when using SQLite")
		}
	case StorePostgres:
		if c.PostgresHost == "" {
			return fmt.Errorf("POSTGRES_HOST is required when using PostgreSQL")
		}
		if c.PostgresDB == "" {
			return fmt.Errorf("POSTGRES_DB is required when using PostgreSQL")
		}
		if c.PostgresUser == "" {
			return fmt.Errorf("POSTGRES_USER is required when using PostgreSQL")
		}
		if !validPort(c.PostgresPort) {
			return fmt.Errorf("POSTGRES_PORT must be a valid port number")
		}
	case StoreRedis:
		if c.RedisAddress == "" {
			return fmt.Errorf("REDIS_ADDRESS is required when using Redis")
		}
		if db, err := strconv.Atoi(c.RedisDB); err != nil || db < 0 || db > 15 {
			return fmt.Errorf("REDIS_DB must be a number between 0 and 15")
		}
		if poolSize, err := strconv.Atoi(c.RedisPoolSize); err != nil || poolSize < 1 {
			return fmt.Errorf("REDIS_POOL_SIZE must be a positive number")
		}
		if c.RedisKey == "" {
			return fmt.Errorf("REDIS_KEY is required when using Redis")
		}
	default:
		return fmt.Errorf("STORE_TYPE must be one of 'memory', 'file', 'sqlite', 'postgres' or 'redis'")
	}

	if c.ResyncSchedule != "" {
		if c.StoreType == StoreMemory {
			return fmt.Errorf("ROUTES_RESYNC_SCHEDULE requires a persistent STORE_TYPE")
		}
		if _, err := cron.ParseStandard(c.ResyncSchedule); err != nil {
			return fmt.Errorf("ROUTES_RESYNC_SCHEDULE is not a valid cron schedule: %v", err)
		}
	}

	if c.RoutesFileWatch && c.StoreType != StoreFile {
		return fmt.Errorf("ROUTES_FILE_WATCH requires STORE_TYPE 'file'")
	}

	return nil
}

// ForwardTimeoutDuration returns FORWARD_TIMEOUT parsed. Call after Validate.
func (c *Config) ForwardTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ForwardTimeout)
	return d
}

// ShutdownTimeoutDuration returns SHUTDOWN_TIMEOUT parsed. Call after Validate.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// MaxBodyBytesValue returns MAX_BODY_BYTES parsed. Call after Validate.
func (c *Config) MaxBodyBytesValue() int64 {
	n, _ := strconv.ParseInt(c.MaxBodyBytes, 10, 64)
	return n
}

// PostgresDSN builds a libpq style connection string for pgx.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s dbname=%s user=%s password=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresDB, c.PostgresUser, c.PostgresPassword, c.PostgresSSLMode)
}

func validPort(value string) bool {
	port, err := strconv.Atoi(value)
	return err == nil && port >= 1 && port <= 65535
}
