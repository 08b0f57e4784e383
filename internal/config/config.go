// Package config provides configuration management for the CarbonTrack client.
// It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	API       APIConfig
	Demo      DemoConfig
	Session   SessionConfig
	Outbox    OutboxConfig
	Database  DatabaseConfig
	Dashboard DashboardConfig
	Ledger    LedgerConfig
	Notify    NotifyConfig
	Logging   LoggingConfig
}

// APIConfig holds settings for the remote CarbonTrack REST API
type APIConfig struct {
	BaseURL          string
	RequestTimeout   time.Duration
	RequestsPerSec   float64
	RetryAttempts    int
	RetryBaseDelay   time.Duration
	BreakerThreshold int
	BreakerCooldown  time.Duration
}

// DemoConfig gates the offline demo shortcuts. Both are off unless configured.
type DemoConfig struct {
	Enabled       bool
	AdminEmail    string
	AdminPassword string
}

// SessionConfig selects where the token and profile are persisted
type SessionConfig struct {
	Store    string // file, redis or memory
	FilePath string
	TTL      time.Duration
}

// OutboxConfig selects where locally-saved entries wait for sync
type OutboxConfig struct {
	Store string // memory or postgres
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Postgres PostgresConfig
	Redis    RedisConfig
}

// PostgresConfig holds Postgres configuration
type PostgresConfig struct {
	Host           string
	Port           string
	Database       string
	User           string
	Password       string
	MaxConnections int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host           string
	Port           string
	Password       string
	DB             int
	MaxConnections int
}

// DashboardConfig holds the local dashboard server configuration
type DashboardConfig struct {
	Host           string
	Port           string
	RequestsPerSec int
	AllowedOrigins []string
}

// LedgerConfig holds aggregate and chart parameters
type LedgerConfig struct {
	MonthlyTargetKg float64
	ChartDays       int
}

// NotifyConfig holds notification lifetimes
type NotifyConfig struct {
	SuccessTTL time.Duration
	DefaultTTL time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from .env file and environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env file is optional - environment variables can be set directly
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	config := &Config{
		API: APIConfig{
			BaseURL:          strings.TrimRight(getEnv("CARBONTRACK_API_BASE", "http://localhost:8000/api/v1"), "/"),
			RequestTimeout:   getEnvAsDuration("CARBONTRACK_REQUEST_TIMEOUT", 15*time.Second),
			RequestsPerSec:   getEnvAsFloat("CARBONTRACK_API_RPS", 10),
			RetryAttempts:    getEnvAsInt("CARBONTRACK_RETRY_ATTEMPTS", 3),
			RetryBaseDelay:   getEnvAsDuration("CARBONTRACK_RETRY_DELAY", 200*time.Millisecond),
			BreakerThreshold: getEnvAsInt("CARBONTRACK_BREAKER_THRESHOLD", 5),
			BreakerCooldown:  getEnvAsDuration("CARBONTRACK_BREAKER_COOLDOWN", 30*time.Second),
		},
		Demo: DemoConfig{
			Enabled:       getEnvAsBool("CARBONTRACK_DEMO_MODE", false),
			AdminEmail:    getEnv("CARBONTRACK_DEMO_ADMIN_EMAIL", ""),
			AdminPassword: getEnv("CARBONTRACK_DEMO_ADMIN_PASSWORD", ""),
		},
		Session: SessionConfig{
			Store:    getEnv("SESSION_STORE", "file"),
			FilePath: getEnv("SESSION_FILE", defaultSessionFile()),
			TTL:      getEnvAsDuration("SESSION_TTL", 0),
		},
		Outbox: OutboxConfig{
			Store: getEnv("OUTBOX_STORE", "memory"),
		},
		Database: DatabaseConfig{
			Postgres: PostgresConfig{
				Host:           getEnv("POSTGRES_HOST", "localhost"),
				Port:           getEnv("POSTGRES_PORT", "5432"),
				Database:       getEnv("POSTGRES_DB", "carbontrack"),
				User:           getEnv("POSTGRES_USER", "carbontrack"),
				Password:       getEnv("POSTGRES_PASSWORD", ""),
				MaxConnections: getEnvAsInt("POSTGRES_MAX_CONNECTIONS", 10),
			},
			Redis: RedisConfig{
				Host:           getEnv("REDIS_HOST", "localhost"),
				Port:           getEnv("REDIS_PORT", "6379"),
				Password:       getEnv("REDIS_PASSWORD", ""),
				DB:             getEnvAsInt("REDIS_DB", 0),
				MaxConnections: getEnvAsInt("REDIS_MAX_CONNECTIONS", 10),
			},
		},
		Dashboard: DashboardConfig{
			Host:           getEnv("DASHBOARD_HOST", "127.0.0.1"),
			Port:           getEnv("DASHBOARD_PORT", "8080"),
			RequestsPerSec: getEnvAsInt("DASHBOARD_RPS", 50),
			AllowedOrigins: getEnvAsList("DASHBOARD_ALLOWED_ORIGINS", []string{"*"}),
		},
		Ledger: LedgerConfig{
			MonthlyTargetKg: getEnvAsFloat("LEDGER_MONTHLY_TARGET_KG", 300),
			ChartDays:       getEnvAsInt("CHART_DAYS", 8),
		},
		Notify: NotifyConfig{
			SuccessTTL: getEnvAsDuration("NOTIFY_SUCCESS_TTL", 10*time.Second),
			DefaultTTL: getEnvAsDuration("NOTIFY_DEFAULT_TTL", 5*time.Second),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate rejects settings the client cannot run with
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("CARBONTRACK_API_BASE must not be empty")
	}
	if c.API.RequestTimeout <= 0 {
		return fmt.Errorf("CARBONTRACK_REQUEST_TIMEOUT must be positive, got %s", c.API.RequestTimeout)
	}
	if c.Ledger.MonthlyTargetKg <= 0 {
		return fmt.Errorf("LEDGER_MONTHLY_TARGET_KG must be positive, got %v", c.Ledger.MonthlyTargetKg)
	}
	switch c.Session.Store {
	case "file", "redis", "memory":
	default:
		return fmt.Errorf("unknown SESSION_STORE %q", c.Session.Store)
	}
	switch c.Outbox.Store {
	case "memory", "postgres":
	default:
		return fmt.Errorf("unknown OUTBOX_STORE %q", c.Outbox.Store)
	}
	if (c.Demo.AdminEmail == "") != (c.Demo.AdminPassword == "") {
		return fmt.Errorf("CARBONTRACK_DEMO_ADMIN_EMAIL and CARBONTRACK_DEMO_ADMIN_PASSWORD must be set together")
	}
	return nil
}

// DemoAdminConfigured reports whether a demo admin account may be used
func (d DemoConfig) DemoAdminConfigured() bool {
	return d.Enabled && d.AdminEmail != "" && d.AdminPassword != ""
}

// RedisAddr returns the host:port pair for the Redis client
func (r RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// DSN returns the Postgres URL used by migrations
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		p.User, p.Password, p.Host, p.Port, p.Database)
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "carbontrack", "session.json")
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsFloat gets an environment variable as a float with a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool gets an environment variable as a bool with a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration gets an environment variable as a duration with a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList splits a comma-separated environment variable
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
