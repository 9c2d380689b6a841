package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers
const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"
)

// DefaultAvatarURL is assigned to every new account
const DefaultAvatarURL = "https://images.pexels.com/photos/1261731/pexels-photo-1261731.jpeg"

// Config holds all configuration values for the application
type Config struct {
	Port           string
	AllowedOrigins []string
	LogLevel       string
	Environment    string

	StoreDriver string
	DatabaseURL string
	SQLitePath  string
	AutoMigrate bool

	RedisURL  string
	JWTSecret string
	TokenTTL  time.Duration

	PollDefaultExpireDays int
	AllowOpenEndedPolls   bool

	LoginMaxAttempts   int
	LoginAttemptWindow time.Duration

	DefaultAvatarURL string
	BcryptCost       int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	databaseURL := getEnv("DATABASE_URL", "")
	defaultDriver := StoreMemory
	if databaseURL != "" {
		defaultDriver = StorePostgres
	}

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: parseOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:5174")),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Environment:    getEnv("ENVIRONMENT", "production"),

		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", defaultDriver)),
		DatabaseURL: databaseURL,
		SQLitePath:  getEnv("SQLITE_PATH", "bolt.db"),
		AutoMigrate: getBoolEnv("AUTO_MIGRATE", true),

		RedisURL:  getEnv("REDIS_URL", ""),
		JWTSecret: getEnv("JWT_SECRET", ""),
		TokenTTL:  getDurationEnv("TOKEN_TTL", 24*time.Hour),

		PollDefaultExpireDays: getIntEnv("POLL_DEFAULT_EXPIRE_DAYS", 7),
		AllowOpenEndedPolls:   getBoolEnv("ALLOW_OPEN_ENDED_POLLS", false),

		LoginMaxAttempts:   getIntEnv("LOGIN_MAX_ATTEMPTS", 5),
		LoginAttemptWindow: getDurationEnv("LOGIN_ATTEMPT_WINDOW", 15*time.Minute),

		DefaultAvatarURL: getEnv("DEFAULT_AVATAR_URL", DefaultAvatarURL),
		BcryptCost:       getIntEnv("BCRYPT_COST", 10),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot run with
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=%s", StorePostgres)
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when STORE_DRIVER=%s", StoreSQLite)
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if c.PollDefaultExpireDays < 1 {
		return fmt.Errorf("POLL_DEFAULT_EXPIRE_DAYS must be at least 1, got %d", c.PollDefaultExpireDays)
	}
	if c.LoginMaxAttempts < 0 {
		return fmt.Errorf("LOGIN_MAX_ATTEMPTS cannot be negative, got %d", c.LoginMaxAttempts)
	}
	if c.LoginMaxAttempts > 0 && c.LoginAttemptWindow <= 0 {
		return fmt.Errorf("LOGIN_ATTEMPT_WINDOW must be positive")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.Environment == "production" && c.JWTSecret != "" && len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
	}

	return nil
}

// IsDevelopment reports whether the server runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// parseOrigins parses comma-separated origins into a slice
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// getBoolEnv gets a boolean environment variable with a fallback value
func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return fallback
}
