package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/actionprice/auth/internal/auth/service"
	"github.com/actionprice/auth/pkg/jwtx"
)

// Credential store backends.
const (
	CredentialStoreSQLite = "sqlite"
	CredentialStoreRedis  = "redis"
)

type Config struct {
	Issuer            string // Optional: issuer claim for tokens (default: actionprice-auth)
	SigningSecret     string // Optional: HS256 secret, at least 32 bytes
	SigningSecretFile string // Optional: file holding the secret, created when missing

	AccessTTL          time.Duration // Access token lifetime (default: 60m)
	RefreshTTL         time.Duration // Refresh token lifetime (default: 7 days)
	RefreshRotateBelow time.Duration // Rotate refresh tokens with less than this left (default: 2 days)

	DatabaseFile string // Path to SQLite database file (default: ./auth.db)
	PepperFile   string // Path to file containing pepper for password hashing (default: ./pepper)

	CredentialStore string // Where refresh tokens live: sqlite or redis (default: sqlite)
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	RedisPrefix     string

	AdminUsername string // Seeded when the user table is empty (default: admin)
	AdminPassword string // Optional: generated and logged once when empty

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		Issuer:            getEnvOrDefault("AUTH_ISSUER", "actionprice-auth"),
		SigningSecret:     os.Getenv("AUTH_SIGNING_SECRET"),
		SigningSecretFile: os.Getenv("AUTH_SIGNING_SECRET_FILE"),

		AccessTTL:          getEnvDurationOrDefault("AUTH_ACCESS_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTTL:         getEnvDurationOrDefault("AUTH_REFRESH_TTL", jwtx.DefaultRefreshTokenTTL),
		RefreshRotateBelow: getEnvDurationOrDefault("AUTH_REFRESH_ROTATE_BELOW", service.DefaultRotateBelow),

		DatabaseFile: getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		PepperFile:   getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),

		CredentialStore: getEnvOrDefault("AUTH_CREDENTIAL_STORE", CredentialStoreSQLite),
		RedisAddr:       getEnvOrDefault("AUTH_REDIS_ADDR", "localhost:6379"),
		RedisPassword:   os.Getenv("AUTH_REDIS_PASSWORD"),
		RedisDB:         getEnvIntOrDefault("AUTH_REDIS_DB", 0),
		RedisPrefix:     getEnvOrDefault("AUTH_REDIS_PREFIX", "auth:"),

		AdminUsername: getEnvOrDefault("AUTH_ADMIN_USERNAME", "admin"),
		AdminPassword: os.Getenv("AUTH_ADMIN_PASSWORD"),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

// Validate rejects combinations the service cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.AccessTTL <= 0 {
		errs = append(errs, errors.New("AUTH_ACCESS_TTL must be positive"))
	}
	if c.RefreshTTL <= c.AccessTTL {
		errs = append(errs, errors.New("AUTH_REFRESH_TTL must be longer than AUTH_ACCESS_TTL"))
	}
	if c.RefreshRotateBelow <= 0 || c.RefreshRotateBelow >= c.RefreshTTL {
		errs = append(errs, errors.New("AUTH_REFRESH_ROTATE_BELOW must be positive and shorter than AUTH_REFRESH_TTL"))
	}
	switch c.CredentialStore {
	case CredentialStoreSQLite:
	case CredentialStoreRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("AUTH_REDIS_ADDR is required for the redis credential store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown AUTH_CREDENTIAL_STORE %q", c.CredentialStore))
	}
	return errors.Join(errs...)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
