package app

import (
	"os"
	"time"
)

type Config struct {
	DatabaseFile string // Optional: path to SQLite database file (default: ./authd.db)

	CodeLifetime         time.Duration // Optional: grant code lifetime (default: 10m)
	AccessTokenLifetime  time.Duration // Optional: confidential-client token lifetime (default: 168h)
	PublicTokenLifetime  time.Duration // Optional: public-client token lifetime (default: 720h)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
	RetentionPeriod      time.Duration // How long spent credentials are kept for audit (default: 2160h)

	Env       string // Environment (dev, staging, prod) (default: dev)
	LogLevel  string // Log level (debug, info, warn, error) (default: info)
	LogFormat string // Log format (json, text) (default: json)
}

func LoadConfig() Config {
	return Config{
		DatabaseFile:         getEnvOrDefault("AUTH_DATABASE_FILE", "authd.db"),
		CodeLifetime:         getEnvDurationOrDefault("AUTH_CODE_LIFETIME", 10*time.Minute),
		AccessTokenLifetime:  getEnvDurationOrDefault("AUTH_ACCESS_TOKEN_LIFETIME", 7*24*time.Hour),
		PublicTokenLifetime:  getEnvDurationOrDefault("AUTH_PUBLIC_TOKEN_LIFETIME", 30*24*time.Hour),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
		RetentionPeriod:      getEnvDurationOrDefault("RETENTION_PERIOD", 90*24*time.Hour),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// e.g. "1h", "30m", "90s"
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
