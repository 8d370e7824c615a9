package cli

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	BaseURL         string        // questd base URL (default: http://localhost:8080)
	CredentialsFile string        // SQLite file holding the token pair (default: <user config dir>/questctl/credentials.db)
	Timeout         time.Duration // Per-request HTTP timeout (default: 10s)
	LogLevel        string        // Log level (debug, info, warn, error) (default: warn)
	LogFormat       string        // Log format (json, text) (default: text)
}

func LoadConfig() Config {
	return Config{
		BaseURL:         getEnvOrDefault("QUESTCTL_BASE_URL", "http://localhost:8080"),
		CredentialsFile: getEnvOrDefault("QUESTCTL_CREDENTIALS_FILE", defaultCredentialsFile()),
		Timeout:         getEnvDurationOrDefault("QUESTCTL_TIMEOUT", 10*time.Second),
		LogLevel:        getEnvOrDefault("LOG_LEVEL", "warn"),
		LogFormat:       getEnvOrDefault("LOG_FORMAT", "text"),
	}
}

func defaultCredentialsFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "questctl.db"
	}
	return filepath.Join(dir, "questctl", "credentials.db")
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

	if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
		return duration
	}

	// Bare integers are seconds.
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
