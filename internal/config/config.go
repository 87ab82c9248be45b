package config

import (
	"os"
	"time"
)

// Config holds CLI configuration sourced from environment variables.
type Config struct {
	Token     string
	Recipient string
	Device    string
	Timeout   time.Duration
	LogLevel  string
}

// Load creates a new Config from environment variables.
func Load() *Config {
	return &Config{
		Token:     getEnv("PUSHOVER_TOKEN", ""),
		Recipient: getEnv("PUSHOVER_USER", ""),
		Device:    getEnv("PUSHOVER_DEVICE", ""),
		Timeout:   getDurationEnv("PUSHOVER_TIMEOUT", 10*time.Second),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
