// Package config provides environment-variable driven defaults plus a thin
// YAML layer for startup configuration, matching the teacher's
// getEnv/getEnvInt style in cmd/ai-service/main.go and the
// yaml.Unmarshal(data, &cfg) inline pattern in cmd/server/main.go.
package config

import (
	"os"
	"strconv"
)

// GetEnv returns the environment variable value, or fallback if unset/empty.
func GetEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetEnvInt parses key as an int, falling back on absence or parse error.
func GetEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

// GetEnvFloat parses key as a float64, falling back on absence or parse error.
func GetEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// GetEnvBool treats "true" (case-sensitive, matching the teacher's
// WEAPON_AI_ENABLED check) as true and any other non-empty value as false;
// an unset or empty variable returns fallback.
func GetEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "true"
	}
	return fallback
}
