package core

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// GetEnvOrDefault returns the trimmed value of key, or defaultValue when it
// is unset or blank.
func GetEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// ParseIntEnv parses key as an integer, falling back to defaultValue when
// unset or malformed.
func ParseIntEnv(key string, defaultValue int) int {
	if value := GetEnvOrDefault(key, ""); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// ParseFloat64Env parses key as a float64, falling back to defaultValue.
func ParseFloat64Env(key string, defaultValue float64) float64 {
	if value := GetEnvOrDefault(key, ""); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// ParseBoolEnv accepts true/1/yes/on and false/0/no/off, case-insensitive.
// Anything else yields defaultValue.
func ParseBoolEnv(key string, defaultValue bool) bool {
	switch strings.ToLower(GetEnvOrDefault(key, "")) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	}
	return defaultValue
}

// ParseDurationEnv reads key as a Go duration ("90s", "2m") or a plain
// number of seconds.
func ParseDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := GetEnvOrDefault(key, "")
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
