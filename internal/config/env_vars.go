package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	portEnvVar     = "PORT"
	appNameVar     = "APP_NAME"
	logLevelVar    = "LOG_LEVEL"
	jwtSecretVar   = "JWT_SECRET"
	environmentVar = "ENV"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "3000")
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Bookshelf")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv(environmentVar)
	if env == "" {
		return "DEV"
	}
	return env
}

// GetLogLevel returns a zerolog level name (debug, info, warn, error).
func (EnvVars) GetLogLevel() string {
	return strings.ToLower(GetEnv(logLevelVar, "info"))
}

// GetJWTSecret is the HMAC secret the mock API signs access tokens with.
func (EnvVars) GetJWTSecret() string {
	return GetEnv(jwtSecretVar, "bookshelf-dev-secret")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetEnvInt parses envVar as an int, falling back to defaultValue when unset or malformed.
func GetEnvInt(envVar string, defaultValue int) int {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return i
}

// GetEnvFloat parses envVar as a float64, falling back to defaultValue when unset or malformed.
func GetEnvFloat(envVar string, defaultValue float64) float64 {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return f
}

// GetEnvDuration accepts Go durations ("1500ms", "10s") or a bare number of milliseconds.
func GetEnvDuration(envVar string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(envVar))
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}
