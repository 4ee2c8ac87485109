package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultBackendURL = "http://127.0.0.1:53318"
	DefaultEnvFile    = ".env"
)

type Config struct {
	BackendURL    string
	HTTPTimeout   time.Duration
	SafetyTimeout time.Duration
	ShareLifetime time.Duration
	ShareSweep    time.Duration
	InsecureTLS   bool
	LogLevel      slog.Level
}

// Load reads an optional .env file, then the environment. Variables already
// set in the environment win over the file.
func Load() Config {
	envFile := getEnv("LSCTL_ENV_FILE", DefaultEnvFile)
	if err := godotenv.Load(envFile); err != nil {
		slog.Debug("No env file loaded", "file", envFile)
	}

	return Config{
		BackendURL:    strings.TrimRight(getEnv("LSCTL_BACKEND_URL", DefaultBackendURL), "/"),
		HTTPTimeout:   getDuration("LSCTL_HTTP_TIMEOUT", 30*time.Second),
		SafetyTimeout: getDuration("LSCTL_SAFETY_TIMEOUT", 15*time.Second),
		ShareLifetime: getDuration("LSCTL_SHARE_LIFETIME", time.Hour),
		ShareSweep:    getDuration("LSCTL_SHARE_SWEEP", time.Second),
		InsecureTLS:   getBool("LSCTL_INSECURE_TLS", true),
		LogLevel:      ParseLevel(getEnv("LSCTL_LOG_LEVEL", "info")),
	}
}

// ParseLevel maps debug|info|warn|error to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// Gets the env by key or fallbacks
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		slog.Warn("Invalid duration, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return d
}

func getBool(key string, fallback bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}

	b, err := strconv.ParseBool(raw)
	if err != nil {
		slog.Warn("Invalid bool, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return b
}
