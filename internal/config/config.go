package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Config holds runtime configuration, loaded from the environment.
type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	// RedisURL is the session store connection string. The API server
	// requires it; there is no in-process fallback store.
	RedisURL string

	// DataDir is where tavern content files live.
	DataDir string

	// LLM interpreter settings. An empty provider disables the primary
	// parse tier; the grammar fallback still works on its own.
	LLMProvider  string
	LLMAPIKey    string
	LLMModel     string
	LLMBaseURL   string
	ParseTimeout time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),
		RedisURL:    os.Getenv("REDIS_URL"),
		DataDir:     getEnv("DATA_DIR", "./data"),
		LLMProvider: strings.ToLower(os.Getenv("LLM_PROVIDER")),
		LLMAPIKey:   os.Getenv("LLM_API_KEY"),
		LLMModel:    getEnv("LLM_MODEL", "llama-3.3-70b"),
		LLMBaseURL:  getEnv("LLM_BASE_URL", "https://api.venice.ai/api/v1"),
	}

	timeout := getEnv("PARSE_TIMEOUT", "3s")
	d, err := time.ParseDuration(timeout)
	if err != nil || d <= 0 {
		return nil, fmt.Errorf("invalid PARSE_TIMEOUT %q", timeout)
	}
	cfg.ParseTimeout = d

	if cfg.LLMProvider != "" && cfg.LLMAPIKey == "" {
		return nil, fmt.Errorf("LLM_API_KEY is required when LLM_PROVIDER is set")
	}

	return cfg, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
