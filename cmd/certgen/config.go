package main

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/goldsam/cert-generator/internal/domain/fixture"
	"github.com/goldsam/cert-generator/internal/runtime"
)

type appConfig struct {
	Image          string
	Runtime        string
	Platform       string
	StartupTimeout time.Duration
	LogLevel       slog.Level
}

func loadAppConfig() appConfig {
	return appConfig{
		Image:          envOrDefault("CERTGEN_IMAGE", fixture.DefaultImage),
		Runtime:        envOrDefault("CERTGEN_RUNTIME", runtime.DefaultName),
		Platform:       os.Getenv("CERTGEN_PLATFORM"),
		StartupTimeout: parseDuration(os.Getenv("CERTGEN_STARTUP_TIMEOUT"), fixture.DefaultStartupTimeout),
		LogLevel:       parseLevel(os.Getenv("CERTGEN_LOG_LEVEL")),
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseLevel(raw string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		return slog.LevelInfo
	}
	return level
}
