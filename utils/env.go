package utils

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// LoadEnv loads .env from the working directory. Variables already set in
// the environment win.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Debug("no .env file found, continuing")
			return
		}
		slog.Warn("failed to load .env", "error", err)
	}
}

// InitSlog configures slog based on LOG_LEVEL environment variable.
// Supported levels: debug, info, warn, error
func InitSlog() {
	if logLevel, ok := os.LookupEnv("LOG_LEVEL"); ok {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: ParseLevel(logLevel),
		})
		slog.SetDefault(slog.New(handler))
	}
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
