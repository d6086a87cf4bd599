package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel maps a LOG_LEVEL string to a slog level. Unknown values map to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// New builds a JSON logger writing to w. A nil writer means stdout.
func New(level string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})
	return slog.New(handler)
}

// Setup installs a JSON stdout logger as the process default and returns it.
func Setup(level, env string) *slog.Logger {
	logger := New(level, os.Stdout).With("env", env)
	slog.SetDefault(logger)
	return logger
}

// RecoveryLogger adapts slog to the Println logger expected by
// gorilla/handlers.RecoveryHandler.
type RecoveryLogger struct{}

func (RecoveryLogger) Println(v ...any) {
	slog.Error("recovered from panic", "panic", strings.TrimSpace(fmt.Sprintln(v...)))
}
