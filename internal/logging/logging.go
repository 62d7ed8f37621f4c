package logging

import (
	"log/slog"
	"os"
)

// Init installs the default slog handler. The level comes from LOG_LEVEL;
// the client binary defaults to errors only so log lines never fight the TUI
// for the terminal, while the server passes serverDefault for info.
func Init(defaultLevel slog.Level) {
	level := defaultLevel

	if l, ok := os.LookupEnv("LOG_LEVEL"); ok {
		switch l {
		case "dev", "development", "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "warn", "warning":
			level = slog.LevelWarn
		case "error", "production", "prod":
			level = slog.LevelError
		}
	}

	logger := slog.New(
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		}),
	)
	slog.SetDefault(logger)
}
