package logger

import (
	"log/slog"
	"os"
)

// New returns the root structured logger. Components receive it through
// their constructors rather than the slog default.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
