package log

import (
	"context"
	"log/slog"
)

// Guest log levels as passed to the log import.
const (
	GuestDebug int32 = 0
	GuestInfo  int32 = 1
	GuestWarn  int32 = 2
	GuestError int32 = 3
)

// GuestLevel maps a guest level to slog. Unknown levels log at info.
func GuestLevel(level int32) slog.Level {
	switch level {
	case GuestDebug:
		return slog.LevelDebug
	case GuestWarn:
		return slog.LevelWarn
	case GuestError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GuestLogger tags records as coming from the guest.
func GuestLogger(base *slog.Logger) *slog.Logger {
	if base == nil {
		base = slog.Default()
	}
	return base.With("source", "guest")
}

// LogGuest logs msg from the guest at its mapped level.
func LogGuest(ctx context.Context, logger *slog.Logger, level int32, msg string) {
	logger.Log(ctx, GuestLevel(level), msg)
}
