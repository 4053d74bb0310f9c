package logger

import (
	"log/slog"
	"time"
)

// LogUserSettled logs the outcome of one user's settlement.
func LogUserSettled(userID string, points int64, duration time.Duration) {
	slog.Info("User settled",
		slog.String("type", "run"),
		slog.String("user_id", userID),
		slog.Int64("points", points),
		slog.Duration("took", duration))
}

// LogUserFailed logs a per-user failure without aborting the run.
func LogUserFailed(userID string, err error) {
	slog.Error("User settlement failed",
		slog.String("type", "run"),
		slog.String("user_id", userID),
		slog.Any("error", err))
}

// LogError logs error events
func LogError(msg string, err error, attrs ...any) {
	baseAttrs := []any{
		slog.String("type", "error"),
		slog.Any("error", err),
	}
	slog.Error(msg, append(baseAttrs, attrs...)...)
}
