package impl

import (
	"context"
	"log/slog"
	"time"

	"savoro/internal/usecase"
)

// SessionJanitor periodically prunes expired refresh sessions. Expiry is
// already enforced lazily at consumption; the sweep only keeps the table
// from growing without bound.
type SessionJanitor struct {
	sessions usecase.SessionUsecase
	interval time.Duration
	logger   *slog.Logger
}

// NewSessionJanitor is the constructor for SessionJanitor.
func NewSessionJanitor(sessions usecase.SessionUsecase, interval time.Duration, logger *slog.Logger) *SessionJanitor {
	return &SessionJanitor{
		sessions: sessions,
		interval: interval,
		logger:   logger,
	}
}

// Run sweeps once immediately, then on every tick until ctx is cancelled.
func (j *SessionJanitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		if _, err := j.sessions.CleanupExpiredSessions(ctx); err != nil {
			j.logger.Warn("Failed to prune expired sessions", slog.Any("error", err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
