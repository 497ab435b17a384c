// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"savoro/internal/domain/entity"

	"github.com/google/uuid"
)

// SessionUsecase defines the interface for managing a user's active device sessions.
type SessionUsecase interface {
	// ListSessions returns the user's unexpired sessions, newest first.
	ListSessions(ctx context.Context, userID uuid.UUID) ([]entity.RefreshSession, error)

	// RevokeSession removes one session by its id.
	RevokeSession(ctx context.Context, userID, sessionID uuid.UUID) error

	// RevokeAllSessions removes every session, logging the user out everywhere.
	RevokeAllSessions(ctx context.Context, userID uuid.UUID) (int64, error)

	// CleanupExpiredSessions prunes expired session rows and reports the count.
	CleanupExpiredSessions(ctx context.Context) (int64, error)
}
