package repository

import (
	"context"
	"errors"
	"time"

	"savoro/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when no refresh session matches the lookup.
// During refresh this doubles as the reuse signal: a hash that is absent was
// either never issued or has already been rotated away.
var ErrSessionNotFound = errors.New("refresh session not found")

// SessionRepository manages the server-side refresh-session records. A session
// row existing is what keeps a refresh token valid; revocation is deletion.
type SessionRepository interface {
	// Create persists a new refresh session.
	Create(ctx context.Context, session *entity.RefreshSession) error

	// FindByTokenHash finds an unexpired session by its token hash.
	FindByTokenHash(ctx context.Context, tokenHash string) (*entity.RefreshSession, error)

	// FindByUserID lists all unexpired sessions for a user, newest first.
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]entity.RefreshSession, error)

	// DeleteByTokenHash removes the session holding tokenHash. Returns
	// ErrSessionNotFound when no row matched, which refresh treats as reuse.
	DeleteByTokenHash(ctx context.Context, userID uuid.UUID, tokenHash string) error

	// DeleteByID removes one session owned by userID.
	DeleteByID(ctx context.Context, userID uuid.UUID, sessionID uuid.UUID) error

	// DeleteByUserID removes every session for a user and reports how many
	// were revoked.
	DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error)

	// DeleteExpired prunes sessions whose expiry is before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
