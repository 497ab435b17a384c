package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "savoro/internal/delivery/context"
	"savoro/internal/domain/entity"
	domainerrors "savoro/internal/domain/errors"
	"savoro/internal/domain/repository"
	"savoro/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// sessionService implements the SessionUsecase interface.
type sessionService struct {
	txManager repository.TransactionManager
	logger    *slog.Logger
}

// NewSessionService is the constructor for sessionService.
func NewSessionService(
	txManager repository.TransactionManager,
	logger *slog.Logger,
) usecase.SessionUsecase {
	return &sessionService{
		txManager: txManager,
		logger:    logger,
	}
}

func (srv *sessionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// ListSessions returns the user's unexpired sessions, newest first.
func (srv *sessionService) ListSessions(ctx context.Context, userID uuid.UUID) ([]entity.RefreshSession, error) {
	var sessions []entity.RefreshSession

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.NewSessionRepository().FindByUserID(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "failed to list sessions")
		}
		sessions = found

		return nil
	})
	if err != nil {
		return nil, err
	}

	return sessions, nil
}

// RevokeSession removes one session by its id.
func (srv *sessionService) RevokeSession(ctx context.Context, userID, sessionID uuid.UUID) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.NewSessionRepository().DeleteByID(ctx, userID, sessionID); err != nil {
			if errors.Is(err, repository.ErrSessionNotFound) {
				return domainerrors.ErrSessionNotFound
			}

			return errors.Wrap(err, "failed to revoke session")
		}

		return nil
	})
	if err != nil {
		return err
	}

	srv.log(ctx).Info("Session revoked",
		slog.String("userID", userID.String()),
		slog.String("sessionID", sessionID.String()),
	)

	return nil
}

// RevokeAllSessions removes every session, logging the user out everywhere.
func (srv *sessionService) RevokeAllSessions(ctx context.Context, userID uuid.UUID) (int64, error) {
	var revoked int64

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		count, err := repoFactory.NewSessionRepository().DeleteByUserID(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "failed to revoke all sessions")
		}
		revoked = count

		return nil
	})
	if err != nil {
		return 0, err
	}

	srv.log(ctx).Info("All sessions revoked",
		slog.String("userID", userID.String()),
		slog.Int64("count", revoked),
	)

	return revoked, nil
}

// CleanupExpiredSessions prunes expired session rows.
func (srv *sessionService) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	var pruned int64

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		count, err := repoFactory.NewSessionRepository().DeleteExpired(ctx, time.Now())
		if err != nil {
			return errors.Wrap(err, "failed to prune expired sessions")
		}
		pruned = count

		return nil
	})
	if err != nil {
		return 0, err
	}

	if pruned > 0 {
		srv.log(ctx).Info("Expired sessions pruned", slog.Int64("count", pruned))
	}

	return pruned, nil
}
