package postgres

import (
	"context"
	"time"

	"savoro/internal/domain/entity"
	domainerrors "savoro/internal/domain/errors"
	"savoro/internal/domain/repository"
	"savoro/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// sessionRepository implements the domain.SessionRepository interface using GORM.
type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository is the constructor for sessionRepository.
func NewSessionRepository(db *gorm.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

// Create persists a new refresh session.
func (repo *sessionRepository) Create(ctx context.Context, session *entity.RefreshSession) error {
	sessionM := fromRefreshSessionDomain(session)

	if err := repo.db.WithContext(ctx).Create(sessionM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			// Hash collision across sessions means the same token was issued twice.
			return domainerrors.ErrRefreshTokenInvalid
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.NewDatabaseExecuteError(err, "session references unknown user")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create refresh session")
	}

	session.ID = sessionM.ID
	session.CreatedAt = sessionM.CreatedAt

	return nil
}

// FindByTokenHash retrieves an unexpired session by its stored hash.
func (repo *sessionRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*entity.RefreshSession, error) {
	var sessionM model.RefreshSessionModel
	err := repo.db.WithContext(ctx).
		Where("token_hash = ? AND expires_at > ?", tokenHash, time.Now()).
		First(&sessionM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrSessionNotFound
		}

		return nil, errors.Wrap(err, "failed to find session by token hash")
	}

	return toRefreshSessionDomain(&sessionM), nil
}

// FindByUserID lists all unexpired sessions for a user, newest first.
func (repo *sessionRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]entity.RefreshSession, error) {
	var sessionModels []model.RefreshSessionModel
	err := repo.db.WithContext(ctx).
		Where("user_id = ? AND expires_at > ?", userID, time.Now()).
		Order("created_at DESC").
		Find(&sessionModels).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list sessions by user id")
	}

	sessions := make([]entity.RefreshSession, 0, len(sessionModels))
	for i := range sessionModels {
		sessions = append(sessions, *toRefreshSessionDomain(&sessionModels[i]))
	}

	return sessions, nil
}

// DeleteByTokenHash removes the session holding tokenHash. Zero affected rows
// is surfaced as ErrSessionNotFound so refresh can treat it as token reuse.
func (repo *sessionRepository) DeleteByTokenHash(ctx context.Context, userID uuid.UUID, tokenHash string) error {
	result := repo.db.WithContext(ctx).
		Where("user_id = ? AND token_hash = ?", userID, tokenHash).
		Delete(&model.RefreshSessionModel{})
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to delete session by token hash")
	}
	if result.RowsAffected == 0 {
		return repository.ErrSessionNotFound
	}

	return nil
}

// DeleteByID removes one session owned by userID.
func (repo *sessionRepository) DeleteByID(ctx context.Context, userID uuid.UUID, sessionID uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", sessionID, userID).
		Delete(&model.RefreshSessionModel{})
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to delete session by id")
	}
	if result.RowsAffected == 0 {
		return repository.ErrSessionNotFound
	}

	return nil
}

// DeleteByUserID removes every session for a user.
func (repo *sessionRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.RefreshSessionModel{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to delete sessions by user id")
	}

	return result.RowsAffected, nil
}

// DeleteExpired prunes sessions whose expiry is before now.
func (repo *sessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := repo.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&model.RefreshSessionModel{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to delete expired sessions")
	}

	return result.RowsAffected, nil
}

// --- Mapper Functions ---

// toRefreshSessionDomain converts a GORM RefreshSessionModel to a domain RefreshSession entity.
func toRefreshSessionDomain(data *model.RefreshSessionModel) *entity.RefreshSession {
	if data == nil {
		return nil
	}

	return &entity.RefreshSession{
		ID:        data.ID,
		UserID:    data.UserID,
		TokenHash: data.TokenHash,
		ExpiresAt: data.ExpiresAt,
		CreatedAt: data.CreatedAt,
	}
}

// fromRefreshSessionDomain converts a domain RefreshSession entity to a GORM RefreshSessionModel.
func fromRefreshSessionDomain(data *entity.RefreshSession) *model.RefreshSessionModel {
	if data == nil {
		return nil
	}

	return &model.RefreshSessionModel{
		ID:        data.ID,
		UserID:    data.UserID,
		TokenHash: data.TokenHash,
		ExpiresAt: data.ExpiresAt,
		CreatedAt: data.CreatedAt,
	}
}
