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

// credentialRepository implements the domain.CredentialRepository interface using GORM.
// All slot mutations are single conditional UPDATEs: RowsAffected tells the
// caller whether it won the race for the secret.
type credentialRepository struct {
	db *gorm.DB
}

// NewCredentialRepository is the constructor for credentialRepository.
func NewCredentialRepository(db *gorm.DB) repository.CredentialRepository {
	return &credentialRepository{db: db}
}

// Create persists the credential record for a newly registered user.
func (repo *credentialRepository) Create(ctx context.Context, cred *entity.Credential) error {
	credM := fromCredentialDomain(cred)

	if err := repo.db.WithContext(ctx).Create(credM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrUserAlreadyExists
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.NewDatabaseExecuteError(err, "credential references unknown user")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create credential")
	}

	cred.CreatedAt = credM.CreatedAt
	cred.UpdatedAt = credM.UpdatedAt

	return nil
}

// FindByUserID loads the credential record, including all verification slots.
func (repo *credentialRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Credential, error) {
	var credM model.CredentialModel
	err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&credM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCredentialNotFound
		}

		return nil, errors.Wrap(err, "failed to find credential by user id")
	}

	return toCredentialDomain(&credM), nil
}

// FindByResetTokenHash finds the credential whose reset slot holds the given
// hash and has not yet expired.
func (repo *credentialRepository) FindByResetTokenHash(ctx context.Context, tokenHash string) (*entity.Credential, error) {
	return repo.findBySlot(ctx, "reset_token_hash = ? AND reset_token_expires_at > ?", tokenHash)
}

// FindByEmailTokenHash finds the credential whose email-verification slot
// holds the given hash and has not yet expired.
func (repo *credentialRepository) FindByEmailTokenHash(ctx context.Context, tokenHash string) (*entity.Credential, error) {
	return repo.findBySlot(ctx, "email_token_hash = ? AND email_token_expires_at > ?", tokenHash)
}

func (repo *credentialRepository) findBySlot(ctx context.Context, cond, tokenHash string) (*entity.Credential, error) {
	var credM model.CredentialModel
	err := repo.db.WithContext(ctx).
		Where(cond, tokenHash, time.Now()).
		First(&credM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCredentialNotFound
		}

		return nil, errors.Wrap(err, "failed to find credential by token hash")
	}

	return toCredentialDomain(&credM), nil
}

// StoreResetToken overwrites the reset slot with a fresh hash and expiry.
func (repo *credentialRepository) StoreResetToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	return repo.storeSlot(ctx, userID, map[string]any{
		"reset_token_hash":       tokenHash,
		"reset_token_expires_at": expiresAt,
	})
}

// StoreEmailToken overwrites the email-verification slot.
func (repo *credentialRepository) StoreEmailToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	return repo.storeSlot(ctx, userID, map[string]any{
		"email_token_hash":       tokenHash,
		"email_token_expires_at": expiresAt,
	})
}

// StoreOTP overwrites the OTP slot.
func (repo *credentialRepository) StoreOTP(ctx context.Context, userID uuid.UUID, otpHash string, expiresAt time.Time) error {
	return repo.storeSlot(ctx, userID, map[string]any{
		"otp_hash":       otpHash,
		"otp_expires_at": expiresAt,
	})
}

func (repo *credentialRepository) storeSlot(ctx context.Context, userID uuid.UUID, updates map[string]any) error {
	result := repo.db.WithContext(ctx).
		Model(&model.CredentialModel{}).
		Where("user_id = ?", userID).
		Updates(updates)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to store verification secret")
	}
	if result.RowsAffected == 0 {
		return repository.ErrCredentialNotFound
	}

	return nil
}

// ConsumeEmailToken clears the email-verification slot on the condition that
// it still holds tokenHash unexpired.
func (repo *credentialRepository) ConsumeEmailToken(ctx context.Context, userID uuid.UUID, tokenHash string) error {
	result := repo.db.WithContext(ctx).
		Model(&model.CredentialModel{}).
		Where("user_id = ? AND email_token_hash = ? AND email_token_expires_at > ?", userID, tokenHash, time.Now()).
		Updates(map[string]any{
			"email_token_hash":       nil,
			"email_token_expires_at": nil,
		})
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to consume email token")
	}
	if result.RowsAffected == 0 {
		return repository.ErrVerificationSlotStale
	}

	return nil
}

// ConsumeOTP clears the OTP slot on the condition that it still holds otpHash unexpired.
func (repo *credentialRepository) ConsumeOTP(ctx context.Context, userID uuid.UUID, otpHash string) error {
	result := repo.db.WithContext(ctx).
		Model(&model.CredentialModel{}).
		Where("user_id = ? AND otp_hash = ? AND otp_expires_at > ?", userID, otpHash, time.Now()).
		Updates(map[string]any{
			"otp_hash":       nil,
			"otp_expires_at": nil,
		})
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to consume otp")
	}
	if result.RowsAffected == 0 {
		return repository.ErrVerificationSlotStale
	}

	return nil
}

// ConsumeResetToken replaces the password hash and clears the reset slot in
// one conditional statement keyed on tokenHash.
func (repo *credentialRepository) ConsumeResetToken(ctx context.Context, userID uuid.UUID, tokenHash, newPasswordHash string) error {
	result := repo.db.WithContext(ctx).
		Model(&model.CredentialModel{}).
		Where("user_id = ? AND reset_token_hash = ? AND reset_token_expires_at > ?", userID, tokenHash, time.Now()).
		Updates(map[string]any{
			"password_hash":          newPasswordHash,
			"reset_token_hash":       nil,
			"reset_token_expires_at": nil,
		})
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to consume reset token")
	}
	if result.RowsAffected == 0 {
		return repository.ErrVerificationSlotStale
	}

	return nil
}

// --- Mapper Functions ---

// toCredentialDomain converts a GORM CredentialModel to a domain Credential entity.
func toCredentialDomain(data *model.CredentialModel) *entity.Credential {
	if data == nil {
		return nil
	}

	return &entity.Credential{
		UserID:              data.UserID,
		PasswordHash:        data.PasswordHash,
		ResetTokenHash:      derefString(data.ResetTokenHash),
		ResetTokenExpiresAt: data.ResetTokenExpiresAt,
		OTPHash:             derefString(data.OTPHash),
		OTPExpiresAt:        data.OTPExpiresAt,
		EmailTokenHash:      derefString(data.EmailTokenHash),
		EmailTokenExpiresAt: data.EmailTokenExpiresAt,
		CreatedAt:           data.CreatedAt,
		UpdatedAt:           data.UpdatedAt,
	}
}

// fromCredentialDomain converts a domain Credential entity to a GORM CredentialModel.
func fromCredentialDomain(data *entity.Credential) *model.CredentialModel {
	if data == nil {
		return nil
	}

	return &model.CredentialModel{
		UserID:              data.UserID,
		PasswordHash:        data.PasswordHash,
		ResetTokenHash:      nilIfEmpty(data.ResetTokenHash),
		ResetTokenExpiresAt: data.ResetTokenExpiresAt,
		OTPHash:             nilIfEmpty(data.OTPHash),
		OTPExpiresAt:        data.OTPExpiresAt,
		EmailTokenHash:      nilIfEmpty(data.EmailTokenHash),
		EmailTokenExpiresAt: data.EmailTokenExpiresAt,
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}
