// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"
	"errors"
	"time"

	"savoro/internal/domain/entity"

	"github.com/google/uuid"
)

// Domain-specific errors for credential persistence.
var (
	// ErrCredentialNotFound is returned when no credential record exists for a user.
	ErrCredentialNotFound = errors.New("credential not found")
	// ErrVerificationSlotStale is returned when a conditional slot mutation
	// matched zero rows: the secret was already consumed, overwritten or
	// expired. Only one of two concurrent consumers can win.
	ErrVerificationSlotStale = errors.New("verification slot already consumed or expired")
)

// CredentialRepository manages secret material: the password hash and the
// three single-use verification slots. Every slot mutation is one conditional
// statement so concurrent consumption of the same secret cannot both succeed.
type CredentialRepository interface {
	// Create persists the credential record for a newly registered user.
	Create(ctx context.Context, cred *entity.Credential) error

	// FindByUserID loads the credential record, including all slots.
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Credential, error)

	// FindByResetTokenHash finds the credential whose reset slot holds the
	// given hash and has not yet expired.
	FindByResetTokenHash(ctx context.Context, tokenHash string) (*entity.Credential, error)

	// FindByEmailTokenHash finds the credential whose email-verification slot
	// holds the given hash and has not yet expired.
	FindByEmailTokenHash(ctx context.Context, tokenHash string) (*entity.Credential, error)

	// StoreResetToken overwrites the reset slot with a fresh hash and expiry.
	StoreResetToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error

	// StoreEmailToken overwrites the email-verification slot.
	StoreEmailToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error

	// StoreOTP overwrites the OTP slot.
	StoreOTP(ctx context.Context, userID uuid.UUID, otpHash string, expiresAt time.Time) error

	// ConsumeEmailToken clears the email-verification slot on the condition
	// that it still holds tokenHash unexpired; returns ErrVerificationSlotStale otherwise.
	ConsumeEmailToken(ctx context.Context, userID uuid.UUID, tokenHash string) error

	// ConsumeOTP clears the OTP slot on the condition that it still holds
	// otpHash unexpired; returns ErrVerificationSlotStale otherwise.
	ConsumeOTP(ctx context.Context, userID uuid.UUID, otpHash string) error

	// ConsumeResetToken replaces the password hash and clears the reset slot
	// in one conditional statement keyed on tokenHash.
	ConsumeResetToken(ctx context.Context, userID uuid.UUID, tokenHash, newPasswordHash string) error
}
