// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Credential holds a user's secret material: the bcrypt password hash and the
// three independent verification slots (password reset, OTP, email
// verification). Each slot keeps only a SHA-256 hash of the raw secret plus
// its expiry; issuing a new secret overwrites the slot, which implicitly
// invalidates the previous one.
type Credential struct {
	UserID       uuid.UUID
	PasswordHash string // bcrypt hash, never exposed or logged.

	ResetTokenHash      string
	ResetTokenExpiresAt *time.Time

	OTPHash      string
	OTPExpiresAt *time.Time

	EmailTokenHash      string
	EmailTokenExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RefreshSession represents one long-lived, authorized device session.
// The raw refresh token is a signed JWT handed to the client; only its
// SHA-256 hash is stored, and removal of the row is what revokes the session.
type RefreshSession struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	TokenHash string    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}
