package model

import (
	"time"

	"github.com/google/uuid"
)

// CredentialModel mirrors the 'user_credentials' table. It keeps all secret
// material out of the users table: the password hash plus the three
// single-use verification slots, each stored as a SHA-256 digest.
type CredentialModel struct {
	UserID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`

	ResetTokenHash      *string `gorm:"type:varchar(64);index"`
	ResetTokenExpiresAt *time.Time

	OTPHash      *string `gorm:"type:varchar(64)"`
	OTPExpiresAt *time.Time

	EmailTokenHash      *string `gorm:"type:varchar(64);index"`
	EmailTokenExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (CredentialModel) TableName() string {
	return "user_credentials"
}

// RefreshSessionModel mirrors the 'refresh_sessions' table. A row's existence
// is what keeps a refresh token valid.
type RefreshSessionModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	TokenHash string    `gorm:"type:varchar(64);unique;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (RefreshSessionModel) TableName() string {
	return "refresh_sessions"
}
