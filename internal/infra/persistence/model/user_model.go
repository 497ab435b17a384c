// Package model holds the GORM persistence structs mirroring the database schema.
package model

import (
	"time"

	"github.com/google/uuid"
)

// UserModel mirrors the 'users' table. PostgreSQL generates UUIDs via uuid_generate_v7().
type UserModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	Name            string    `gorm:"type:varchar(100);not null"`
	Email           string    `gorm:"type:varchar(255);unique;not null"`
	Phone           string    `gorm:"type:varchar(20);unique;not null"`
	Role            string    `gorm:"type:varchar(32);not null;default:'customer'"`
	Avatar          string    `gorm:"type:text"`
	IsActive        bool      `gorm:"not null;default:true"`
	IsEmailVerified bool      `gorm:"not null;default:false"`
	IsPhoneVerified bool      `gorm:"not null;default:false"`
	LoyaltyPoints   int       `gorm:"not null;default:0"`
	LastLoginAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Credential      *CredentialModel      `gorm:"foreignKey:UserID"`
	RefreshSessions []RefreshSessionModel `gorm:"foreignKey:UserID"`
	Addresses       []AddressModel        `gorm:"foreignKey:UserID"`
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}
