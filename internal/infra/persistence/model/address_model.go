package model

import (
	"time"

	"github.com/google/uuid"
)

// AddressModel is the GORM-specific struct for the 'addresses' table.
type AddressModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index:idx_addresses_on_user"`
	Label        string    `gorm:"type:varchar(32);not null"`
	Line1        string    `gorm:"type:varchar(255);not null"`
	Line2        string    `gorm:"type:varchar(255)"`
	City         string    `gorm:"type:varchar(100);not null"`
	State        string    `gorm:"type:varchar(100)"`
	Pincode      string    `gorm:"type:varchar(16);not null"`
	Country      string    `gorm:"type:varchar(100);not null"`
	Latitude     float64   `gorm:"type:decimal(10,8)"`
	Longitude    float64   `gorm:"type:decimal(11,8)"`
	ContactName  string    `gorm:"type:varchar(100)"`
	ContactPhone string    `gorm:"type:varchar(20)"`
	IsDefault    bool      `gorm:"not null;default:false"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName explicitly sets the table name for GORM.
func (AddressModel) TableName() string {
	return "addresses"
}
