// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// AddressLabel classifies an address in the user's address book.
type AddressLabel string

const (
	// AddressLabelHome marks a residential address.
	AddressLabelHome AddressLabel = "home"
	// AddressLabelWork marks a workplace address.
	AddressLabelWork AddressLabel = "work"
	// AddressLabelOther is the default catch-all label.
	AddressLabelOther AddressLabel = "other"
)

// IsValid checks if the AddressLabel is a known value.
func (l AddressLabel) IsValid() bool {
	switch l {
	case AddressLabelHome, AddressLabelWork, AddressLabelOther:
		return true
	default:
		return false
	}
}

// Address is one entry in a user's delivery address book.
// Invariant: at most one address per user has IsDefault set.
type Address struct {
	ID           uuid.UUID    `json:"id"`
	UserID       uuid.UUID    `json:"userId"`
	Label        AddressLabel `json:"label"`
	Line1        string       `json:"line1"`
	Line2        string       `json:"line2,omitempty"`
	City         string       `json:"city"`
	State        string       `json:"state"`
	Pincode      string       `json:"pincode"` // 6-digit postal code.
	Country      string       `json:"country"`
	Latitude     float64      `json:"latitude"`
	Longitude    float64      `json:"longitude"`
	ContactName  string       `json:"contactName,omitempty"`
	ContactPhone string       `json:"contactPhone,omitempty"`
	IsDefault    bool         `json:"isDefault"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}
