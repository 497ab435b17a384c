// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the core identity record, one per registered person.
// Secret material (password hash, verification tokens) lives on Credential,
// so a User can always be serialized to clients as-is.
type User struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`  // Unique, stored lowercased.
	Phone           string     `json:"phone"`  // Unique, 10-digit.
	Role            Role       `json:"role"`   // customer, restaurant_owner, delivery_partner or admin.
	Avatar          string     `json:"avatar,omitempty"`
	IsActive        bool       `json:"isActive"`
	IsEmailVerified bool       `json:"isEmailVerified"`
	IsPhoneVerified bool       `json:"isPhoneVerified"`
	LoyaltyPoints   int        `json:"loyaltyPoints"`
	LastLoginAt     *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}
