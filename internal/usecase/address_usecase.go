// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"savoro/internal/domain/entity"

	"github.com/google/uuid"
)

// AddressInput defines the data required to create or replace an address.
type AddressInput struct {
	Label        string
	Line1        string
	Line2        string
	City         string
	State        string
	Pincode      string
	Country      string
	Latitude     float64
	Longitude    float64
	ContactName  string
	ContactPhone string
	IsDefault    bool
}

// AddressUsecase defines the interface for address-book operations.
// Invariant: at most one default address per user; deleting the default
// promotes the newest remaining address.
type AddressUsecase interface {
	CreateAddress(ctx context.Context, userID uuid.UUID, input *AddressInput) (*entity.Address, error)
	ListAddresses(ctx context.Context, userID uuid.UUID) ([]entity.Address, error)
	GetAddress(ctx context.Context, userID, addressID uuid.UUID) (*entity.Address, error)
	UpdateAddress(ctx context.Context, userID, addressID uuid.UUID, input *AddressInput) (*entity.Address, error)
	DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error
	SetDefaultAddress(ctx context.Context, userID, addressID uuid.UUID) (*entity.Address, error)
}
