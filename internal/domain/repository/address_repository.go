package repository

import (
	"context"
	"errors"

	"savoro/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrAddressNotFound is returned when no address matches the lookup within
// the owner's address book.
var ErrAddressNotFound = errors.New("address not found")

// AddressRepository manages a user's delivery address book. Lookups are always
// scoped by owner so one user can never read or mutate another's addresses.
type AddressRepository interface {
	// Create persists a new address.
	Create(ctx context.Context, address *entity.Address) error

	// FindByID loads one address owned by userID.
	FindByID(ctx context.Context, userID uuid.UUID, addressID uuid.UUID) (*entity.Address, error)

	// FindByUserID lists the user's addresses, default first then newest.
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]entity.Address, error)

	// Update persists changes to an existing address.
	Update(ctx context.Context, address *entity.Address) error

	// Delete removes one address owned by userID.
	Delete(ctx context.Context, userID uuid.UUID, addressID uuid.UUID) error

	// ClearDefault unsets the default flag on every address of the user.
	ClearDefault(ctx context.Context, userID uuid.UUID) error

	// SetDefault marks one address as the default. Callers clear the old
	// default first inside the same transaction.
	SetDefault(ctx context.Context, userID uuid.UUID, addressID uuid.UUID) error

	// FindNewestExcept returns the most recently created address of the user
	// other than excludeID, or ErrAddressNotFound when none remains. Used to
	// promote a successor after the default address is deleted.
	FindNewestExcept(ctx context.Context, userID uuid.UUID, excludeID uuid.UUID) (*entity.Address, error)
}
