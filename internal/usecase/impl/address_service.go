package impl

import (
	"context"
	"log/slog"

	deliverycontext "savoro/internal/delivery/context"
	"savoro/internal/domain/entity"
	domainerrors "savoro/internal/domain/errors"
	"savoro/internal/domain/repository"
	"savoro/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// addressService implements the AddressUsecase interface.
// The default-exclusivity invariant (at most one default per user) is kept by
// always clearing existing defaults inside the same transaction that sets one.
type addressService struct {
	txManager repository.TransactionManager
	logger    *slog.Logger
}

// NewAddressService is the constructor for addressService.
func NewAddressService(
	txManager repository.TransactionManager,
	logger *slog.Logger,
) usecase.AddressUsecase {
	return &addressService{
		txManager: txManager,
		logger:    logger,
	}
}

func (srv *addressService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func addressFromInput(userID uuid.UUID, input *usecase.AddressInput) (*entity.Address, error) {
	label := entity.AddressLabel(input.Label)
	if input.Label == "" {
		label = entity.AddressLabelOther
	}
	if !label.IsValid() {
		return nil, domainerrors.ErrValidationFailed.WithDetails("unknown address label")
	}

	return &entity.Address{
		UserID:       userID,
		Label:        label,
		Line1:        input.Line1,
		Line2:        input.Line2,
		City:         input.City,
		State:        input.State,
		Pincode:      input.Pincode,
		Country:      input.Country,
		Latitude:     input.Latitude,
		Longitude:    input.Longitude,
		ContactName:  input.ContactName,
		ContactPhone: input.ContactPhone,
		IsDefault:    input.IsDefault,
	}, nil
}

// CreateAddress adds an address to the user's book. The first address always
// becomes the default.
func (srv *addressService) CreateAddress(ctx context.Context, userID uuid.UUID, input *usecase.AddressInput) (*entity.Address, error) {
	address, err := addressFromInput(userID, input)
	if err != nil {
		return nil, err
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		addressRepo := repoFactory.NewAddressRepository()

		existing, err := addressRepo.FindByUserID(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "failed to list addresses")
		}
		if len(existing) == 0 {
			address.IsDefault = true
		}

		if address.IsDefault {
			if err := addressRepo.ClearDefault(ctx, userID); err != nil {
				return errors.WithStack(err)
			}
		}

		return errors.WithStack(addressRepo.Create(ctx, address))
	})
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Debug("Address created",
		slog.String("userID", userID.String()),
		slog.String("addressID", address.ID.String()),
	)

	return address, nil
}

// ListAddresses returns the user's address book, default first.
func (srv *addressService) ListAddresses(ctx context.Context, userID uuid.UUID) ([]entity.Address, error) {
	var addresses []entity.Address

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.NewAddressRepository().FindByUserID(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "failed to list addresses")
		}
		addresses = found

		return nil
	})
	if err != nil {
		return nil, err
	}

	return addresses, nil
}

// GetAddress loads one address owned by the user.
func (srv *addressService) GetAddress(ctx context.Context, userID, addressID uuid.UUID) (*entity.Address, error) {
	var address *entity.Address

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.NewAddressRepository().FindByID(ctx, userID, addressID)
		if err != nil {
			if errors.Is(err, repository.ErrAddressNotFound) {
				return domainerrors.ErrAddressNotFound
			}

			return errors.Wrap(err, "failed to find address")
		}
		address = found

		return nil
	})
	if err != nil {
		return nil, err
	}

	return address, nil
}

// UpdateAddress replaces the mutable fields of an address.
func (srv *addressService) UpdateAddress(ctx context.Context, userID, addressID uuid.UUID, input *usecase.AddressInput) (*entity.Address, error) {
	address, err := addressFromInput(userID, input)
	if err != nil {
		return nil, err
	}
	address.ID = addressID

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		addressRepo := repoFactory.NewAddressRepository()

		current, err := addressRepo.FindByID(ctx, userID, addressID)
		if err != nil {
			if errors.Is(err, repository.ErrAddressNotFound) {
				return domainerrors.ErrAddressNotFound
			}

			return errors.Wrap(err, "failed to find address")
		}

		// Demoting the only default is allowed; promoting clears siblings.
		if address.IsDefault && !current.IsDefault {
			if err := addressRepo.ClearDefault(ctx, userID); err != nil {
				return errors.WithStack(err)
			}
		}

		if err := addressRepo.Update(ctx, address); err != nil {
			if errors.Is(err, repository.ErrAddressNotFound) {
				return domainerrors.ErrAddressNotFound
			}

			return errors.WithStack(err)
		}
		address.CreatedAt = current.CreatedAt

		return nil
	})
	if err != nil {
		return nil, err
	}

	return address, nil
}

// DeleteAddress removes an address. Deleting the default promotes the newest
// remaining address so the user always keeps a usable default.
func (srv *addressService) DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		addressRepo := repoFactory.NewAddressRepository()

		current, err := addressRepo.FindByID(ctx, userID, addressID)
		if err != nil {
			if errors.Is(err, repository.ErrAddressNotFound) {
				return domainerrors.ErrAddressNotFound
			}

			return errors.Wrap(err, "failed to find address")
		}

		if err := addressRepo.Delete(ctx, userID, addressID); err != nil {
			if errors.Is(err, repository.ErrAddressNotFound) {
				return domainerrors.ErrAddressNotFound
			}

			return errors.WithStack(err)
		}

		if current.IsDefault {
			successor, err := addressRepo.FindNewestExcept(ctx, userID, addressID)
			if err != nil {
				if errors.Is(err, repository.ErrAddressNotFound) {
					// Book is empty now, nothing to promote.
					return nil
				}

				return errors.Wrap(err, "failed to find successor address")
			}
			if err := addressRepo.SetDefault(ctx, userID, successor.ID); err != nil {
				return errors.WithStack(err)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	srv.log(ctx).Debug("Address deleted",
		slog.String("userID", userID.String()),
		slog.String("addressID", addressID.String()),
	)

	return nil
}

// SetDefaultAddress makes one address the default, clearing any previous one.
func (srv *addressService) SetDefaultAddress(ctx context.Context, userID, addressID uuid.UUID) (*entity.Address, error) {
	var address *entity.Address

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		addressRepo := repoFactory.NewAddressRepository()

		found, err := addressRepo.FindByID(ctx, userID, addressID)
		if err != nil {
			if errors.Is(err, repository.ErrAddressNotFound) {
				return domainerrors.ErrAddressNotFound
			}

			return errors.Wrap(err, "failed to find address")
		}

		if err := addressRepo.ClearDefault(ctx, userID); err != nil {
			return errors.WithStack(err)
		}
		if err := addressRepo.SetDefault(ctx, userID, addressID); err != nil {
			return errors.WithStack(err)
		}
		found.IsDefault = true
		address = found

		return nil
	})
	if err != nil {
		return nil, err
	}

	return address, nil
}
