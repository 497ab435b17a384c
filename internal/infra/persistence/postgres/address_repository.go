package postgres

import (
	"context"

	"savoro/internal/domain/entity"
	domainerrors "savoro/internal/domain/errors"
	"savoro/internal/domain/repository"
	"savoro/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// addressRepository implements the domain.AddressRepository interface using GORM.
// Every query is scoped by user_id, so ownership is enforced at the SQL level.
type addressRepository struct {
	db *gorm.DB
}

// NewAddressRepository is the constructor for addressRepository.
func NewAddressRepository(db *gorm.DB) repository.AddressRepository {
	return &addressRepository{db: db}
}

// Create persists a new address.
func (repo *addressRepository) Create(ctx context.Context, address *entity.Address) error {
	addressM := fromAddressDomain(address)

	if err := repo.db.WithContext(ctx).Create(addressM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.NewDatabaseExecuteError(err, "address references unknown user")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required address information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create address")
	}

	address.ID = addressM.ID
	address.CreatedAt = addressM.CreatedAt
	address.UpdatedAt = addressM.UpdatedAt

	return nil
}

// FindByID loads one address owned by userID.
func (repo *addressRepository) FindByID(ctx context.Context, userID uuid.UUID, addressID uuid.UUID) (*entity.Address, error) {
	var addressM model.AddressModel
	err := repo.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", addressID, userID).
		First(&addressM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAddressNotFound
		}

		return nil, errors.Wrap(err, "failed to find address by id")
	}

	return toAddressDomain(&addressM), nil
}

// FindByUserID lists the user's addresses, default first then newest.
func (repo *addressRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]entity.Address, error) {
	var addressModels []model.AddressModel
	err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC").
		Find(&addressModels).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list addresses by user id")
	}

	addresses := make([]entity.Address, 0, len(addressModels))
	for i := range addressModels {
		addresses = append(addresses, *toAddressDomain(&addressModels[i]))
	}

	return addresses, nil
}

// Update persists changes to an existing address.
func (repo *addressRepository) Update(ctx context.Context, address *entity.Address) error {
	// Column map instead of a struct so zero values (cleared line2, unset
	// default flag) are written through.
	result := repo.db.WithContext(ctx).
		Model(&model.AddressModel{}).
		Where("id = ? AND user_id = ?", address.ID, address.UserID).
		Updates(map[string]any{
			"label":         string(address.Label),
			"line1":         address.Line1,
			"line2":         address.Line2,
			"city":          address.City,
			"state":         address.State,
			"pincode":       address.Pincode,
			"country":       address.Country,
			"latitude":      address.Latitude,
			"longitude":     address.Longitude,
			"contact_name":  address.ContactName,
			"contact_phone": address.ContactPhone,
			"is_default":    address.IsDefault,
		})
	if result.Error != nil {
		if isNotNullConstraintViolation(result.Error) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required address information")
		}

		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update address")
	}
	if result.RowsAffected == 0 {
		return repository.ErrAddressNotFound
	}

	return nil
}

// Delete removes one address owned by userID.
func (repo *addressRepository) Delete(ctx context.Context, userID uuid.UUID, addressID uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", addressID, userID).
		Delete(&model.AddressModel{})
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to delete address")
	}
	if result.RowsAffected == 0 {
		return repository.ErrAddressNotFound
	}

	return nil
}

// ClearDefault unsets the default flag on every address of the user.
func (repo *addressRepository) ClearDefault(ctx context.Context, userID uuid.UUID) error {
	if err := repo.db.WithContext(ctx).
		Model(&model.AddressModel{}).
		Where("user_id = ? AND is_default", userID).
		Update("is_default", false).Error; err != nil {
		return errors.Wrap(err, "failed to clear default address")
	}

	return nil
}

// SetDefault marks one address as the default.
func (repo *addressRepository) SetDefault(ctx context.Context, userID uuid.UUID, addressID uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Model(&model.AddressModel{}).
		Where("id = ? AND user_id = ?", addressID, userID).
		Update("is_default", true)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to set default address")
	}
	if result.RowsAffected == 0 {
		return repository.ErrAddressNotFound
	}

	return nil
}

// FindNewestExcept returns the most recently created address other than excludeID.
func (repo *addressRepository) FindNewestExcept(ctx context.Context, userID uuid.UUID, excludeID uuid.UUID) (*entity.Address, error) {
	var addressM model.AddressModel
	err := repo.db.WithContext(ctx).
		Where("user_id = ? AND id <> ?", userID, excludeID).
		Order("created_at DESC").
		First(&addressM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAddressNotFound
		}

		return nil, errors.Wrap(err, "failed to find successor address")
	}

	return toAddressDomain(&addressM), nil
}

// --- Mapper Functions ---

// toAddressDomain converts a GORM AddressModel to a domain Address entity.
func toAddressDomain(data *model.AddressModel) *entity.Address {
	if data == nil {
		return nil
	}

	return &entity.Address{
		ID:           data.ID,
		UserID:       data.UserID,
		Label:        entity.AddressLabel(data.Label),
		Line1:        data.Line1,
		Line2:        data.Line2,
		City:         data.City,
		State:        data.State,
		Pincode:      data.Pincode,
		Country:      data.Country,
		Latitude:     data.Latitude,
		Longitude:    data.Longitude,
		ContactName:  data.ContactName,
		ContactPhone: data.ContactPhone,
		IsDefault:    data.IsDefault,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}
}

// fromAddressDomain converts a domain Address entity to a GORM AddressModel.
func fromAddressDomain(data *entity.Address) *model.AddressModel {
	if data == nil {
		return nil
	}

	return &model.AddressModel{
		ID:           data.ID,
		UserID:       data.UserID,
		Label:        string(data.Label),
		Line1:        data.Line1,
		Line2:        data.Line2,
		City:         data.City,
		State:        data.State,
		Pincode:      data.Pincode,
		Country:      data.Country,
		Latitude:     data.Latitude,
		Longitude:    data.Longitude,
		ContactName:  data.ContactName,
		ContactPhone: data.ContactPhone,
		IsDefault:    data.IsDefault,
	}
}
