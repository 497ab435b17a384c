package impl

import (
	"context"
	"testing"
	"time"

	"savoro/internal/domain/entity"
	domainerrors "savoro/internal/domain/errors"
	"savoro/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type addressFixtures struct {
	service usecase.AddressUsecase
	store   *memoryStore
	userID  uuid.UUID
}

func createTestAddressService() addressFixtures {
	store := newMemoryStore()
	user := seedUser(store, "asha@example.com", "9876543210", "Str0ng!Pass", true)

	return addressFixtures{
		service: NewAddressService(store, newDiscardLogger()),
		store:   store,
		userID:  user.ID,
	}
}

func homeAddress() *usecase.AddressInput {
	return &usecase.AddressInput{
		Label:   "home",
		Line1:   "14 Rose Villa",
		City:    "Pune",
		State:   "Maharashtra",
		Pincode: "411001",
		Country: "India",
	}
}

func workAddress() *usecase.AddressInput {
	return &usecase.AddressInput{
		Label:   "work",
		Line1:   "8th Floor, Trade Tower",
		City:    "Pune",
		State:   "Maharashtra",
		Pincode: "411014",
		Country: "India",
	}
}

func TestAddressService_CreateAddress_FirstBecomesDefault(t *testing.T) {
	fx := createTestAddressService()

	address, err := fx.service.CreateAddress(context.Background(), fx.userID, homeAddress())

	require.NoError(t, err)
	assert.True(t, address.IsDefault)
	assert.Equal(t, entity.AddressLabelHome, address.Label)
}

func TestAddressService_CreateAddress_DefaultExclusive(t *testing.T) {
	fx := createTestAddressService()
	ctx := context.Background()

	first, err := fx.service.CreateAddress(ctx, fx.userID, homeAddress())
	require.NoError(t, err)

	input := workAddress()
	input.IsDefault = true
	second, err := fx.service.CreateAddress(ctx, fx.userID, input)
	require.NoError(t, err)

	assert.True(t, second.IsDefault)
	assert.False(t, fx.store.addresses[first.ID].IsDefault)
	assertSingleDefault(t, fx.store, fx.userID)
}

func TestAddressService_CreateAddress_UnknownLabel(t *testing.T) {
	fx := createTestAddressService()

	input := homeAddress()
	input.Label = "vacation"
	_, err := fx.service.CreateAddress(context.Background(), fx.userID, input)

	require.ErrorIs(t, err, domainerrors.ErrValidationFailed)
}

func TestAddressService_CreateAddress_MissingLabelDefaultsToOther(t *testing.T) {
	fx := createTestAddressService()

	input := homeAddress()
	input.Label = ""
	address, err := fx.service.CreateAddress(context.Background(), fx.userID, input)

	require.NoError(t, err)
	assert.Equal(t, entity.AddressLabelOther, address.Label)
}

func TestAddressService_ListAddresses_DefaultFirst(t *testing.T) {
	fx := createTestAddressService()
	ctx := context.Background()

	first, err := fx.service.CreateAddress(ctx, fx.userID, homeAddress())
	require.NoError(t, err)
	// Stagger creation times so ordering is deterministic.
	fx.store.addresses[first.ID].CreatedAt = time.Now().Add(-time.Hour)

	_, err = fx.service.CreateAddress(ctx, fx.userID, workAddress())
	require.NoError(t, err)

	list, err := fx.service.ListAddresses(ctx, fx.userID)

	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[0].IsDefault)
	assert.Equal(t, first.ID, list[0].ID)
}

func TestAddressService_UpdateAddress_PromoteToDefault(t *testing.T) {
	fx := createTestAddressService()
	ctx := context.Background()

	first, err := fx.service.CreateAddress(ctx, fx.userID, homeAddress())
	require.NoError(t, err)
	second, err := fx.service.CreateAddress(ctx, fx.userID, workAddress())
	require.NoError(t, err)
	require.False(t, second.IsDefault)

	input := workAddress()
	input.IsDefault = true
	updated, err := fx.service.UpdateAddress(ctx, fx.userID, second.ID, input)

	require.NoError(t, err)
	assert.True(t, updated.IsDefault)
	assert.False(t, fx.store.addresses[first.ID].IsDefault)
	assertSingleDefault(t, fx.store, fx.userID)
}

func TestAddressService_DeleteAddress_PromotesSuccessor(t *testing.T) {
	fx := createTestAddressService()
	ctx := context.Background()

	first, err := fx.service.CreateAddress(ctx, fx.userID, homeAddress())
	require.NoError(t, err)
	fx.store.addresses[first.ID].CreatedAt = time.Now().Add(-time.Hour)

	second, err := fx.service.CreateAddress(ctx, fx.userID, workAddress())
	require.NoError(t, err)

	// Deleting the default promotes the newest remaining address.
	require.NoError(t, fx.service.DeleteAddress(ctx, fx.userID, first.ID))

	require.Len(t, fx.store.addresses, 1)
	assert.True(t, fx.store.addresses[second.ID].IsDefault)
}

func TestAddressService_DeleteAddress_LastOneLeavesEmptyBook(t *testing.T) {
	fx := createTestAddressService()
	ctx := context.Background()

	only, err := fx.service.CreateAddress(ctx, fx.userID, homeAddress())
	require.NoError(t, err)

	require.NoError(t, fx.service.DeleteAddress(ctx, fx.userID, only.ID))

	list, err := fx.service.ListAddresses(ctx, fx.userID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAddressService_DeleteAddress_NonDefaultKeepsDefault(t *testing.T) {
	fx := createTestAddressService()
	ctx := context.Background()

	first, err := fx.service.CreateAddress(ctx, fx.userID, homeAddress())
	require.NoError(t, err)
	second, err := fx.service.CreateAddress(ctx, fx.userID, workAddress())
	require.NoError(t, err)

	require.NoError(t, fx.service.DeleteAddress(ctx, fx.userID, second.ID))

	assert.True(t, fx.store.addresses[first.ID].IsDefault)
}

func TestAddressService_SetDefaultAddress_MovesFlag(t *testing.T) {
	fx := createTestAddressService()
	ctx := context.Background()

	first, err := fx.service.CreateAddress(ctx, fx.userID, homeAddress())
	require.NoError(t, err)
	second, err := fx.service.CreateAddress(ctx, fx.userID, workAddress())
	require.NoError(t, err)

	updated, err := fx.service.SetDefaultAddress(ctx, fx.userID, second.ID)

	require.NoError(t, err)
	assert.True(t, updated.IsDefault)
	assert.False(t, fx.store.addresses[first.ID].IsDefault)
	assertSingleDefault(t, fx.store, fx.userID)
}

func TestAddressService_OwnershipScoping(t *testing.T) {
	fx := createTestAddressService()
	ctx := context.Background()
	stranger := seedUser(fx.store, "rohan@example.com", "9111111111", "Str0ng!Pass", true)

	address, err := fx.service.CreateAddress(ctx, fx.userID, homeAddress())
	require.NoError(t, err)

	_, err = fx.service.GetAddress(ctx, stranger.ID, address.ID)
	require.ErrorIs(t, err, domainerrors.ErrAddressNotFound)

	err = fx.service.DeleteAddress(ctx, stranger.ID, address.ID)
	require.ErrorIs(t, err, domainerrors.ErrAddressNotFound)

	_, err = fx.service.SetDefaultAddress(ctx, stranger.ID, address.ID)
	require.ErrorIs(t, err, domainerrors.ErrAddressNotFound)
}

func assertSingleDefault(t *testing.T, store *memoryStore, userID uuid.UUID) {
	t.Helper()

	defaults := 0
	for _, address := range store.addresses {
		if address.UserID == userID && address.IsDefault {
			defaults++
		}
	}
	assert.Equal(t, 1, defaults)
}
