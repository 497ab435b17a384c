package impl

import (
	"context"
	"testing"

	domainerrors "savoro/internal/domain/errors"
	"savoro/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileService_GetProfile(t *testing.T) {
	store := newMemoryStore()
	svc := NewProfileService(store, newDiscardLogger())
	user := seedUser(store, "asha@example.com", "9876543210", "Str0ng!Pass", true)

	profile, err := svc.GetProfile(context.Background(), user.ID)

	require.NoError(t, err)
	assert.Equal(t, user.Email, profile.Email)
}

func TestProfileService_GetProfile_Unknown(t *testing.T) {
	store := newMemoryStore()
	svc := NewProfileService(store, newDiscardLogger())

	_, err := svc.GetProfile(context.Background(), uuid.New())

	require.ErrorIs(t, err, domainerrors.ErrUserNotFound)
}

func TestProfileService_UpdateProfile_PartialFields(t *testing.T) {
	store := newMemoryStore()
	svc := NewProfileService(store, newDiscardLogger())
	user := seedUser(store, "asha@example.com", "9876543210", "Str0ng!Pass", true)

	newName := "Asha P."
	updated, err := svc.UpdateProfile(context.Background(), user.ID, &usecase.UpdateProfileInput{
		Name: &newName,
	})

	require.NoError(t, err)
	assert.Equal(t, "Asha P.", updated.Name)
	// Untouched fields keep their values.
	assert.Equal(t, "9876543210", updated.Phone)
}

func TestProfileService_UpdateProfile_PhoneChangeClearsVerification(t *testing.T) {
	store := newMemoryStore()
	svc := NewProfileService(store, newDiscardLogger())
	user := seedUser(store, "asha@example.com", "9876543210", "Str0ng!Pass", true)
	store.users[user.ID].IsPhoneVerified = true

	newPhone := "9000000001"
	updated, err := svc.UpdateProfile(context.Background(), user.ID, &usecase.UpdateProfileInput{
		Phone: &newPhone,
	})

	require.NoError(t, err)
	assert.Equal(t, "9000000001", updated.Phone)
	assert.False(t, updated.IsPhoneVerified)
}
