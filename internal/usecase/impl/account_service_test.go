package impl

import (
	"context"
	"testing"
	"time"

	"savoro/internal/domain/entity"
	domainerrors "savoro/internal/domain/errors"
	"savoro/internal/domain/service"
	"savoro/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountService_Register_Success(t *testing.T) {
	fx := createTestAccountService()
	ctx := context.Background()

	output, err := fx.service.Register(ctx, &usecase.RegisterInput{
		Name:     "Asha Patel",
		Email:    "asha@example.com",
		Phone:    "9876543210",
		Password: "Str0ng!Pass",
	})

	require.NoError(t, err)
	require.NotNil(t, output)
	assert.Equal(t, "asha@example.com", output.User.Email)
	assert.Equal(t, entity.RoleCustomer, output.User.Role)
	assert.True(t, output.User.IsActive)
	assert.False(t, output.User.IsEmailVerified)

	// A credential with a pending email-verification slot must exist.
	cred := fx.store.creds[output.User.ID]
	require.NotNil(t, cred)
	assert.Equal(t, "hashed:Str0ng!Pass", cred.PasswordHash)
	assert.NotEmpty(t, cred.EmailTokenHash)
	require.NotNil(t, cred.EmailTokenExpiresAt)

	// Verification email carries the raw token, store only its hash.
	require.Equal(t, 1, fx.mailer.sentCount())
	assert.Contains(t, fx.mailer.lastSent().Body, "/verify-email/secret-1")
	assert.Equal(t, "sha:secret-1", cred.EmailTokenHash)

	assert.Equal(t, []string{service.EventUserRegistered}, fx.publisher.eventTypes())
}

func TestAccountService_Register_DuplicateEmail(t *testing.T) {
	fx := createTestAccountService()
	ctx := context.Background()
	seedUser(fx.store, "asha@example.com", "9876543210", "Str0ng!Pass", true)

	output, err := fx.service.Register(ctx, &usecase.RegisterInput{
		Name:     "Someone Else",
		Email:    "asha@example.com",
		Phone:    "9000000000",
		Password: "Str0ng!Pass",
	})

	require.ErrorIs(t, err, domainerrors.ErrUserAlreadyExists)
	assert.Nil(t, output)
	assert.Equal(t, 0, fx.mailer.sentCount())
}

func TestAccountService_Register_NormalizesEmailCase(t *testing.T) {
	fx := createTestAccountService()
	ctx := context.Background()

	output, err := fx.service.Register(ctx, &usecase.RegisterInput{
		Name:     "Asha Patel",
		Email:    "Asha@Example.com",
		Phone:    "9876543210",
		Password: "Str0ng!Pass",
	})

	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", output.User.Email)

	// A case-variant of an existing address is still a duplicate.
	_, err = fx.service.Register(ctx, &usecase.RegisterInput{
		Name:     "Someone Else",
		Email:    "ASHA@EXAMPLE.COM",
		Phone:    "9000000000",
		Password: "Str0ng!Pass",
	})
	require.ErrorIs(t, err, domainerrors.ErrUserAlreadyExists)

	// And login resolves the same account regardless of input casing.
	auth, err := fx.service.Login(ctx, &usecase.LoginInput{
		Email:    "aShA@eXaMpLe.CoM",
		Password: "Str0ng!Pass",
	})
	require.NoError(t, err)
	assert.Equal(t, output.User.ID, auth.User.ID)
}

func TestAccountService_Register_UnknownRole(t *testing.T) {
	fx := createTestAccountService()

	_, err := fx.service.Register(context.Background(), &usecase.RegisterInput{
		Name:     "Asha Patel",
		Email:    "asha@example.com",
		Phone:    "9876543210",
		Password: "Str0ng!Pass",
		Role:     "superuser",
	})

	require.ErrorIs(t, err, domainerrors.ErrValidationFailed)
}

func TestAccountService_Register_WeakPassword(t *testing.T) {
	fx := createTestAccountService()

	_, err := fx.service.Register(context.Background(), &usecase.RegisterInput{
		Name:     "Asha Patel",
		Email:    "asha@example.com",
		Phone:    "9876543210",
		Password: "short",
	})

	require.ErrorIs(t, err, domainerrors.ErrPasswordStrength)
	assert.Empty(t, fx.store.users)
}

func TestAccountService_Register_MailFailureDoesNotRollBack(t *testing.T) {
	fx := createTestAccountService()
	fx.mailer.failure = assert.AnError

	output, err := fx.service.Register(context.Background(), &usecase.RegisterInput{
		Name:     "Asha Patel",
		Email:    "asha@example.com",
		Phone:    "9876543210",
		Password: "Str0ng!Pass",
	})

	// The send error surfaces, but the committed account stays.
	require.ErrorIs(t, err, domainerrors.ErrMailDeliveryFailed)
	assert.Nil(t, output)
	assert.Len(t, fx.store.users, 1)
}

func TestAccountService_Register_PublisherFailureIgnored(t *testing.T) {
	fx := createTestAccountService()
	fx.publisher.failure = assert.AnError

	output, err := fx.service.Register(context.Background(), &usecase.RegisterInput{
		Name:     "Asha Patel",
		Email:    "asha@example.com",
		Phone:    "9876543210",
		Password: "Str0ng!Pass",
	})

	// Events are fire-and-forget; a broken bus never fails the request.
	require.NoError(t, err)
	require.NotNil(t, output)
	assert.Equal(t, 1, fx.mailer.sentCount())
}

func TestAccountService_Login_Success(t *testing.T) {
	fx := createTestAccountService()
	ctx := context.Background()
	user := seedUser(fx.store, "asha@example.com", "9876543210", "Str0ng!Pass", true)

	output, err := fx.service.Login(ctx, &usecase.LoginInput{
		Email:    "asha@example.com",
		Password: "Str0ng!Pass",
	})

	require.NoError(t, err)
	assert.Equal(t, user.ID, output.User.ID)
	assert.NotEmpty(t, output.AccessToken)
	assert.NotEmpty(t, output.RefreshToken)

	// One session row keyed by the refresh token hash.
	require.Len(t, fx.store.sessions, 1)
	for _, session := range fx.store.sessions {
		assert.Equal(t, user.ID, session.UserID)
		assert.Equal(t, "sha:"+output.RefreshToken, session.TokenHash)
	}

	assert.NotNil(t, fx.store.users[user.ID].LastLoginAt)
}

func TestAccountService_Login_WrongPassword(t *testing.T) {
	fx := createTestAccountService()
	seedUser(fx.store, "asha@example.com", "9876543210", "Str0ng!Pass", true)

	output, err := fx.service.Login(context.Background(), &usecase.LoginInput{
		Email:    "asha@example.com",
		Password: "Wr0ng!Pass",
	})

	require.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
	assert.Nil(t, output)
	assert.Empty(t, fx.store.sessions)
}

func TestAccountService_Login_UnknownEmail(t *testing.T) {
	fx := createTestAccountService()

	_, err := fx.service.Login(context.Background(), &usecase.LoginInput{
		Email:    "nobody@example.com",
		Password: "Str0ng!Pass",
	})

	require.ErrorIs(t, err, domainerrors.ErrUserNotFound)
}

func TestAccountService_Logout_RemovesOnlyThatSession(t *testing.T) {
	fx := createTestAccountService()
	ctx := context.Background()
	seedUser(fx.store, "asha@example.com", "9876543210", "Str0ng!Pass", true)

	first, err := fx.service.Login(ctx, &usecase.LoginInput{Email: "asha@example.com", Password: "Str0ng!Pass"})
	require.NoError(t, err)
	second, err := fx.service.Login(ctx, &usecase.LoginInput{Email: "asha@example.com", Password: "Str0ng!Pass"})
	require.NoError(t, err)

	require.NoError(t, fx.service.Logout(ctx, first.RefreshToken))

	// The other device session must survive.
	require.Len(t, fx.store.sessions, 1)
	for _, session := range fx.store.sessions {
		assert.Equal(t, "sha:"+second.RefreshToken, session.TokenHash)
	}
}

func TestAccountService_Logout_MissingToken(t *testing.T) {
	fx := createTestAccountService()

	err := fx.service.Logout(context.Background(), "")

	require.ErrorIs(t, err, domainerrors.ErrRefreshTokenMissing)
}

func TestAccountService_Logout_UnknownToken(t *testing.T) {
	fx := createTestAccountService()
	user := seedUser(fx.store, "asha@example.com", "9876543210", "Str0ng!Pass", true)
	token, err := fx.tokens.GenerateRefreshToken(user.ID)
	require.NoError(t, err)

	err = fx.service.Logout(context.Background(), token)

	require.ErrorIs(t, err, domainerrors.ErrRefreshTokenInvalid)
}

func TestAccountService_Login_EvictsOldestSessionBeyondCap(t *testing.T) {
	fx := createTestAccountService()
	ctx := context.Background()
	seedUser(fx.store, "asha@example.com", "9876543210", "Str0ng!Pass", true)

	base := time.Now().Add(-time.Hour)
	tokens := make([]string, 0, 4)
	for i := 0; i < 4; i++ {
		login, err := fx.service.Login(ctx, &usecase.LoginInput{Email: "asha@example.com", Password: "Str0ng!Pass"})
		require.NoError(t, err)
		tokens = append(tokens, login.RefreshToken)

		// Pin creation times so eviction order does not depend on clock resolution.
		for _, session := range fx.store.sessions {
			if session.TokenHash == "sha:"+login.RefreshToken {
				session.CreatedAt = base.Add(time.Duration(i) * time.Minute)
			}
		}
	}

	// The cap is three, so the first login's session is gone.
	require.Len(t, fx.store.sessions, 3)
	_, err := fx.service.Refresh(ctx, tokens[0])
	require.ErrorIs(t, err, domainerrors.ErrRefreshTokenInvalid)

	// The surviving sessions still rotate normally.
	refreshed, err := fx.service.Refresh(ctx, tokens[3])
	require.NoError(t, err)
	assert.NotEqual(t, tokens[3], refreshed.RefreshToken)
}

func TestAccountService_Refresh_RotatesSession(t *testing.T) {
	fx := createTestAccountService()
	ctx := context.Background()
	user := seedUser(fx.store, "asha@example.com", "9876543210", "Str0ng!Pass", true)

	login, err := fx.service.Login(ctx, &usecase.LoginInput{Email: "asha@example.com", Password: "Str0ng!Pass"})
	require.NoError(t, err)

	refreshed, err := fx.service.Refresh(ctx, login.RefreshToken)

	require.NoError(t, err)
	assert.Equal(t, user.ID, refreshed.User.ID)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// Exactly one session remains and it is the new one.
	require.Len(t, fx.store.sessions, 1)
	for _, session := range fx.store.sessions {
		assert.Equal(t, "sha:"+refreshed.RefreshToken, session.TokenHash)
	}
}

func TestAccountService_Refresh_ReuseDetected(t *testing.T) {
	fx := createTestAccountService()
	ctx := context.Background()
	seedUser(fx.store, "asha@example.com", "9876543210", "Str0ng!Pass", true)

	login, err := fx.service.Login(ctx, &usecase.LoginInput{Email: "asha@example.com", Password: "Str0ng!Pass"})
	require.NoError(t, err)

	refreshed, err := fx.service.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)

	// Presenting the already-rotated token again must fail, and the live
	// session stays intact.
	_, err = fx.service.Refresh(ctx, login.RefreshToken)
	require.ErrorIs(t, err, domainerrors.ErrRefreshTokenInvalid)
	require.Len(t, fx.store.sessions, 1)

	_, err = fx.service.Refresh(ctx, refreshed.RefreshToken)
	require.NoError(t, err)
}

func TestAccountService_Refresh_RejectsAccessToken(t *testing.T) {
	fx := createTestAccountService()
	user := seedUser(fx.store, "asha@example.com", "9876543210", "Str0ng!Pass", true)
	accessToken, err := fx.tokens.GenerateAccessToken(user.ID, string(user.Role))
	require.NoError(t, err)

	_, err = fx.service.Refresh(context.Background(), accessToken)

	require.ErrorIs(t, err, domainerrors.ErrRefreshTokenInvalid)
}
