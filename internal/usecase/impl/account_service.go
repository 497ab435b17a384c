// Package impl contains the application-specific business rules implementations.
package impl

import (
	"context"
	"log/slog"
	"time"

	"savoro/config"
	deliverycontext "savoro/internal/delivery/context"
	"savoro/internal/domain/entity"
	domainerrors "savoro/internal/domain/errors"
	"savoro/internal/domain/repository"
	"savoro/internal/domain/service"
	"savoro/internal/usecase"

	"github.com/pkg/errors"
)

// accountService implements the AccountUsecase interface.
type accountService struct {
	txManager    repository.TransactionManager
	hasher       service.PasswordHasher
	tokenService service.TokenService
	secrets      service.SecretGenerator
	notifier     *accountNotifier
	emailTTL     time.Duration
	maxSessions  int
	logger       *slog.Logger
}

// NewAccountService is the constructor for accountService. It receives all dependencies as interfaces.
func NewAccountService(
	txManager repository.TransactionManager,
	hasher service.PasswordHasher,
	tokenService service.TokenService,
	secrets service.SecretGenerator,
	mailer service.Mailer,
	publisher service.EventPublisher,
	cfg *config.Config,
	logger *slog.Logger,
) usecase.AccountUsecase {
	return &accountService{
		txManager:    txManager,
		hasher:       hasher,
		tokenService: tokenService,
		secrets:      secrets,
		notifier:     newAccountNotifier(mailer, publisher, cfg, logger),
		emailTTL:     cfg.Auth.EmailTokenTTL,
		maxSessions:  cfg.Auth.MaxActiveSessions,
		logger:       logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *accountService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register orchestrates the complete registration process: identity and
// credential creation in one transaction, then the verification email.
func (srv *accountService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	input.Email = normalizeEmail(input.Email)
	srv.log(ctx).Info("Starting registration", slog.String("email", input.Email))

	role := entity.Role(input.Role)
	if input.Role == "" {
		role = entity.RoleCustomer
	}
	if !role.IsValid() {
		return nil, domainerrors.ErrValidationFailed.WithDetails("unknown role")
	}

	if err := srv.hasher.ValidateStrength(input.Password); err != nil {
		return nil, err
	}

	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to hash password during registration")
	}

	// The raw token goes into the email link; only its hash is stored.
	rawToken, err := srv.secrets.VerificationToken()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate verification token")
	}
	tokenExpiry := time.Now().Add(srv.emailTTL)

	var registeredUser *entity.User

	// Execute the entire creation process within a single database transaction
	// to ensure data consistency (atomicity).
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.NewUserRepository()
		credRepo := repoFactory.NewCredentialRepository()

		// 1. Reject duplicates across both unique identifiers.
		_, err := userRepo.FindByEmailOrPhone(ctx, input.Email, input.Phone)
		if err == nil {
			return domainerrors.ErrUserAlreadyExists
		}
		if !errors.Is(err, repository.ErrUserNotFound) {
			return errors.Wrap(err, "failed to check for existing user")
		}

		// 2. Create the identity record.
		newUser := &entity.User{
			Name:     input.Name,
			Email:    input.Email,
			Phone:    input.Phone,
			Role:     role,
			IsActive: true,
		}
		if err := userRepo.Create(ctx, newUser); err != nil {
			return errors.WithStack(err)
		}

		// 3. Create the credential record with the pending email token slot.
		newCred := &entity.Credential{
			UserID:              newUser.ID,
			PasswordHash:        hashedPassword,
			EmailTokenHash:      srv.secrets.HashSecret(rawToken),
			EmailTokenExpiresAt: &tokenExpiry,
		}
		if err := credRepo.Create(ctx, newCred); err != nil {
			return errors.WithStack(err)
		}
		registeredUser = newUser

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute registration transaction",
			slog.Any("error", err),
			slog.String("email", input.Email),
		)

		return nil, err
	}

	srv.notifier.publishEvent(ctx, service.EventUserRegistered, registeredUser)

	// The account is committed either way; a mail failure surfaces to the
	// caller without rolling anything back.
	if err := srv.notifier.sendVerificationEmail(ctx, registeredUser, rawToken); err != nil {
		return nil, err
	}

	srv.log(ctx).Debug("User registered", slog.String("userID", registeredUser.ID.String()))

	return &usecase.RegisterOutput{User: registeredUser}, nil
}

// Login verifies credentials and opens a new refresh session.
func (srv *accountService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.AuthOutput, error) {
	input.Email = normalizeEmail(input.Email)
	srv.log(ctx).Info("Login attempt", slog.String("email", input.Email))

	var out *usecase.AuthOutput

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.NewUserRepository()
		credRepo := repoFactory.NewCredentialRepository()
		sessionRepo := repoFactory.NewSessionRepository()

		user, err := userRepo.FindByEmail(ctx, input.Email)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotFound
			}

			return errors.Wrap(err, "failed to find user by email")
		}

		cred, err := credRepo.FindByUserID(ctx, user.ID)
		if err != nil {
			return errors.Wrap(err, "failed to load credential")
		}

		if !srv.hasher.Check(input.Password, cred.PasswordHash) {
			return domainerrors.ErrInvalidCredentials
		}

		accessToken, err := srv.tokenService.GenerateAccessToken(user.ID, user.Role.String())
		if err != nil {
			return errors.Wrap(err, "failed to generate access token")
		}
		refreshToken, err := srv.tokenService.GenerateRefreshToken(user.ID)
		if err != nil {
			return errors.Wrap(err, "failed to generate refresh token")
		}

		expiresAt := time.Now().Add(srv.tokenService.GetRefreshTokenDuration())
		session := &entity.RefreshSession{
			UserID:    user.ID,
			TokenHash: srv.tokenService.HashToken(refreshToken),
			ExpiresAt: expiresAt,
		}
		if err := sessionRepo.Create(ctx, session); err != nil {
			return errors.WithStack(err)
		}

		// Evict the oldest sessions beyond the cap so a forgotten device
		// cannot accumulate live refresh tokens without bound.
		if srv.maxSessions > 0 {
			sessions, err := sessionRepo.FindByUserID(ctx, user.ID)
			if err != nil {
				return errors.Wrap(err, "failed to list sessions")
			}
			for _, stale := range sessions[min(srv.maxSessions, len(sessions)):] {
				if err := sessionRepo.DeleteByID(ctx, user.ID, stale.ID); err != nil {
					return errors.Wrap(err, "failed to evict oldest session")
				}
			}
		}

		now := time.Now()
		if err := userRepo.TouchLastLogin(ctx, user.ID, now); err != nil {
			return errors.WithStack(err)
		}
		user.LastLoginAt = &now

		out = &usecase.AuthOutput{
			User:             user,
			AccessToken:      accessToken,
			RefreshToken:     refreshToken,
			RefreshExpiresAt: expiresAt,
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Debug("Login succeeded", slog.String("userID", out.User.ID.String()))

	return out, nil
}

// Logout revokes the single session matching the presented refresh token.
func (srv *accountService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return domainerrors.ErrRefreshTokenMissing
	}

	tokenHash := srv.tokenService.HashToken(refreshToken)

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		sessionRepo := repoFactory.NewSessionRepository()

		session, err := sessionRepo.FindByTokenHash(ctx, tokenHash)
		if err != nil {
			if errors.Is(err, repository.ErrSessionNotFound) {
				return domainerrors.ErrRefreshTokenInvalid
			}

			return errors.Wrap(err, "failed to find session")
		}

		if err := sessionRepo.DeleteByTokenHash(ctx, session.UserID, tokenHash); err != nil {
			if errors.Is(err, repository.ErrSessionNotFound) {
				// A concurrent logout or rotation got there first.
				return domainerrors.ErrRefreshTokenInvalid
			}

			return errors.Wrap(err, "failed to delete session")
		}

		return nil
	})
	if err != nil {
		return err
	}

	srv.log(ctx).Debug("Session revoked on logout")

	return nil
}

// Refresh rotates the presented refresh token. The delete of the old session
// row is the rotation's atomic guard: with two concurrent refreshes of the
// same token, only the one whose delete affects a row wins. A token that
// verifies cryptographically but has no session row is rejected as reuse.
func (srv *accountService) Refresh(ctx context.Context, refreshToken string) (*usecase.AuthOutput, error) {
	if refreshToken == "" {
		return nil, domainerrors.ErrRefreshTokenMissing
	}

	claims, err := srv.tokenService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, domainerrors.ErrRefreshTokenInvalid
	}

	oldHash := srv.tokenService.HashToken(refreshToken)

	var out *usecase.AuthOutput

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.NewUserRepository()
		sessionRepo := repoFactory.NewSessionRepository()

		// Remove-then-insert makes the rotation atomic. Zero rows affected
		// means the token was already rotated or revoked.
		if err := sessionRepo.DeleteByTokenHash(ctx, claims.UserID, oldHash); err != nil {
			if errors.Is(err, repository.ErrSessionNotFound) {
				return domainerrors.ErrRefreshTokenInvalid
			}

			return errors.Wrap(err, "failed to remove rotated session")
		}

		user, err := userRepo.FindByID(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotFound
			}

			return errors.Wrap(err, "failed to load user for refresh")
		}

		accessToken, err := srv.tokenService.GenerateAccessToken(user.ID, user.Role.String())
		if err != nil {
			return errors.Wrap(err, "failed to generate access token")
		}
		newRefreshToken, err := srv.tokenService.GenerateRefreshToken(user.ID)
		if err != nil {
			return errors.Wrap(err, "failed to generate refresh token")
		}

		expiresAt := time.Now().Add(srv.tokenService.GetRefreshTokenDuration())
		session := &entity.RefreshSession{
			UserID:    user.ID,
			TokenHash: srv.tokenService.HashToken(newRefreshToken),
			ExpiresAt: expiresAt,
		}
		if err := sessionRepo.Create(ctx, session); err != nil {
			return errors.WithStack(err)
		}

		out = &usecase.AuthOutput{
			User:             user,
			AccessToken:      accessToken,
			RefreshToken:     newRefreshToken,
			RefreshExpiresAt: expiresAt,
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Debug("Refresh token rotated", slog.String("userID", out.User.ID.String()))

	return out, nil
}
