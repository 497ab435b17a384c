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

// verificationService implements the VerificationUsecase interface.
// Every secret is consumed through a conditional store mutation, so two
// concurrent consumers of the same secret cannot both succeed.
type verificationService struct {
	txManager repository.TransactionManager
	hasher    service.PasswordHasher
	secrets   service.SecretGenerator
	notifier  *accountNotifier
	emailTTL  time.Duration
	resetTTL  time.Duration
	otpTTL    time.Duration
	logger    *slog.Logger
}

// NewVerificationService is the constructor for verificationService.
func NewVerificationService(
	txManager repository.TransactionManager,
	hasher service.PasswordHasher,
	secrets service.SecretGenerator,
	mailer service.Mailer,
	publisher service.EventPublisher,
	cfg *config.Config,
	logger *slog.Logger,
) usecase.VerificationUsecase {
	return &verificationService{
		txManager: txManager,
		hasher:    hasher,
		secrets:   secrets,
		notifier:  newAccountNotifier(mailer, publisher, cfg, logger),
		emailTTL:  cfg.Auth.EmailTokenTTL,
		resetTTL:  cfg.Auth.ResetTokenTTL,
		otpTTL:    cfg.Auth.OTPTTL,
		logger:    logger,
	}
}

func (srv *verificationService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// VerifyEmail consumes an email-verification link token.
func (srv *verificationService) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return domainerrors.ErrVerificationTokenInvalid
	}

	tokenHash := srv.secrets.HashSecret(token)

	var verifiedUser *entity.User

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.NewUserRepository()
		credRepo := repoFactory.NewCredentialRepository()

		cred, err := credRepo.FindByEmailTokenHash(ctx, tokenHash)
		if err != nil {
			if errors.Is(err, repository.ErrCredentialNotFound) {
				return domainerrors.ErrVerificationTokenInvalid
			}

			return errors.Wrap(err, "failed to look up email token")
		}

		user, err := userRepo.FindByID(ctx, cred.UserID)
		if err != nil {
			return errors.Wrap(err, "failed to load user for verification")
		}
		if user.IsEmailVerified {
			return domainerrors.ErrEmailAlreadyVerified
		}

		// Conditional clear: loses to a concurrent consumption of the same link.
		if err := credRepo.ConsumeEmailToken(ctx, cred.UserID, tokenHash); err != nil {
			if errors.Is(err, repository.ErrVerificationSlotStale) {
				return domainerrors.ErrVerificationTokenInvalid
			}

			return errors.Wrap(err, "failed to consume email token")
		}

		if err := userRepo.MarkEmailVerified(ctx, cred.UserID); err != nil {
			return errors.Wrap(err, "failed to mark email verified")
		}
		user.IsEmailVerified = true
		verifiedUser = user

		return nil
	})
	if err != nil {
		return err
	}

	srv.log(ctx).Info("Email verified", slog.String("userID", verifiedUser.ID.String()))
	srv.notifier.publishEvent(ctx, service.EventEmailVerified, verifiedUser)
	srv.notifier.sendEmailVerifiedConfirmation(ctx, verifiedUser)

	return nil
}

// ResendEmailVerification issues a fresh link, overwriting any pending one.
func (srv *verificationService) ResendEmailVerification(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	rawToken, err := srv.secrets.VerificationToken()
	if err != nil {
		return errors.Wrap(err, "failed to generate verification token")
	}
	expiry := time.Now().Add(srv.emailTTL)

	var user *entity.User

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.NewUserRepository()
		credRepo := repoFactory.NewCredentialRepository()

		found, err := userRepo.FindByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotFound
			}

			return errors.Wrap(err, "failed to find user by email")
		}
		if found.IsEmailVerified {
			return domainerrors.ErrEmailAlreadyVerified
		}

		// Overwriting the slot invalidates the previously issued link.
		if err := credRepo.StoreEmailToken(ctx, found.ID, srv.secrets.HashSecret(rawToken), expiry); err != nil {
			return errors.Wrap(err, "failed to store email token")
		}
		user = found

		return nil
	})
	if err != nil {
		return err
	}

	return srv.notifier.sendVerificationEmail(ctx, user, rawToken)
}

// ForgotPassword issues a password-reset link.
func (srv *verificationService) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	rawToken, err := srv.secrets.VerificationToken()
	if err != nil {
		return errors.Wrap(err, "failed to generate reset token")
	}
	expiry := time.Now().Add(srv.resetTTL)

	var user *entity.User

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.NewUserRepository()
		credRepo := repoFactory.NewCredentialRepository()

		found, err := userRepo.FindByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotFound
			}

			return errors.Wrap(err, "failed to find user by email")
		}

		if err := credRepo.StoreResetToken(ctx, found.ID, srv.secrets.HashSecret(rawToken), expiry); err != nil {
			return errors.Wrap(err, "failed to store reset token")
		}
		user = found

		return nil
	})
	if err != nil {
		return err
	}

	srv.log(ctx).Info("Password reset requested", slog.String("userID", user.ID.String()))

	return srv.notifier.sendResetEmail(ctx, user, rawToken)
}

// ResetPassword consumes a reset token and replaces the password hash.
// Existing refresh sessions are deliberately left valid.
func (srv *verificationService) ResetPassword(ctx context.Context, token, password, confirmPassword string) error {
	if token == "" {
		return domainerrors.ErrVerificationTokenInvalid
	}
	if password != confirmPassword {
		return domainerrors.ErrPasswordMismatch
	}
	if err := srv.hasher.ValidateStrength(password); err != nil {
		return err
	}

	newHash, err := srv.hasher.Hash(password)
	if err != nil {
		return errors.Wrap(err, "failed to hash new password")
	}

	tokenHash := srv.secrets.HashSecret(token)

	var user *entity.User

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.NewUserRepository()
		credRepo := repoFactory.NewCredentialRepository()

		cred, err := credRepo.FindByResetTokenHash(ctx, tokenHash)
		if err != nil {
			if errors.Is(err, repository.ErrCredentialNotFound) {
				return domainerrors.ErrVerificationTokenInvalid
			}

			return errors.Wrap(err, "failed to look up reset token")
		}

		// Password swap and slot clear happen in one conditional statement.
		if err := credRepo.ConsumeResetToken(ctx, cred.UserID, tokenHash, newHash); err != nil {
			if errors.Is(err, repository.ErrVerificationSlotStale) {
				return domainerrors.ErrVerificationTokenInvalid
			}

			return errors.Wrap(err, "failed to consume reset token")
		}

		found, err := userRepo.FindByID(ctx, cred.UserID)
		if err != nil {
			return errors.Wrap(err, "failed to load user after reset")
		}
		user = found

		return nil
	})
	if err != nil {
		return err
	}

	srv.log(ctx).Info("Password reset completed", slog.String("userID", user.ID.String()))
	srv.notifier.publishEvent(ctx, service.EventPasswordReset, user)
	srv.notifier.sendResetSuccessEmail(ctx, user)

	return nil
}

// SendOTP issues a six-digit code.
func (srv *verificationService) SendOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	otp, err := srv.secrets.OTP()
	if err != nil {
		return errors.Wrap(err, "failed to generate otp")
	}
	expiry := time.Now().Add(srv.otpTTL)

	var user *entity.User

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.NewUserRepository()
		credRepo := repoFactory.NewCredentialRepository()

		found, err := userRepo.FindByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotFound
			}

			return errors.Wrap(err, "failed to find user by email")
		}

		if err := credRepo.StoreOTP(ctx, found.ID, srv.secrets.HashSecret(otp), expiry); err != nil {
			return errors.Wrap(err, "failed to store otp")
		}
		user = found

		return nil
	})
	if err != nil {
		return err
	}

	return srv.notifier.sendOTPEmail(ctx, user, otp)
}

// VerifyOTP consumes the pending code and marks the email verified.
func (srv *verificationService) VerifyOTP(ctx context.Context, email, otp string) error {
	email = normalizeEmail(email)
	if otp == "" {
		return domainerrors.ErrOTPInvalid
	}

	otpHash := srv.secrets.HashSecret(otp)

	var verifiedUser *entity.User

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.NewUserRepository()
		credRepo := repoFactory.NewCredentialRepository()

		user, err := userRepo.FindByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotFound
			}

			return errors.Wrap(err, "failed to find user by email")
		}

		if err := credRepo.ConsumeOTP(ctx, user.ID, otpHash); err != nil {
			if errors.Is(err, repository.ErrVerificationSlotStale) {
				return domainerrors.ErrOTPInvalid
			}

			return errors.Wrap(err, "failed to consume otp")
		}

		if err := userRepo.MarkEmailVerified(ctx, user.ID); err != nil {
			return errors.Wrap(err, "failed to mark email verified")
		}
		user.IsEmailVerified = true
		verifiedUser = user

		return nil
	})
	if err != nil {
		return err
	}

	srv.log(ctx).Info("OTP verified", slog.String("userID", verifiedUser.ID.String()))
	srv.notifier.publishEvent(ctx, service.EventEmailVerified, verifiedUser)

	return nil
}
