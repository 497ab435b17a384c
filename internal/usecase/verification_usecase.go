// Package usecase contains the application-specific business rules.
package usecase

import "context"

// VerificationUsecase drives the three identity-verification flows: email
// link, OTP and password reset. Each secret lives through
// Requested -> Pending -> Consumed/Expired and succeeds at most once.
type VerificationUsecase interface {
	// VerifyEmail consumes an email-verification link token.
	VerifyEmail(ctx context.Context, token string) error

	// ResendEmailVerification issues a fresh link, invalidating any pending one.
	ResendEmailVerification(ctx context.Context, email string) error

	// ForgotPassword issues a password-reset link with a 15-minute window.
	ForgotPassword(ctx context.Context, email string) error

	// ResetPassword consumes a reset token and replaces the password hash.
	// Existing refresh sessions are left untouched.
	ResetPassword(ctx context.Context, token, password, confirmPassword string) error

	// SendOTP issues a six-digit code with a 5-minute window.
	SendOTP(ctx context.Context, email string) error

	// VerifyOTP consumes the pending code and marks the email verified.
	VerifyOTP(ctx context.Context, email, otp string) error
}
