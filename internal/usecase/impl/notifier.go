// Package impl provides the concrete implementations of the usecase interfaces.
package impl

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"time"

	"savoro/config"
	deliverycontext "savoro/internal/delivery/context"
	"savoro/internal/domain/entity"
	domainerrors "savoro/internal/domain/errors"
	"savoro/internal/domain/service"
)

// accountNotifier composes and dispatches the out-of-band messages each flow
// transition produces: transactional email plus an account event on the bus.
// Email for verification and reset flows is mandatory (failure surfaces to
// the caller) but never rolls back the already-committed state change.
// Event publishing is always fire-and-forget.
type accountNotifier struct {
	mailer      service.Mailer
	publisher   service.EventPublisher
	frontendURL string
	logger      *slog.Logger
}

func newAccountNotifier(
	mailer service.Mailer,
	publisher service.EventPublisher,
	cfg *config.Config,
	logger *slog.Logger,
) *accountNotifier {
	frontendURL := ""
	if cfg.Mail != nil {
		frontendURL = cfg.Mail.FrontendURL
	}

	return &accountNotifier{
		mailer:      mailer,
		publisher:   publisher,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

// sendVerificationEmail delivers the email-verification link.
func (n *accountNotifier) sendVerificationEmail(ctx context.Context, user *entity.User, rawToken string) error {
	link := fmt.Sprintf("%s/verify-email/%s", n.frontendURL, rawToken)
	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>Welcome to Savoro! Please confirm your email address by clicking the link below. The link is valid for 24 hours.</p>
<p><a href="%s">Verify my email</a></p>
<p>If you did not create an account, you can ignore this message.</p>`,
		html.EscapeString(user.Name), link)

	if err := n.mailer.Send(ctx, user.Email, user.Name, "Verify your email address", body); err != nil {
		n.logger.Error("Failed to send verification email",
			slog.String("userID", user.ID.String()),
			slog.Any("error", err),
		)

		return domainerrors.ErrMailDeliveryFailed
	}

	return nil
}

// sendResetEmail delivers the password-reset link.
func (n *accountNotifier) sendResetEmail(ctx context.Context, user *entity.User, rawToken string) error {
	link := fmt.Sprintf("%s/reset-password/%s", n.frontendURL, rawToken)
	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>We received a request to reset your password. The link below is valid for 15 minutes.</p>
<p><a href="%s">Reset my password</a></p>
<p>If you did not request this, your account is still secure and no action is needed.</p>`,
		html.EscapeString(user.Name), link)

	if err := n.mailer.Send(ctx, user.Email, user.Name, "Reset your password", body); err != nil {
		n.logger.Error("Failed to send password reset email",
			slog.String("userID", user.ID.String()),
			slog.Any("error", err),
		)

		return domainerrors.ErrMailDeliveryFailed
	}

	return nil
}

// sendOTPEmail delivers the one-time passcode.
func (n *accountNotifier) sendOTPEmail(ctx context.Context, user *entity.User, otp string) error {
	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>Your verification code is:</p>
<h2>%s</h2>
<p>The code expires in 5 minutes. Do not share it with anyone.</p>`,
		html.EscapeString(user.Name), otp)

	if err := n.mailer.Send(ctx, user.Email, user.Name, "Your verification code", body); err != nil {
		n.logger.Error("Failed to send otp email",
			slog.String("userID", user.ID.String()),
			slog.Any("error", err),
		)

		return domainerrors.ErrMailDeliveryFailed
	}

	return nil
}

// sendEmailVerifiedConfirmation confirms a completed email verification.
// Best effort: the flag is already committed, failure is only logged.
func (n *accountNotifier) sendEmailVerifiedConfirmation(ctx context.Context, user *entity.User) {
	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>Your email address has been verified. You can now order from Savoro.</p>`,
		html.EscapeString(user.Name))

	if err := n.mailer.Send(ctx, user.Email, user.Name, "Email verified", body); err != nil {
		n.logger.Warn("Failed to send verification confirmation email",
			slog.String("userID", user.ID.String()),
			slog.Any("error", err),
		)
	}
}

// sendResetSuccessEmail confirms a completed password reset. Best effort:
// the reset already committed, so a delivery failure is only logged.
func (n *accountNotifier) sendResetSuccessEmail(ctx context.Context, user *entity.User) {
	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>Your password was changed just now. If this was not you, please reset your password immediately.</p>`,
		html.EscapeString(user.Name))

	if err := n.mailer.Send(ctx, user.Email, user.Name, "Your password was changed", body); err != nil {
		n.logger.Warn("Failed to send reset confirmation email",
			slog.String("userID", user.ID.String()),
			slog.Any("error", err),
		)
	}
}

// publishEvent emits an account event. Failures are logged, never propagated.
func (n *accountNotifier) publishEvent(ctx context.Context, eventType string, user *entity.User) {
	event := &service.AccountEvent{
		RequestID:  deliverycontext.GetRequestIDFromContext(ctx),
		Type:       eventType,
		UserID:     user.ID.String(),
		Email:      user.Email,
		Role:       user.Role.String(),
		OccurredAt: time.Now().UTC(),
	}

	if err := n.publisher.PublishAccountEvent(ctx, event); err != nil {
		n.logger.Warn("Failed to publish account event",
			slog.String("type", eventType),
			slog.String("userID", user.ID.String()),
			slog.Any("error", err),
		)
	}
}
