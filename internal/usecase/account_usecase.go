// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"savoro/internal/domain/entity"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a new account.
type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
	Role     string
}

// LoginInput defines the data required for a user to log in.
type LoginInput struct {
	Email    string
	Password string
}

// --- Output DTOs ---

// RegisterOutput returns the newly created user's basic information.
// No tokens are issued at registration; the account must verify its email first.
type RegisterOutput struct {
	User *entity.User
}

// AuthOutput returns the generated tokens after a successful login or refresh.
type AuthOutput struct {
	User             *entity.User
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// AccountUsecase defines the interface for registration and session lifecycle operations.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type AccountUsecase interface {
	// Register creates the identity and credential records and dispatches the
	// email-verification link.
	Register(ctx context.Context, input *RegisterInput) (*RegisterOutput, error)

	// Login verifies credentials and opens a new refresh session.
	Login(ctx context.Context, input *LoginInput) (*AuthOutput, error)

	// Logout revokes the single session matching the presented refresh token.
	// Other devices' sessions survive.
	Logout(ctx context.Context, refreshToken string) error

	// Refresh rotates the presented refresh token: the old session is removed
	// and a new one appended atomically. A token that verifies
	// cryptographically but is no longer listed is rejected as reuse.
	Refresh(ctx context.Context, refreshToken string) (*AuthOutput, error)
}
