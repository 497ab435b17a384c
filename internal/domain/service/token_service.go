package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token type discriminator carried in the "type" claim. Validation rejects a
// refresh token presented where an access token is expected and vice versa.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims defines the custom claims for the JWT tokens.
type Claims struct {
	UserID uuid.UUID
	Role   string
	Type   string
	jwt.RegisteredClaims
}

// TokenService defines the interface for generating and validating JWTs.
// This abstracts the details of token creation from the use cases.
type TokenService interface {
	// GenerateAccessToken creates a short-lived access token carrying the
	// user's identity and role.
	GenerateAccessToken(userID uuid.UUID, role string) (string, error)

	// GenerateRefreshToken creates a long-lived refresh token.
	GenerateRefreshToken(userID uuid.UUID) (string, error)

	// ValidateAccessToken checks signature, expiry and token type.
	ValidateAccessToken(tokenString string) (*Claims, error)

	// ValidateRefreshToken checks signature, expiry and token type.
	ValidateRefreshToken(tokenString string) (*Claims, error)

	// HashToken returns the hex digest under which a refresh token is stored.
	// Only the digest ever touches the database.
	HashToken(token string) string

	// GetAccessTokenDuration returns the configured access token lifetime.
	GetAccessTokenDuration() time.Duration

	// GetRefreshTokenDuration returns the configured refresh token lifetime.
	GetRefreshTokenDuration() time.Duration
}
