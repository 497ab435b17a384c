// Package middleware contains the echo middlewares for the HTTP delivery.
package middleware

import (
	"strings"

	domainerrors "savoro/internal/domain/errors"
	"savoro/internal/domain/service"
	"savoro/internal/usecase"

	"github.com/labstack/echo/v4"
)

// Context keys set by the gateway for downstream handlers.
const (
	// ContextKeyUserID holds the authenticated user's uuid.UUID.
	ContextKeyUserID = "userID"
	// ContextKeyUser holds the loaded *entity.User.
	ContextKeyUser = "user"

	// AccessTokenCookie is checked before the Authorization header.
	AccessTokenCookie = "accessToken"
)

// AuthMiddleware is the authentication gateway: it extracts the bearer
// credential, validates it, loads the identity and enforces account-state
// preconditions before any protected handler runs.
type AuthMiddleware struct {
	tokenSvc service.TokenService
	profiles usecase.ProfileUsecase
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService, profiles usecase.ProfileUsecase) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc, profiles: profiles}
}

// Authenticate validates the access token and attaches the identity to the
// request context. Precondition order is fixed: token presence, token
// validity, identity existence, active flag, verified flag.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tokenString := extractAccessToken(c)
		if tokenString == "" {
			return domainerrors.ErrAccessTokenMissing
		}

		claims, err := m.tokenSvc.ValidateAccessToken(tokenString)
		if err != nil {
			// Already mapped to the expired/invalid domain errors.
			return err
		}

		user, err := m.profiles.GetProfile(c.Request().Context(), claims.UserID)
		if err != nil {
			return domainerrors.ErrUserNotFound
		}

		if !user.IsActive {
			return domainerrors.ErrAccountDeactivated
		}
		if !user.IsEmailVerified {
			return domainerrors.ErrEmailNotVerified
		}

		c.Set(ContextKeyUserID, user.ID)
		c.Set(ContextKeyUser, user)

		return next(c)
	}
}

// extractAccessToken prefers the http-only cookie, then the Bearer header.
func extractAccessToken(c echo.Context) string {
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return ""
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		// Header present but not in Bearer form.
		return ""
	}

	return strings.TrimSpace(tokenString)
}
