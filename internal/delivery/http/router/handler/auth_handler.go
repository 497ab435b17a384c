// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"savoro/config"
	"savoro/internal/delivery/http/middleware"
	"savoro/internal/delivery/http/response"
	domainerrors "savoro/internal/domain/errors"
	"savoro/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// RefreshTokenCookie is the http-only cookie carrying the refresh token.
const RefreshTokenCookie = "refreshToken"

// AuthHandler holds dependencies for the authentication endpoints.
type AuthHandler struct {
	accounts     usecase.AccountUsecase
	verification usecase.VerificationUsecase
	secureCookie bool
	refreshTTL   time.Duration
	accessTTL    time.Duration
	logger       *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(
	accounts usecase.AccountUsecase,
	verification usecase.VerificationUsecase,
	cfg *config.Config,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		accounts:     accounts,
		verification: verification,
		secureCookie: cfg.Env.Env == "production",
		refreshTTL:   cfg.Auth.RefreshTokenTTL,
		accessTTL:    cfg.Auth.AccessTokenTTL,
		logger:       logger,
	}
}

// --- Request DTOs ---

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,len=10,numeric"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"omitempty,oneof=customer restaurant_owner delivery_partner admin"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

type verifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

// Register handles the account registration request.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid registration input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	output, err := h.accounts.Register(c.Request().Context(), &usecase.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, output.User,
		"Registered successfully. Please verify your email.")
}

// Login handles the login request and sets the session cookies.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	output, err := h.accounts.Login(c.Request().Context(), &usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	h.setSessionCookies(c, output.AccessToken, output.RefreshToken)

	return response.Success(c, http.StatusOK, echo.Map{
		"user":        output.User,
		"accessToken": output.AccessToken,
	}, "Login successful")
}

// Logout revokes the session named by the refresh cookie and clears cookies.
func (h *AuthHandler) Logout(c echo.Context) error {
	refreshToken := readCookie(c, RefreshTokenCookie)
	if refreshToken == "" {
		return domainerrors.ErrRefreshTokenMissing
	}

	if err := h.accounts.Logout(c.Request().Context(), refreshToken); err != nil {
		return errors.WithStack(err)
	}

	h.clearSessionCookies(c)

	return response.Success(c, http.StatusOK, nil, "Logged out successfully")
}

// Refresh rotates the refresh token from the cookie and reissues both cookies.
func (h *AuthHandler) Refresh(c echo.Context) error {
	refreshToken := readCookie(c, RefreshTokenCookie)
	if refreshToken == "" {
		return domainerrors.ErrRefreshTokenMissing
	}

	output, err := h.accounts.Refresh(c.Request().Context(), refreshToken)
	if err != nil {
		return errors.WithStack(err)
	}

	h.setSessionCookies(c, output.AccessToken, output.RefreshToken)

	return response.Success(c, http.StatusOK, echo.Map{
		"accessToken": output.AccessToken,
	}, "Token refreshed successfully")
}

// ForgotPassword issues a password-reset link.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req emailRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.verification.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Password reset email sent")
}

// ResetPassword consumes the reset link token from the path.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	err := h.verification.ResetPassword(c.Request().Context(), c.Param("token"), req.Password, req.ConfirmPassword)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Password reset successfully")
}

// SendOTP issues a six-digit verification code.
func (h *AuthHandler) SendOTP(c echo.Context) error {
	var req emailRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.verification.SendOTP(c.Request().Context(), req.Email); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "OTP sent")
}

// VerifyOTP consumes the pending code.
func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	var req verifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.verification.VerifyOTP(c.Request().Context(), req.Email, req.OTP); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Email verified successfully")
}

// VerifyEmail consumes the email-verification link token from the path.
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	if err := h.verification.VerifyEmail(c.Request().Context(), c.Param("token")); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Email verified successfully")
}

// ResendEmailVerification issues a fresh verification link.
func (h *AuthHandler) ResendEmailVerification(c echo.Context) error {
	var req emailRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.verification.ResendEmailVerification(c.Request().Context(), req.Email); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Verification email sent")
}

// --- Cookie helpers ---

func (h *AuthHandler) setSessionCookies(c echo.Context, accessToken, refreshToken string) {
	c.SetCookie(h.sessionCookie(middleware.AccessTokenCookie, accessToken, h.accessTTL))
	c.SetCookie(h.sessionCookie(RefreshTokenCookie, refreshToken, h.refreshTTL))
}

func (h *AuthHandler) clearSessionCookies(c echo.Context) {
	c.SetCookie(h.sessionCookie(middleware.AccessTokenCookie, "", -time.Second))
	c.SetCookie(h.sessionCookie(RefreshTokenCookie, "", -time.Second))
}

func (h *AuthHandler) sessionCookie(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	}
}

func readCookie(c echo.Context, name string) string {
	cookie, err := c.Cookie(name)
	if err != nil {
		return ""
	}

	return cookie.Value
}
