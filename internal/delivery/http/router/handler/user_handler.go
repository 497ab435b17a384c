package handler

import (
	"net/http"

	"savoro/internal/delivery/http/middleware"
	"savoro/internal/delivery/http/response"
	"savoro/internal/domain/entity"
	domainerrors "savoro/internal/domain/errors"
	"savoro/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// UserHandler serves the authenticated profile and session endpoints.
type UserHandler struct {
	profiles usecase.ProfileUsecase
	sessions usecase.SessionUsecase
}

// NewUserHandler is the constructor for UserHandler, injected by Fx.
func NewUserHandler(profiles usecase.ProfileUsecase, sessions usecase.SessionUsecase) *UserHandler {
	return &UserHandler{profiles: profiles, sessions: sessions}
}

type updateProfileRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=2,max=100"`
	Phone  *string `json:"phone" validate:"omitempty,len=10,numeric"`
	Avatar *string `json:"avatar" validate:"omitempty,url"`
}

// GetProfile returns the identity loaded by the auth middleware.
func (h *UserHandler) GetProfile(c echo.Context) error {
	user, ok := c.Get(middleware.ContextKeyUser).(*entity.User)
	if !ok {
		return domainerrors.ErrAccessTokenInvalid
	}

	return response.Success(c, http.StatusOK, user, "Profile fetched successfully")
}

// UpdateProfile applies the provided fields to the authenticated user.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid profile input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.profiles.UpdateProfile(c.Request().Context(), userID, &usecase.UpdateProfileInput{
		Name:   req.Name,
		Phone:  req.Phone,
		Avatar: req.Avatar,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, user, "Profile updated successfully")
}

// ListSessions returns the caller's active sessions.
func (h *UserHandler) ListSessions(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	sessions, err := h.sessions.ListSessions(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, sessions, "Sessions fetched successfully")
}

// RevokeSession removes one of the caller's sessions by id.
func (h *UserHandler) RevokeSession(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return domainerrors.ErrSessionNotFound
	}

	if err := h.sessions.RevokeSession(c.Request().Context(), userID, sessionID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Session revoked successfully")
}

// RevokeAllSessions logs the caller out everywhere.
func (h *UserHandler) RevokeAllSessions(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	count, err := h.sessions.RevokeAllSessions(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, echo.Map{"revoked": count}, "All sessions revoked")
}

// currentUserID reads the uuid set by the auth middleware.
func currentUserID(c echo.Context) (uuid.UUID, error) {
	userID, ok := c.Get(middleware.ContextKeyUserID).(uuid.UUID)
	if !ok {
		return uuid.Nil, domainerrors.ErrAccessTokenInvalid
	}

	return userID, nil
}
