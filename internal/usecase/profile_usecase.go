// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"savoro/internal/domain/entity"

	"github.com/google/uuid"
)

// UpdateProfileInput carries the mutable profile fields. Nil pointers leave
// the current value unchanged.
type UpdateProfileInput struct {
	Name   *string
	Phone  *string
	Avatar *string
}

// ProfileUsecase defines the interface for profile operations on the
// authenticated identity.
type ProfileUsecase interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*entity.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input *UpdateProfileInput) (*entity.User, error)
}
