// Package validator adapts go-playground/validator to echo's Validator interface.
package validator

import (
	domainerrors "savoro/internal/domain/errors"

	playground "github.com/go-playground/validator/v10"
)

// requestValidator validates bound request structs against their `validate` tags.
type requestValidator struct {
	validate *playground.Validate
}

// New constructs the echo validator used by the server.
func New() *requestValidator {
	return &requestValidator{
		validate: playground.New(playground.WithRequiredStructEnabled()),
	}
}

// Validate implements echo.Validator. Tag failures surface as the domain's
// validation error so the error handler renders them uniformly.
func (v *requestValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails(err.Error())
	}

	return nil
}
