// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"savoro/config"
	domainerrors "savoro/internal/domain/errors"
	"savoro/internal/domain/service"
)

// bcryptHasher is a concrete implementation of the PasswordHasher interface using bcrypt.
type bcryptHasher struct {
	cost   int
	policy *config.PasswordStrengthConfig
}

// NewBcryptHasher is the constructor for bcryptHasher.
// It returns the implementation as a service.PasswordHasher interface.
func NewBcryptHasher(cfg *config.Config) service.PasswordHasher {
	cost := bcrypt.DefaultCost
	if cfg.Auth != nil && cfg.Auth.BcryptCost >= bcrypt.MinCost && cfg.Auth.BcryptCost <= bcrypt.MaxCost {
		cost = cfg.Auth.BcryptCost
	}

	return &bcryptHasher{
		cost:   cost,
		policy: cfg.PasswordStrength,
	}
}

// Hash generates a salted hash from a plaintext password using bcrypt.
// bcrypt automatically handles salt generation.
func (h *bcryptHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)

	return string(bytes), err
}

// Check compares a plaintext password with a bcrypt hash.
func (h *bcryptHasher) Check(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	// err is nil if the password and hash match.
	return err == nil
}

// ValidateStrength checks a candidate password against the configured policy.
func (h *bcryptHasher) ValidateStrength(password string) error {
	policy := h.policy
	if policy == nil {
		policy = &config.PasswordStrengthConfig{MinLength: 8, MaxLength: 72}
	}

	var problems []string

	if len(password) < policy.MinLength {
		problems = append(problems, fmt.Sprintf("at least %d characters", policy.MinLength))
	}
	// bcrypt truncates input beyond 72 bytes, so the cap is also a correctness bound.
	maxLength := policy.MaxLength
	if maxLength <= 0 || maxLength > 72 {
		maxLength = 72
	}
	if len(password) > maxLength {
		problems = append(problems, fmt.Sprintf("at most %d characters", maxLength))
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasNumber = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}

	if policy.RequireUppercase && !hasUpper {
		problems = append(problems, "an uppercase letter")
	}
	if policy.RequireLowercase && !hasLower {
		problems = append(problems, "a lowercase letter")
	}
	if policy.RequireNumbers && !hasNumber {
		problems = append(problems, "a number")
	}
	if policy.RequireSpecial && !hasSpecial {
		problems = append(problems, "a special character")
	}

	if len(problems) > 0 {
		return domainerrors.ErrPasswordStrength.WithDetails("password must contain " + strings.Join(problems, ", "))
	}

	return nil
}
