// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"

	"savoro/internal/domain/service"
	"savoro/internal/errors"
)

// verificationTokenBytes is the entropy of email and reset link tokens.
const verificationTokenBytes = 32

// secretGenerator produces verification tokens and OTPs from crypto/rand.
type secretGenerator struct{}

// NewSecretGenerator is the constructor for secretGenerator.
func NewSecretGenerator() service.SecretGenerator {
	return &secretGenerator{}
}

// VerificationToken returns a 64-character hex token.
func (g *secretGenerator) VerificationToken() (string, error) {
	buf := make([]byte, verificationTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "generate verification token")
	}

	return hex.EncodeToString(buf), nil
}

// OTP returns a uniformly random six-digit passcode, zero-padded.
func (g *secretGenerator) OTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", errors.Wrap(err, "generate otp")
	}

	return fmt.Sprintf("%06d", n.Int64()), nil
}

// HashSecret returns the hex-encoded SHA-256 digest of a secret.
func (g *secretGenerator) HashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))

	return hex.EncodeToString(sum[:])
}
