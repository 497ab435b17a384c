package service

// SecretGenerator produces the short-lived secrets handed to users out of
// band. Callers hash the raw value before storing it; the raw value leaves the
// process only inside an email.
type SecretGenerator interface {
	// VerificationToken returns a random hex token used for email
	// verification and password reset links.
	VerificationToken() (string, error)

	// OTP returns a random six-digit one-time passcode.
	OTP() (string, error)

	// HashSecret returns the hex digest under which a secret is stored.
	HashSecret(secret string) string
}
