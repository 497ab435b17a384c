package impl

import "strings"

// normalizeEmail folds the address to its stored form so case-variant input
// always resolves to the same account.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
