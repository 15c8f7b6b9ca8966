// Package internal holds identifier and email helpers shared by the root
// package and the directory implementations. Nothing here performs I/O.
package internal

import (
	"strings"

	"github.com/google/uuid"
)

// NewAccountID returns a fresh opaque account identifier. IDs are never
// reused; the directory assigns one at creation time.
func NewAccountID() string {
	return uuid.NewString()
}

// NormalizeEmail lowercases and trims an email for case-insensitive
// directory lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// MaskEmail hides the local part of an address for logs and audit
// metadata: "alice@example.com" becomes "a***@example.com". Strings
// without an "@" are masked entirely.
func MaskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 0 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}
