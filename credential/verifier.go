package credential

import (
	"crypto/subtle"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const minPassBytes = 6

// Config controls hashing cost and the plaintext compatibility mode.
type Config struct {
	// Cost is the bcrypt work factor. Zero means bcrypt.DefaultCost.
	Cost int
	// AllowPlaintext permits equality comparison against stored secrets
	// with no recognized hash prefix. Dev/seed records only.
	AllowPlaintext bool
}

// Verifier hashes and checks account secrets.
//
// Verifier instances are intended to be configured during initialization
// and then treated as immutable.
type Verifier struct {
	config Config
}

// New validates cfg and returns a Verifier.
func New(cfg Config) (*Verifier, error) {
	if cfg.Cost == 0 {
		cfg.Cost = bcrypt.DefaultCost
	}
	if cfg.Cost < bcrypt.MinCost || cfg.Cost > bcrypt.MaxCost {
		return nil, errors.New("bcrypt cost out of range")
	}
	return &Verifier{config: cfg}, nil
}

// Hash returns a bcrypt hash of password.
func (v *Verifier) Hash(password string) (string, error) {
	// Password processing uses raw string bytes exactly as provided.
	if len(password) < minPassBytes {
		return "", errors.New("password must be at least 6 bytes")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), v.config.Cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether password matches the stored secret under the
// dual-mode policy. A stored secret that is neither a bcrypt hash nor
// eligible for plaintext comparison never matches.
func (v *Verifier) Verify(password, stored string) bool {
	if stored == "" {
		return false
	}
	if IsHashed(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	if !v.config.AllowPlaintext {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
}

// IsHashed reports whether stored carries a recognized bcrypt prefix.
func IsHashed(stored string) bool {
	return strings.HasPrefix(stored, "$2a$") ||
		strings.HasPrefix(stored, "$2b$") ||
		strings.HasPrefix(stored, "$2y$")
}
