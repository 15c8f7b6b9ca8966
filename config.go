package authsession

import (
	"errors"
	"strings"
)

// Config defines the Manager's behavior. Configure it before Build and
// treat it as immutable afterwards.
type Config struct {
	Session    SessionConfig
	Credential CredentialConfig
	Allowlist  AllowlistConfig
	Audit      AuditConfig
	Metrics    MetricsConfig
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls the persisted session record.
type SessionConfig struct {
	// StorageKey is the single fixed key the session record lives under.
	// One key per storage scope means last login wins.
	StorageKey string
	// SigningKey signs the persisted record (HS256). Records that fail
	// signature or shape checks are treated as stale on restore.
	SigningKey []byte
}

/*
====================================
CREDENTIAL CONFIG
====================================
*/

// CredentialConfig controls secret verification.
type CredentialConfig struct {
	// AllowPlaintext enables equality comparison for stored secrets that
	// carry no recognized hash prefix. Seed/dev records depend on it;
	// production deployments must leave it off.
	AllowPlaintext bool
}

/*
====================================
ALLOWLIST CONFIG
====================================
*/

// AllowlistConfig is the privileged-email override. Matching accounts
// resolve to superadmin at read time; the stored role is never mutated.
type AllowlistConfig struct {
	SuperadminEmails []string
}

func (a AllowlistConfig) contains(email string) bool {
	for _, e := range a.SuperadminEmails {
		if strings.EqualFold(e, email) {
			return true
		}
	}
	return false
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig controls the in-process metrics system.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the baseline configuration: audit and metrics off,
// plaintext secrets rejected, no allowlist.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Session: SessionConfig{
			StorageKey: "authsession:current",
		},
		Credential: CredentialConfig{
			AllowPlaintext: false,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Session.SigningKey = cloneBytes(cfg.Session.SigningKey)
	out.Allowlist.SuperadminEmails = append([]string(nil), cfg.Allowlist.SuperadminEmails...)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.Session.StorageKey == "" {
		return errors.New("Session StorageKey must not be empty")
	}
	if len(c.Session.SigningKey) < 16 {
		return errors.New("Session SigningKey must be at least 16 bytes")
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when Audit is enabled")
	}
	for _, e := range c.Allowlist.SuperadminEmails {
		if strings.TrimSpace(e) == "" {
			return errors.New("Allowlist entries must not be blank")
		}
		if !strings.Contains(e, "@") {
			return errors.New("Allowlist entries must be email addresses")
		}
	}
	return nil
}
