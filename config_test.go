package authsession

import (
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Session.StorageKey != "authsession:current" {
		t.Fatalf("unexpected storage key %q", cfg.Session.StorageKey)
	}
	if cfg.Credential.AllowPlaintext {
		t.Fatal("plaintext secrets must be off by default")
	}
	if cfg.Audit.Enabled || cfg.Metrics.Enabled {
		t.Fatal("audit and metrics must be off by default")
	}
	if cfg.Audit.BufferSize != 1024 || !cfg.Audit.DropIfFull {
		t.Fatalf("unexpected audit defaults %+v", cfg.Audit)
	}
}

func TestConfigValidate(t *testing.T) {
	valid := func() Config {
		cfg := DefaultConfig()
		cfg.Session.SigningKey = []byte("0123456789abcdef")
		return cfg
	}

	if err := func() error { cfg := valid(); return cfg.Validate() }(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "empty storage key",
			mutate:  func(c *Config) { c.Session.StorageKey = "" },
			wantErr: "StorageKey",
		},
		{
			name:    "missing signing key",
			mutate:  func(c *Config) { c.Session.SigningKey = nil },
			wantErr: "SigningKey",
		},
		{
			name:    "short signing key",
			mutate:  func(c *Config) { c.Session.SigningKey = []byte("too-short") },
			wantErr: "SigningKey",
		},
		{
			name: "audit enabled with zero buffer",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.BufferSize = 0
			},
			wantErr: "BufferSize",
		},
		{
			name:    "blank allowlist entry",
			mutate:  func(c *Config) { c.Allowlist.SuperadminEmails = []string{"  "} },
			wantErr: "blank",
		},
		{
			name:    "non-email allowlist entry",
			mutate:  func(c *Config) { c.Allowlist.SuperadminEmails = []string{"not-an-email"} },
			wantErr: "email",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error mentioning %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestAllowlistContains(t *testing.T) {
	a := AllowlistConfig{SuperadminEmails: []string{"Boss@ModularSaaS.com"}}

	if !a.contains("boss@modularsaas.com") {
		t.Fatal("expected case-insensitive match")
	}
	if a.contains("intruder@modularsaas.com") {
		t.Fatal("unexpected match")
	}
	if (AllowlistConfig{}).contains("boss@modularsaas.com") {
		t.Fatal("empty allowlist must match nothing")
	}
}

func TestCloneConfigIsolation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Session.SigningKey = []byte("0123456789abcdef")
	cfg.Allowlist.SuperadminEmails = []string{"boss@modularsaas.com"}

	clone := cloneConfig(cfg)
	cfg.Session.SigningKey[0] = 'X'
	cfg.Allowlist.SuperadminEmails[0] = "intruder@example.com"

	if clone.Session.SigningKey[0] != '0' {
		t.Fatal("signing key shared with the original")
	}
	if clone.Allowlist.SuperadminEmails[0] != "boss@modularsaas.com" {
		t.Fatal("allowlist shared with the original")
	}
}
