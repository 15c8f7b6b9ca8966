package authsession

import (
	"context"
	"errors"
	"testing"

	"github.com/modularsaas/authsession/session"
)

func TestLogoutClearsSessionAndStorage(t *testing.T) {
	acct := testAccount(t, "u1", "alice@example.com", "password-1", RoleCustomer)
	f := buildManager(t, testConfig(), newMockDirectory(acct))
	ctx := context.Background()

	if _, err := f.manager.Login(ctx, "alice@example.com", "password-1"); err != nil {
		t.Fatalf("login: %v", err)
	}

	f.manager.Logout(ctx)

	if got := f.manager.State(); got != StateUnauthenticated {
		t.Fatalf("expected unauthenticated, got %v", got)
	}
	if _, ok := f.manager.Current(); ok {
		t.Fatal("expected no current account after logout")
	}
	if _, err := f.storedRecord(t); !errors.Is(err, session.ErrNoRecord) {
		t.Fatalf("expected cleared record, got %v", err)
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	f := buildManager(t, testConfig(), newMockDirectory())
	ctx := context.Background()

	f.manager.Logout(ctx)
	f.manager.Logout(ctx)

	if got := f.manager.State(); got != StateUnauthenticated {
		t.Fatalf("expected unauthenticated, got %v", got)
	}
}

func TestLogoutRedirect(t *testing.T) {
	acct := testAccount(t, "u1", "alice@example.com", "password-1", RoleCustomer)

	var targets []string
	f := buildManager(t, testConfig(), newMockDirectory(acct), func(b *Builder) {
		b.WithRedirect(func(target string) { targets = append(targets, target) })
	})
	ctx := context.Background()

	if _, err := f.manager.Login(ctx, "alice@example.com", "password-1"); err != nil {
		t.Fatalf("login: %v", err)
	}
	f.manager.Logout(ctx)

	if _, err := f.manager.Login(ctx, "alice@example.com", "password-1"); err != nil {
		t.Fatalf("second login: %v", err)
	}
	f.manager.Logout(ctx, "/goodbye")

	if len(targets) != 2 || targets[0] != "/" || targets[1] != "/goodbye" {
		t.Fatalf("unexpected redirect targets %v", targets)
	}
}

func TestLogoutRedirectFiresWithoutSession(t *testing.T) {
	var fired bool
	f := buildManager(t, testConfig(), newMockDirectory(), func(b *Builder) {
		b.WithRedirect(func(string) { fired = true })
	})

	f.manager.Logout(context.Background())

	if !fired {
		t.Fatal("expected redirect even without an active session")
	}
}

func TestLogoutSurvivesStorageOutage(t *testing.T) {
	acct := testAccount(t, "u1", "alice@example.com", "password-1", RoleCustomer)
	f := buildManager(t, testConfig(), newMockDirectory(acct))
	ctx := context.Background()

	if _, err := f.manager.Login(ctx, "alice@example.com", "password-1"); err != nil {
		t.Fatalf("login: %v", err)
	}
	f.mr.Close()

	f.manager.Logout(ctx)

	if got := f.manager.State(); got != StateUnauthenticated {
		t.Fatalf("expected unauthenticated despite storage outage, got %v", got)
	}
}

func TestLogoutMetric(t *testing.T) {
	acct := testAccount(t, "u1", "alice@example.com", "password-1", RoleCustomer)
	cfg := testConfig()
	cfg.Metrics.Enabled = true
	f := buildManager(t, cfg, newMockDirectory(acct))
	ctx := context.Background()

	if _, err := f.manager.Login(ctx, "alice@example.com", "password-1"); err != nil {
		t.Fatalf("login: %v", err)
	}
	f.manager.Logout(ctx)
	f.manager.Logout(ctx)

	snap := f.manager.MetricsSnapshot()
	if snap.Counters[MetricLogout] != 1 {
		t.Fatalf("expected 1 logout, got %d", snap.Counters[MetricLogout])
	}
}
