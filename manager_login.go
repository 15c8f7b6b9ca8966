package authsession

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/modularsaas/authsession/internal"
	"github.com/modularsaas/authsession/realtime"
	"github.com/modularsaas/authsession/session"
)

// Login verifies credentials against the directory and, on success,
// installs the resolved account as the current session and persists a
// signed record. A failed login never disturbs an existing session.
//
// Both inputs are trimmed before use; inputs that are blank after
// trimming fail fast. Lookup tries the email exactly as typed, then
// lowercased, then the legacy directory when one is configured. Unknown
// emails and secret mismatches both return [ErrInvalidCredentials]; a
// disabled account returns [ErrAccountDisabled] regardless of whether
// the secret matches.
func (m *Manager) Login(ctx context.Context, email, password string) (Account, error) {
	if m == nil || m.directory == nil || m.verifier == nil {
		return Account{}, ErrManagerNotReady
	}

	if m.metrics != nil && m.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() {
			m.metrics.Observe(MetricLoginLatency, time.Since(start))
		}()
	}

	email = strings.TrimSpace(email)
	password = strings.TrimSpace(password)
	if email == "" || password == "" {
		m.metricInc(MetricLoginFailure)
		m.emitAudit(ctx, auditEventLoginFailure, false, "", ErrInvalidCredentials, maskEmailMeta(email, map[string]string{
			"reason": "empty_input",
		}))
		return Account{}, ErrInvalidCredentials
	}

	acct, source, err := m.lookupAccount(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			m.metricInc(MetricLoginFailure)
			m.emitAudit(ctx, auditEventLoginFailure, false, "", ErrInvalidCredentials, maskEmailMeta(email, map[string]string{
				"reason": "account_not_found",
			}))
			return Account{}, ErrInvalidCredentials
		}
		m.metricInc(MetricLoginFailure)
		m.emitAudit(ctx, auditEventLoginFailure, false, "", err, maskEmailMeta(email, map[string]string{
			"reason": "directory_error",
		}))
		return Account{}, err
	}

	// Disabled wins over a bad secret: the account is blocked either way
	// and the caller learns nothing about the stored credential.
	if acct.Disabled() {
		m.metricInc(MetricLoginDisabled)
		m.emitAudit(ctx, auditEventLoginDisabled, false, acct.ID, ErrAccountDisabled, maskEmailMeta(email, nil))
		return Account{}, ErrAccountDisabled
	}

	if !m.verifier.Verify(password, acct.CredentialSecret) {
		m.metricInc(MetricLoginFailure)
		m.emitAudit(ctx, auditEventLoginFailure, false, acct.ID, ErrInvalidCredentials, maskEmailMeta(email, map[string]string{
			"reason": "secret_mismatch",
		}))
		return Account{}, ErrInvalidCredentials
	}
	password = ""

	resolved := m.resolveAccount(acct)

	// lastLogin update is best-effort and targets whichever directory the
	// account came from. The resolved session only reflects the new stamp
	// when the write actually landed.
	now := time.Now().UTC()
	if _, err := source.Update(ctx, resolved.ID, Update{LastLogin: &now}); err != nil {
		m.metricInc(MetricLastLoginUpdateFailure)
		log.Print("authsession: lastLogin update failed")
	} else {
		resolved.LastLogin = now
	}

	m.persistSession(ctx, resolved, now, now)
	m.setSession(resolved)

	m.metricInc(MetricLoginSuccess)
	m.emitAudit(ctx, auditEventLoginSuccess, true, resolved.ID, nil, maskEmailMeta(resolved.Email, nil))
	m.publishPresence(ctx, realtime.TypePresenceJoin, resolved.ID, map[string]string{
		"role": string(resolved.Role),
	})

	return resolved, nil
}

// lookupAccount resolves an email to a directory record along with the
// directory that produced it, so followup writes hit the right store.
func (m *Manager) lookupAccount(ctx context.Context, email string) (Account, Directory, error) {
	acct, err := findByEmail(ctx, m.directory, email)
	if err == nil {
		return acct, m.directory, nil
	}
	if !errors.Is(err, ErrAccountNotFound) {
		return Account{}, nil, err
	}

	if m.legacy != nil {
		acct, err = findByEmail(ctx, m.legacy, email)
		if err == nil {
			return acct, m.legacy, nil
		}
		if !errors.Is(err, ErrAccountNotFound) {
			return Account{}, nil, err
		}
	}

	return Account{}, nil, ErrAccountNotFound
}

// findByEmail tries the address as given, then normalized, against one
// directory. An empty address never reaches List: an unset Email filter
// would turn the lookup into an unfiltered scan.
func findByEmail(ctx context.Context, dir Directory, email string) (Account, error) {
	if email == "" {
		return Account{}, ErrAccountNotFound
	}

	accts, err := dir.List(ctx, Filter{Email: email}, 1)
	if err != nil {
		return Account{}, err
	}
	if len(accts) > 0 {
		return accts[0], nil
	}

	normalized := internal.NormalizeEmail(email)
	if normalized != email {
		accts, err = dir.List(ctx, Filter{Email: normalized}, 1)
		if err != nil {
			return Account{}, err
		}
		if len(accts) > 0 {
			return accts[0], nil
		}
	}

	return Account{}, ErrAccountNotFound
}

// resolveAccount normalizes the stored role and applies the allowlist
// override. The directory record is never mutated; the override exists
// only in the resolved session.
func (m *Manager) resolveAccount(acct Account) Account {
	acct.Role = NormalizeRole(string(acct.Role))
	if m.config.Allowlist.contains(acct.Email) {
		acct.Role = RoleSuperadmin
	}
	acct.CredentialSecret = ""
	return acct
}

// persistSession writes the signed record. Storage failures degrade to an
// in-memory session: logged and counted, never fatal.
func (m *Manager) persistSession(ctx context.Context, acct Account, issuedAt, refreshedAt time.Time) {
	if m.store == nil {
		return
	}

	rec := session.Record{
		AccountID:   acct.ID,
		Email:       acct.Email,
		DisplayName: acct.DisplayName,
		AvatarURL:   acct.AvatarURL,
		Role:        string(acct.Role),
		Active:      acct.Active,
		LastLogin:   acct.LastLogin,
		IssuedAt:    issuedAt,
		RefreshedAt: refreshedAt,
	}

	if err := m.store.Save(ctx, rec); err != nil {
		m.metricInc(MetricSessionWriteFailure)
		m.emitAudit(ctx, auditEventSessionWriteFailed, false, acct.ID, err, nil)
		log.Print("authsession: session record write failed")
	}
}
