package authsession

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/modularsaas/authsession/realtime"
	"github.com/modularsaas/authsession/session"
)

// Initialize restores the session persisted by a previous process, if
// any. It never returns an error: every failure path lands in
// [StateUnauthenticated], and the returned state is the state the
// Manager settled in.
//
// Restore is fail-closed. A record that no longer maps to a usable
// account (unknown id, disabled, undecodable blob) is cleared from
// storage; transient storage or directory outages leave the record in
// place for the next attempt but still produce no session. The account
// is always re-resolved from the directory, so stale roles or profile
// fields in the record never leak into the restored session.
func (m *Manager) Initialize(ctx context.Context) SessionState {
	if m == nil || m.store == nil || m.directory == nil {
		return StateUnauthenticated
	}

	m.mu.Lock()
	m.state = StateLoading
	m.current = nil
	m.mu.Unlock()

	rec, err := m.store.Load(ctx)
	if err != nil {
		return m.finishRestore(m.restoreLoadFailed(ctx, err))
	}

	acct, err := m.findByID(ctx, rec.AccountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			m.clearStaleRecord(ctx, rec.AccountID, "account_not_found")
			return m.finishRestore(StateUnauthenticated)
		}
		m.metricInc(MetricRestoreFailure)
		m.emitAudit(ctx, auditEventRestoreFailure, false, rec.AccountID, err, nil)
		log.Print("authsession: session restore aborted, directory unavailable")
		return m.finishRestore(StateUnauthenticated)
	}

	if acct.Disabled() {
		m.clearStaleRecord(ctx, acct.ID, "account_disabled")
		return m.finishRestore(StateUnauthenticated)
	}

	resolved := m.resolveAccount(acct)

	// Refresh the persisted record so the next restore starts from the
	// re-resolved snapshot. IssuedAt survives from the original login.
	m.persistSession(ctx, resolved, rec.IssuedAt, time.Now().UTC())
	m.setSession(resolved)

	m.metricInc(MetricRestoreSuccess)
	m.emitAudit(ctx, auditEventSessionRestored, true, resolved.ID, nil, maskEmailMeta(resolved.Email, nil))
	m.publishPresence(ctx, realtime.TypePresenceJoin, resolved.ID, map[string]string{
		"role": string(resolved.Role),
	})

	return m.finishRestore(StateAuthenticated)
}

func (m *Manager) restoreLoadFailed(ctx context.Context, err error) SessionState {
	switch {
	case errors.Is(err, session.ErrNoRecord):
		return StateUnauthenticated
	case errors.Is(err, session.ErrRecordInvalid):
		m.clearStaleRecord(ctx, "", "record_invalid")
		return StateUnauthenticated
	default:
		m.metricInc(MetricRestoreFailure)
		m.emitAudit(ctx, auditEventRestoreFailure, false, "", err, nil)
		log.Print("authsession: session restore aborted, storage unavailable")
		return StateUnauthenticated
	}
}

// clearStaleRecord removes a record that can no longer produce a session.
// The clear itself is best-effort.
func (m *Manager) clearStaleRecord(ctx context.Context, accountID, reason string) {
	if err := m.store.Clear(ctx); err != nil {
		log.Print("authsession: stale session record clear failed")
	}
	m.metricInc(MetricRestoreStale)
	m.emitAudit(ctx, auditEventSessionStale, false, accountID, session.ErrRecordInvalid, func() map[string]string {
		return map[string]string{
			"reason": reason,
		}
	})
}

// finishRestore pins the terminal state when a restore path bailed before
// setSession ran. Loading must never outlive Initialize.
func (m *Manager) finishRestore(state SessionState) SessionState {
	m.mu.Lock()
	if m.state == StateLoading {
		m.state = state
	}
	state = m.state
	m.mu.Unlock()
	return state
}

// findByID resolves an account id against the primary directory, then the
// legacy one.
func (m *Manager) findByID(ctx context.Context, id string) (Account, error) {
	if id == "" {
		return Account{}, ErrAccountNotFound
	}

	accts, err := m.directory.List(ctx, Filter{ID: id}, 1)
	if err != nil {
		return Account{}, err
	}
	if len(accts) > 0 {
		return accts[0], nil
	}

	if m.legacy != nil {
		accts, err = m.legacy.List(ctx, Filter{ID: id}, 1)
		if err != nil {
			return Account{}, err
		}
		if len(accts) > 0 {
			return accts[0], nil
		}
	}

	return Account{}, ErrAccountNotFound
}
