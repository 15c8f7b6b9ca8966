package authsession

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/modularsaas/authsession/credential"
	"github.com/modularsaas/authsession/internal"
	"github.com/modularsaas/authsession/realtime"
	"github.com/modularsaas/authsession/session"
)

// Manager holds the current authenticated session and mediates every
// state transition: login, restore, logout, and role changes. Construct
// one via [New]; zero-value Managers are not usable.
//
// All exported methods are safe for concurrent use. The in-memory session
// is the source of truth between operations; the persisted record only
// matters at restore time.
type Manager struct {
	config    Config
	store     *session.Store
	directory Directory
	legacy    Directory
	verifier  *credential.Verifier
	audit     *auditDispatcher
	metrics   *Metrics
	presence  realtime.Publisher
	redirect  RedirectFunc

	mu      sync.RWMutex
	state   SessionState
	current *Account
}

// State returns the Manager's lifecycle state.
func (m *Manager) State() SessionState {
	if m == nil {
		return StateUnauthenticated
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Current returns a copy of the authenticated account, or false when no
// session is held.
func (m *Manager) Current() (Account, bool) {
	if m == nil {
		return Account{}, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.state != StateAuthenticated || m.current == nil {
		return Account{}, false
	}
	return *m.current, true
}

// HasRole reports whether the current session's role is one of the
// given roles. It is a plain membership check, not a hierarchy: an
// admin session does not pass a customer-only gate. Without an
// authenticated session it is always false.
func (m *Manager) HasRole(roles ...Role) bool {
	acct, ok := m.Current()
	if !ok {
		return false
	}

	for _, r := range roles {
		if acct.Role == r {
			return true
		}
	}
	return false
}

// Logout clears the session unconditionally. It is idempotent: logging
// out without a session is a no-op that still clears storage. When a
// redirect hook is configured it fires after state is cleared, with the
// optional target (default "/").
func (m *Manager) Logout(ctx context.Context, target ...string) {
	if m == nil {
		return
	}

	m.mu.Lock()
	hadSession := m.current != nil
	var accountID string
	if m.current != nil {
		accountID = m.current.ID
	}
	m.current = nil
	m.state = StateUnauthenticated
	m.mu.Unlock()

	if m.store != nil {
		if err := m.store.Clear(ctx); err != nil {
			log.Print("authsession: session record clear failed")
		}
	}

	if hadSession {
		m.metricInc(MetricLogout)
		m.publishPresence(ctx, realtime.TypePresenceLeave, accountID, nil)
	}
	m.emitAudit(ctx, auditEventLogout, true, accountID, nil, nil)

	if m.redirect != nil {
		dest := "/"
		if len(target) > 0 && target[0] != "" {
			dest = target[0]
		}
		m.redirect(dest)
	}
}

// Close stops the audit dispatcher, draining queued events. The Manager
// must not be used after Close.
func (m *Manager) Close() {
	if m == nil {
		return
	}
	if m.audit != nil {
		m.audit.Close()
	}
}

// AuditDropped returns the count of audit events discarded because the
// buffer was full.
func (m *Manager) AuditDropped() uint64 {
	if m == nil || m.audit == nil {
		return 0
	}
	return m.audit.Dropped()
}

// MetricsSnapshot returns a copy of all counters and histograms.
func (m *Manager) MetricsSnapshot() MetricsSnapshot {
	if m == nil || m.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return m.metrics.Snapshot()
}

func (m *Manager) metricInc(id MetricID) {
	if m == nil || m.metrics == nil {
		return
	}
	m.metrics.Inc(id)
}

func (m *Manager) setSession(acct Account) {
	m.mu.Lock()
	m.current = &acct
	m.state = StateAuthenticated
	m.mu.Unlock()
}

func (m *Manager) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	accountID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if m == nil || m.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		AccountID: accountID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	m.audit.Emit(ctx, event)
}

func (m *Manager) publishPresence(ctx context.Context, msgType, accountID string, meta map[string]string) {
	if m == nil || m.presence == nil || accountID == "" {
		return
	}
	msg := realtime.Message{
		Type:      msgType,
		Payload:   meta,
		SenderID:  accountID,
		Timestamp: time.Now().UTC(),
	}
	// Presence is advisory; a failed publish never affects the session.
	if err := m.presence.Publish(ctx, msg); err != nil {
		log.Print("authsession: presence publish failed")
	}
}

// AuditErrorCode is the stable error identifier carried in audit events.
type AuditErrorCode string

const (
	auditErrInvalidCredentials AuditErrorCode = "invalid_credentials"
	auditErrAccountDisabled    AuditErrorCode = "account_disabled"
	auditErrForbidden          AuditErrorCode = "forbidden"
	auditErrAccountNotFound    AuditErrorCode = "account_not_found"
	auditErrInvalidRole        AuditErrorCode = "invalid_role"
	auditErrStaleRecord        AuditErrorCode = "stale_record"
	auditErrUnavailable        AuditErrorCode = "backend_unavailable"
	auditErrNotReady           AuditErrorCode = "manager_not_ready"
	auditErrInternal           AuditErrorCode = "internal_error"
)

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrAccountDisabled):
		return auditErrAccountDisabled
	case errors.Is(err, ErrForbidden):
		return auditErrForbidden
	case errors.Is(err, ErrAccountNotFound):
		return auditErrAccountNotFound
	case errors.Is(err, ErrInvalidRole):
		return auditErrInvalidRole
	case errors.Is(err, session.ErrRecordInvalid):
		return auditErrStaleRecord
	case errors.Is(err, ErrStorageUnavailable),
		errors.Is(err, session.ErrStoreUnavailable):
		return auditErrUnavailable
	case errors.Is(err, ErrManagerNotReady):
		return auditErrNotReady
	default:
		return auditErrInternal
	}
}

// maskEmailMeta builds the shared metadata map carrying a masked email.
func maskEmailMeta(email string, extra map[string]string) func() map[string]string {
	return func() map[string]string {
		meta := map[string]string{
			"email": internal.MaskEmail(email),
		}
		for k, v := range extra {
			meta[k] = v
		}
		return meta
	}
}
