package authsession

import (
	"context"
	"errors"
	"time"
)

// UpdateUserRole changes the stored role of the account with the given
// id. Only a superadmin session may call it; everyone else gets
// [ErrForbidden] regardless of whether the target exists.
//
// When a superadmin demotes their own account, the in-memory session and
// persisted record are refreshed immediately, so the change takes effect
// without a reload. An allowlisted email still resolves back to
// superadmin: the allowlist overrides the stored role at read time.
func (m *Manager) UpdateUserRole(ctx context.Context, accountID string, role Role) (Account, error) {
	if m == nil || m.directory == nil {
		return Account{}, ErrManagerNotReady
	}

	actor, ok := m.Current()
	if !ok || actor.Role != RoleSuperadmin {
		m.metricInc(MetricRoleUpdateDenied)
		m.emitAudit(ctx, auditEventRoleUpdateDenied, false, actor.ID, ErrForbidden, func() map[string]string {
			return map[string]string{
				"target": accountID,
			}
		})
		return Account{}, ErrForbidden
	}

	if !ValidRole(string(role)) {
		m.metricInc(MetricRoleUpdateDenied)
		m.emitAudit(ctx, auditEventRoleUpdateDenied, false, actor.ID, ErrInvalidRole, func() map[string]string {
			return map[string]string{
				"target": accountID,
				"role":   string(role),
			}
		})
		return Account{}, ErrInvalidRole
	}

	updated, err := m.applyRoleUpdate(ctx, accountID, role)
	if err != nil {
		m.emitAudit(ctx, auditEventRoleUpdateDenied, false, actor.ID, err, func() map[string]string {
			return map[string]string{
				"target": accountID,
				"role":   string(role),
			}
		})
		return Account{}, err
	}

	m.metricInc(MetricRoleUpdate)
	m.emitAudit(ctx, auditEventRoleUpdate, true, actor.ID, nil, func() map[string]string {
		return map[string]string{
			"target": updated.ID,
			"role":   string(role),
		}
	})

	resolved := m.resolveAccount(updated)
	if actor.ID == updated.ID {
		m.persistSession(ctx, resolved, time.Now().UTC(), time.Now().UTC())
		m.setSession(resolved)
	}

	return resolved, nil
}

// applyRoleUpdate writes the role to whichever directory holds the
// account.
func (m *Manager) applyRoleUpdate(ctx context.Context, accountID string, role Role) (Account, error) {
	updated, err := m.directory.Update(ctx, accountID, Update{Role: &role})
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, ErrAccountNotFound) {
		return Account{}, err
	}

	if m.legacy != nil {
		updated, err = m.legacy.Update(ctx, accountID, Update{Role: &role})
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, ErrAccountNotFound) {
			return Account{}, err
		}
	}

	return Account{}, ErrAccountNotFound
}
