// Package authsession manages the authenticated session of a modular
// SaaS client: credential login against a pluggable account directory,
// session persistence across process restarts, and role-gated
// authorization for admin and superadmin surfaces.
//
// The package is the public surface. It exposes [Manager], [Builder],
// [Config], and the value types (Account, SessionState, AuditEvent,
// MetricsSnapshot). Directory implementations live under directory/,
// credential hashing under credential/, and the persisted record codec
// under session/.
//
// # Session model
//
// Exactly one session exists per Manager, stored in memory and mirrored
// to a single fixed storage key as a signed record. Restore always
// re-resolves the account from the directory; the persisted record is a
// pointer, never an authority. When storage is unreachable the Manager
// degrades to an in-memory session rather than failing login.
//
// Manager methods are safe to call from multiple goroutines after
// initialization through [Builder.Build].
package authsession
