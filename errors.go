package authsession

import "errors"

var (
	// ErrInvalidCredentials covers bad email/password combinations,
	// including unknown emails. The message is deliberately generic so
	// callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAccountDisabled is returned when credentials resolve to an
	// inactive account. Distinct from ErrInvalidCredentials so the UI can
	// direct the user to support instead of a retry.
	ErrAccountDisabled = errors.New("account is disabled, contact support")
	// ErrForbidden is returned when the acting session lacks the role
	// required for a privileged operation.
	ErrForbidden = errors.New("operation requires superadmin role")
	// ErrAccountNotFound is returned by role updates targeting an
	// unknown account id.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInvalidRole is returned when a role update names an unknown role.
	ErrInvalidRole = errors.New("invalid role")
	// ErrStorageUnavailable marks a session store that cannot be reached.
	// The Manager degrades to an in-memory-only session instead of
	// failing the operation.
	ErrStorageUnavailable = errors.New("session storage unavailable")
	// ErrManagerNotReady is returned when a Manager is used before Build
	// wired its collaborators.
	ErrManagerNotReady = errors.New("manager not initialized")
)
