package authsession

import (
	"context"
	"strings"
	"time"
)

// Role is the authorization level attached to an [Account]. Unknown or
// empty role strings normalize to [RoleCustomer].
type Role string

const (
	// RoleCustomer is the default role for self-registered accounts.
	RoleCustomer Role = "customer"
	// RoleAdmin grants access to the staff workspace.
	RoleAdmin Role = "admin"
	// RoleSuperadmin grants role management and full administrative access.
	RoleSuperadmin Role = "superadmin"
)

// NormalizeRole maps an arbitrary role string onto a known [Role].
// Anything unrecognized (including the empty string) is a customer.
func NormalizeRole(raw string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleSuperadmin:
		return RoleSuperadmin
	default:
		return RoleCustomer
	}
}

// ValidRole reports whether raw names one of the three known roles exactly.
func ValidRole(raw string) bool {
	switch Role(raw) {
	case RoleCustomer, RoleAdmin, RoleSuperadmin:
		return true
	default:
		return false
	}
}

// Account is a registered identity held by the [Directory].
//
// CredentialSecret is either a bcrypt hash or, for seeded/dev records, a
// plaintext sentinel; see the credential package for the dual-mode policy.
// Active uses the directory's string flag convention: "0" means disabled,
// anything else counts as active (legacy records may omit the field).
type Account struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	CredentialSecret string    `json:"credentialSecret,omitempty"`
	DisplayName      string    `json:"displayName,omitempty"`
	AvatarURL        string    `json:"avatarUrl,omitempty"`
	Role             Role      `json:"role"`
	Active           string    `json:"isActive,omitempty"`
	LastLogin        time.Time `json:"lastLogin,omitzero"`
	CreatedAt        time.Time `json:"createdAt,omitzero"`
	UpdatedAt        time.Time `json:"updatedAt,omitzero"`
}

// Disabled reports whether the account is explicitly inactive.
func (a Account) Disabled() bool {
	return a.Active == "0"
}

// SessionState is the Manager's lifecycle state.
type SessionState uint8

const (
	// StateUnauthenticated means no session is held.
	StateUnauthenticated SessionState = iota
	// StateLoading means a restore or login is in flight.
	StateLoading
	// StateAuthenticated means a resolved session is held in memory.
	StateAuthenticated
)

func (s SessionState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Filter selects directory records by field equality. Zero-value fields
// are ignored. Implementations must support ID, Email, and Role.
type Filter struct {
	ID    string
	Email string
	Role  Role
}

// Update carries partial account mutations for [Directory.Update].
// Nil fields are left untouched; UpdatedAt is always stamped by the
// implementation.
type Update struct {
	Role        *Role
	Active      *string
	DisplayName *string
	AvatarURL   *string
	Secret      *string
	LastLogin   *time.Time
}

// Directory is the external record store holding accounts. Implementations
// live under directory/; the Manager only consumes this interface.
//
// List must return at most limit records when limit > 0. Update must fail
// for an unknown id.
type Directory interface {
	List(ctx context.Context, filter Filter, limit int) ([]Account, error)
	Create(ctx context.Context, account Account) (Account, error)
	Update(ctx context.Context, id string, update Update) (Account, error)
	Delete(ctx context.Context, id string) error
}

// RedirectFunc receives the logout redirect target. It is a hook into the
// UI shell; session state is already cleared when it fires.
type RedirectFunc func(target string)
