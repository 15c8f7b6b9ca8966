// Package seed provisions well-known accounts for fresh or development
// deployments. Seeding is idempotent: existing emails are left untouched,
// so it is safe to run at every startup.
package seed

import (
	"context"
	"fmt"

	"github.com/modularsaas/authsession"
	"github.com/modularsaas/authsession/credential"
)

// Account pairs a directory record with the plaintext secret to hash at
// seed time.
type Account struct {
	Email       string
	Secret      string
	DisplayName string
	Role        authsession.Role
}

// Defaults is the baseline account set for a fresh deployment.
var Defaults = []Account{
	{
		Email:       "admin@modularsaas.com",
		Secret:      "admin123",
		DisplayName: "Platform Admin",
		Role:        authsession.RoleSuperadmin,
	},
	{
		Email:       "customer@example.com",
		Secret:      "customer123",
		DisplayName: "Demo Customer",
		Role:        authsession.RoleCustomer,
	},
	{
		Email:       "support@modularsaas.com",
		Secret:      "support123",
		DisplayName: "Support Staff",
		Role:        authsession.RoleAdmin,
	},
}

// EnsureDefaults seeds the baseline account set. It returns the number of
// accounts actually created.
func EnsureDefaults(ctx context.Context, dir authsession.Directory) (int, error) {
	return Ensure(ctx, dir, Defaults)
}

// Ensure creates every listed account that does not already exist.
// Secrets are bcrypt-hashed before they reach the directory.
func Ensure(ctx context.Context, dir authsession.Directory, accounts []Account) (int, error) {
	verifier, err := credential.New(credential.Config{})
	if err != nil {
		return 0, err
	}

	created := 0
	for _, a := range accounts {
		existing, err := dir.List(ctx, authsession.Filter{Email: a.Email}, 1)
		if err != nil {
			return created, fmt.Errorf("seed lookup %s: %w", a.Email, err)
		}
		if len(existing) > 0 {
			continue
		}

		hash, err := verifier.Hash(a.Secret)
		if err != nil {
			return created, fmt.Errorf("seed hash %s: %w", a.Email, err)
		}

		if _, err := dir.Create(ctx, authsession.Account{
			Email:            a.Email,
			CredentialSecret: hash,
			DisplayName:      a.DisplayName,
			Role:             a.Role,
			Active:           "1",
		}); err != nil {
			return created, fmt.Errorf("seed create %s: %w", a.Email, err)
		}
		created++
	}
	return created, nil
}

// EnsureDevAdmin guarantees a superadmin exists with the given email,
// creating it with the given secret when missing and promoting it when
// present with a lesser role. Development tooling only.
func EnsureDevAdmin(ctx context.Context, dir authsession.Directory, email, secret string) (authsession.Account, error) {
	existing, err := dir.List(ctx, authsession.Filter{Email: email}, 1)
	if err != nil {
		return authsession.Account{}, fmt.Errorf("dev admin lookup: %w", err)
	}

	if len(existing) > 0 {
		acct := existing[0]
		if acct.Role == authsession.RoleSuperadmin {
			return acct, nil
		}
		role := authsession.RoleSuperadmin
		acct, err = dir.Update(ctx, acct.ID, authsession.Update{Role: &role})
		if err != nil {
			return authsession.Account{}, fmt.Errorf("dev admin promote: %w", err)
		}
		return acct, nil
	}

	if _, err := Ensure(ctx, dir, []Account{{
		Email:       email,
		Secret:      secret,
		DisplayName: "Dev Admin",
		Role:        authsession.RoleSuperadmin,
	}}); err != nil {
		return authsession.Account{}, err
	}

	accts, err := dir.List(ctx, authsession.Filter{Email: email}, 1)
	if err != nil || len(accts) == 0 {
		return authsession.Account{}, fmt.Errorf("dev admin readback: %w", err)
	}
	return accts[0], nil
}
