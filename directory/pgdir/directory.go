package pgdir

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/modularsaas/authsession"
	"github.com/modularsaas/authsession/internal"
)

// ErrEmailExists is returned by Create when the email is already taken.
var ErrEmailExists = errors.New("email already registered")

var _ authsession.Directory = (*Directory)(nil)

const accountColumns = `id, email, secret, display_name, avatar_url, role, is_active, last_login, created_at, updated_at`

// Directory is a PostgreSQL-backed [authsession.Directory].
type Directory struct {
	db *Connection
}

// New binds a Directory to an open connection.
func New(db *Connection) *Directory {
	return &Directory{db: db}
}

// List returns accounts matching filter, at most limit when limit > 0.
func (d *Directory) List(ctx context.Context, filter authsession.Filter, limit int) ([]authsession.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts`

	var (
		conds []string
		args  []any
	)
	if filter.ID != "" {
		args = append(args, filter.ID)
		conds = append(conds, fmt.Sprintf("id = $%d", len(args)))
	}
	if filter.Email != "" {
		args = append(args, filter.Email)
		conds = append(conds, fmt.Sprintf("email = $%d", len(args)))
	}
	if filter.Role != "" {
		args = append(args, string(filter.Role))
		conds = append(conds, fmt.Sprintf("role = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at"
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := d.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var out []authsession.Account
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, acct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return out, nil
}

// Create inserts a new account. A blank ID is assigned.
func (d *Directory) Create(ctx context.Context, acct authsession.Account) (authsession.Account, error) {
	if acct.Email == "" {
		return authsession.Account{}, errors.New("email required")
	}
	if acct.ID == "" {
		acct.ID = internal.NewAccountID()
	}
	if acct.Role == "" {
		acct.Role = authsession.RoleCustomer
	}
	now := time.Now().UTC()
	acct.CreatedAt = now
	acct.UpdatedAt = now

	query := `INSERT INTO accounts (` + accountColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			  ON CONFLICT (email) DO NOTHING`

	tag, err := d.db.Exec(ctx, query,
		acct.ID, acct.Email, acct.CredentialSecret, acct.DisplayName, acct.AvatarURL,
		string(acct.Role), acct.Active, nullTime(acct.LastLogin), acct.CreatedAt, acct.UpdatedAt,
	)
	if err != nil {
		return authsession.Account{}, fmt.Errorf("failed to create account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return authsession.Account{}, ErrEmailExists
	}
	return acct, nil
}

// Update applies the non-nil fields of update and stamps updated_at.
func (d *Directory) Update(ctx context.Context, id string, update authsession.Update) (authsession.Account, error) {
	sets := []string{}
	args := []any{}

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Role != nil {
		add("role", string(*update.Role))
	}
	if update.Active != nil {
		add("is_active", *update.Active)
	}
	if update.DisplayName != nil {
		add("display_name", *update.DisplayName)
	}
	if update.AvatarURL != nil {
		add("avatar_url", *update.AvatarURL)
	}
	if update.Secret != nil {
		add("secret", *update.Secret)
	}
	if update.LastLogin != nil {
		add("last_login", update.LastLogin.UTC())
	}
	add("updated_at", time.Now().UTC())

	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE accounts SET %s WHERE id = $%d RETURNING `+accountColumns,
		strings.Join(sets, ", "), len(args),
	)

	row := d.db.QueryRow(ctx, query, args...)
	acct, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return authsession.Account{}, authsession.ErrAccountNotFound
		}
		return authsession.Account{}, err
	}
	return acct, nil
}

// Delete removes the account. Deleting an unknown id is a no-op.
func (d *Directory) Delete(ctx context.Context, id string) error {
	if _, err := d.db.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanAccount(row scannable) (authsession.Account, error) {
	var (
		acct      authsession.Account
		role      string
		lastLogin *time.Time
	)
	err := row.Scan(
		&acct.ID, &acct.Email, &acct.CredentialSecret, &acct.DisplayName, &acct.AvatarURL,
		&role, &acct.Active, &lastLogin, &acct.CreatedAt, &acct.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return authsession.Account{}, pgx.ErrNoRows
		}
		return authsession.Account{}, fmt.Errorf("failed to scan account: %w", err)
	}
	acct.Role = authsession.Role(role)
	if lastLogin != nil {
		acct.LastLogin = lastLogin.UTC()
	}
	return acct, nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}
