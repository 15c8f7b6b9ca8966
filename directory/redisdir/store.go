package redisdir

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/modularsaas/authsession"
	"github.com/modularsaas/authsession/internal"
)

// ErrEmailExists is returned by Create when the email is already indexed.
var ErrEmailExists = errors.New("email already registered")

// ErrUnavailable marks a Redis backend that cannot be reached.
var ErrUnavailable = errors.New("account directory unavailable")

const createScript = `
if redis.call("HEXISTS", KEYS[2], ARGV[2]) == 1 then
  return 0
end
redis.call("HSET", KEYS[1], ARGV[1], ARGV[3])
redis.call("HSET", KEYS[2], ARGV[2], ARGV[1])
return 1
`

var createLua = redis.NewScript(createScript)

// Directory is a Redis-backed [authsession.Directory].
type Directory struct {
	rdb    *redis.Client
	prefix string
}

// New wraps a Redis client. All keys are namespaced under prefix.
func New(rdb *redis.Client, prefix string) *Directory {
	if prefix == "" {
		prefix = "authsession"
	}
	return &Directory{rdb: rdb, prefix: prefix}
}

func (d *Directory) accountsKey() string {
	return d.prefix + ":accounts"
}

func (d *Directory) emailIndexKey() string {
	return d.prefix + ":accounts:by-email"
}

// List returns accounts matching filter, at most limit when limit > 0.
// ID and Email lookups are point reads; Role filtering scans the hash.
func (d *Directory) List(ctx context.Context, filter authsession.Filter, limit int) ([]authsession.Account, error) {
	switch {
	case filter.ID != "":
		acct, err := d.getByID(ctx, filter.ID)
		if err != nil {
			if errors.Is(err, authsession.ErrAccountNotFound) {
				return nil, nil
			}
			return nil, err
		}
		if !matches(acct, filter) {
			return nil, nil
		}
		return []authsession.Account{acct}, nil

	case filter.Email != "":
		id, err := d.rdb.HGet(ctx, d.emailIndexKey(), filter.Email).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return nil, nil
			}
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		acct, err := d.getByID(ctx, id)
		if err != nil {
			// Index entry without a record means a torn delete; treat as
			// absent rather than surfacing the inconsistency to login.
			if errors.Is(err, authsession.ErrAccountNotFound) {
				return nil, nil
			}
			return nil, err
		}
		if !matches(acct, filter) {
			return nil, nil
		}
		return []authsession.Account{acct}, nil

	default:
		return d.scan(ctx, filter, limit)
	}
}

// Create stores a new account. A blank ID is assigned; CreatedAt and
// UpdatedAt are stamped. The email must not already be indexed.
func (d *Directory) Create(ctx context.Context, acct authsession.Account) (authsession.Account, error) {
	if acct.Email == "" {
		return authsession.Account{}, errors.New("email required")
	}
	if acct.ID == "" {
		acct.ID = internal.NewAccountID()
	}
	now := time.Now().UTC()
	acct.CreatedAt = now
	acct.UpdatedAt = now

	blob, err := json.Marshal(acct)
	if err != nil {
		return authsession.Account{}, err
	}

	created, err := createLua.Run(ctx, d.rdb,
		[]string{d.accountsKey(), d.emailIndexKey()},
		acct.ID, acct.Email, string(blob),
	).Int64()
	if err != nil {
		return authsession.Account{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if created == 0 {
		return authsession.Account{}, ErrEmailExists
	}

	return acct, nil
}

// Update applies the non-nil fields of update and stamps UpdatedAt.
func (d *Directory) Update(ctx context.Context, id string, update authsession.Update) (authsession.Account, error) {
	acct, err := d.getByID(ctx, id)
	if err != nil {
		return authsession.Account{}, err
	}

	if update.Role != nil {
		acct.Role = *update.Role
	}
	if update.Active != nil {
		acct.Active = *update.Active
	}
	if update.DisplayName != nil {
		acct.DisplayName = *update.DisplayName
	}
	if update.AvatarURL != nil {
		acct.AvatarURL = *update.AvatarURL
	}
	if update.Secret != nil {
		acct.CredentialSecret = *update.Secret
	}
	if update.LastLogin != nil {
		acct.LastLogin = update.LastLogin.UTC()
	}
	acct.UpdatedAt = time.Now().UTC()

	blob, err := json.Marshal(acct)
	if err != nil {
		return authsession.Account{}, err
	}
	if err := d.rdb.HSet(ctx, d.accountsKey(), id, string(blob)).Err(); err != nil {
		return authsession.Account{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	return acct, nil
}

// Delete removes the account and its email index entry. Deleting an
// unknown id is a no-op.
func (d *Directory) Delete(ctx context.Context, id string) error {
	acct, err := d.getByID(ctx, id)
	if err != nil {
		if errors.Is(err, authsession.ErrAccountNotFound) {
			return nil
		}
		return err
	}

	pipe := d.rdb.TxPipeline()
	pipe.HDel(ctx, d.accountsKey(), id)
	pipe.HDel(ctx, d.emailIndexKey(), acct.Email)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}

func (d *Directory) getByID(ctx context.Context, id string) (authsession.Account, error) {
	blob, err := d.rdb.HGet(ctx, d.accountsKey(), id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return authsession.Account{}, authsession.ErrAccountNotFound
		}
		return authsession.Account{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	var acct authsession.Account
	if err := json.Unmarshal([]byte(blob), &acct); err != nil {
		return authsession.Account{}, fmt.Errorf("corrupt account record %q: %w", id, err)
	}
	return acct, nil
}

func (d *Directory) scan(ctx context.Context, filter authsession.Filter, limit int) ([]authsession.Account, error) {
	all, err := d.rdb.HGetAll(ctx, d.accountsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	var out []authsession.Account
	for id, blob := range all {
		var acct authsession.Account
		if err := json.Unmarshal([]byte(blob), &acct); err != nil {
			return nil, fmt.Errorf("corrupt account record %q: %w", id, err)
		}
		if !matches(acct, filter) {
			continue
		}
		out = append(out, acct)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func matches(acct authsession.Account, filter authsession.Filter) bool {
	if filter.ID != "" && acct.ID != filter.ID {
		return false
	}
	if filter.Email != "" && acct.Email != filter.Email {
		return false
	}
	if filter.Role != "" && acct.Role != filter.Role {
		return false
	}
	return true
}
