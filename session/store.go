package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ErrNoRecord means no session record exists under the store's key.
var ErrNoRecord = errors.New("no session record")

// ErrStoreUnavailable marks a storage backend that cannot be reached.
var ErrStoreUnavailable = errors.New("session store unavailable")

// Store reads and writes the single session record. All operations target
// one fixed key; concurrent writers resolve by last write wins.
type Store struct {
	rdb   *redis.Client
	key   string
	codec *Codec
}

// NewStore wraps a Redis client with the fixed storage key and codec.
func NewStore(rdb *redis.Client, key string, codec *Codec) *Store {
	return &Store{rdb: rdb, key: key, codec: codec}
}

// Load fetches and decodes the current record. It returns ErrNoRecord
// when the key is absent, ErrRecordInvalid for an undecodable blob, and
// wraps ErrStoreUnavailable for backend failures.
func (s *Store) Load(ctx context.Context) (*Record, error) {
	raw, err := s.rdb.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoRecord
		}
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	rec, err := s.codec.Decode(raw)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Save encodes rec and overwrites the record unconditionally. The record
// has no TTL; it lives until logout or a failed restore clears it.
func (s *Store) Save(ctx context.Context, rec Record) error {
	raw, err := s.codec.Encode(rec)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}

// Clear removes the record. Deleting an absent key is not an error, so
// Clear is safe to call repeatedly.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}
