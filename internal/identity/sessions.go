package identity

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/blake2b"
)

// Sessions is the single accessor for the current user. Lookups go to the
// store first and fall back to the provider; raw tokens are never used as
// cache keys.
//
// A lookup that overlaps an Invalidate on this instance does not write its
// result back. Invalidate on another instance sharing a RedisStore is not
// seen, so such a lookup can re-cache the user for up to the TTL.
type Sessions struct {
	provider Provider
	store    Store
	ttl      time.Duration

	// epoch counts Invalidate calls.
	epoch atomic.Uint64
}

// NewSessions creates a session cache. A ttl of zero disables caching and
// every lookup goes to the provider. A nil store means a MemoryStore.
func NewSessions(provider Provider, store Store, ttl time.Duration) *Sessions {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Sessions{provider: provider, store: store, ttl: ttl}
}

// Current returns the user for token. An empty token, or a token the
// provider does not recognise, yields ErrUnauthenticated.
func (s *Sessions) Current(ctx context.Context, token string) (User, error) {
	if token == "" {
		return User{}, ErrUnauthenticated
	}
	key := TokenKey(token)

	if s.ttl > 0 {
		u, ok, err := s.store.Get(ctx, key)
		if err != nil {
			slog.Warn("session cache read failed", "error", err)
		} else if ok {
			return u, nil
		}
	}

	epoch := s.epoch.Load()
	u, err := s.provider.CurrentUser(ctx, token)
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			return User{}, err
		}
		return User{}, fmt.Errorf("resolve session: %w", err)
	}
	if u.ID == "" {
		return User{}, ErrUnauthenticated
	}

	if s.ttl > 0 && s.epoch.Load() == epoch {
		if err := s.store.Set(ctx, key, u, s.ttl); err != nil {
			slog.Warn("session cache write failed", "user_id", u.ID, "error", err)
		}
	}
	return u, nil
}

// Invalidate forgets the cached user for token. Call on login and logout.
func (s *Sessions) Invalidate(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	s.epoch.Add(1)
	if err := s.store.Delete(ctx, TokenKey(token)); err != nil {
		return fmt.Errorf("invalidate session: %w", err)
	}
	return nil
}

// TokenKey is the hex BLAKE2b-256 digest of a session token.
func TokenKey(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
