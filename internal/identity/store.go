package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/learnflow/learnflow/internal/platform/cache"
)

// Store caches resolved users by key.
type Store interface {
	Get(ctx context.Context, key string) (User, bool, error)
	Set(ctx context.Context, key string, u User, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type memoryEntry struct {
	user    User
	expires time.Time
}

// MemoryStore is an in-process Store for single-instance deployments and
// tests.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// SetClock replaces the store's time source.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MemoryStore) Get(_ context.Context, key string) (User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return User{}, false, nil
	}
	if !e.expires.IsZero() && !s.now().Before(e.expires) {
		delete(s.entries, key)
		return User{}, false, nil
	}
	return e.user, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, u User, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := memoryEntry{user: u}
	if ttl > 0 {
		e.expires = s.now().Add(ttl)
	}
	s.entries[key] = e
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Len returns the number of entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// RedisStore keeps sessions in Redis/Dragonfly so every BFF instance shares
// one cache.
type RedisStore struct {
	cache *cache.Cache
}

// NewRedisStore creates a store on top of c.
func NewRedisStore(c *cache.Cache) *RedisStore {
	return &RedisStore{cache: c}
}

func (s *RedisStore) Get(ctx context.Context, key string) (User, bool, error) {
	var u User
	err := s.cache.GetJSON(ctx, sessionKey(key), &u)
	if errors.Is(err, cache.ErrMiss) {
		return User{}, false, nil
	}
	if err != nil {
		return User{}, false, fmt.Errorf("get session: %w", err)
	}
	return u, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, u User, ttl time.Duration) error {
	if err := s.cache.SetJSON(ctx, sessionKey(key), u, ttl); err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.cache.Delete(ctx, sessionKey(key)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func sessionKey(key string) string {
	return "session:" + key
}
