package identity_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/learnflow/learnflow/internal/identity"
)

var alice = identity.User{ID: "u-1", Name: "Alice", Role: "student"}

func TestSessions_CachesUntilInvalidated(t *testing.T) {
	ctx := context.Background()
	provider := identity.NewMockProvider(map[string]identity.User{"tok-a": alice})
	store := identity.NewMemoryStore()
	s := identity.NewSessions(provider, store, time.Minute)

	for range 3 {
		u, err := s.Current(ctx, "tok-a")
		if err != nil {
			t.Fatalf("Current() error = %v", err)
		}
		if u != alice {
			t.Errorf("Current() = %+v, want %+v", u, alice)
		}
	}
	if provider.Calls() != 1 {
		t.Errorf("provider called %d times, want 1", provider.Calls())
	}

	if err := s.Invalidate(ctx, "tok-a"); err != nil {
		t.Fatalf("Invalidate() error = %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("store has %d entries after Invalidate, want 0", store.Len())
	}
	if _, err := s.Current(ctx, "tok-a"); err != nil {
		t.Fatalf("Current() after Invalidate error = %v", err)
	}
	if provider.Calls() != 2 {
		t.Errorf("provider called %d times, want 2 after Invalidate", provider.Calls())
	}
}

// gatedProvider blocks every lookup until release is closed.
type gatedProvider struct {
	user    identity.User
	entered chan struct{}
	release chan struct{}
}

func (p *gatedProvider) CurrentUser(context.Context, string) (identity.User, error) {
	p.entered <- struct{}{}
	<-p.release
	return p.user, nil
}

func TestSessions_InvalidateDuringLookupIsNotUndone(t *testing.T) {
	ctx := context.Background()
	provider := &gatedProvider{user: alice, entered: make(chan struct{}, 1), release: make(chan struct{})}
	store := identity.NewMemoryStore()
	s := identity.NewSessions(provider, store, time.Minute)

	done := make(chan error, 1)
	go func() {
		_, err := s.Current(ctx, "tok-a")
		done <- err
	}()
	<-provider.entered

	if err := s.Invalidate(ctx, "tok-a"); err != nil {
		t.Fatalf("Invalidate() error = %v", err)
	}
	close(provider.release)
	if err := <-done; err != nil {
		t.Fatalf("Current() error = %v", err)
	}

	if store.Len() != 0 {
		t.Errorf("store has %d entries, lookup re-cached a logged-out session", store.Len())
	}

	// Later lookups cache again.
	if _, err := s.Current(ctx, "tok-a"); err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if store.Len() != 1 {
		t.Errorf("store has %d entries, want 1", store.Len())
	}
}

func TestSessions_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store := identity.NewMemoryStore()
	store.SetClock(func() time.Time { return now })
	provider := identity.NewMockProvider(map[string]identity.User{"tok-a": alice})
	s := identity.NewSessions(provider, store, time.Minute)

	if _, err := s.Current(ctx, "tok-a"); err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	now = now.Add(59 * time.Second)
	if _, err := s.Current(ctx, "tok-a"); err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if provider.Calls() != 1 {
		t.Fatalf("provider called %d times within TTL, want 1", provider.Calls())
	}

	now = now.Add(time.Second)
	if _, err := s.Current(ctx, "tok-a"); err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if provider.Calls() != 2 {
		t.Errorf("provider called %d times after expiry, want 2", provider.Calls())
	}
}

func TestSessions_Unauthenticated(t *testing.T) {
	ctx := context.Background()
	provider := identity.NewMockProvider(map[string]identity.User{
		"tok-a":     alice,
		"tok-empty": {},
	})
	store := identity.NewMemoryStore()
	s := identity.NewSessions(provider, store, time.Minute)

	for _, tok := range []string{"", "tok-unknown", "tok-empty"} {
		if _, err := s.Current(ctx, tok); !errors.Is(err, identity.ErrUnauthenticated) {
			t.Errorf("Current(%q) error = %v, want ErrUnauthenticated", tok, err)
		}
	}
	if store.Len() != 0 {
		t.Errorf("unauthenticated lookups were cached: %d entries", store.Len())
	}
}

func TestSessions_ProviderFailureIsNotUnauthenticated(t *testing.T) {
	provider := identity.NewMockProvider(nil)
	provider.Err = errors.New("connection refused")
	s := identity.NewSessions(provider, nil, time.Minute)

	_, err := s.Current(context.Background(), "tok-a")
	if err == nil || errors.Is(err, identity.ErrUnauthenticated) {
		t.Errorf("Current() error = %v, want a non-auth failure", err)
	}
}

func TestSessions_ZeroTTLDisablesCache(t *testing.T) {
	provider := identity.NewMockProvider(map[string]identity.User{"tok-a": alice})
	s := identity.NewSessions(provider, nil, 0)

	for range 2 {
		if _, err := s.Current(context.Background(), "tok-a"); err != nil {
			t.Fatalf("Current() error = %v", err)
		}
	}
	if provider.Calls() != 2 {
		t.Errorf("provider called %d times, want 2", provider.Calls())
	}
}

func TestTokenKey(t *testing.T) {
	a := identity.TokenKey("secret-token")
	if len(a) != 64 {
		t.Errorf("len(TokenKey) = %d, want 64 hex chars", len(a))
	}
	if strings.Contains(a, "secret") {
		t.Error("TokenKey leaks the token")
	}
	if a != identity.TokenKey("secret-token") {
		t.Error("TokenKey is not deterministic")
	}
	if a == identity.TokenKey("secret-token2") {
		t.Error("TokenKey collides for different tokens")
	}
}

func TestUser_IsInstructor(t *testing.T) {
	tests := []struct {
		role string
		want bool
	}{
		{"teacher", true},
		{"instructor", true},
		{"admin", true},
		{"student", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := (identity.User{Role: tt.role}).IsInstructor(); got != tt.want {
			t.Errorf("IsInstructor(%q) = %v, want %v", tt.role, got, tt.want)
		}
	}
}
