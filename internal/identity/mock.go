package identity

import (
	"context"
	"sync"
)

// MockProvider is a test double for Provider. Users maps token to user;
// unknown tokens are unauthenticated.
type MockProvider struct {
	Users map[string]User
	Err   error

	mu    sync.Mutex
	calls int
}

// NewMockProvider creates a MockProvider serving users.
func NewMockProvider(users map[string]User) *MockProvider {
	return &MockProvider{Users: users}
}

func (m *MockProvider) CurrentUser(_ context.Context, token string) (User, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.Err != nil {
		return User{}, m.Err
	}
	u, ok := m.Users[token]
	if !ok {
		return User{}, ErrUnauthenticated
	}
	return u, nil
}

// Calls returns how many lookups reached the provider.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
