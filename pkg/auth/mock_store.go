package auth

import "sync"

// MockStore implements TokenStore in memory for tests
type MockStore struct {
	name  string
	token *Token
	mu    sync.RWMutex

	// Error injection for testing
	StoreError    error
	RetrieveError error
	DeleteError   error
	ReadOnly      bool
}

// NewMockStore creates a new mock token store
func NewMockStore(name string) *MockStore {
	return &MockStore{name: name}
}

func (m *MockStore) Name() string { return m.name }

// Store saves a copy of token
func (m *MockStore) Store(token *Token) error {
	if m.ReadOnly {
		return ErrStoreUnavailable
	}
	if m.StoreError != nil {
		return m.StoreError
	}
	if token == nil || token.Value == "" {
		return ErrInvalidToken
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	tokenCopy := *token
	m.token = &tokenCopy
	return nil
}

// Retrieve returns a copy of the stored token
func (m *MockStore) Retrieve() (*Token, error) {
	if m.RetrieveError != nil {
		return nil, m.RetrieveError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.token == nil {
		return nil, ErrTokenNotFound
	}
	tokenCopy := *m.token
	return &tokenCopy, nil
}

// Delete removes the stored token
func (m *MockStore) Delete() error {
	if m.ReadOnly {
		return ErrStoreUnavailable
	}
	if m.DeleteError != nil {
		return m.DeleteError
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == nil {
		return ErrTokenNotFound
	}
	m.token = nil
	return nil
}

// Has reports whether a token is stored
func (m *MockStore) Has() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token != nil
}
