package auth

import "sync"

// MockStore implements CredentialStore in memory for testing
type MockStore struct {
	mu    sync.Mutex
	creds *Credentials

	// Error injection
	StoreError    error
	RetrieveError error
	DeleteError   error
}

// NewMockStore creates a new mock credential store
func NewMockStore() *MockStore {
	return &MockStore{}
}

// Store saves credentials in memory
func (m *MockStore) Store(creds *Credentials) error {
	if m.StoreError != nil {
		return m.StoreError
	}
	if !creds.Valid() {
		return ErrInvalidCredentials
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *creds
	m.creds = &copied
	return nil
}

// Retrieve gets credentials from memory
func (m *MockStore) Retrieve() (*Credentials, error) {
	if m.RetrieveError != nil {
		return nil, m.RetrieveError
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.creds == nil {
		return nil, ErrCredentialsNotFound
	}
	copied := *m.creds
	return &copied, nil
}

// Delete removes credentials from memory
func (m *MockStore) Delete() error {
	if m.DeleteError != nil {
		return m.DeleteError
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.creds == nil {
		return ErrCredentialsNotFound
	}
	m.creds = nil
	return nil
}

// Exists checks if credentials exist in memory
func (m *MockStore) Exists() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creds != nil
}
