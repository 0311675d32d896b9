package auth

import (
	"os"
	"time"
)

// EnvironmentStore implements CredentialStore using environment variables.
// Writes are not supported; it exists for container deployments where the
// keyring is unavailable.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(creds *Credentials) error {
	return ErrStoreUnavailable
}

// Retrieve gets credentials from environment variables
func (e *EnvironmentStore) Retrieve() (*Credentials, error) {
	creds := &Credentials{
		ClientID:     os.Getenv("INSTAVAULT_DRIVE_CLIENT_ID"),
		ClientSecret: os.Getenv("INSTAVAULT_DRIVE_CLIENT_SECRET"),
		RefreshToken: os.Getenv("INSTAVAULT_DRIVE_REFRESH_TOKEN"),
		LastModified: time.Now(),
	}

	if !creds.Valid() {
		return nil, ErrCredentialsNotFound
	}

	return creds, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete() error {
	return ErrStoreUnavailable
}

// Exists checks if environment credentials exist
func (e *EnvironmentStore) Exists() bool {
	_, err := e.Retrieve()
	return err == nil
}
