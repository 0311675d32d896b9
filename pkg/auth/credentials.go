package auth

import (
	"errors"
	"time"
)

// Store errors
var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrStoreUnavailable    = errors.New("credential store unavailable")
)

// Credentials holds the Google OAuth material needed to mint Drive access
// tokens via the refresh-token grant. The consent dance that produced the
// refresh token happens outside this service.
type Credentials struct {
	ClientID     string    `json:"client_id"`
	ClientSecret string    `json:"client_secret"`
	RefreshToken string    `json:"refresh_token"`
	LastModified time.Time `json:"last_modified"`
}

// Valid reports whether the credentials are usable for the refresh grant
func (c *Credentials) Valid() bool {
	return c != nil && c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
}

// CredentialStore abstracts where the OAuth credentials live
type CredentialStore interface {
	// Store saves credentials
	Store(creds *Credentials) error
	// Retrieve gets the stored credentials
	Retrieve() (*Credentials, error)
	// Delete removes the stored credentials
	Delete() error
	// Exists checks whether credentials are available
	Exists() bool
}

// NewStore returns the best available credential store: the system keyring
// when present, environment variables otherwise.
func NewStore() CredentialStore {
	if store, err := NewKeyringStore(); err == nil {
		return store
	}
	return NewEnvironmentStore()
}
