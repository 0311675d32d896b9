package auth

import (
	"os"
	"testing"
)

func TestCredentialsValid(t *testing.T) {
	cases := []struct {
		name  string
		creds *Credentials
		want  bool
	}{
		{"nil", nil, false},
		{"empty", &Credentials{}, false},
		{"missing refresh", &Credentials{ClientID: "a", ClientSecret: "b"}, false},
		{"complete", &Credentials{ClientID: "a", ClientSecret: "b", RefreshToken: "c"}, true},
	}

	for _, c := range cases {
		if got := c.creds.Valid(); got != c.want {
			t.Errorf("%s: Valid() = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestMockStoreRoundTrip(t *testing.T) {
	store := NewMockStore()

	if store.Exists() {
		t.Error("Expected empty store")
	}
	if _, err := store.Retrieve(); err != ErrCredentialsNotFound {
		t.Errorf("Expected ErrCredentialsNotFound, got %v", err)
	}

	creds := &Credentials{ClientID: "id", ClientSecret: "secret", RefreshToken: "refresh"}
	if err := store.Store(creds); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	got, err := store.Retrieve()
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if got.ClientID != "id" || got.RefreshToken != "refresh" {
		t.Errorf("Retrieved credentials do not match: %+v", got)
	}

	// Mutating the returned copy must not affect the store
	got.ClientID = "changed"
	again, _ := store.Retrieve()
	if again.ClientID != "id" {
		t.Error("Expected store to hand out copies")
	}

	if err := store.Delete(); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if store.Exists() {
		t.Error("Expected store to be empty after delete")
	}
}

func TestMockStoreRejectsInvalid(t *testing.T) {
	store := NewMockStore()
	if err := store.Store(&Credentials{ClientID: "only"}); err != ErrInvalidCredentials {
		t.Errorf("Expected ErrInvalidCredentials, got %v", err)
	}
}

func TestEnvironmentStore(t *testing.T) {
	os.Setenv("INSTAVAULT_DRIVE_CLIENT_ID", "env-id")
	os.Setenv("INSTAVAULT_DRIVE_CLIENT_SECRET", "env-secret")
	os.Setenv("INSTAVAULT_DRIVE_REFRESH_TOKEN", "env-refresh")
	defer func() {
		os.Unsetenv("INSTAVAULT_DRIVE_CLIENT_ID")
		os.Unsetenv("INSTAVAULT_DRIVE_CLIENT_SECRET")
		os.Unsetenv("INSTAVAULT_DRIVE_REFRESH_TOKEN")
	}()

	store := NewEnvironmentStore()
	if !store.Exists() {
		t.Fatal("Expected env credentials to exist")
	}

	creds, err := store.Retrieve()
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if creds.ClientID != "env-id" {
		t.Errorf("Expected env-id, got %s", creds.ClientID)
	}

	if err := store.Store(creds); err != ErrStoreUnavailable {
		t.Errorf("Expected ErrStoreUnavailable on Store, got %v", err)
	}
	if err := store.Delete(); err != ErrStoreUnavailable {
		t.Errorf("Expected ErrStoreUnavailable on Delete, got %v", err)
	}
}

func TestEnvironmentStoreMissing(t *testing.T) {
	os.Unsetenv("INSTAVAULT_DRIVE_CLIENT_ID")
	os.Unsetenv("INSTAVAULT_DRIVE_CLIENT_SECRET")
	os.Unsetenv("INSTAVAULT_DRIVE_REFRESH_TOKEN")

	store := NewEnvironmentStore()
	if store.Exists() {
		t.Error("Expected no env credentials")
	}
}
