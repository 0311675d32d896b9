package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Resolver.Cooldown != 15*time.Second {
		t.Errorf("Expected default cooldown to be 15s, got %v", config.Resolver.Cooldown)
	}

	if config.Download.MinFileSize != 1000 {
		t.Errorf("Expected default min file size to be 1000, got %d", config.Download.MinFileSize)
	}

	if config.Drive.RootName != "InstaSave" {
		t.Errorf("Expected default root name to be InstaSave, got %s", config.Drive.RootName)
	}

	if len(config.Drive.RootNameCandidates) != 2 {
		t.Errorf("Expected two root name candidates, got %d", len(config.Drive.RootNameCandidates))
	}
}

func TestLoadFromEnv(t *testing.T) {
	os.Setenv("INSTAVAULT_DRIVE_CLIENT_ID", "test-client-id")
	os.Setenv("INSTAVAULT_DRIVE_REFRESH_TOKEN", "test-refresh")
	os.Setenv("INSTAVAULT_RESOLVER_COOLDOWN", "30s")
	os.Setenv("INSTAVAULT_TEMP_DIR", "/tmp/test-vault")
	os.Setenv("INSTAVAULT_MIN_FILE_SIZE", "2048")
	os.Setenv("INSTAVAULT_LOG_LEVEL", "debug")

	defer func() {
		os.Unsetenv("INSTAVAULT_DRIVE_CLIENT_ID")
		os.Unsetenv("INSTAVAULT_DRIVE_REFRESH_TOKEN")
		os.Unsetenv("INSTAVAULT_RESOLVER_COOLDOWN")
		os.Unsetenv("INSTAVAULT_TEMP_DIR")
		os.Unsetenv("INSTAVAULT_MIN_FILE_SIZE")
		os.Unsetenv("INSTAVAULT_LOG_LEVEL")
	}()

	config := DefaultConfig()
	if err := config.LoadFromEnv(); err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}

	if config.Drive.ClientID != "test-client-id" {
		t.Errorf("Expected client ID override, got %s", config.Drive.ClientID)
	}
	if config.Resolver.Cooldown != 30*time.Second {
		t.Errorf("Expected cooldown override 30s, got %v", config.Resolver.Cooldown)
	}
	if config.Download.TempDirectory != "/tmp/test-vault" {
		t.Errorf("Expected temp dir override, got %s", config.Download.TempDirectory)
	}
	if config.Download.MinFileSize != 2048 {
		t.Errorf("Expected min file size override, got %d", config.Download.MinFileSize)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("Expected log level override, got %s", config.Logging.Level)
	}
}

func TestLoadFromEnvInvalidCooldown(t *testing.T) {
	os.Setenv("INSTAVAULT_RESOLVER_COOLDOWN", "not-a-duration")
	defer os.Unsetenv("INSTAVAULT_RESOLVER_COOLDOWN")

	config := DefaultConfig()
	if err := config.LoadFromEnv(); err == nil {
		t.Error("Expected error for invalid cooldown duration")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
server:
  addr: ":9090"
drive:
  root_name: "MyVault"
  root_name_candidates: ["MyVault"]
resolver:
  cooldown: 5s
logging:
  level: warn
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	config := DefaultConfig()
	if err := config.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if config.Server.Addr != ":9090" {
		t.Errorf("Expected addr :9090, got %s", config.Server.Addr)
	}
	if config.Drive.RootName != "MyVault" {
		t.Errorf("Expected root name MyVault, got %s", config.Drive.RootName)
	}
	if config.Resolver.Cooldown != 5*time.Second {
		t.Errorf("Expected cooldown 5s, got %v", config.Resolver.Cooldown)
	}

	// Defaults not mentioned in the file survive
	if config.Download.MinFileSize != 1000 {
		t.Errorf("Expected default min file size, got %d", config.Download.MinFileSize)
	}

	if err := config.Validate(); err != nil {
		t.Errorf("Merged config should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	config := DefaultConfig()
	if err := config.Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}

	config.Resolver.RequestTimeout = 0
	config.Logging.Level = "loud"
	err := config.Validate()
	if err == nil {
		t.Fatal("Expected validation errors")
	}
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "saved.yaml")

	original := DefaultConfig()
	original.Server.Addr = ":7777"
	original.Resolver.TitleMaxLength = 50

	if err := original.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}

	reloaded := DefaultConfig()
	if err := reloaded.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if reloaded.Server.Addr != ":7777" {
		t.Errorf("Expected addr :7777 after reload, got %s", reloaded.Server.Addr)
	}
	if reloaded.Resolver.TitleMaxLength != 50 {
		t.Errorf("Expected title max length 50 after reload, got %d", reloaded.Resolver.TitleMaxLength)
	}
}
