package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the InstaVault service
type Config struct {
	// HTTP server settings
	Server ServerConfig `yaml:"server" json:"server"`

	// Google Drive collaborator settings
	Drive DriveConfig `yaml:"drive" json:"drive"`

	// Instagram resolver settings
	Resolver ResolverConfig `yaml:"resolver" json:"resolver"`

	// Media download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr         string        `yaml:"addr" json:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
}

// DriveConfig holds Google Drive configuration
type DriveConfig struct {
	ClientID     string `yaml:"client_id" json:"client_id"`
	ClientSecret string `yaml:"client_secret" json:"client_secret"`
	RefreshToken string `yaml:"refresh_token" json:"refresh_token"`

	// RootName is the canonical folder created when none exists.
	// RootNameCandidates also match legacy spellings during lookup.
	RootName           string   `yaml:"root_name" json:"root_name"`
	RootNameCandidates []string `yaml:"root_name_candidates" json:"root_name_candidates"`

	// Endpoint overrides, used by tests; empty means the public API
	APIBase    string `yaml:"api_base" json:"api_base"`
	UploadBase string `yaml:"upload_base" json:"upload_base"`
	TokenURL   string `yaml:"token_url" json:"token_url"`
}

// ResolverConfig holds Instagram resolution configuration
type ResolverConfig struct {
	Cooldown       time.Duration `yaml:"cooldown" json:"cooldown"`
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
	UserAgent      string        `yaml:"user_agent" json:"user_agent"`
	BaseURL        string        `yaml:"base_url" json:"base_url"`
	TitleMaxLength int           `yaml:"title_max_length" json:"title_max_length"`
}

// DownloadConfig holds download-specific configuration
type DownloadConfig struct {
	TempDirectory   string        `yaml:"temp_directory" json:"temp_directory"`
	DownloadTimeout time.Duration `yaml:"download_timeout" json:"download_timeout"`
	MinFileSize     int64         `yaml:"min_file_size" json:"min_file_size"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 120 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Drive: DriveConfig{
			RootName:           "InstaSave",
			RootNameCandidates: []string{"InstaSave", "Insta Save"},
		},
		Resolver: ResolverConfig{
			Cooldown:       15 * time.Second,
			RequestTimeout: 10 * time.Second,
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			BaseURL:        "https://www.instagram.com",
			TitleMaxLength: 100,
		},
		Download: DownloadConfig{
			TempDirectory:   filepath.Join(os.TempDir(), "instavault_downloads"),
			DownloadTimeout: 60 * time.Second,
			MinFileSize:     1000,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// Load builds the effective configuration: defaults, then the config
// file (if any), then a .env file, then environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := cfg.LoadFromFile(path); err != nil {
		return nil, err
	}

	// A missing .env file is fine; explicit env vars still apply
	_ = godotenv.Load()

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".instavault.yaml",
		".instavault.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "instavault", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "instavault", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".instavault.yaml"),
		filepath.Join(os.Getenv("HOME"), ".instavault.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if addr := os.Getenv("INSTAVAULT_ADDR"); addr != "" {
		c.Server.Addr = addr
	}

	// Drive credentials
	if clientID := os.Getenv("INSTAVAULT_DRIVE_CLIENT_ID"); clientID != "" {
		c.Drive.ClientID = clientID
	}
	if clientSecret := os.Getenv("INSTAVAULT_DRIVE_CLIENT_SECRET"); clientSecret != "" {
		c.Drive.ClientSecret = clientSecret
	}
	if refreshToken := os.Getenv("INSTAVAULT_DRIVE_REFRESH_TOKEN"); refreshToken != "" {
		c.Drive.RefreshToken = refreshToken
	}
	if rootName := os.Getenv("INSTAVAULT_DRIVE_ROOT_NAME"); rootName != "" {
		c.Drive.RootName = rootName
		c.Drive.RootNameCandidates = []string{rootName}
	}

	// Resolver
	if cooldown := os.Getenv("INSTAVAULT_RESOLVER_COOLDOWN"); cooldown != "" {
		d, err := time.ParseDuration(cooldown)
		if err != nil {
			return fmt.Errorf("invalid INSTAVAULT_RESOLVER_COOLDOWN: %w", err)
		}
		c.Resolver.Cooldown = d
	}
	if userAgent := os.Getenv("INSTAVAULT_USER_AGENT"); userAgent != "" {
		c.Resolver.UserAgent = userAgent
	}

	// Download
	if tempDir := os.Getenv("INSTAVAULT_TEMP_DIR"); tempDir != "" {
		c.Download.TempDirectory = tempDir
	}
	if minSize := os.Getenv("INSTAVAULT_MIN_FILE_SIZE"); minSize != "" {
		val, err := strconv.ParseInt(minSize, 10, 64)
		if err != nil || val < 0 {
			return fmt.Errorf("invalid INSTAVAULT_MIN_FILE_SIZE: %q", minSize)
		}
		c.Download.MinFileSize = val
	}

	// Logging
	if logLevel := os.Getenv("INSTAVAULT_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile := os.Getenv("INSTAVAULT_LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server address is required"))
	}

	if c.Drive.RootName == "" {
		errs = append(errs, errors.New("drive root folder name is required"))
	}
	if len(c.Drive.RootNameCandidates) == 0 {
		errs = append(errs, errors.New("at least one root folder name candidate is required"))
	}

	if c.Resolver.Cooldown < 0 {
		errs = append(errs, errors.New("resolver cooldown cannot be negative"))
	}
	if c.Resolver.RequestTimeout <= 0 {
		errs = append(errs, errors.New("resolver request timeout must be positive"))
	}
	if c.Resolver.TitleMaxLength <= 0 {
		errs = append(errs, errors.New("title max length must be positive"))
	}

	if c.Download.TempDirectory == "" {
		errs = append(errs, errors.New("download temp directory is required"))
	}
	if c.Download.MinFileSize < 0 {
		errs = append(errs, errors.New("min file size cannot be negative"))
	}

	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true,
		"warning": true, "error": true, "fatal": true,
	}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Errorf("invalid log level: %s", c.Logging.Level))
	}

	if len(errs) > 0 {
		var messages []string
		for _, err := range errs {
			messages = append(messages, err.Error())
		}
		return fmt.Errorf("configuration validation failed: %s", strings.Join(messages, "; "))
	}

	return nil
}

// SaveToFile writes the configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
