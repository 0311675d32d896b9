package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage InstaVault configuration files.

Configuration can be loaded from:
  - Environment variables (INSTAVAULT_ prefix, highest priority)
  - Configuration file
  - Default values (lowest priority)`,
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file is created in the current directory as 'instavault.yaml' unless
a different path is given with the --config flag.`,
	RunE: runConfigInit,
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration after merging all sources.

Sensitive values like OAuth secrets are masked.`,
	RunE: runConfigShow,
}

// configValidateCmd represents the config validate command
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	RunE:  runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

const exampleConfig = `# InstaVault Configuration File
#
# Every option can also be set through environment variables prefixed
# with INSTAVAULT_, for example INSTAVAULT_SERVER_ADDR or
# INSTAVAULT_DRIVE_CLIENT_ID.

server:
  addr: ":8080"
  read_timeout: 15s
  write_timeout: 120s
  idle_timeout: 120s

drive:
  # OAuth credentials. Prefer 'instavault auth login' over putting
  # secrets in this file.
  # client_id: ""
  # client_secret: ""
  # refresh_token: ""

  # Name of the root folder created in Drive
  root_name: "InstaSave"

resolver:
  # Minimum spacing between Instagram page fetches
  cooldown: 15s
  request_timeout: 10s
  title_max_length: 100

download:
  # Where media lands before upload; cleaned after each ingestion
  # temp_directory: /tmp/instavault_downloads
  download_timeout: 60s
  # Files smaller than this are treated as blocked or corrupted
  min_file_size: 1000

logging:
  level: "info"
  # file: "instavault.log"
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = "instavault.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists: %s", configPath)
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	fmt.Printf("Created %s\n", configPath)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// mask secrets before printing
	display := *cfg
	display.Drive.ClientID = maskValue(display.Drive.ClientID)
	display.Drive.ClientSecret = maskValue(display.Drive.ClientSecret)
	display.Drive.RefreshToken = maskValue(display.Drive.RefreshToken)

	out, err := yaml.Marshal(&display)
	if err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}
	fmt.Print(string(out))
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}
	fmt.Println("Configuration is valid.")
	return nil
}
