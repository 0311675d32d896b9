package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"instavault/pkg/auth"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Google Drive credentials",
	Long: `Manage stored Google Drive OAuth credentials.

Credentials are stored using:
  - System keychain (when available)
  - Environment variables (fallback)

Never share your credentials or config files!`,
}

// authLoginCmd represents the auth login command
var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store Google Drive credentials securely",
	Long: `Store Google Drive OAuth credentials in the system keychain.

You will be prompted for:
  - OAuth client ID
  - OAuth client secret
  - Refresh token

Create an OAuth client in the Google Cloud console with the Drive scope,
then complete the consent flow once to obtain a refresh token.`,
	RunE: runAuthLogin,
}

// authLogoutCmd represents the auth logout command
var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove stored credentials",
	RunE:  runAuthLogout,
}

// authStatusCmd represents the auth status command
var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether credentials are stored",
	Long:  `Show whether Google Drive credentials are available, with secrets masked.`,
	RunE:  runAuthStatus,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	reader := bufio.NewReader(os.Stdin)

	clientID, err := promptValue(reader, "OAuth client ID")
	if err != nil {
		return err
	}
	clientSecret, err := promptValue(reader, "OAuth client secret")
	if err != nil {
		return err
	}
	refreshToken, err := promptValue(reader, "Refresh token")
	if err != nil {
		return err
	}

	creds := &auth.Credentials{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RefreshToken: refreshToken,
		LastModified: time.Now(),
	}
	if !creds.Valid() {
		return fmt.Errorf("all three values are required")
	}

	store := auth.NewStore()
	if err := store.Store(creds); err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}

	fmt.Println("Credentials stored.")
	return nil
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	store := auth.NewStore()
	if !store.Exists() {
		fmt.Println("No stored credentials.")
		return nil
	}
	if err := store.Delete(); err != nil {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}
	fmt.Println("Credentials removed.")
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	store := auth.NewStore()
	creds, err := store.Retrieve()
	if err != nil {
		fmt.Println("No stored credentials. Run 'instavault auth login'.")
		return nil
	}

	fmt.Printf("Client ID:     %s\n", maskValue(creds.ClientID))
	fmt.Printf("Client secret: %s\n", maskValue(creds.ClientSecret))
	fmt.Printf("Refresh token: %s\n", maskValue(creds.RefreshToken))
	if !creds.LastModified.IsZero() {
		fmt.Printf("Last updated:  %s\n", creds.LastModified.Format(time.RFC3339))
	}
	return nil
}

func promptValue(reader *bufio.Reader, label string) (string, error) {
	fmt.Printf("%s: ", label)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(input), nil
}

func maskValue(v string) string {
	if len(v) <= 8 {
		return strings.Repeat("*", len(v))
	}
	return v[:4] + strings.Repeat("*", 4) + v[len(v)-4:]
}
