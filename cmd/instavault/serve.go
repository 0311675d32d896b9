package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"instavault/internal/server"
	"instavault/pkg/auth"
	"instavault/pkg/config"
	"instavault/pkg/logger"
	"instavault/pkg/ratelimit"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the InstaVault HTTP API server.

The server exposes endpoints for ingesting Instagram URLs, browsing the
Drive folder hierarchy, and reading usage statistics. Google Drive
credentials come from the system keychain (see 'instavault auth') or
from environment variables.`,
	Example: `  # Start with defaults
  instavault serve

  # Custom listen address and config file
  instavault serve --addr :9090 --config ./instavault.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()

	p, err := buildPipeline(cfg, log)
	if err != nil {
		return err
	}

	// burst protection in front of the cooldown-paced resolver
	ingestLimiter := ratelimit.NewTokenBucket(30, time.Minute)
	handler := server.NewHandler(p.service, p.catalog, p.locator, p.client, log,
		server.WithIngestLimiter(ingestLimiter))

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("http server shutdown failed")
		}
	}()

	log.WithField("addr", cfg.Server.Addr).Info("instavault server starting")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}

	log.Info("instavault server stopped")
	return nil
}

// loadConfig loads configuration honoring the global --config and
// --log-level flags
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	return cfg, nil
}

// loadCredentials resolves Drive OAuth credentials. Values in the config
// file win; otherwise the credential store (keychain, then environment) is
// consulted.
func loadCredentials(cfg *config.Config) (*auth.Credentials, error) {
	if cfg.Drive.ClientID != "" && cfg.Drive.ClientSecret != "" && cfg.Drive.RefreshToken != "" {
		return &auth.Credentials{
			ClientID:     cfg.Drive.ClientID,
			ClientSecret: cfg.Drive.ClientSecret,
			RefreshToken: cfg.Drive.RefreshToken,
		}, nil
	}

	store := auth.NewStore()
	creds, err := store.Retrieve()
	if err != nil {
		fmt.Fprintln(os.Stderr, "No Google Drive credentials found.")
		fmt.Fprintln(os.Stderr, "Run 'instavault auth login' or set INSTAVAULT_DRIVE_CLIENT_ID,")
		fmt.Fprintln(os.Stderr, "INSTAVAULT_DRIVE_CLIENT_SECRET and INSTAVAULT_DRIVE_REFRESH_TOKEN.")
		return nil, fmt.Errorf("failed to load drive credentials: %w", err)
	}
	return creds, nil
}
