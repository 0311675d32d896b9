package main

import (
	"fmt"

	"instavault/internal/ingest"
	"instavault/pkg/config"
	"instavault/pkg/drive"
	"instavault/pkg/instagram"
	"instavault/pkg/logger"
	"instavault/pkg/vault"
)

// pipeline bundles the wired components shared by the serve and save
// commands.
type pipeline struct {
	client  *drive.Client
	locator *vault.Locator
	catalog *vault.Catalog
	service *ingest.Service
}

func buildPipeline(cfg *config.Config, log logger.Logger) (*pipeline, error) {
	creds, err := loadCredentials(cfg)
	if err != nil {
		return nil, err
	}

	tokens, err := drive.NewOAuthTokenProvider(creds, cfg.Drive.TokenURL)
	if err != nil {
		return nil, fmt.Errorf("failed to build token provider: %w", err)
	}

	var driveOpts []drive.Option
	if cfg.Drive.APIBase != "" || cfg.Drive.UploadBase != "" {
		driveOpts = append(driveOpts, drive.WithEndpoints(cfg.Drive.APIBase, cfg.Drive.UploadBase))
	}
	client := drive.NewClient(tokens, log, driveOpts...)

	locator := vault.NewLocator(client, cfg.Drive.RootName, cfg.Drive.RootNameCandidates, log)
	catalog := vault.NewCatalog(client, cfg.Drive.RootName, log)

	resolver := instagram.NewResolver(&cfg.Resolver, log)
	fetcher := ingest.NewFetcher(cfg.Download.DownloadTimeout, log)
	tempDir := ingest.NewTempDir(cfg.Download.TempDirectory)
	service := ingest.NewService(resolver, fetcher, locator, client, tempDir, cfg.Download.MinFileSize, log)

	return &pipeline{
		client:  client,
		locator: locator,
		catalog: catalog,
		service: service,
	}, nil
}
