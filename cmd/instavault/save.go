package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"instavault/pkg/logger"
)

var saveFolderID string

// saveCmd represents the save command
var saveCmd = &cobra.Command{
	Use:   "save <instagram_url>",
	Short: "Save a single post or reel to Google Drive",
	Long: `Resolve one Instagram post or reel URL, download the media, and
upload it to Google Drive.

Without --folder the media lands in the app's root folder, which is
created on first use.`,
	Example: `  # Save a reel into the root folder
  instavault save https://www.instagram.com/reel/Cxyz123/

  # Save into a specific Drive folder
  instavault save --folder 1AbCdEf https://www.instagram.com/p/Cxyz123/`,
	Args: cobra.ExactArgs(1),
	RunE: runSave,
}

func init() {
	rootCmd.AddCommand(saveCmd)
	saveCmd.Flags().StringVar(&saveFolderID, "folder", "", "Drive folder id to upload into")
}

func runSave(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()

	p, err := buildPipeline(cfg, log)
	if err != nil {
		return err
	}

	result, err := p.service.Ingest(context.Background(), args[0], saveFolderID)
	if err != nil {
		return err
	}

	fmt.Printf("Saved %q (file id %s)\n", result.ResolvedTitle, result.DriveFileID)
	return nil
}
