package vault

import (
	"context"
	"sort"
	"strconv"

	"instavault/pkg/drive"
	"instavault/pkg/logger"
)

// DefaultFreeTierBytes is reported when the quota lookup fails
const DefaultFreeTierBytes = 15 << 30

// Catalog exposes the read side of the vault: folder listings, file
// listings and aggregate views. Every operation tolerates empty results.
type Catalog struct {
	api      DriveAPI
	rootName string
	logger   logger.Logger
}

// NewCatalog creates a Catalog; rootName labels files found directly in
// the root during aggregation.
func NewCatalog(api DriveAPI, rootName string, log logger.Logger) *Catalog {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Catalog{
		api:      api,
		rootName: rootName,
		logger:   log.WithField("component", "catalog"),
	}
}

// ListSubfolders returns direct child folders, newest-created-first
func (c *Catalog) ListSubfolders(ctx context.Context, parentID string) ([]drive.Folder, error) {
	folders, err := c.api.ListChildFolders(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if folders == nil {
		folders = []drive.Folder{}
	}
	return folders, nil
}

// ListFiles returns direct child media files, newest-created-first
func (c *Catalog) ListFiles(ctx context.Context, folderID string) ([]drive.File, error) {
	files, err := c.api.ListMediaFiles(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if files == nil {
		files = []drive.File{}
	}
	return files, nil
}

// FetchAllFilesRecursively aggregates files in the root folder and in each
// direct subfolder (one level only), tags each file with its source folder,
// and sorts the combined set newest-created-first.
//
// A failing subfolder listing contributes zero files while the rest of the
// aggregation still succeeds.
func (c *Catalog) FetchAllFilesRecursively(ctx context.Context, rootID string) ([]drive.File, error) {
	subfolders, err := c.api.ListChildFolders(ctx, rootID)
	if err != nil {
		return nil, err
	}

	allFiles := []drive.File{}

	rootFiles, err := c.api.ListMediaFiles(ctx, rootID)
	if err != nil {
		c.logger.WithError(err).WithField("id", rootID).Warn("listing root files failed")
	} else {
		for _, file := range rootFiles {
			file.FolderID = rootID
			file.FolderName = c.rootName + " Root"
			allFiles = append(allFiles, file)
		}
	}

	for _, folder := range subfolders {
		files, err := c.api.ListMediaFiles(ctx, folder.ID)
		if err != nil {
			c.logger.WithError(err).WithFields(map[string]interface{}{
				"id":   folder.ID,
				"name": folder.Name,
			}).Warn("listing subfolder failed, skipping")
			continue
		}
		for _, file := range files {
			file.FolderID = folder.ID
			file.FolderName = folder.Name
			allFiles = append(allFiles, file)
		}
	}

	sort.SliceStable(allFiles, func(i, j int) bool {
		return allFiles[i].CreatedTime.After(allFiles[j].CreatedTime)
	})

	return allFiles, nil
}

// FolderName fetches a folder's display name, falling back to a generic
// label when the lookup fails
func (c *Catalog) FolderName(ctx context.Context, folderID string) string {
	folder, err := c.api.GetFolderMetadata(ctx, folderID)
	if err != nil || folder.Name == "" {
		return "Folder Contents"
	}
	return folder.Name
}

// StorageUsage reports account quota. Lookup failures degrade to the free
// tier default rather than failing the caller.
func (c *Catalog) StorageUsage(ctx context.Context) *drive.Usage {
	quota, err := c.api.StorageQuota(ctx)
	if err != nil {
		c.logger.WithError(err).Warn("storage quota lookup failed, using defaults")
		return &drive.Usage{StorageUsed: 0, StorageTotal: DefaultFreeTierBytes}
	}

	used, _ := strconv.ParseInt(quota.UsageInDrive, 10, 64)
	limit, _ := strconv.ParseInt(quota.Limit, 10, 64)

	usage := &drive.Usage{StorageUsed: used, StorageTotal: limit}
	if limit > 0 {
		usage.Percentage = float64(used) / float64(limit) * 100
	}
	return usage
}
