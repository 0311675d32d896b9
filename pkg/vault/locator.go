package vault

import (
	"context"
	"fmt"

	"instavault/pkg/drive"
	"instavault/pkg/logger"
)

// DriveAPI is the slice of the Drive client the vault needs. *drive.Client
// satisfies it; tests substitute fakes.
type DriveAPI interface {
	SearchFolders(ctx context.Context, names []string) ([]drive.Folder, error)
	CreateFolder(ctx context.Context, name, parentID string) (*drive.Folder, error)
	ListChildFolders(ctx context.Context, parentID string) ([]drive.Folder, error)
	ListMediaFiles(ctx context.Context, folderID string) ([]drive.File, error)
	CountChildFiles(ctx context.Context, folderID string) (int, error)
	CountChildFolders(ctx context.Context, folderID string) (int, error)
	GetFolderMetadata(ctx context.Context, folderID string) (*drive.Folder, error)
	StorageQuota(ctx context.Context) (*drive.StorageQuota, error)
	Delete(ctx context.Context, id string) error
}

// Locator finds or creates the canonical root folder. Drive allows any
// number of folders with identical names, and a naive "take the first
// search hit" can land on an empty duplicate while real content sits in a
// sibling (the split-brain condition). Content presence therefore takes
// priority over recency.
type Locator struct {
	api           DriveAPI
	canonicalName string
	candidates    []string
	logger        logger.Logger
}

// NewLocator creates a Locator. candidates are the folder names matched
// during lookup; canonicalName is used when creating a fresh root.
func NewLocator(api DriveAPI, canonicalName string, candidates []string, log logger.Logger) *Locator {
	if log == nil {
		log = logger.GetLogger()
	}
	if len(candidates) == 0 {
		candidates = []string{canonicalName}
	}

	return &Locator{
		api:           api,
		canonicalName: canonicalName,
		candidates:    candidates,
		logger:        log.WithField("component", "locator"),
	}
}

// LocateOrCreateRoot returns the id of the canonical root folder, creating
// it when none exists. Selection is deterministic for a given remote state:
// candidates are inspected most-recently-modified first and the first one
// holding any files or subfolders wins; if all are empty the most recent
// wins.
func (l *Locator) LocateOrCreateRoot(ctx context.Context) (string, error) {
	folders, err := l.api.SearchFolders(ctx, l.candidates)
	if err != nil {
		// Availability over consistency: an unreadable remote state is
		// treated as "no folder exists yet". This can create duplicates
		// under transient search failures.
		l.logger.WithError(err).Warn("root folder search failed, falling back to creation")
		return l.createRoot(ctx)
	}

	if len(folders) == 0 {
		return l.createRoot(ctx)
	}

	for _, folder := range folders {
		fileCount := l.countFiles(ctx, folder.ID)
		if fileCount > 0 {
			l.logger.InfoWithFields("selected root folder with files", map[string]interface{}{
				"id":         folder.ID,
				"file_count": fileCount,
			})
			return folder.ID, nil
		}

		folderCount := l.countFolders(ctx, folder.ID)
		if folderCount > 0 {
			l.logger.InfoWithFields("selected root folder with subfolders", map[string]interface{}{
				"id":           folder.ID,
				"folder_count": folderCount,
			})
			return folder.ID, nil
		}
	}

	// Every candidate is empty; fall back to the most recently modified
	l.logger.WithField("id", folders[0].ID).Info("all root candidates empty, using most recent")
	return folders[0].ID, nil
}

func (l *Locator) createRoot(ctx context.Context) (string, error) {
	folder, err := l.api.CreateFolder(ctx, l.canonicalName, "")
	if err != nil {
		return "", fmt.Errorf("creating root folder %q: %w", l.canonicalName, err)
	}
	return folder.ID, nil
}

// Count failures are treated as zero so one unreadable candidate does not
// abort the scan.
func (l *Locator) countFiles(ctx context.Context, folderID string) int {
	count, err := l.api.CountChildFiles(ctx, folderID)
	if err != nil {
		l.logger.WithError(err).WithField("id", folderID).Warn("counting files failed")
		return 0
	}
	return count
}

func (l *Locator) countFolders(ctx context.Context, folderID string) int {
	count, err := l.api.CountChildFolders(ctx, folderID)
	if err != nil {
		l.logger.WithError(err).WithField("id", folderID).Warn("counting subfolders failed")
		return 0
	}
	return count
}
