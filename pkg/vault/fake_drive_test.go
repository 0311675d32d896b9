package vault

import (
	"context"
	"fmt"

	"instavault/pkg/drive"
)

// fakeDrive is an in-memory DriveAPI with per-call error injection
type fakeDrive struct {
	searchResults []drive.Folder
	searchErr     error

	subfolders     map[string][]drive.Folder
	listFoldersErr map[string]error

	files        map[string][]drive.File
	listFilesErr map[string]error

	countFilesErr   map[string]error
	countFoldersErr map[string]error

	metadata map[string]*drive.Folder

	quota    *drive.StorageQuota
	quotaErr error

	createErr     error
	createdNames  []string
	createCounter int

	deleted []string
}

func newFakeDrive() *fakeDrive {
	return &fakeDrive{
		subfolders:      make(map[string][]drive.Folder),
		listFoldersErr:  make(map[string]error),
		files:           make(map[string][]drive.File),
		listFilesErr:    make(map[string]error),
		countFilesErr:   make(map[string]error),
		countFoldersErr: make(map[string]error),
		metadata:        make(map[string]*drive.Folder),
	}
}

func (f *fakeDrive) SearchFolders(ctx context.Context, names []string) ([]drive.Folder, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.searchResults, nil
}

func (f *fakeDrive) CreateFolder(ctx context.Context, name, parentID string) (*drive.Folder, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.createCounter++
	f.createdNames = append(f.createdNames, name)
	folder := drive.Folder{ID: fmt.Sprintf("created-%d", f.createCounter), Name: name}
	if parentID != "" {
		f.subfolders[parentID] = append(f.subfolders[parentID], folder)
	}
	return &folder, nil
}

func (f *fakeDrive) ListChildFolders(ctx context.Context, parentID string) ([]drive.Folder, error) {
	if err := f.listFoldersErr[parentID]; err != nil {
		return nil, err
	}
	return f.subfolders[parentID], nil
}

func (f *fakeDrive) ListMediaFiles(ctx context.Context, folderID string) ([]drive.File, error) {
	if err := f.listFilesErr[folderID]; err != nil {
		return nil, err
	}
	return f.files[folderID], nil
}

func (f *fakeDrive) CountChildFiles(ctx context.Context, folderID string) (int, error) {
	if err := f.countFilesErr[folderID]; err != nil {
		return 0, err
	}
	return len(f.files[folderID]), nil
}

func (f *fakeDrive) CountChildFolders(ctx context.Context, folderID string) (int, error) {
	if err := f.countFoldersErr[folderID]; err != nil {
		return 0, err
	}
	return len(f.subfolders[folderID]), nil
}

func (f *fakeDrive) GetFolderMetadata(ctx context.Context, folderID string) (*drive.Folder, error) {
	folder, ok := f.metadata[folderID]
	if !ok {
		return nil, fmt.Errorf("folder %s not found", folderID)
	}
	return folder, nil
}

func (f *fakeDrive) StorageQuota(ctx context.Context) (*drive.StorageQuota, error) {
	if f.quotaErr != nil {
		return nil, f.quotaErr
	}
	return f.quota, nil
}

func (f *fakeDrive) Delete(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}
