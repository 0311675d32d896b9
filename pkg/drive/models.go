package drive

import (
	"strconv"
	"time"
)

// FolderMimeType is the mime type Drive assigns to folders
const FolderMimeType = "application/vnd.google-apps.folder"

// Folder is a Drive folder. Identity is the provider-assigned ID; names are
// NOT unique, multiple folders may share one.
type Folder struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	CreatedTime  time.Time `json:"createdTime,omitempty"`
	ModifiedTime time.Time `json:"modifiedTime,omitempty"`

	// FileCount is derived, filled by callers that counted children
	FileCount int `json:"fileCount,omitempty"`
}

// File is a Drive file owned by exactly one parent folder
type File struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	MimeType      string            `json:"mimeType"`
	Size          string            `json:"size,omitempty"` // Drive serializes int64 as string
	CreatedTime   time.Time         `json:"createdTime,omitempty"`
	Parents       []string          `json:"parents,omitempty"`
	ThumbnailLink string            `json:"thumbnailLink,omitempty"`
	WebViewLink   string            `json:"webViewLink,omitempty"`
	AppProperties map[string]string `json:"appProperties,omitempty"`

	VideoMediaMetadata *VideoMediaMetadata `json:"videoMediaMetadata,omitempty"`
	ImageMediaMetadata *ImageMediaMetadata `json:"imageMediaMetadata,omitempty"`

	// Source folder tags, filled by the catalog during aggregation
	FolderID   string `json:"folderId,omitempty"`
	FolderName string `json:"folderName,omitempty"`
}

// VideoMediaMetadata carries Drive's video probe results
type VideoMediaMetadata struct {
	DurationMillis string `json:"durationMillis,omitempty"`
	Width          int    `json:"width,omitempty"`
	Height         int    `json:"height,omitempty"`
}

// ImageMediaMetadata carries Drive's image probe results
type ImageMediaMetadata struct {
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`
}

// SizeBytes parses the size field; missing or unparseable sizes count as zero
func (f *File) SizeBytes() int64 {
	n, err := strconv.ParseInt(f.Size, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// IsVideo reports whether the file belongs to the video mime family
func (f *File) IsVideo() bool {
	return len(f.MimeType) >= 6 && f.MimeType[:6] == "video/"
}

// IsImage reports whether the file belongs to the image mime family
func (f *File) IsImage() bool {
	return len(f.MimeType) >= 6 && f.MimeType[:6] == "image/"
}

// CustomThumbnailID returns the app-attached thumbnail file id, if any
func (f *File) CustomThumbnailID() string {
	return f.AppProperties["customThumbnailId"]
}

// StorageQuota is the account-level storage view from the about endpoint
type StorageQuota struct {
	UsageInDrive string `json:"usageInDrive"`
	Limit        string `json:"limit"`
}

// Usage summarizes the quota in numbers the API layer can serve directly
type Usage struct {
	StorageUsed  int64   `json:"storage_used"`
	StorageTotal int64   `json:"storage_total"`
	Percentage   float64 `json:"percentage"`
}

type fileList struct {
	NextPageToken string `json:"nextPageToken"`
	Files         []File `json:"files"`
}

type folderList struct {
	NextPageToken string   `json:"nextPageToken"`
	Files         []Folder `json:"files"`
}
