package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"instavault/pkg/drive"
	"instavault/pkg/errors"
	"instavault/pkg/instagram"
	"instavault/pkg/logger"
)

const (
	// MaxTitleFilenameLength caps how much of the resolved title survives
	// into the filename before the post id is appended.
	MaxTitleFilenameLength = 30

	fallbackMimeType = "video/mp4"
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// MediaResolver turns a post URL into downloadable media.
type MediaResolver interface {
	Resolve(ctx context.Context, rawURL string) (*instagram.ResolvedMedia, error)
}

// ArtifactFetcher downloads resolved media to local disk.
type ArtifactFetcher interface {
	FetchToTemp(ctx context.Context, media *instagram.ResolvedMedia, destDir, baseFilename string) (*Artifact, error)
}

// RootLocator finds or creates the app's root folder in Drive.
type RootLocator interface {
	LocateOrCreateRoot(ctx context.Context) (string, error)
}

// Uploader streams a file into a Drive folder.
type Uploader interface {
	Upload(ctx context.Context, meta drive.UploadMetadata, body io.Reader) (*drive.File, error)
}

// Result describes a completed ingestion.
type Result struct {
	DriveFileID   string `json:"fileId"`
	ResolvedTitle string `json:"title"`
}

// Service orchestrates the full pipeline for one URL: resolve, download,
// verify, upload, clean up.
type Service struct {
	resolver    MediaResolver
	fetcher     ArtifactFetcher
	locator     RootLocator
	uploader    Uploader
	tempDir     *TempDir
	minFileSize int64
	logger      logger.Logger
}

// NewService creates an ingestion Service
func NewService(resolver MediaResolver, fetcher ArtifactFetcher, locator RootLocator, uploader Uploader, tempDir *TempDir, minFileSize int64, log logger.Logger) *Service {
	return &Service{
		resolver:    resolver,
		fetcher:     fetcher,
		locator:     locator,
		uploader:    uploader,
		tempDir:     tempDir,
		minFileSize: minFileSize,
		logger:      log,
	}
}

// Ingest runs the pipeline for sourceURL. When targetFolderID is empty the
// upload lands in the app's root folder, located or created on demand.
// Resolution errors propagate unchanged so callers can map them to precise
// failure categories; there is no retry at this layer.
func (s *Service) Ingest(ctx context.Context, sourceURL, targetFolderID string) (*Result, error) {
	folderID := targetFolderID
	if folderID == "" {
		id, err := s.locator.LocateOrCreateRoot(ctx)
		if err != nil {
			return nil, err
		}
		folderID = id
	}

	media, err := s.resolver.Resolve(ctx, sourceURL)
	if err != nil {
		return nil, err
	}

	if err := s.tempDir.Ensure(); err != nil {
		return nil, errors.Download(fmt.Sprintf("temp directory unavailable: %v", err))
	}

	base := safeBaseFilename(media.Title, media.SourcePostID)
	artifact, err := s.fetcher.FetchToTemp(ctx, media, s.tempDir.Path(), base)
	if err != nil {
		return nil, err
	}
	defer s.removeArtifact(artifact)

	info, err := os.Stat(artifact.Path)
	if err != nil {
		return nil, errors.Download(fmt.Sprintf("downloaded file unreadable: %v", err))
	}
	if info.Size() < s.minFileSize {
		return nil, errors.Corrupted(fmt.Sprintf("downloaded file is only %d bytes, likely blocked or corrupted", info.Size()))
	}

	body, err := os.Open(artifact.Path)
	if err != nil {
		return nil, errors.Download(fmt.Sprintf("failed to reopen downloaded file: %v", err))
	}
	defer body.Close()

	meta := drive.UploadMetadata{
		Name:     filepath.Base(artifact.Path),
		MimeType: sniffMimeType(artifact.Path),
		ParentID: folderID,
		Title:    media.Title,
	}

	uploaded, err := s.uploader.Upload(ctx, meta, body)
	if err != nil {
		return nil, err
	}

	s.logger.InfoWithFields("media ingested", map[string]interface{}{
		"file_id": uploaded.ID,
		"title":   media.Title,
		"bytes":   info.Size(),
	})

	return &Result{DriveFileID: uploaded.ID, ResolvedTitle: media.Title}, nil
}

// removeArtifact deletes the local copy. Cleanup failures are logged, never
// surfaced; the upload outcome is already decided by the time this runs.
func (s *Service) removeArtifact(artifact *Artifact) {
	if artifact == nil {
		return
	}
	if err := os.Remove(artifact.Path); err != nil && !os.IsNotExist(err) {
		s.logger.WarnWithFields("failed to remove local artifact", map[string]interface{}{
			"path":  artifact.Path,
			"error": err.Error(),
		})
	}
}

// safeBaseFilename builds a filesystem-safe base name from the resolved
// title and the post id, so two posts with the same caption never collide.
func safeBaseFilename(title, postID string) string {
	safe := unsafeFilenameChars.ReplaceAllString(title, "_")
	if len(safe) > MaxTitleFilenameLength {
		safe = safe[:MaxTitleFilenameLength]
	}
	safe = strings.Trim(safe, "_")
	if safe == "" {
		safe = "instagram_media"
	}
	return safe + "_" + postID
}

// sniffMimeType inspects the artifact's leading bytes. Detection that does
// not look like media falls back to video/mp4, matching what the CDN serves
// for reels.
func sniffMimeType(path string) string {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return fallbackMimeType
	}
	detected := mt.String()
	if strings.HasPrefix(detected, "video/") || strings.HasPrefix(detected, "image/") {
		return detected
	}
	return fallbackMimeType
}
