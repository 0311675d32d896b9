package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"instavault/pkg/errors"
	"instavault/pkg/instagram"
	"instavault/pkg/logger"
)

// Artifact is a media file downloaded to local disk, ready for upload.
type Artifact struct {
	Path       string
	ByteLength int64
}

// Fetcher streams resolved media from the CDN to a local file.
type Fetcher struct {
	httpClient *http.Client
	logger     logger.Logger
}

// NewFetcher creates a Fetcher with the given per-download timeout
func NewFetcher(timeout time.Duration, log logger.Logger) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
		logger:     log,
	}
}

// FetchToTemp downloads the media's direct URL into destDir under the given
// base filename, appending the extension the resolver reported. The body is
// streamed straight to disk so large reels never sit in memory.
func (f *Fetcher) FetchToTemp(ctx context.Context, media *instagram.ResolvedMedia, destDir, baseFilename string) (*Artifact, error) {
	if media == nil || media.DirectURL == "" {
		return nil, errors.Download("no direct media URL to download")
	}

	ext := media.FileExtension
	if ext == "" {
		ext = "mp4"
	}
	path := filepath.Join(destDir, baseFilename+"."+ext)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, media.DirectURL, nil)
	if err != nil {
		return nil, errors.Download(fmt.Sprintf("invalid media URL: %v", err))
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, errors.Download(fmt.Sprintf("media download failed: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Download(fmt.Sprintf("media host returned status %d", resp.StatusCode))
	}

	out, err := os.Create(path)
	if err != nil {
		return nil, errors.Download(fmt.Sprintf("failed to create local file: %v", err))
	}

	written, err := io.Copy(out, resp.Body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		if removeErr := os.Remove(path); removeErr != nil {
			f.logger.WarnWithFields("failed to remove partial download", map[string]interface{}{
				"path":  path,
				"error": removeErr.Error(),
			})
		}
		return nil, errors.Download(fmt.Sprintf("media download interrupted: %v", err))
	}

	f.logger.DebugWithFields("media downloaded", map[string]interface{}{
		"path":  path,
		"bytes": written,
	})

	return &Artifact{Path: path, ByteLength: written}, nil
}
