package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instavault/pkg/errors"
	"instavault/pkg/instagram"
	"instavault/pkg/logger"
)

func TestFetchToTempWritesFile(t *testing.T) {
	payload := []byte("not really a video, but enough to stream")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer server.Close()

	dir := t.TempDir()
	fetcher := NewFetcher(0, logger.NewNop())

	media := &instagram.ResolvedMedia{
		DirectURL:     server.URL + "/video.mp4",
		FileExtension: "mp4",
	}
	artifact, err := fetcher.FetchToTemp(context.Background(), media, dir, "my_reel_ABC123")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "my_reel_ABC123.mp4"), artifact.Path)
	assert.Equal(t, int64(len(payload)), artifact.ByteLength)

	written, err := os.ReadFile(artifact.Path)
	require.NoError(t, err)
	assert.Equal(t, payload, written)
}

func TestFetchToTempDefaultsExtension(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("data"))
	}))
	defer server.Close()

	dir := t.TempDir()
	fetcher := NewFetcher(0, logger.NewNop())

	artifact, err := fetcher.FetchToTemp(context.Background(), &instagram.ResolvedMedia{DirectURL: server.URL}, dir, "clip")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "clip.mp4"), artifact.Path)
}

func TestFetchToTempNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	dir := t.TempDir()
	fetcher := NewFetcher(0, logger.NewNop())

	_, err := fetcher.FetchToTemp(context.Background(), &instagram.ResolvedMedia{DirectURL: server.URL}, dir, "clip")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeDownload))

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "a failed download should leave nothing behind")
}

func TestFetchToTempMissingDirectURL(t *testing.T) {
	fetcher := NewFetcher(0, logger.NewNop())

	_, err := fetcher.FetchToTemp(context.Background(), &instagram.ResolvedMedia{}, t.TempDir(), "clip")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeDownload))

	_, err = fetcher.FetchToTemp(context.Background(), nil, t.TempDir(), "clip")
	require.Error(t, err)
}
