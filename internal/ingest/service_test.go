package ingest

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instavault/pkg/drive"
	"instavault/pkg/errors"
	"instavault/pkg/instagram"
	"instavault/pkg/logger"
)

type fakeResolver struct {
	media *instagram.ResolvedMedia
	err   error
	calls int
}

func (f *fakeResolver) Resolve(ctx context.Context, rawURL string) (*instagram.ResolvedMedia, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.media, nil
}

// fakeFetcher writes a synthetic artifact of the configured size instead of
// touching the network.
type fakeFetcher struct {
	size  int
	err   error
	calls int
}

func (f *fakeFetcher) FetchToTemp(ctx context.Context, media *instagram.ResolvedMedia, destDir, baseFilename string) (*Artifact, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	path := filepath.Join(destDir, baseFilename+".mp4")
	if err := os.WriteFile(path, bytes.Repeat([]byte{0xAB}, f.size), 0644); err != nil {
		return nil, err
	}
	return &Artifact{Path: path, ByteLength: int64(f.size)}, nil
}

type fakeLocator struct {
	rootID string
	err    error
	calls  int
}

func (f *fakeLocator) LocateOrCreateRoot(ctx context.Context) (string, error) {
	f.calls++
	return f.rootID, f.err
}

type fakeUploader struct {
	uploaded *drive.File
	err      error
	calls    int
	meta     drive.UploadMetadata
	bodyLen  int64
}

func (f *fakeUploader) Upload(ctx context.Context, meta drive.UploadMetadata, body io.Reader) (*drive.File, error) {
	f.calls++
	f.meta = meta
	n, _ := io.Copy(io.Discard, body)
	f.bodyLen = n
	if f.err != nil {
		return nil, f.err
	}
	return f.uploaded, nil
}

func newTestService(t *testing.T, resolver *fakeResolver, fetcher *fakeFetcher, locator *fakeLocator, uploader *fakeUploader) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	svc := NewService(resolver, fetcher, locator, uploader, NewTempDir(dir), 1000, logger.NewNop())
	return svc, dir
}

func TestIngestHappyPath(t *testing.T) {
	resolver := &fakeResolver{media: &instagram.ResolvedMedia{
		Title:        "Sunset over the bay, unreal colors",
		DirectURL:    "https://cdn.example.com/v.mp4",
		SourcePostID: "Cxyz123",
	}}
	fetcher := &fakeFetcher{size: 4096}
	locator := &fakeLocator{rootID: "root-folder"}
	uploader := &fakeUploader{uploaded: &drive.File{ID: "uploaded-1"}}

	svc, dir := newTestService(t, resolver, fetcher, locator, uploader)

	result, err := svc.Ingest(context.Background(), "https://www.instagram.com/reel/Cxyz123/", "")
	require.NoError(t, err)

	assert.Equal(t, "uploaded-1", result.DriveFileID)
	assert.Equal(t, "Sunset over the bay, unreal colors", result.ResolvedTitle)

	assert.Equal(t, 1, locator.calls)
	assert.Equal(t, "root-folder", uploader.meta.ParentID)
	assert.Equal(t, "Sunset over the bay, unreal colors", uploader.meta.Title)
	assert.Equal(t, "video/mp4", uploader.meta.MimeType)
	assert.Equal(t, int64(4096), uploader.bodyLen)

	// base name keeps the first 30 sanitized title chars plus the post id
	assert.Equal(t, "Sunset_over_the_bay__unreal_co_Cxyz123.mp4", uploader.meta.Name)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "local artifact should be removed after upload")
}

func TestIngestExplicitFolderSkipsLocator(t *testing.T) {
	resolver := &fakeResolver{media: &instagram.ResolvedMedia{
		Title: "clip", DirectURL: "https://cdn.example.com/v.mp4", SourcePostID: "p1",
	}}
	fetcher := &fakeFetcher{size: 2000}
	locator := &fakeLocator{rootID: "root-folder"}
	uploader := &fakeUploader{uploaded: &drive.File{ID: "f1"}}

	svc, _ := newTestService(t, resolver, fetcher, locator, uploader)

	_, err := svc.Ingest(context.Background(), "https://www.instagram.com/p/p1/", "explicit-folder")
	require.NoError(t, err)

	assert.Equal(t, 0, locator.calls)
	assert.Equal(t, "explicit-folder", uploader.meta.ParentID)
}

func TestIngestResolverErrorPropagatesUnchanged(t *testing.T) {
	resolverErr := errors.Throttled("rate limited by upstream", 429)
	resolver := &fakeResolver{err: resolverErr}
	fetcher := &fakeFetcher{size: 2000}
	uploader := &fakeUploader{uploaded: &drive.File{ID: "f1"}}

	svc, _ := newTestService(t, resolver, fetcher, &fakeLocator{rootID: "r"}, uploader)

	_, err := svc.Ingest(context.Background(), "https://www.instagram.com/p/p1/", "")
	require.Error(t, err)
	assert.Same(t, error(resolverErr), err, "resolution errors must pass through untouched")
	assert.Equal(t, 0, fetcher.calls, "no download should be attempted after a failed resolution")
	assert.Equal(t, 0, uploader.calls)
}

func TestIngestRejectsUndersizedArtifact(t *testing.T) {
	resolver := &fakeResolver{media: &instagram.ResolvedMedia{
		Title: "blocked", DirectURL: "https://cdn.example.com/v.mp4", SourcePostID: "p2",
	}}
	fetcher := &fakeFetcher{size: 512}
	uploader := &fakeUploader{uploaded: &drive.File{ID: "f1"}}

	svc, dir := newTestService(t, resolver, fetcher, &fakeLocator{rootID: "r"}, uploader)

	_, err := svc.Ingest(context.Background(), "https://www.instagram.com/p/p2/", "")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeCorrupted))
	assert.Equal(t, 0, uploader.calls, "an undersized artifact must never reach Drive")

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "the rejected artifact should still be cleaned up")
}

func TestIngestUploadFailureStillCleansUp(t *testing.T) {
	resolver := &fakeResolver{media: &instagram.ResolvedMedia{
		Title: "clip", DirectURL: "https://cdn.example.com/v.mp4", SourcePostID: "p3",
	}}
	fetcher := &fakeFetcher{size: 2000}
	uploadErr := errors.Drive("insufficient storage", 403)
	uploader := &fakeUploader{err: uploadErr}

	svc, dir := newTestService(t, resolver, fetcher, &fakeLocator{rootID: "r"}, uploader)

	_, err := svc.Ingest(context.Background(), "https://www.instagram.com/p/p3/", "")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeDrive))

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "the artifact should be removed even when the upload fails")
}

func TestIngestLocatorErrorAbortsEarly(t *testing.T) {
	resolver := &fakeResolver{}
	locator := &fakeLocator{err: errors.Drive("search exploded", 500)}

	svc, _ := newTestService(t, resolver, &fakeFetcher{size: 2000}, locator, &fakeUploader{})

	_, err := svc.Ingest(context.Background(), "https://www.instagram.com/p/p4/", "")
	require.Error(t, err)
	assert.Equal(t, 0, resolver.calls, "no upstream request before a usable folder exists")
}

func TestSafeBaseFilename(t *testing.T) {
	tests := []struct {
		name   string
		title  string
		postID string
		want   string
	}{
		{
			name:   "plain title",
			title:  "Beach day",
			postID: "AB12",
			want:   "Beach_day_AB12",
		},
		{
			name:   "long title truncated",
			title:  "This caption keeps going well past the cutoff point",
			postID: "XY",
			want:   "This_caption_keeps_going_well_XY",
		},
		{
			name:   "emoji and punctuation stripped",
			title:  "Waves!!",
			postID: "Z9",
			want:   "Waves_Z9",
		},
		{
			name:   "empty title falls back",
			title:  "",
			postID: "Q1",
			want:   "instagram_media_Q1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, safeBaseFilename(tt.title, tt.postID))
		})
	}
}
