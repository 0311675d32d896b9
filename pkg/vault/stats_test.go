package vault

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"instavault/pkg/drive"
)

func TestComputeUsageStats(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	files := []drive.File{
		{ID: "v1", MimeType: "video/mp4", Size: "1000", FolderID: "a", CreatedTime: now.Add(-time.Hour)},
		{ID: "v2", MimeType: "video/mp4", Size: "2000", FolderID: "b", CreatedTime: now.Add(-10 * 24 * time.Hour)},
		{ID: "i1", MimeType: "image/jpeg", Size: "300", FolderID: "a", CreatedTime: now.Add(-40 * 24 * time.Hour)},
		{ID: "bad", MimeType: "video/mp4", Size: "not-a-size", FolderID: "c", CreatedTime: now},
		{ID: "nosize", MimeType: "image/png", FolderID: "", CreatedTime: now},
	}

	stats := computeUsageStatsAt(files, now)

	assert.Equal(t, 3, stats.VideoCount)
	assert.Equal(t, 2, stats.ImageCount)
	assert.EqualValues(t, 3000, stats.VideoBytes, "unparseable size counts as zero")
	assert.EqualValues(t, 300, stats.ImageBytes)
	assert.Equal(t, 5, stats.TotalCount)
	assert.EqualValues(t, 3300, stats.TotalBytes)
	assert.Equal(t, 3, stats.DistinctFolderCount, "empty folder ids are not counted")
	assert.Equal(t, 3, stats.ThisWeek)
	assert.Equal(t, 4, stats.ThisMonth)
}

func TestComputeUsageStatsEmpty(t *testing.T) {
	stats := ComputeUsageStats(nil)
	assert.Equal(t, UsageStats{}, stats)
}

func TestRecentItems(t *testing.T) {
	now := time.Now()
	files := []drive.File{
		{ID: "1", Name: "First_clip.mp4", MimeType: "video/mp4", FolderName: "Trips", FolderID: "t", CreatedTime: now},
		{ID: "2", Name: "photo.jpg", MimeType: "image/jpeg", CreatedTime: now.Add(-time.Minute)},
		{ID: "3", Name: "third.mp4", MimeType: "video/mp4", CreatedTime: now.Add(-2 * time.Minute)},
	}

	items := RecentItems(files, 2)
	assert.Len(t, items, 2)

	assert.Equal(t, "First_clip", items[0].Title, "extension must be stripped")
	assert.Equal(t, "Trips", items[0].Category)
	assert.True(t, items[0].IsVideo)

	assert.Equal(t, "photo", items[1].Title)
	assert.Equal(t, "General", items[1].Category, "missing folder name defaults to General")
	assert.False(t, items[1].IsVideo)
}

func TestRecentItemsShortList(t *testing.T) {
	items := RecentItems([]drive.File{{ID: "only", Name: "x.mp4"}}, 4)
	assert.Len(t, items, 1)

	assert.Empty(t, RecentItems(nil, 4))
}
