package vault

import (
	"path/filepath"
	"strings"
	"time"

	"instavault/pkg/drive"
)

// UsageStats is the pure aggregation over a file set. Missing or
// unparseable sizes count as zero.
type UsageStats struct {
	VideoCount          int   `json:"video_count"`
	ImageCount          int   `json:"image_count"`
	VideoBytes          int64 `json:"video_bytes"`
	ImageBytes          int64 `json:"image_bytes"`
	TotalCount          int   `json:"total_count"`
	TotalBytes          int64 `json:"total_bytes"`
	DistinctFolderCount int   `json:"distinct_folder_count"`
	ThisWeek            int   `json:"this_week"`
	ThisMonth           int   `json:"this_month"`
}

// ComputeUsageStats aggregates counts and byte totals by mime family
func ComputeUsageStats(files []drive.File) UsageStats {
	return computeUsageStatsAt(files, time.Now())
}

func computeUsageStatsAt(files []drive.File, now time.Time) UsageStats {
	var stats UsageStats

	weekAgo := now.Add(-7 * 24 * time.Hour)
	monthAgo := now.Add(-30 * 24 * time.Hour)
	folders := make(map[string]struct{})

	for _, f := range files {
		size := f.SizeBytes()
		stats.TotalCount++
		stats.TotalBytes += size

		switch {
		case f.IsVideo():
			stats.VideoCount++
			stats.VideoBytes += size
		case f.IsImage():
			stats.ImageCount++
			stats.ImageBytes += size
		}

		if f.FolderID != "" {
			folders[f.FolderID] = struct{}{}
		}

		if f.CreatedTime.After(weekAgo) {
			stats.ThisWeek++
		}
		if f.CreatedTime.After(monthAgo) {
			stats.ThisMonth++
		}
	}

	stats.DistinctFolderCount = len(folders)
	return stats
}

// RecentItem is a display-ready view of a recently saved file
type RecentItem struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Category      string    `json:"category"`
	CreatedTime   time.Time `json:"created_time"`
	WebViewLink   string    `json:"web_view_link,omitempty"`
	ThumbnailLink string    `json:"thumbnail_link,omitempty"`
	FolderID      string    `json:"folder_id,omitempty"`
	IsVideo       bool      `json:"is_video"`
}

// RecentItems derives the newest n files as display items. The input is
// expected sorted newest-first, as FetchAllFilesRecursively returns it.
func RecentItems(files []drive.File, n int) []RecentItem {
	if n > len(files) {
		n = len(files)
	}

	items := make([]RecentItem, 0, n)
	for _, f := range files[:n] {
		category := f.FolderName
		if category == "" {
			category = "General"
		}

		items = append(items, RecentItem{
			ID:            f.ID,
			Title:         cleanDisplayName(f.Name),
			Category:      category,
			CreatedTime:   f.CreatedTime,
			WebViewLink:   f.WebViewLink,
			ThumbnailLink: f.ThumbnailLink,
			FolderID:      f.FolderID,
			IsVideo:       f.IsVideo(),
		})
	}
	return items
}

// cleanDisplayName strips the file extension for display
func cleanDisplayName(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext)
}
