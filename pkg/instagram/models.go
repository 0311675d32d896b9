package instagram

// ResolvedMedia is the result of resolving a post URL to a playable asset.
// DirectURL is a time-limited signed CDN URL and should be consumed promptly;
// cached entries can outlive the signature.
type ResolvedMedia struct {
	Title         string `json:"title"`
	DirectURL     string `json:"direct_url"`
	ThumbnailURL  string `json:"thumbnail_url"`
	FileExtension string `json:"file_extension"`
	SourcePostID  string `json:"source_post_id"`
}
