package instagram

import (
	"fmt"
	"net/url"
	"strings"

	"instavault/pkg/errors"
)

const (
	// BaseURL is the base URL for Instagram
	BaseURL = "https://www.instagram.com"

	// PostPathPrefix is the path prefix for regular posts
	PostPathPrefix = "p"

	// ReelPathPrefix is the path prefix for reels
	ReelPathPrefix = "reel"
)

// ValidateURL checks that a source URL points at a supported post shape.
// Only /p/<id> and /reel/<id> paths are accepted; everything else fails
// with an invalid_url error before any network activity.
func ValidateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return errors.InvalidURL(fmt.Sprintf("cannot parse URL: %v", err))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.InvalidURL("URL must use http or https")
	}

	segments := pathSegments(u)
	if len(segments) < 2 {
		return errors.InvalidURL("URL does not point at a post or reel")
	}
	if segments[0] != PostPathPrefix && segments[0] != ReelPathPrefix {
		return errors.InvalidURL(fmt.Sprintf("unsupported path %q, expected /p/ or /reel/", u.Path))
	}
	if segments[1] == "" {
		return errors.InvalidURL("missing post shortcode")
	}

	return nil
}

// NormalizeURL strips the query string and fragment, forming the cache key
func NormalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

// ExtractPostID returns the shortcode segment following /p/ or /reel/
func ExtractPostID(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "unknown_id"
	}

	segments := pathSegments(u)
	for i, seg := range segments {
		if (seg == PostPathPrefix || seg == ReelPathPrefix) && i+1 < len(segments) {
			return segments[i+1]
		}
	}

	if len(segments) > 0 {
		return segments[len(segments)-1]
	}
	return "unknown_id"
}

// GetPostURL constructs the canonical URL for a post shortcode
func GetPostURL(shortcode string) string {
	if shortcode == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s/%s/", BaseURL, PostPathPrefix, shortcode)
}

// GetReelURL constructs the canonical URL for a reel shortcode
func GetReelURL(shortcode string) string {
	if shortcode == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s/%s/", BaseURL, ReelPathPrefix, shortcode)
}

func pathSegments(u *url.URL) []string {
	var segments []string
	for _, seg := range strings.Split(u.Path, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	return segments
}
