package instagram

import (
	"html"
	"regexp"
	"strings"

	"instavault/pkg/errors"
)

// Extractor turns a raw post page into resolved media fields. The page
// parsing is brittle by nature, so it hides behind this narrow interface
// and is unit-tested against fixed HTML fixtures.
type Extractor interface {
	Extract(body string) (*ResolvedMedia, error)
}

// Markers that identify the login wall served for private content
var loginWallMarkers = []string{
	"loginForm",
	"Log in to Instagram",
	"/accounts/login/",
}

// titleWrapperPattern matches the `Name on Instagram: "caption"` wrapper
// Instagram puts around post captions in og:title.
var titleWrapperPattern = regexp.MustCompile(`^.*? on Instagram: ["\x{201c}](.*)["\x{201d}]$`)

// OpenGraphExtractor reads media metadata from og: meta tags
type OpenGraphExtractor struct {
	// TitleMaxLength bounds the cleaned title; zero means DefaultTitleMaxLength
	TitleMaxLength int
}

// DefaultTitleMaxLength caps resolved titles
const DefaultTitleMaxLength = 100

// Extract parses og:video, og:image and og:title out of the page body
func (e *OpenGraphExtractor) Extract(body string) (*ResolvedMedia, error) {
	videoURL := metaTagContent(body, "og:video")
	if videoURL == "" {
		if isLoginWall(body) {
			return nil, errors.PrivateContent("post requires login, it may be private")
		}
		return nil, errors.Unavailable("no video URL found in post page")
	}

	media := &ResolvedMedia{
		DirectURL:     html.UnescapeString(videoURL),
		ThumbnailURL:  html.UnescapeString(metaTagContent(body, "og:image")),
		Title:         e.cleanTitle(metaTagContent(body, "og:title")),
		FileExtension: "mp4",
	}

	return media, nil
}

// cleanTitle strips the caption wrapper and truncates to the bound
func (e *OpenGraphExtractor) cleanTitle(title string) string {
	title = strings.TrimSpace(html.UnescapeString(title))

	if m := titleWrapperPattern.FindStringSubmatch(title); m != nil {
		title = m[1]
	}

	max := e.TitleMaxLength
	if max <= 0 {
		max = DefaultTitleMaxLength
	}
	if len(title) > max {
		title = title[:max]
	}

	if title == "" {
		title = "Instagram Reel"
	}
	return title
}

// metaTagContent finds the content attribute of a meta tag by property name.
// Both attribute orders occur in the wild.
func metaTagContent(body, property string) string {
	patterns := []string{
		`<meta[^>]*property=["']` + regexp.QuoteMeta(property) + `["'][^>]*content=["']([^"']*)["']`,
		`<meta[^>]*content=["']([^"']*)["'][^>]*property=["']` + regexp.QuoteMeta(property) + `["']`,
	}

	for _, p := range patterns {
		re := regexp.MustCompile(p)
		if m := re.FindStringSubmatch(body); m != nil {
			return m[1]
		}
	}
	return ""
}

func isLoginWall(body string) bool {
	for _, marker := range loginWallMarkers {
		if strings.Contains(body, marker) {
			return true
		}
	}
	return false
}
