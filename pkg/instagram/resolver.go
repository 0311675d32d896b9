package instagram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"instavault/pkg/config"
	"instavault/pkg/errors"
	"instavault/pkg/logger"
	"instavault/pkg/ratelimit"
)

// maxPageSize bounds how much of the post page is read for parsing
const maxPageSize = 5 << 20

// Resolver resolves post URLs to direct media URLs. It owns its cache and
// cooldown state so isolated instances can be constructed in tests; both
// are mutex-guarded because requests run on parallel goroutines.
//
// The cache has no TTL. Entries hold signed CDN URLs that expire on a
// minutes scale, so a long-lived instance can serve a stale DirectURL;
// recycle the Resolver if that matters for the deployment.
type Resolver struct {
	httpClient *http.Client
	headers    map[string]string
	cooldown   ratelimit.Limiter
	extractor  Extractor
	logger     logger.Logger

	mu    sync.Mutex
	cache map[string]*ResolvedMedia
}

// NewResolver creates a Resolver from configuration
func NewResolver(cfg *config.ResolverConfig, log logger.Logger) *Resolver {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Resolver{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		headers: map[string]string{
			"User-Agent":      cfg.UserAgent,
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.9",
			"Cache-Control":   "no-cache",
			"Sec-Fetch-Dest":  "document",
			"Sec-Fetch-Mode":  "navigate",
			"Sec-Fetch-Site":  "none",
		},
		cooldown:  ratelimit.NewCooldown(cfg.Cooldown),
		extractor: &OpenGraphExtractor{TitleMaxLength: cfg.TitleMaxLength},
		logger:    log.WithField("component", "resolver"),
		cache:     make(map[string]*ResolvedMedia),
	}
}

// SetExtractor replaces the page parser (used by tests)
func (r *Resolver) SetExtractor(e Extractor) {
	r.extractor = e
}

// Resolve turns a post URL into resolved media. Cache hits return
// immediately; misses serialize against the global cooldown before the
// single page fetch. Failures are never cached.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (*ResolvedMedia, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, err
	}

	key := NormalizeURL(rawURL)

	r.mu.Lock()
	if media, ok := r.cache[key]; ok {
		r.mu.Unlock()
		r.logger.DebugWithFields("cache hit", map[string]interface{}{
			"url": key,
		})
		return media, nil
	}
	r.mu.Unlock()

	// Global token: one page fetch per cooldown interval, system-wide.
	// The stamp is taken before the fetch so slow responses still space
	// out subsequent attempts.
	if err := r.cooldown.Wait(ctx); err != nil {
		return nil, errors.Unavailable(fmt.Sprintf("cancelled while waiting for cooldown: %v", err))
	}

	start := time.Now()
	body, err := r.fetchPage(ctx, key)
	if err != nil {
		return nil, err
	}

	media, err := r.extractor.Extract(body)
	if err != nil {
		return nil, err
	}
	media.SourcePostID = ExtractPostID(key)

	r.mu.Lock()
	r.cache[key] = media
	r.mu.Unlock()

	r.logger.InfoWithFields("resolved media", map[string]interface{}{
		"url":      key,
		"post_id":  media.SourcePostID,
		"title":    media.Title,
		"duration": time.Since(start),
	})

	return media, nil
}

// CacheSize returns the number of cached resolutions
func (r *Resolver) CacheSize() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cache)
}

func (r *Resolver) fetchPage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", errors.Unavailable(fmt.Sprintf("cannot build request: %v", err))
	}
	for key, value := range r.headers {
		req.Header.Set(key, value)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.logger.WithError(err).Warn("post page fetch failed")
		return "", errors.Unavailable(fmt.Sprintf("fetch failed: %v", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", errors.NotFound("post does not exist or was removed")
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusUnauthorized:
		return "", errors.Throttled("upstream refused the request", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return "", errors.NewWithCode(errors.ErrorTypeUnavailable,
			fmt.Sprintf("unexpected status %d", resp.StatusCode), resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return "", errors.Unavailable(fmt.Sprintf("reading page body: %v", err))
	}

	return string(data), nil
}
