package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"instavault/pkg/auth"
)

// GoogleTokenURL is the endpoint for the OAuth refresh-token grant
const GoogleTokenURL = "https://oauth2.googleapis.com/token"

// TokenProvider supplies a bearer credential for one Drive call. The core
// treats the token as opaque and never manages consent.
type TokenProvider interface {
	AccessToken(ctx context.Context) (string, error)
}

// StaticTokenProvider returns a fixed token. Used by tests and by callers
// that manage refresh themselves.
type StaticTokenProvider string

// AccessToken returns the fixed token
func (s StaticTokenProvider) AccessToken(ctx context.Context) (string, error) {
	if s == "" {
		return "", fmt.Errorf("no access token configured")
	}
	return string(s), nil
}

// OAuthTokenProvider mints access tokens from long-lived refresh
// credentials, caching each token until shortly before expiry.
type OAuthTokenProvider struct {
	creds    *auth.Credentials
	tokenURL string
	client   *http.Client

	mu      sync.Mutex
	token   string
	expires time.Time
}

// NewOAuthTokenProvider creates a provider from refresh credentials.
// tokenURL may be empty to use the public Google endpoint.
func NewOAuthTokenProvider(creds *auth.Credentials, tokenURL string) (*OAuthTokenProvider, error) {
	if !creds.Valid() {
		return nil, auth.ErrInvalidCredentials
	}
	if tokenURL == "" {
		tokenURL = GoogleTokenURL
	}

	return &OAuthTokenProvider{
		creds:    creds,
		tokenURL: tokenURL,
		client:   &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// AccessToken returns a cached token or refreshes one
func (p *OAuthTokenProvider) AccessToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// 30s of slack so a token never expires mid-call
	if p.token != "" && time.Now().Before(p.expires.Add(-30*time.Second)) {
		return p.token, nil
	}

	token, expiresIn, err := p.refresh(ctx)
	if err != nil {
		return "", err
	}

	p.token = token
	p.expires = time.Now().Add(time.Duration(expiresIn) * time.Second)
	return p.token, nil
}

func (p *OAuthTokenProvider) refresh(ctx context.Context) (string, int, error) {
	form := url.Values{
		"client_id":     {p.creds.ClientID},
		"client_secret": {p.creds.ClientSecret},
		"refresh_token": {p.creds.RefreshToken},
		"grant_type":    {"refresh_token"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("token refresh request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", 0, fmt.Errorf("token refresh failed (%d): %s", resp.StatusCode, body)
	}

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", 0, fmt.Errorf("decoding token response: %w", err)
	}
	if result.AccessToken == "" {
		return "", 0, fmt.Errorf("token response missing access_token")
	}
	if result.ExpiresIn <= 0 {
		result.ExpiresIn = 3600
	}

	return result.AccessToken, result.ExpiresIn, nil
}
