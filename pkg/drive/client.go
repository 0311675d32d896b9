package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"instavault/pkg/errors"
	"instavault/pkg/logger"
)

const (
	// DefaultAPIBase is the Drive REST v3 endpoint
	DefaultAPIBase = "https://www.googleapis.com/drive/v3"

	// DefaultUploadBase is the Drive v3 upload endpoint
	DefaultUploadBase = "https://www.googleapis.com/upload/drive/v3"

	// MaxPageSize is the practical listing ceiling; pagination beyond it
	// is out of scope
	MaxPageSize = 1000
)

// Client talks to the Drive REST API v3 directly over net/http. Trashed
// items are excluded from every listing query.
type Client struct {
	httpClient *http.Client
	tokens     TokenProvider
	apiBase    string
	uploadBase string
	logger     logger.Logger
}

// Option configures a Client
type Option func(*Client)

// WithEndpoints overrides the API endpoints (used by tests)
func WithEndpoints(apiBase, uploadBase string) Option {
	return func(c *Client) {
		if apiBase != "" {
			c.apiBase = apiBase
		}
		if uploadBase != "" {
			c.uploadBase = uploadBase
		}
	}
}

// WithHTTPClient overrides the HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a Drive client using the given token provider
func NewClient(tokens TokenProvider, log logger.Logger, opts ...Option) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	c := &Client{
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		tokens:     tokens,
		apiBase:    DefaultAPIBase,
		uploadBase: DefaultUploadBase,
		logger:     log.WithField("component", "drive"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do performs an authenticated request against the Drive API
func (c *Client) do(ctx context.Context, method, rawURL string, body io.Reader, contentType string) (*http.Response, error) {
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("obtaining access token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Drive(fmt.Sprintf("request failed: %v", err), 0)
	}
	return resp, nil
}

// apiError drains an error response into a taxonomy error, keeping the
// provider's own message where one exists
func apiError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))

	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	message := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		message = payload.Error.Message
	}
	if message == "" {
		message = strings.TrimSpace(string(body))
	}
	if message == "" {
		message = resp.Status
	}

	return errors.Drive(message, resp.StatusCode)
}

// escapeQueryValue escapes single quotes inside a Drive query literal
func escapeQueryValue(v string) string {
	return strings.ReplaceAll(v, `'`, `\'`)
}

// SearchFolders finds all non-trashed folders whose name matches any of the
// candidates, most-recently-modified first.
func (c *Client) SearchFolders(ctx context.Context, names []string) ([]Folder, error) {
	var nameTerms []string
	for _, name := range names {
		nameTerms = append(nameTerms, fmt.Sprintf("name='%s'", escapeQueryValue(name)))
	}

	q := fmt.Sprintf("mimeType='%s' and (%s) and trashed=false",
		FolderMimeType, strings.Join(nameTerms, " or "))

	params := url.Values{}
	params.Set("q", q)
	params.Set("fields", "files(id, name, createdTime, modifiedTime)")
	params.Set("orderBy", "modifiedTime desc")

	return c.listFolders(ctx, params)
}

// ListChildFolders lists direct, non-trashed subfolders newest-created-first
func (c *Client) ListChildFolders(ctx context.Context, parentID string) ([]Folder, error) {
	q := fmt.Sprintf("'%s' in parents and mimeType='%s' and trashed=false",
		escapeQueryValue(parentID), FolderMimeType)

	params := url.Values{}
	params.Set("q", q)
	params.Set("fields", "files(id, name, createdTime)")
	params.Set("orderBy", "createdTime desc")
	params.Set("pageSize", strconv.Itoa(MaxPageSize))

	return c.listFolders(ctx, params)
}

func (c *Client) listFolders(ctx context.Context, params url.Values) ([]Folder, error) {
	resp, err := c.do(ctx, http.MethodGet, c.apiBase+"/files?"+params.Encode(), nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var list folderList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decoding folder list: %w", err)
	}
	return list.Files, nil
}

// ListMediaFiles lists direct, non-trashed image and video children of a
// folder, newest-created-first, capped at MaxPageSize.
func (c *Client) ListMediaFiles(ctx context.Context, folderID string) ([]File, error) {
	q := fmt.Sprintf("'%s' in parents and trashed=false and (mimeType contains 'image/' or mimeType contains 'video/')",
		escapeQueryValue(folderID))

	params := url.Values{}
	params.Set("q", q)
	params.Set("fields", "files(id, name, mimeType, size, createdTime, parents, thumbnailLink, webViewLink, videoMediaMetadata, imageMediaMetadata, appProperties)")
	params.Set("orderBy", "createdTime desc")
	params.Set("pageSize", strconv.Itoa(MaxPageSize))

	return c.listFiles(ctx, params)
}

func (c *Client) listFiles(ctx context.Context, params url.Values) ([]File, error) {
	resp, err := c.do(ctx, http.MethodGet, c.apiBase+"/files?"+params.Encode(), nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var list fileList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decoding file list: %w", err)
	}
	return list.Files, nil
}

// CountChildFiles counts direct non-folder children of a folder
func (c *Client) CountChildFiles(ctx context.Context, folderID string) (int, error) {
	q := fmt.Sprintf("'%s' in parents and trashed=false and mimeType!='%s'",
		escapeQueryValue(folderID), FolderMimeType)

	params := url.Values{}
	params.Set("q", q)
	params.Set("fields", "files(id)")
	params.Set("pageSize", strconv.Itoa(MaxPageSize))

	files, err := c.listFiles(ctx, params)
	if err != nil {
		return 0, err
	}
	return len(files), nil
}

// CountChildFolders counts direct subfolders of a folder
func (c *Client) CountChildFolders(ctx context.Context, folderID string) (int, error) {
	folders, err := c.ListChildFolders(ctx, folderID)
	if err != nil {
		return 0, err
	}
	return len(folders), nil
}

// CreateFolder creates a folder; empty parentID places it at the Drive root
func (c *Client) CreateFolder(ctx context.Context, name, parentID string) (*Folder, error) {
	meta := map[string]any{
		"name":     name,
		"mimeType": FolderMimeType,
	}
	if parentID != "" {
		meta["parents"] = []string{parentID}
	}
	body, _ := json.Marshal(meta)

	resp, err := c.do(ctx, http.MethodPost, c.apiBase+"/files?fields=id,name,createdTime",
		bytes.NewReader(body), "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var folder Folder
	if err := json.NewDecoder(resp.Body).Decode(&folder); err != nil {
		return nil, fmt.Errorf("decoding created folder: %w", err)
	}

	c.logger.InfoWithFields("created folder", map[string]interface{}{
		"name": name,
		"id":   folder.ID,
	})
	return &folder, nil
}

// GetFolderMetadata fetches id and name for a folder
func (c *Client) GetFolderMetadata(ctx context.Context, folderID string) (*Folder, error) {
	apiURL := fmt.Sprintf("%s/files/%s?fields=id,name,createdTime",
		c.apiBase, url.PathEscape(folderID))

	resp, err := c.do(ctx, http.MethodGet, apiURL, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var folder Folder
	if err := json.NewDecoder(resp.Body).Decode(&folder); err != nil {
		return nil, fmt.Errorf("decoding folder metadata: %w", err)
	}
	return &folder, nil
}

// UploadMetadata carries the request metadata for an upload
type UploadMetadata struct {
	Name          string
	MimeType      string
	ParentID      string
	Title         string // original resolved title, kept as an app property
	AppProperties map[string]string
}

// Upload streams content into a new file under the parent folder using a
// multipart/related request. The reader is consumed exactly once and never
// buffered whole.
func (c *Client) Upload(ctx context.Context, meta UploadMetadata, content io.Reader) (*File, error) {
	pr, pw := io.Pipe()
	w := multipart.NewWriter(pw)

	go func() {
		err := writeUploadBody(w, meta, content)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(w.Close())
	}()

	apiURL := c.uploadBase + "/files?uploadType=multipart&fields=id,name,mimeType,size,createdTime,parents"
	contentType := "multipart/related; boundary=" + w.Boundary()

	resp, err := c.do(ctx, http.MethodPost, apiURL, pr, contentType)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var file File
	if err := json.NewDecoder(resp.Body).Decode(&file); err != nil {
		return nil, fmt.Errorf("decoding uploaded file: %w", err)
	}

	c.logger.InfoWithFields("uploaded file", map[string]interface{}{
		"name":      meta.Name,
		"id":        file.ID,
		"mime_type": meta.MimeType,
	})
	return &file, nil
}

func writeUploadBody(w *multipart.Writer, meta UploadMetadata, content io.Reader) error {
	// Part 1: JSON metadata
	metaHeader := make(textproto.MIMEHeader)
	metaHeader.Set("Content-Type", "application/json; charset=UTF-8")
	metaPart, err := w.CreatePart(metaHeader)
	if err != nil {
		return err
	}

	props := map[string]string{}
	for k, v := range meta.AppProperties {
		props[k] = v
	}
	if meta.Title != "" {
		props["originalTitle"] = meta.Title
	}

	metaBody := map[string]any{
		"name": meta.Name,
	}
	if meta.ParentID != "" {
		metaBody["parents"] = []string{meta.ParentID}
	}
	if len(props) > 0 {
		metaBody["appProperties"] = props
	}
	if err := json.NewEncoder(metaPart).Encode(metaBody); err != nil {
		return err
	}

	// Part 2: file content
	fileHeader := make(textproto.MIMEHeader)
	fileHeader.Set("Content-Type", meta.MimeType)
	filePart, err := w.CreatePart(fileHeader)
	if err != nil {
		return err
	}
	_, err = io.Copy(filePart, content)
	return err
}

// Delete removes a file or folder by id
func (c *Client) Delete(ctx context.Context, id string) error {
	apiURL := fmt.Sprintf("%s/files/%s", c.apiBase, url.PathEscape(id))

	resp, err := c.do(ctx, http.MethodDelete, apiURL, nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// 204 No Content is the success response
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	return nil
}

// StorageQuota fetches the account storage quota
func (c *Client) StorageQuota(ctx context.Context) (*StorageQuota, error) {
	resp, err := c.do(ctx, http.MethodGet, c.apiBase+"/about?fields=storageQuota", nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var payload struct {
		StorageQuota StorageQuota `json:"storageQuota"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding storage quota: %w", err)
	}
	return &payload.StorageQuota, nil
}
