package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"instavault/internal/ingest"
	"instavault/pkg/drive"
	"instavault/pkg/errors"
	"instavault/pkg/logger"
	"instavault/pkg/ratelimit"
	"instavault/pkg/vault"
)

// DefaultRecentItemCount is how many recent items the stats view reports.
const DefaultRecentItemCount = 3

// Ingestor runs the resolve-download-upload pipeline for one URL.
type Ingestor interface {
	Ingest(ctx context.Context, sourceURL, targetFolderID string) (*ingest.Result, error)
}

// Library is the read side of the vault: folder listings, file listings,
// storage usage. *vault.Catalog satisfies it.
type Library interface {
	ListSubfolders(ctx context.Context, parentID string) ([]drive.Folder, error)
	ListFiles(ctx context.Context, folderID string) ([]drive.File, error)
	FetchAllFilesRecursively(ctx context.Context, rootID string) ([]drive.File, error)
	FolderName(ctx context.Context, folderID string) string
	StorageUsage(ctx context.Context) *drive.Usage
}

// RootLocator finds or creates the app's root folder.
type RootLocator interface {
	LocateOrCreateRoot(ctx context.Context) (string, error)
}

// FolderAdmin is the write side: folder creation and item deletion.
// *drive.Client satisfies it.
type FolderAdmin interface {
	CreateFolder(ctx context.Context, name, parentID string) (*drive.Folder, error)
	Delete(ctx context.Context, id string) error
}

// Handler exposes the REST API.
type Handler struct {
	ingestor Ingestor
	library  Library
	locator  RootLocator
	admin    FolderAdmin
	limiter  ratelimit.Limiter
	logger   logger.Logger
	router   chi.Router
}

// HandlerOption configures optional Handler behavior.
type HandlerOption func(*Handler)

// WithIngestLimiter caps how many ingestions the API accepts per refill
// window. Requests over the cap get a 429 without touching upstream.
func WithIngestLimiter(l ratelimit.Limiter) HandlerOption {
	return func(h *Handler) {
		h.limiter = l
	}
}

// NewHandler constructs the handler and wires routes
func NewHandler(ingestor Ingestor, library Library, locator RootLocator, admin FolderAdmin, log logger.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{
		ingestor: ingestor,
		library:  library,
		locator:  locator,
		admin:    admin,
		logger:   log.WithField("component", "http"),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.buildRouter()
	return h
}

func (h *Handler) buildRouter() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(3 * time.Minute))

	r.Get("/healthz", h.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/ingest", h.handleIngest)
		r.Get("/folders", h.handleListFolders)
		r.Post("/folders", h.handleCreateFolder)
		r.Get("/folders/{id}/files", h.handleFolderFiles)
		r.Get("/files", h.handleAllFiles)
		r.Get("/storage", h.handleStorage)
		r.Delete("/items/{id}", h.handleDeleteItem)
	})

	h.router = r
}

// Router exposes the configured chi router
func (h *Handler) Router() http.Handler {
	return h.router
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

type ingestRequest struct {
	URL      string `json:"url"`
	FolderID string `json:"folderId"`
}

func (h *Handler) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.ErrorTypeInvalidURL, "invalid request body")
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeError(w, http.StatusBadRequest, errors.ErrorTypeInvalidURL, "url is required")
		return
	}

	if h.limiter != nil && !h.limiter.Allow() {
		writeError(w, http.StatusTooManyRequests, errors.ErrorTypeThrottled, "too many ingest requests, try again shortly")
		return
	}

	result, err := h.ingestor.Ingest(r.Context(), req.URL, req.FolderID)
	if err != nil {
		h.logger.ErrorWithFields("ingestion failed", map[string]interface{}{
			"url":   req.URL,
			"error": err.Error(),
		})
		writeTaxonomyError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) handleListFolders(w http.ResponseWriter, r *http.Request) {
	rootID, err := h.locator.LocateOrCreateRoot(r.Context())
	if err != nil {
		writeTaxonomyError(w, err)
		return
	}

	folders, err := h.library.ListSubfolders(r.Context(), rootID)
	if err != nil {
		writeTaxonomyError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"rootId":  rootID,
		"folders": folders,
	})
}

type createFolderRequest struct {
	Name string `json:"name"`
}

func (h *Handler) handleCreateFolder(w http.ResponseWriter, r *http.Request) {
	var req createFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.ErrorTypeUnknown, "invalid request body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, errors.ErrorTypeUnknown, "name is required")
		return
	}

	rootID, err := h.locator.LocateOrCreateRoot(r.Context())
	if err != nil {
		writeTaxonomyError(w, err)
		return
	}

	folder, err := h.admin.CreateFolder(r.Context(), name, rootID)
	if err != nil {
		writeTaxonomyError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, folder)
}

func (h *Handler) handleFolderFiles(w http.ResponseWriter, r *http.Request) {
	folderID := chi.URLParam(r, "id")

	files, err := h.library.ListFiles(r.Context(), folderID)
	if err != nil {
		writeTaxonomyError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"folderName": h.library.FolderName(r.Context(), folderID),
		"files":      files,
	})
}

func (h *Handler) handleAllFiles(w http.ResponseWriter, r *http.Request) {
	rootID, err := h.locator.LocateOrCreateRoot(r.Context())
	if err != nil {
		writeTaxonomyError(w, err)
		return
	}

	files, err := h.library.FetchAllFilesRecursively(r.Context(), rootID)
	if err != nil {
		writeTaxonomyError(w, err)
		return
	}

	payload := map[string]any{
		"rootId": rootID,
		"files":  files,
	}
	if r.URL.Query().Get("stats") == "true" {
		payload["stats"] = vault.ComputeUsageStats(files)
		payload["recent"] = vault.RecentItems(files, DefaultRecentItemCount)
	}

	writeJSON(w, http.StatusOK, payload)
}

func (h *Handler) handleStorage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.library.StorageUsage(r.Context()))
}

func (h *Handler) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.admin.Delete(r.Context(), id); err != nil {
		writeTaxonomyError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// headers are gone at this point, nothing useful left to do
		return
	}
}

func writeError(w http.ResponseWriter, status int, errType errors.ErrorType, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
		"type":  string(errType),
	})
}

// writeTaxonomyError maps a pipeline error onto its HTTP status and failure
// category so clients can branch on the type field.
func writeTaxonomyError(w http.ResponseWriter, err error) {
	writeError(w, errors.HTTPStatus(err), errors.GetType(err), err.Error())
}
