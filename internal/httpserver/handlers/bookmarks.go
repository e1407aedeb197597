package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/hubmarks/internal/bookmarks"
	"github.com/MrSnakeDoc/hubmarks/internal/domain"
	"github.com/MrSnakeDoc/hubmarks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/hubmarks/internal/logger"
	"github.com/MrSnakeDoc/hubmarks/internal/sources/browser"
)

const (
	maxBookmarkBody = 1 << 20  // 1 MiB
	maxImportBody   = 10 << 20 // 10 MiB

	persistenceWarning = "saved in memory only, storage write failed"
)

type listResponse struct {
	Bookmarks []domain.Bookmark `json:"bookmarks"`
	Count     int               `json:"count"`
}

type bookmarkResponse struct {
	Bookmark domain.Bookmark `json:"bookmark"`
	Warning  string          `json:"warning,omitempty"`
}

type clearResponse struct {
	Cleared bool   `json:"cleared"`
	Warning string `json:"warning,omitempty"`
}

type importResponse struct {
	Added   int    `json:"added"`
	Skipped int    `json:"skipped,omitempty"`
	Total   int    `json:"total"`
	Warning string `json:"warning,omitempty"`
}

// storeCtx keeps the request values but not its cancellation: once the
// collection has changed in memory, the write to storage must finish even if
// the client goes away or the route times out.
func storeCtx(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

// ListBookmarks filters the collection with the type, category and search query parameters.
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := domain.Filter{
			Type:     domain.ContentType(strings.TrimSpace(q.Get("type"))),
			Category: strings.TrimSpace(q.Get("category")),
			Search:   strings.TrimSpace(q.Get("search")),
		}

		items := d.Store.Query(filter)
		writeJSON(w, http.StatusOK, listResponse{Bookmarks: items, Count: len(items)}, d.Logger)
	}
}

func GetBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		b, ok := d.Store.Get(id)
		if !ok {
			writeError(w, http.StatusNotFound, "bookmark not found", d.Logger)
			return
		}
		writeJSON(w, http.StatusOK, bookmarkResponse{Bookmark: b}, d.Logger)
	}
}

// AddBookmark creates a bookmark from a JSON candidate.
// A storage failure still answers 201, with a warning, since the bookmark is kept in memory.
func AddBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var c bookmarks.Candidate
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBookmarkBody)).Decode(&c); err != nil {
			writeError(w, http.StatusBadRequest, "invalid bookmark payload", d.Logger)
			return
		}

		b, err := d.Store.Add(storeCtx(r), c)
		switch {
		case err == nil:
			writeJSON(w, http.StatusCreated, bookmarkResponse{Bookmark: b}, d.Logger)
		case errors.Is(err, bookmarks.ErrMissingTitle):
			writeError(w, http.StatusBadRequest, err.Error(), d.Logger)
		case errors.Is(err, bookmarks.ErrDuplicateID):
			writeError(w, http.StatusConflict, err.Error(), d.Logger)
		case errors.Is(err, bookmarks.ErrPersistence):
			writeJSON(w, http.StatusCreated, bookmarkResponse{Bookmark: b, Warning: persistenceWarning}, d.Logger)
		default:
			d.Logger.Error("failed to add bookmark", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to add bookmark", d.Logger)
		}
	}
}

func RemoveBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		b, err := d.Store.Remove(storeCtx(r), id)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, bookmarkResponse{Bookmark: b}, d.Logger)
		case errors.Is(err, bookmarks.ErrNotFound):
			writeError(w, http.StatusNotFound, "bookmark not found", d.Logger)
		case errors.Is(err, bookmarks.ErrPersistence):
			writeJSON(w, http.StatusOK, bookmarkResponse{Bookmark: b, Warning: persistenceWarning}, d.Logger)
		default:
			d.Logger.Error("failed to remove bookmark", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to remove bookmark", d.Logger)
		}
	}
}

// ClearBookmarks empties the collection. It refuses without confirm=true.
func ClearBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("confirm") != "true" {
			writeError(w, http.StatusBadRequest, "clearing all bookmarks requires confirm=true", d.Logger)
			return
		}

		d.Logger.Warn("clearing all bookmarks",
			logger.String("remote_ip", r.RemoteAddr),
			logger.Int("count", d.Store.Len()))

		err := d.Store.Clear(storeCtx(r))
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, clearResponse{Cleared: true}, d.Logger)
		case errors.Is(err, bookmarks.ErrPersistence):
			writeJSON(w, http.StatusOK, clearResponse{Cleared: true, Warning: persistenceWarning}, d.Logger)
		default:
			d.Logger.Error("failed to clear bookmarks", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to clear bookmarks", d.Logger)
		}
	}
}

func BookmarkStats(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Store.Stats(), d.Logger)
	}
}

// ExportBookmarks serves the snapshot document as a file download.
func ExportBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot := d.Store.Export()
		data, err := snapshot.Encode()
		if err != nil {
			d.Logger.Error("failed to encode export", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to export bookmarks", d.Logger)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="`+domain.ExportFilename(snapshot.ExportDate)+`"`)
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(data); err != nil {
			d.Logger.Debug("failed to write response", logger.Error(err))
		}
	}
}

// ImportBookmarks merges a snapshot document sent as the raw request body.
// A text/html body is read as a browser bookmarks export instead.
func ImportBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.Header.Get("Content-Type"), "text/html") {
			importBrowserFile(w, r, d)
			return
		}

		raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBody))
		if err != nil {
			writeError(w, http.StatusRequestEntityTooLarge, "import payload too large", d.Logger)
			return
		}

		added, err := d.Store.Import(storeCtx(r), raw)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, importResponse{Added: added, Total: d.Store.Len()}, d.Logger)
		case errors.Is(err, bookmarks.ErrParse):
			writeError(w, http.StatusBadRequest, "invalid import file", d.Logger)
		case errors.Is(err, bookmarks.ErrPersistence):
			writeJSON(w, http.StatusOK, importResponse{Added: added, Total: d.Store.Len(), Warning: persistenceWarning}, d.Logger)
		default:
			d.Logger.Error("failed to import bookmarks", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to import bookmarks", d.Logger)
		}
	}
}

func importBrowserFile(w http.ResponseWriter, r *http.Request, d deps.Deps) {
	candidates, err := browser.Parse(http.MaxBytesReader(w, r.Body, maxImportBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid bookmarks file", d.Logger)
		return
	}

	added, skipped, err := d.Store.AddAll(storeCtx(r), candidates)
	resp := importResponse{Added: added, Skipped: skipped, Total: d.Store.Len()}
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, resp, d.Logger)
	case errors.Is(err, bookmarks.ErrPersistence):
		resp.Warning = persistenceWarning
		writeJSON(w, http.StatusOK, resp, d.Logger)
	default:
		d.Logger.Error("failed to import browser bookmarks", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to import bookmarks", d.Logger)
	}
}
