package handlers

import (
	"net/http"
	"time"

	"github.com/MrSnakeDoc/hubmarks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/hubmarks/internal/logger"
)

const readyzPingTimeout = 2 * time.Second

type readyzResponse struct {
	Ready   bool   `json:"ready"`
	Storage string `json:"storage,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Readyz reports ready when the storage backend answers a ping.
// Backends without a ping are always ready.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")

		status := checkStorage(r.Context(), d)
		if !status.OK {
			d.Logger.Warn("storage backend not ready",
				logger.String("storage", d.StorageMode),
				logger.String("error", status.Error))
			writeJSON(w, http.StatusServiceUnavailable, readyzResponse{
				Ready:   false,
				Storage: d.StorageMode,
				Error:   "storage unavailable",
			}, d.Logger)
			return
		}

		writeJSON(w, http.StatusOK, readyzResponse{Ready: true, Storage: d.StorageMode}, d.Logger)
	}
}
