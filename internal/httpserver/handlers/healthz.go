package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/hubmarks/internal/httpserver/deps"
)

type buildInfo struct {
	Version   string `json:"version,omitempty"`
	Commit    string `json:"commit,omitempty"`
	Date      string `json:"date,omitempty"`
	GoVersion string `json:"go_version,omitempty"`
}

type healthzResponse struct {
	Status        string    `json:"status"`
	UptimeSeconds float64   `json:"uptime_seconds"`
	Bookmarks     int       `json:"bookmarks"`
	Storage       string    `json:"storage,omitempty"`
	Build         buildInfo `json:"build"`
}

// Healthz is the liveness check. It never touches the storage backend:
// the in-memory collection keeps serving while the backend is down.
func Healthz(d deps.Deps) http.HandlerFunc {
	build := buildInfo{
		Version:   d.Version,
		Commit:    d.Commit,
		Date:      d.BuildDate,
		GoVersion: d.GoVersion,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, healthzResponse{
			Status:        "ok",
			UptimeSeconds: d.Now().Sub(d.StartTime).Seconds(),
			Bookmarks:     d.Store.Len(),
			Storage:       d.StorageMode,
			Build:         build,
		}, d.Logger)
	}
}
