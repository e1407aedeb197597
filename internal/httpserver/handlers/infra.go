package handlers

import (
	"context"
	"net/http"

	"github.com/MrSnakeDoc/hubmarks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/hubmarks/internal/kv"
)

type componentStatus struct {
	OK      bool   `json:"ok"`
	Enabled *bool  `json:"enabled,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Mode    string `json:"mode,omitempty"`
	Impact  string `json:"impact,omitempty"`
	Error   string `json:"error,omitempty"`
}

type infraResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports the state of each moving part of the service.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count := d.Store.Len()
		catalogEnabled := d.CatalogTrigger != nil
		backupsEnabled := d.BackupTrigger != nil

		components := map[string]componentStatus{
			"storage": checkStorage(r.Context(), d),
			"bookmarks": {
				OK:    true,
				Count: &count,
			},
			"catalog": {
				OK:      true,
				Enabled: &catalogEnabled,
			},
			"backups": {
				OK:      true,
				Enabled: &backupsEnabled,
			},
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Status:     determineStatus(components),
			Components: components,
		}, d.Logger)
	}
}

func determineStatus(components map[string]componentStatus) string {
	// Storage down = degraded (changes are kept in memory only)
	if storage, exists := components["storage"]; exists && !storage.OK {
		return "degraded"
	}
	return "ok"
}

func checkStorage(ctx context.Context, d deps.Deps) componentStatus {
	pinger, ok := d.Backend.(kv.Pinger)
	if !ok {
		return componentStatus{OK: true, Mode: d.StorageMode}
	}

	ctx, cancel := context.WithTimeout(ctx, readyzPingTimeout)
	defer cancel()

	if err := pinger.Ping(ctx); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   d.StorageMode,
			Impact: "changes-not-persisted",
			Error:  err.Error(),
		}
	}

	return componentStatus{OK: true, Mode: d.StorageMode}
}
