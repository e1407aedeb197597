package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/hubmarks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/hubmarks/internal/logger"
)

// Reload triggers a catalog reseed and a backup
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		catalogTriggered := trigger(d, d.CatalogTrigger, "catalog reload", r)
		backupTriggered := trigger(d, d.BackupTrigger, "backup", r)

		// Determine response based on what was triggered
		switch {
		case catalogTriggered || backupTriggered:
			w.WriteHeader(http.StatusAccepted)
			if _, err := w.Write([]byte("✅ Reload triggered successfully\n")); err != nil {
				d.Logger.Debug("failed to write response", logger.Error(err))
			}
		case d.CatalogTrigger == nil && d.BackupTrigger == nil:
			w.WriteHeader(http.StatusNotImplemented)
			if _, err := w.Write([]byte("catalog seeding and backups are disabled\n")); err != nil {
				d.Logger.Debug("failed to write response", logger.Error(err))
			}
		default:
			w.WriteHeader(http.StatusTooManyRequests)
			if _, err := w.Write([]byte("⏳ Reload already in progress, please wait\n")); err != nil {
				d.Logger.Debug("failed to write response", logger.Error(err))
			}
		}
	}
}

// trigger does a non-blocking send on ch. A nil channel is never triggered.
func trigger(d deps.Deps, ch chan struct{}, what string, r *http.Request) bool {
	if ch == nil {
		return false
	}

	select {
	case ch <- struct{}{}:
		d.Logger.Info("manual "+what+" triggered via endpoint",
			logger.String("remote_ip", r.RemoteAddr))
		return true
	default:
		d.Logger.Warn(what+" already in progress",
			logger.String("remote_ip", r.RemoteAddr))
		return false
	}
}
