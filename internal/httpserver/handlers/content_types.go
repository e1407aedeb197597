package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/hubmarks/internal/domain"
	"github.com/MrSnakeDoc/hubmarks/internal/httpserver/deps"
)

func ContentTypes(d deps.Deps) http.HandlerFunc {
	types := domain.ContentTypes()
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		writeJSON(w, http.StatusOK, types, d.Logger)
	}
}
