package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/hubmarks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/hubmarks/internal/httpserver/handlers"
)

func init() { Register("api", registerAPI) }

func registerAPI(r chi.Router, d deps.Deps) {
	r.Get("/api/content-types", handlers.ContentTypes(d))
	r.Get("/api/activity", handlers.Activity(d))
}
