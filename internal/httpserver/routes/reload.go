package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/hubmarks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/hubmarks/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/hubmarks/internal/httpserver/mw"
)

func init() { Register("admin", registerReload) }

func registerReload(r chi.Router, d deps.Deps) {
	admin := mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)
	r.With(admin).Post("/reload", handlers.Reload(d))
	r.With(admin).Get("/infra", handlers.Infra(d))
}
