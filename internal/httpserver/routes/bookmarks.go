package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/hubmarks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/hubmarks/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/hubmarks/internal/httpserver/mw"
)

func init() { Register("bookmarks", registerBookmarks) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	// One limiter shared by every mutating route
	limit := mw.RateLimit(mw.RateLimitConfig{
		Burst:      d.RateLimitBurst,
		PerMinute:  d.RateLimitPerMin,
		MaxClients: 10000,
		TrustProxy: d.TrustProxy,
		Logger:     d.Logger,
	})
	admin := mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)

	r.Route("/api/bookmarks", func(r chi.Router) {
		r.Get("/", handlers.ListBookmarks(d))
		r.Get("/stats", handlers.BookmarkStats(d))
		r.Get("/export", handlers.ExportBookmarks(d))
		r.Get("/{id}", handlers.GetBookmark(d))

		// Writes decide where /jump redirects, so they share the admin allowlist
		r.With(admin, limit).Post("/", handlers.AddBookmark(d))
		r.With(admin, limit).Delete("/{id}", handlers.RemoveBookmark(d))
		r.With(admin, limit).Delete("/", handlers.ClearBookmarks(d))
		r.With(admin, limit).Post("/import", handlers.ImportBookmarks(d))
	})
}
