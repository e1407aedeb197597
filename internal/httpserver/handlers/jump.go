package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/MrSnakeDoc/hubmarks/internal/domain"
	"github.com/MrSnakeDoc/hubmarks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/hubmarks/internal/logger"
)

// Jump redirects to the bookmark whose title best matches q.
// Anything unresolved goes to the home URL.
func Jump(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))

		// Empty query -> redirect to home
		if query == "" {
			d.Logger.Debug("empty query, redirecting to home")
			http.Redirect(w, r, d.HomeURL, http.StatusFound)
			return
		}

		candidates := domain.Rank(query, d.Store.Query(domain.Filter{}))
		for _, c := range candidates {
			if !redirectable(c.Bookmark.URL) {
				d.Logger.Debug("skipping bookmark with unsafe url",
					logger.String("id", c.Bookmark.ID),
					logger.String("url", c.Bookmark.URL))
				continue
			}

			d.Logger.Info("resolved bookmark",
				logger.String("query", query),
				logger.String("id", c.Bookmark.ID),
				logger.String("url", c.Bookmark.URL),
				logger.String("score", fmt.Sprintf("%.2f", c.Score)))

			http.Redirect(w, r, c.Bookmark.URL, http.StatusFound)
			return
		}

		d.Logger.Info("no matching bookmark found",
			logger.String("query", query))
		http.Redirect(w, r, d.HomeURL, http.StatusFound)
	}
}

// redirectable accepts absolute http(s) URLs with a host and site-relative
// paths. Anything else (javascript:, data:, protocol-relative "//host")
// is never used as a redirect target.
func redirectable(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	if strings.HasPrefix(raw, "/") {
		return !strings.HasPrefix(raw, "//") && !strings.HasPrefix(raw, "/\\")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
