package mw

import (
	"net/http"

	"github.com/MrSnakeDoc/hubmarks/internal/logger"
	"github.com/MrSnakeDoc/hubmarks/internal/utils"
)

// AllowOnlyCIDRS guards admin routes (reload, infra and every bookmark write).
// An empty or fully invalid allowlist lets every client through.
func AllowOnlyCIDRS(allowed []string, trustProxy bool, log logger.Logger) func(http.Handler) http.Handler {
	set := utils.NewPrefixSet(allowed)
	if set.Len() == 0 {
		log.Debug("admin allowlist empty, admin routes are open")
		return func(next http.Handler) http.Handler { return next }
	}

	log.Debug("admin allowlist enabled",
		logger.Int("rules", set.Len()),
		logger.Bool("trust_proxy", trustProxy))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			addr, ok := utils.ClientAddr(r, trustProxy)
			if !ok || !set.Contains(addr) {
				log.Warn("admin route rejected",
					logger.String("ip", utils.ClientIP(r, trustProxy)),
					logger.String("method", r.Method),
					logger.String("path", r.URL.Path))
				writeProblem(w, http.StatusForbidden, "admin route not allowed from this address")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
