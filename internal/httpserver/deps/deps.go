package deps

import (
	"time"

	"github.com/MrSnakeDoc/hubmarks/internal/activity"
	"github.com/MrSnakeDoc/hubmarks/internal/bookmarks"
	"github.com/MrSnakeDoc/hubmarks/internal/kv"
	"github.com/MrSnakeDoc/hubmarks/internal/logger"
)

type Deps struct {
	Logger          logger.Logger
	StartTime       time.Time
	Version         string
	Commit          string
	BuildDate       string
	GoVersion       string
	TimeNow         func() time.Time   // for testing, defaults to time.Now
	AllowedCIDRS    []string           // IPs allowed to access admin endpoints (reload, clear, import)
	TrustProxy      bool               // true if running behind a trusted reverse proxy (e.g., cloudflared)
	RateLimitBurst  int                // mutating requests allowed in a burst per client IP
	RateLimitPerMin int                // tokens refilled per client IP per minute
	Store           *bookmarks.Store   // Bookmark collection
	Backend         kv.Backend         // Storage backend behind Store, pinged by readyz
	StorageMode     string             // "memory" | "redis" | "sqlite"
	Activity        *activity.Recorder // Recent mutation feed
	HomeURL         string             // Fallback URL when /jump finds nothing
	CatalogTrigger  chan struct{}      // Channel to trigger a manual catalog reseed (nil if seeding disabled)
	BackupTrigger   chan struct{}      // Channel to trigger a manual backup (nil if backups disabled)
}

// Now returns the configured clock.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
