package mw

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/MrSnakeDoc/hubmarks/internal/logger"
	"github.com/MrSnakeDoc/hubmarks/internal/utils"
)

// RateLimitConfig tunes the per-client token bucket in front of mutating routes.
type RateLimitConfig struct {
	Burst      int           // requests a client may send at once
	PerMinute  int           // tokens refilled per client per minute
	MaxClients int           // tracked clients before an early sweep (0 = no cap)
	IdleTTL    time.Duration // clients idle this long are forgotten (default 15m)
	TrustProxy bool          // key on proxy headers instead of RemoteAddr
	Logger     logger.Logger // rejections are logged at debug level when set
	Now        func() time.Time
}

type bucket struct {
	tokens   float64
	last     time.Time
	lastSeen time.Time
}

// limiter is a map of buckets under a single mutex; handlers only hold it
// for a few float operations.
type limiter struct {
	cfg       RateLimitConfig
	perSecond float64
	capacity  float64

	mu        sync.Mutex
	clients   map[string]*bucket
	lastSweep time.Time
}

func newLimiter(cfg RateLimitConfig) *limiter {
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	if cfg.PerMinute < 1 {
		cfg.PerMinute = 1
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 15 * time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &limiter{
		cfg:       cfg,
		perSecond: float64(cfg.PerMinute) / 60.0,
		capacity:  float64(cfg.Burst),
		clients:   make(map[string]*bucket),
		lastSweep: cfg.Now(),
	}
}

// take consumes one token for key. When none is left it returns the
// number of seconds until the next one.
func (l *limiter) take(key string) (remaining int, retryAfter int, ok bool) {
	now := l.cfg.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.cfg.IdleTTL ||
		(l.cfg.MaxClients > 0 && len(l.clients) >= l.cfg.MaxClients) {
		l.sweepLocked(now)
	}

	b, found := l.clients[key]
	if !found {
		b = &bucket{tokens: l.capacity, last: now}
		l.clients[key] = b
	}
	b.lastSeen = now

	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens = math.Min(l.capacity, b.tokens+elapsed*l.perSecond)
		b.last = now
	}

	if b.tokens < 1 {
		wait := int(math.Ceil((1 - b.tokens) / l.perSecond))
		return 0, max(wait, 1), false
	}

	b.tokens--
	return int(b.tokens), 0, true
}

func (l *limiter) sweepLocked(now time.Time) {
	for key, b := range l.clients {
		if now.Sub(b.lastSeen) > l.cfg.IdleTTL {
			delete(l.clients, key)
		}
	}
	l.lastSweep = now
}

// RateLimit rejects clients that exceed their bucket with 429 and a
// Retry-After header. Accepted responses carry X-RateLimit-* headers.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	l := newLimiter(cfg)
	limit := strconv.Itoa(l.cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := utils.ClientIP(r, l.cfg.TrustProxy)

			remaining, retryAfter, ok := l.take(client)

			h := w.Header()
			h.Set("X-RateLimit-Limit", limit)
			h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if !ok {
				if l.cfg.Logger != nil {
					l.cfg.Logger.Debug("rate limited",
						logger.String("ip", client),
						logger.String("path", r.URL.Path),
						logger.Int("retry_after", retryAfter))
				}
				h.Set("Retry-After", strconv.Itoa(retryAfter))
				writeProblem(w, http.StatusTooManyRequests, "too many requests, retry later")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeProblem answers with the same {"error": "..."} body the handlers use.
func writeProblem(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
