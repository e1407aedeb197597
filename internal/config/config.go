package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backends selectable with HUBMARKS_STORAGE.
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request timeout (ex: 5s)

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Storage
	Storage      string // "memory" | "redis" | "sqlite"
	StorageKey   string // key holding the bookmark array (default: hubmarks-bookmarks)
	StorageQuota int    // byte quota of the memory backend (0 = unlimited)
	SQLitePath   string // database file for the sqlite backend

	// Bookmarks
	HomeURL       string // fallback URL when /jump finds nothing
	DefaultURL    string // url given to bookmarks added without one (default: HomeURL)
	DefaultSource string // source label for bookmarks added without one

	CatalogFile    string        // path to the catalog.yaml seed file (optional, empty = seeding disabled)
	ReloadInterval time.Duration // interval to reseed from the catalog (default: 24h)

	BackupDir      string        // directory for snapshot backups (optional, empty = backups disabled)
	BackupInterval time.Duration // interval between backups (default: 24h)
	BackupKeep     int           // number of backup files kept (default: 7)

	ActivitySize int // number of mutation events kept for /api/activity

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	AllowedCIDRS []string // optional, restrict admin routes to specific IPs (e.g. "1.2.3.4, 10.0.0.0/8")
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)

	RateLimitBurst  int // mutating requests allowed in a burst per client IP
	RateLimitPerMin int // tokens refilled per client IP per minute
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("HUBMARKS_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("HUBMARKS_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("HUBMARKS_REQUEST_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("HUBMARKS_LOG_LEVEL", "info"),
		PrettyLog: mustBool("HUBMARKS_PRETTY_LOG", true),

		// Storage
		Storage:      strings.ToLower(getenv("HUBMARKS_STORAGE", StorageSQLite)),
		StorageKey:   getenv("HUBMARKS_STORAGE_KEY", "hubmarks-bookmarks"),
		StorageQuota: getenvInt("HUBMARKS_STORAGE_QUOTA", 0),
		SQLitePath:   getenv("HUBMARKS_SQLITE_PATH", "/data/hubmarks.db"),

		// Bookmarks
		HomeURL:       getenv("HUBMARKS_HOME_URL", "/"),
		DefaultSource: getenv("HUBMARKS_DEFAULT_SOURCE", "Learning Hub"),

		CatalogFile:    getenv("HUBMARKS_CATALOG_FILE", ""), // Optional, empty = seeding disabled
		ReloadInterval: mustDuration("HUBMARKS_RELOAD_INTERVAL", 24*time.Hour),

		BackupDir:      getenv("HUBMARKS_BACKUP_DIR", ""), // Optional, empty = backups disabled
		BackupInterval: mustDuration("HUBMARKS_BACKUP_INTERVAL", 24*time.Hour),
		BackupKeep:     getenvInt("HUBMARKS_BACKUP_KEEP", 7),

		ActivitySize: getenvInt("HUBMARKS_ACTIVITY_SIZE", 50),

		// Access restrictions
		AllowedCIDRS: parseAllowedIPs(getenv("HUBMARKS_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("HUBMARKS_TRUST_PROXY", false),

		RateLimitBurst:  getenvInt("HUBMARKS_RATE_LIMIT_BURST", 20),
		RateLimitPerMin: getenvInt("HUBMARKS_RATE_LIMIT_PER_MIN", 60),
	}
	cfg.DefaultURL = getenv("HUBMARKS_DEFAULT_URL", cfg.HomeURL)

	switch cfg.Storage {
	case StorageMemory, StorageSQLite:
	case StorageRedis:
		loadRedis(cfg)
	default:
		panic(fmt.Sprintf("❌ FATAL: HUBMARKS_STORAGE must be one of memory, redis, sqlite (got %q)", cfg.Storage))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		if cfg.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// loadRedis reads the redis settings, which are only required in redis mode.
func loadRedis(cfg *Config) {
	cfg.RedisAddr = requireEnv("HUBMARKS_REDIS_ADDR")
	cfg.RedisUser = getenv("HUBMARKS_REDIS_USERNAME", "default")
	cfg.RedisPasswordRequired = mustBool("HUBMARKS_REDIS_PASSWORD_REQUIRED", true)
	cfg.RedisPassword = getenv("HUBMARKS_REDIS_PASSWORD", "")
	cfg.RedisDB = requireEnvInt("HUBMARKS_REDIS_DB")
	cfg.RedisDT = mustDuration("HUBMARKS_REDIS_DIAL_TIMEOUT", 5*time.Second)
	cfg.RedisRT = mustDuration("HUBMARKS_REDIS_READ_TIMEOUT", 3*time.Second)
	cfg.RedisWT = mustDuration("HUBMARKS_REDIS_WRITE_TIMEOUT", 3*time.Second)
	cfg.RedisMaxWait = mustDuration("HUBMARKS_REDIS_MAX_WAIT", 10*time.Second)
	cfg.RedisPingTimeout = mustDuration("HUBMARKS_REDIS_PING_TIMEOUT", 5*time.Second)
	cfg.RedisPoolSize = getenvInt("HUBMARKS_REDIS_POOL_SIZE", 10)
	cfg.RedisConnectTimeout = mustDuration("HUBMARKS_REDIS_CONNECT_TIMEOUT", 30*time.Second)
	cfg.RedisRetryInterval = mustDuration("HUBMARKS_REDIS_RETRY_INTERVAL", 2*time.Second)
	cfg.RedisWarnThreshold = getenvInt("HUBMARKS_REDIS_WARN_THRESHOLD", 3)

	// Validate Redis password configuration
	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: HUBMARKS_REDIS_PASSWORD is required when HUBMARKS_REDIS_PASSWORD_REQUIRED=true")
	}
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func requireEnvInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: Invalid integer value for %s: %s", key, v))
	}
	return i
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
