package app

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/hubmarks/internal/bookmarks"
	"github.com/MrSnakeDoc/hubmarks/internal/config"
	"github.com/MrSnakeDoc/hubmarks/internal/kv"
	"github.com/MrSnakeDoc/hubmarks/internal/logger"
	"github.com/MrSnakeDoc/hubmarks/internal/redis"
	redisstore "github.com/MrSnakeDoc/hubmarks/internal/store/redis"
	"github.com/MrSnakeDoc/hubmarks/internal/store/sqlite"
)

// Storage is an opened backend and the store loaded from it.
type Storage struct {
	Backend kv.Backend
	Store   *bookmarks.Store
	close   func() error
}

// Close releases the backend connection.
func (s *Storage) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// OpenStorage opens the configured backend and loads the bookmark store from it.
func OpenStorage(ctx context.Context, cfg *config.Config, log logger.Logger) (*Storage, error) {
	backend, closeFn, err := openBackend(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	store := bookmarks.New(ctx, backend, bookmarks.Options{
		Key:           cfg.StorageKey,
		DefaultURL:    cfg.DefaultURL,
		DefaultSource: cfg.DefaultSource,
	}, log.Named("bookmarks"))

	return &Storage{Backend: backend, Store: store, close: closeFn}, nil
}

func openBackend(ctx context.Context, cfg *config.Config, log logger.Logger) (kv.Backend, func() error, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		log.Warn("using in-memory storage, bookmarks are lost on restart")
		return kv.NewMemory(cfg.StorageQuota), nil, nil

	case config.StorageSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite storage: %w", err)
		}
		log.Info("sqlite storage opened", logger.String("path", db.Path()))
		return db, db.Close, nil

	case config.StorageRedis:
		// Fail fast if unavailable
		client, err := redis.Connect(ctx, redis.OptionsFromConfig(cfg), log.Named("redis"))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return redisstore.NewKV(client), client.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}
}
