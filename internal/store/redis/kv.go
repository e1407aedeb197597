package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// KV is a kv.Backend on top of Redis string keys.
// Values are stored without TTL: bookmarks live until removed.
type KV struct {
	client *redis.Client
}

// NewKV creates a new Redis backed key/value store
func NewKV(client *redis.Client) *KV {
	return &KV{
		client: client,
	}
}

// Get retrieves the value stored under name
func (s *KV) Get(ctx context.Context, name string) (string, bool, error) {
	value, err := s.client.Get(ctx, Key(name)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get %s: %w", name, err)
	}
	return value, true, nil
}

// Set stores value under name
func (s *KV) Set(ctx context.Context, name, value string) error {
	if err := s.client.Set(ctx, Key(name), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", name, err)
	}
	return nil
}

// Ping checks the connection
func (s *KV) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
