// Package kv defines the string key/value port the bookmark store persists
// through, and an in-memory implementation of it.
package kv

import (
	"context"
	"errors"
)

// ErrQuotaExceeded is returned when a write would exceed the backend capacity.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// Backend is a synchronous string key/value store.
// A missing key is reported as ok=false with a nil error.
type Backend interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Pinger is implemented by backends that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}
