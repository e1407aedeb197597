package kv

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-process Backend.
// A positive quota caps the summed length of all keys and values.
type Memory struct {
	mu    sync.RWMutex
	data  map[string]string
	quota int
}

// NewMemory creates an empty in-memory backend. quota <= 0 means unlimited.
func NewMemory(quota int) *Memory {
	return &Memory{
		data:  make(map[string]string),
		quota: quota,
	}
}

// Get returns the value stored under key.
func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	return v, ok, nil
}

// Set stores value under key, or fails with ErrQuotaExceeded.
func (m *Memory) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.quota > 0 {
		used := m.usedLocked() - m.sizeOfLocked(key) + len(key) + len(value)
		if used > m.quota {
			return fmt.Errorf("set %q (%d bytes, quota %d): %w", key, used, m.quota, ErrQuotaExceeded)
		}
	}

	m.data[key] = value
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (m *Memory) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
}

// Ping always succeeds.
func (m *Memory) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *Memory) usedLocked() int {
	n := 0
	for k, v := range m.data {
		n += len(k) + len(v)
	}
	return n
}

func (m *Memory) sizeOfLocked(key string) int {
	v, ok := m.data[key]
	if !ok {
		return 0
	}
	return len(key) + len(v)
}
