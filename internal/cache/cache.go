// Package cache is the local durable key-value store the engine falls back to
// when the room store is unreachable. Values are JSON-encoded.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Keys used by the engine.
const (
	KeyRooms              = "rooms"
	KeyFutureReservations = "future_reservations"
	KeyGuestHistory       = "guest_history"
)

// Store persists JSON values by key.
type Store interface {
	// Get decodes the value stored under key into dst. It reports false, and
	// leaves dst untouched, when the key has never been written.
	Get(ctx context.Context, key string, dst any) (bool, error)

	// Put replaces the value stored under key.
	Put(ctx context.Context, key string, v any) error
}

// Memory is a process-local Store. It is used when no cache path is
// configured, and in tests.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Get decodes the value stored under key into dst.
func (m *Memory) Get(_ context.Context, key string, dst any) (bool, error) {
	m.mu.RLock()
	raw, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("cache.Memory.Get %q: %w", key, err)
	}
	return true, nil
}

// Put stores a JSON copy of v under key.
func (m *Memory) Put(_ context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache.Memory.Put %q: %w", key, err)
	}
	m.mu.Lock()
	m.data[key] = raw
	m.mu.Unlock()
	return nil
}
