// Package memory is an in-process store.Backend. It is the default
// driver and the one the tests run against.
package memory

import (
	"context"
	"sync"

	"ricemill/internal/domain/store"
)

// Backend keeps collections in a map.
type Backend struct {
	mu   sync.RWMutex
	data map[store.Collection][]byte
}

// New creates an empty backend.
func New() *Backend {
	return &Backend{data: make(map[store.Collection][]byte)}
}

// Get returns a copy of the stored bytes, nil when unset.
func (b *Backend) Get(_ context.Context, c store.Collection) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	data, ok := b.data[c]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Set stores a copy of data.
func (b *Backend) Set(_ context.Context, c store.Collection, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[c] = append([]byte(nil), data...)
	return nil
}

// SetMany applies all writes under one lock.
func (b *Backend) SetMany(_ context.Context, writes map[store.Collection][]byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for c, data := range writes {
		b.data[c] = append([]byte(nil), data...)
	}
	return nil
}

// Ping always succeeds.
func (b *Backend) Ping(context.Context) error { return nil }
