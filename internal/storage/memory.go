package storage

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// MemoryBlobStore keeps blobs in process memory. Nothing survives a restart.
type MemoryBlobStore struct {
	blobs map[string][]byte
	mu    sync.RWMutex
}

// NewMemoryBlobStore creates an empty in-memory store.
func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{blobs: make(map[string][]byte)}
}

// Get returns a copy of the blob stored under key.
func (m *MemoryBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateAccess(ctx, key); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.blobs[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBlobNotFound, key)
	}
	return slices.Clone(data), nil
}

// Put stores a copy of data under key.
func (m *MemoryBlobStore) Put(ctx context.Context, key string, data []byte) error {
	if err := validateAccess(ctx, key); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = slices.Clone(data)
	return nil
}

// Close is a no-op.
func (m *MemoryBlobStore) Close() error {
	return nil
}
