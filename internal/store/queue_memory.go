package store

import (
	"context"
	"slices"
	"sync"

	"github.com/MKhiriev/go-fin-keeper/models"
)

// MemoryQueueStore is a process-local [QueueStore] for tests and for
// `fin --ephemeral` sessions.
type MemoryQueueStore struct {
	mu    sync.Mutex
	ops   []models.SyncOperation
	saves int
}

// NewMemoryQueueStore returns a store preloaded with ops.
func NewMemoryQueueStore(ops ...models.SyncOperation) *MemoryQueueStore {
	return &MemoryQueueStore{ops: slices.Clone(ops)}
}

func (m *MemoryQueueStore) Load(ctx context.Context) ([]models.SyncOperation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return nonNil(slices.Clone(m.ops)), nil
}

func (m *MemoryQueueStore) Save(ctx context.Context, ops []models.SyncOperation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops = slices.Clone(ops)
	m.saves++
	return nil
}

// Saves reports how many times Save was called.
func (m *MemoryQueueStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
