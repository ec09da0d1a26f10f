package adapter

import (
	"context"
	"fmt"
	"sync"

	"github.com/MKhiriev/go-fin-keeper/models"
)

// Queryable fields of the records collection.
const (
	FieldHouseholdID = "householdId"
	FieldAccountID   = "accountId"
)

// MemoryRemoteStore is a process-local [RemoteStore]. Records are cloned on
// the way in and out so callers never share slices with the store.
type MemoryRemoteStore struct {
	mu      sync.RWMutex
	records map[string]models.AggregateRecord
}

// NewMemoryRemoteStore returns an empty store.
func NewMemoryRemoteStore() *MemoryRemoteStore {
	return &MemoryRemoteStore{records: make(map[string]models.AggregateRecord)}
}

func (m *MemoryRemoteStore) GetRecord(ctx context.Context, accountID string) (models.AggregateRecord, error) {
	if err := ctx.Err(); err != nil {
		return models.AggregateRecord{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.records[accountID]
	if !ok {
		return models.AggregateRecord{}, fmt.Errorf("%w: %s", ErrNotFound, accountID)
	}
	return record.Clone(), nil
}

func (m *MemoryRemoteStore) PutRecord(ctx context.Context, accountID string, record models.AggregateRecord) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	if accountID == "" {
		return fmt.Errorf("%w: empty account id", ErrBadRequest)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored := record.Clone()
	stored.AccountID = accountID
	m.records[accountID] = stored
	return nil
}

func (m *MemoryRemoteStore) QueryByField(ctx context.Context, collection, field, value string) ([]models.AggregateRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	if collection != RecordsCollection {
		return nil, nil
	}

	var match func(models.AggregateRecord) bool
	switch field {
	case FieldHouseholdID:
		match = func(r models.AggregateRecord) bool { return r.HouseholdID != nil && *r.HouseholdID == value }
	case FieldAccountID:
		match = func(r models.AggregateRecord) bool { return r.AccountID == value }
	default:
		return nil, fmt.Errorf("%w: unsupported field %q", ErrBadRequest, field)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.AggregateRecord
	for _, r := range m.records {
		if match(r) {
			out = append(out, r.Clone())
		}
	}
	return out, nil
}

// Ping implements [HealthChecker]; the memory store is always reachable.
func (m *MemoryRemoteStore) Ping(ctx context.Context) (models.HealthResponse, error) {
	return models.HealthResponse{Status: "ok", Version: "memory"}, nil
}
