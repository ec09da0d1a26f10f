package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/MKhiriev/go-fin-keeper/internal/logger"
	"github.com/MKhiriev/go-fin-keeper/models"
)

type sqliteRecordCache struct {
	db     *DB
	logger *logger.Logger
}

// NewSQLiteRecordCache returns a [RecordCache] on the local_records table.
func NewSQLiteRecordCache(db *DB, logger *logger.Logger) RecordCache {
	logger.Debug().Msg("creating sqlite record cache")
	return &sqliteRecordCache{db: db, logger: logger}
}

func (c *sqliteRecordCache) LoadRecord(ctx context.Context, accountID string) (models.AggregateRecord, error) {
	var document string
	err := c.db.QueryRowContext(ctx, loadCachedRecord, accountID).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return models.AggregateRecord{}, fmt.Errorf("%w: %s", ErrRecordNotCached, accountID)
	}
	if err != nil {
		c.logger.Err(err).Str("func", "*sqliteRecordCache.LoadRecord").Str("account_id", accountID).Msg("error loading record")
		return models.AggregateRecord{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	var record models.AggregateRecord
	if err = json.Unmarshal([]byte(document), &record); err != nil {
		return models.AggregateRecord{}, fmt.Errorf("%w: %w", ErrDecodingDocument, err)
	}
	return record, nil
}

func (c *sqliteRecordCache) SaveRecord(ctx context.Context, record models.AggregateRecord) error {
	if record.AccountID == "" {
		return errors.New("record without account id")
	}

	document, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncodingDocument, err)
	}

	if _, err = c.db.ExecContext(ctx, saveCachedRecord, record.AccountID, string(document)); err != nil {
		c.logger.Err(err).Str("func", "*sqliteRecordCache.SaveRecord").Str("account_id", record.AccountID).Msg("error saving record")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

// MemoryRecordCache is a process-local [RecordCache].
type MemoryRecordCache struct {
	mu      sync.RWMutex
	records map[string]models.AggregateRecord
}

// NewMemoryRecordCache returns an empty cache.
func NewMemoryRecordCache() *MemoryRecordCache {
	return &MemoryRecordCache{records: make(map[string]models.AggregateRecord)}
}

func (m *MemoryRecordCache) LoadRecord(ctx context.Context, accountID string) (models.AggregateRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.records[accountID]
	if !ok {
		return models.AggregateRecord{}, fmt.Errorf("%w: %s", ErrRecordNotCached, accountID)
	}
	return record.Clone(), nil
}

func (m *MemoryRecordCache) SaveRecord(ctx context.Context, record models.AggregateRecord) error {
	if record.AccountID == "" {
		return errors.New("record without account id")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.AccountID] = record.Clone()
	return nil
}
