package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-fin-keeper/internal/config"
	"github.com/MKhiriev/go-fin-keeper/internal/logger"
	"github.com/MKhiriev/go-fin-keeper/migrations"
)

// Storages groups the record server's repositories.
type Storages struct {
	RecordRepository RecordRepository

	db *DB
}

// NewStorages connects to PostgreSQL, applies migrations and builds the
// repositories.
func NewStorages(ctx context.Context, cfg config.DB, logger *logger.Logger) (*Storages, error) {
	logger.Info().Msg("creating new storages...")

	db, err := NewConnectPostgres(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("postgres connection error: %w", err)
	}

	if err = migrations.MigratePostgres(db.DB); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &Storages{
		RecordRepository: NewRecordRepository(db, logger),
		db:               db,
	}, nil
}

// Close releases the database connection pool.
func (s *Storages) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ClientStorages groups the client's on-device stores.
type ClientStorages struct {
	Queue       QueueStore
	RecordCache RecordCache

	db *DB
}

// NewClientStorages opens the local SQLite database, applies migrations and
// builds the queue store and record cache. When cfg.QueueFile is set the
// queue lives in that JSON file instead of SQLite.
func NewClientStorages(ctx context.Context, cfg config.ClientStorage, logger *logger.Logger) (*ClientStorages, error) {
	logger.Info().Msg("creating new client storages...")

	db, err := NewConnectSQLite(ctx, cfg.DSN, logger)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err = migrations.MigrateSQLite(db.DB); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	queue := NewSQLiteQueueStore(db, logger)
	if cfg.QueueFile != "" {
		queue, err = NewFileQueueStore(cfg.QueueFile, logger)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return &ClientStorages{
		Queue:       queue,
		RecordCache: NewSQLiteRecordCache(db, logger),
		db:          db,
	}, nil
}

// NewEphemeralClientStorages returns memory-backed stores. Nothing survives
// the process.
func NewEphemeralClientStorages() *ClientStorages {
	return &ClientStorages{
		Queue:       NewMemoryQueueStore(),
		RecordCache: NewMemoryRecordCache(),
	}
}

// Close releases the local database.
func (s *ClientStorages) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
