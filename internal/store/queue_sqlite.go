package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-fin-keeper/internal/logger"
	"github.com/MKhiriev/go-fin-keeper/models"
)

// sqliteQueueStore keeps the queue as one row of the sync_queue table.
type sqliteQueueStore struct {
	db     *DB
	logger *logger.Logger
}

// NewSQLiteQueueStore returns a [QueueStore] on an already migrated SQLite
// database.
func NewSQLiteQueueStore(db *DB, logger *logger.Logger) QueueStore {
	logger.Debug().Msg("creating sqlite queue store")
	return &sqliteQueueStore{db: db, logger: logger}
}

func (s *sqliteQueueStore) Load(ctx context.Context) ([]models.SyncOperation, error) {
	var version int
	var document string

	err := s.db.QueryRowContext(ctx, loadQueue, QueueKey).Scan(&version, &document)
	if errors.Is(err, sql.ErrNoRows) {
		return []models.SyncOperation{}, nil
	}
	if err != nil {
		s.logger.Err(err).Str("func", "*sqliteQueueStore.Load").Msg("error loading queue")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	if version > models.QueueSchemaVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedQueueVersion, version)
	}

	ops, err := decodeQueue([]byte(document))
	if err != nil {
		s.logger.Err(err).Str("func", "*sqliteQueueStore.Load").Msg("error decoding queue")
		return nil, err
	}

	s.logger.Debug().Int("pending", len(ops)).Msg("queue loaded")
	return ops, nil
}

func (s *sqliteQueueStore) Save(ctx context.Context, ops []models.SyncOperation) error {
	document, err := encodeQueue(ops)
	if err != nil {
		return err
	}

	if _, err = s.db.ExecContext(ctx, saveQueue, QueueKey, models.QueueSchemaVersion, string(document)); err != nil {
		s.logger.Err(err).Str("func", "*sqliteQueueStore.Save").Msg("error saving queue")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}
