package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/MKhiriev/go-fin-keeper/internal/logger"
	"github.com/MKhiriev/go-fin-keeper/models"
	"github.com/natefinch/atomic"
)

// fileQueueStore keeps the queue in a single JSON file. Writes go through a
// temp file and rename so a crash never leaves a half-written queue.
type fileQueueStore struct {
	path string

	mu     sync.Mutex
	logger *logger.Logger
}

// NewFileQueueStore returns a [QueueStore] writing to path. The parent
// directory is created if needed.
func NewFileQueueStore(path string, logger *logger.Logger) (QueueStore, error) {
	if path == "" {
		return nil, errors.New("empty queue file path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create queue dir: %w", err)
	}

	logger.Debug().Str("path", path).Msg("creating file queue store")
	return &fileQueueStore{path: path, logger: logger}, nil
}

func (f *fileQueueStore) Load(ctx context.Context) ([]models.SyncOperation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []models.SyncOperation{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read queue file: %w", err)
	}

	ops, err := decodeQueue(data)
	if err != nil {
		f.logger.Err(err).Str("func", "*fileQueueStore.Load").Str("path", f.path).Msg("error decoding queue file")
		return nil, err
	}
	return ops, nil
}

func (f *fileQueueStore) Save(ctx context.Context, ops []models.SyncOperation) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := encodeQueue(ops)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err = atomic.WriteFile(f.path, bytes.NewReader(data)); err != nil {
		f.logger.Err(err).Str("func", "*fileQueueStore.Save").Str("path", f.path).Msg("error writing queue file")
		return fmt.Errorf("write queue file: %w", err)
	}
	return nil
}
