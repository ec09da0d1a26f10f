package store

import (
	"database/sql"
	"fmt"

	"github.com/MKhiriev/go-fin-keeper/internal/logger"
)

// DB wraps *sql.DB with the error classifier of its driver.
type DB struct {
	*sql.DB
	errorClassificator ErrorClassificator
	logger             *logger.Logger
}

// wrapDBError tags retryable driver errors with ErrTemporarilyUnavailable so
// callers above the store can classify without knowing the driver.
func (db *DB) wrapDBError(sentinel, err error) error {
	if db.errorClassificator != nil && db.errorClassificator.Classify(err) == Retryable {
		return fmt.Errorf("%w: %w: %w", ErrTemporarilyUnavailable, sentinel, err)
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}
