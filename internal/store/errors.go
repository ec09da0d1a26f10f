package store

import "errors"

// Domain errors. Match with [errors.Is].
var (
	// ErrUnsupportedQueueVersion is returned by QueueStore.Load when the
	// persisted queue was written by a newer build.
	ErrUnsupportedQueueVersion = errors.New("unsupported queue schema version")

	// ErrCorruptQueue is returned when the persisted queue cannot be decoded.
	ErrCorruptQueue = errors.New("persisted queue is corrupt")

	// ErrRecordNotCached is returned by RecordCache.LoadRecord for accounts
	// that have never been cached on this device.
	ErrRecordNotCached = errors.New("record is not cached locally")

	// ErrRecordNotFound is returned by RecordRepository.GetRecord.
	ErrRecordNotFound = errors.New("record was not found")

	// ErrUnsupportedField is returned by QueryByField for unknown fields.
	ErrUnsupportedField = errors.New("unsupported query field")

	// ErrTemporarilyUnavailable wraps database failures classified as
	// [Retryable].
	ErrTemporarilyUnavailable = errors.New("storage temporarily unavailable")
)

// Low-level database operation errors.
var (
	ErrBuildingSQLQuery   = errors.New("error building sql query")
	ErrExecutingQuery     = errors.New("error executing sql query")
	ErrExecutingStatement = errors.New("failed to execute statement")
	ErrScanningRow        = errors.New("failed to scan row")
	ErrScanningRows       = errors.New("failed to scan rows")
	ErrEncodingDocument   = errors.New("failed to encode document")
	ErrDecodingDocument   = errors.New("failed to decode document")
)
