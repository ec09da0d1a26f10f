// Package store holds persistence for both binaries.
//
// On the client: the durable operation queue ([QueueStore], backed by SQLite,
// a JSON file or memory) and the local copy of the account's aggregate record
// ([RecordCache]). On the server: the PostgreSQL document table behind the
// record API ([RecordRepository]).
package store

import (
	"context"

	"github.com/MKhiriev/go-fin-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// QueueStore persists the whole pending-operation list under one fixed key.
// Save is called after every mutation; Load once at start-up.
type QueueStore interface {
	// Load returns the persisted operations in queue order, or an empty
	// slice when nothing was saved yet.
	Load(ctx context.Context) ([]models.SyncOperation, error)

	// Save replaces the persisted list with ops.
	Save(ctx context.Context, ops []models.SyncOperation) error
}

// RecordCache keeps the device-local view of an account's aggregate record.
type RecordCache interface {
	// LoadRecord returns [ErrRecordNotCached] when the account has no local
	// record yet.
	LoadRecord(ctx context.Context, accountID string) (models.AggregateRecord, error)
	SaveRecord(ctx context.Context, record models.AggregateRecord) error
}

// RecordRepository is the server-side document table.
type RecordRepository interface {
	// GetRecord returns [ErrRecordNotFound] when absent.
	GetRecord(ctx context.Context, accountID string) (models.AggregateRecord, error)

	// PutRecord inserts or overwrites the whole document.
	PutRecord(ctx context.Context, record models.AggregateRecord) error

	// QueryByField returns every record whose field equals value. Supported
	// fields are "householdId" and "accountId".
	QueryByField(ctx context.Context, field, value string) ([]models.AggregateRecord, error)
}

// ErrorClassificator decides whether a failed database call may be retried.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}
