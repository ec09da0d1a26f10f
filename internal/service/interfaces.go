// Package service holds the business logic of both binaries.
//
// Client side, the centre is the [SyncQueueManager]: local mutations go
// through the [LedgerService], which updates the on-device record and
// enqueues a [models.SyncOperation]. The manager persists the queue after
// every change and drains it through an [OperationApplier] whenever the
// device is online. The [Reconciler] runs explicit full syncs with
// [Merge], and the [HouseholdService] folds member records with [Aggregate].
//
// Server side, [RecordService] guards the document table and [AuthService]
// mints and checks device tokens.
package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/MKhiriev/go-fin-keeper/models"
)

// OperationApplier applies one queued operation to the remote record of
// accountID and returns the record as written.
//
// Errors wrap [ErrTransientIO], [ErrRejected] or [ErrNotFound].
type OperationApplier interface {
	Apply(ctx context.Context, accountID string, op models.SyncOperation) (models.AggregateRecord, error)
}

// Enqueuer accepts new operations for delivery.
type Enqueuer interface {
	// Enqueue appends an operation and persists the queue before returning.
	// It never waits for the network.
	Enqueue(ctx context.Context, entityType models.EntityType, action models.Action, payload json.RawMessage) (models.SyncOperation, error)
}

// SyncQueueManager owns the pending-operation queue of one account session.
type SyncQueueManager interface {
	Enqueuer

	// Start loads the persisted queue. Nothing is drained before Start.
	Start(ctx context.Context) error

	// Shutdown stops timers and waits for a running drain to finish or ctx
	// to expire.
	Shutdown(ctx context.Context) error

	// Drain replays the queue once. A call while another drain runs returns
	// [ErrDrainInProgress] and does nothing.
	Drain(ctx context.Context) (DrainResult, error)

	// ManualSync is Drain on user request.
	ManualSync(ctx context.Context) (DrainResult, error)

	// OnOnline and OnOffline receive connectivity edges.
	OnOnline()
	OnOffline()

	Snapshot() models.SyncSnapshot
	Pending() []models.SyncOperation
	PendingCount() int
	DismissErrors()
}

// LedgerService is the offline-first mutation entry point used by the CLI
// and TUI.
type LedgerService interface {
	Create(ctx context.Context, entityType models.EntityType, entity models.Entity) (models.SyncOperation, error)
	Update(ctx context.Context, entityType models.EntityType, entity models.Entity) (models.SyncOperation, error)
	Delete(ctx context.Context, entityType models.EntityType, id string) (models.SyncOperation, error)

	// Record returns the device-local view of the account.
	Record(ctx context.Context) (models.AggregateRecord, error)
}

// Reconciler runs full-record synchronisation at explicit points.
type Reconciler interface {
	FullSync(ctx context.Context) (models.AggregateRecord, error)
	ForceMerge(ctx context.Context) (models.AggregateRecord, error)
}

// HouseholdService builds the derived household view.
type HouseholdService interface {
	Members(ctx context.Context, householdID string) ([]string, error)
	Fetch(ctx context.Context, memberIDs []string) ([]models.AggregateRecord, error)
	Totals(ctx context.Context, householdID string, now time.Time) (models.HouseholdTotals, error)
}

// PendingCounter reports the number of queued operations.
type PendingCounter interface {
	PendingCount() int
}

// IDGenerator hands out unique operation ids.
type IDGenerator interface {
	Generate() string
}

// RecordService is the server-side record API.
type RecordService interface {
	GetRecord(ctx context.Context, accountID string) (models.AggregateRecord, error)
	PutRecord(ctx context.Context, accountID string, record models.AggregateRecord) error
	QueryByField(ctx context.Context, collection, field, value string) ([]models.AggregateRecord, error)
}

// RecordServiceWrapper decorates a RecordService, e.g. with validation.
type RecordServiceWrapper interface {
	Wrap(RecordService) RecordService
}

// AuthService mints and verifies device tokens.
type AuthService interface {
	CreateToken(ctx context.Context, accountID string) (models.Token, error)
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)
}

// AppInfoService reports build metadata.
type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
}
