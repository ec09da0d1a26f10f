package service

import (
	"github.com/MKhiriev/go-fin-keeper/internal/adapter"
	"github.com/MKhiriev/go-fin-keeper/internal/config"
	"github.com/MKhiriev/go-fin-keeper/internal/logger"
	"github.com/MKhiriev/go-fin-keeper/internal/store"
	"github.com/MKhiriev/go-fin-keeper/internal/validators"
)

// ClientServices groups everything a device needs to work offline and sync.
type ClientServices struct {
	Manager      SyncQueueManager
	Applier      OperationApplier
	Ledger       LedgerService
	Reconciler   Reconciler
	Household    HouseholdService
	ReconcileJob *ReconcileJob
}

// NewClientServices wires the sync core on top of the local storages and the
// remote store. The manager is returned unstarted.
func NewClientServices(storages *store.ClientStorages, remote adapter.RemoteStore, cfg config.ClientConfig, logger *logger.Logger, opts ...QueueManagerOption) (*ClientServices, error) {
	validator := validators.NewRecordValidator()
	applier := NewRemoteSyncAdapter(remote, validator, logger)

	opts = append([]QueueManagerOption{WithRecordCache(storages.RecordCache)}, opts...)
	manager, err := NewSyncQueueManager(cfg.Sync, storages.Queue, applier, logger, opts...)
	if err != nil {
		return nil, err
	}

	reconciler := NewReconciler(cfg.Sync.AccountID, remote, storages.RecordCache, manager, NewRealScheduler(), logger)
	online := func() bool { return manager.Snapshot().Connected }

	return &ClientServices{
		Manager:      manager,
		Applier:      applier,
		Ledger:       NewLedgerService(cfg.Sync.AccountID, storages.RecordCache, manager, validator, logger),
		Reconciler:   reconciler,
		Household:    NewHouseholdService(remote, logger),
		ReconcileJob: NewReconcileJob(reconciler, online, cfg.Sync.ReconcileInterval, logger),
	}, nil
}
