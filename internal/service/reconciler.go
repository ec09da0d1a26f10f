package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-fin-keeper/internal/adapter"
	"github.com/MKhiriev/go-fin-keeper/internal/logger"
	"github.com/MKhiriev/go-fin-keeper/internal/store"
	"github.com/MKhiriev/go-fin-keeper/models"
)

type reconciler struct {
	accountID string
	remote    adapter.RemoteStore
	cache     store.RecordCache
	pending   PendingCounter
	scheduler Scheduler

	logger *logger.Logger
}

// NewReconciler returns the full-sync entry point of one account.
func NewReconciler(accountID string, remote adapter.RemoteStore, cache store.RecordCache, pending PendingCounter, scheduler Scheduler, logger *logger.Logger) Reconciler {
	return &reconciler{
		accountID: accountID,
		remote:    remote,
		cache:     cache,
		pending:   pending,
		scheduler: scheduler,
		logger:    logger,
	}
}

// FullSync brings the local record and the remote one together:
//
//   - no remote record: the local one is uploaded
//   - operations still queued: the local record is kept, the drain will
//     deliver them
//   - a local record that never synced and has data: both are merged and
//     the result is written to both sides
//   - otherwise the remote record replaces the local one
func (r *reconciler) FullSync(ctx context.Context) (models.AggregateRecord, error) {
	log := r.logger.With().Str("func", "*reconciler.FullSync").Str("account_id", r.accountID).Logger()

	local, err := r.loadLocal(ctx)
	if err != nil {
		return models.AggregateRecord{}, err
	}

	remote, err := r.remote.GetRecord(ctx, r.accountID)
	switch {
	case errors.Is(err, adapter.ErrNotFound):
		log.Info().Msg("no remote record, uploading local")
		local.LastSync = r.scheduler.Now()
		return local, r.writeBoth(ctx, local)
	case err != nil:
		return models.AggregateRecord{}, fmt.Errorf("get remote record: %w", classifyRemoteError(err))
	}

	if n := r.pending.PendingCount(); n > 0 {
		log.Info().Int("pending", n).Msg("operations pending, keeping local record")
		return local, nil
	}

	if local.LastSync.IsZero() && !local.IsEmpty() {
		log.Info().Msg("first sync of local data, merging")
		merged := Merge(local, remote, r.scheduler.Now())
		return merged, r.writeBoth(ctx, merged)
	}

	if err = r.cache.SaveRecord(ctx, remote); err != nil {
		return models.AggregateRecord{}, fmt.Errorf("save local record: %w", err)
	}
	log.Debug().Msg("adopted remote record")
	return remote, nil
}

// ForceMerge merges local and remote unconditionally and writes the result
// to both sides. It recovers devices that diverged during a long offline
// period.
func (r *reconciler) ForceMerge(ctx context.Context) (models.AggregateRecord, error) {
	local, err := r.loadLocal(ctx)
	if err != nil {
		return models.AggregateRecord{}, err
	}

	remote, err := FetchRecord(ctx, r.remote, r.accountID)
	if err != nil {
		return models.AggregateRecord{}, fmt.Errorf("get remote record: %w", err)
	}

	merged := Merge(local, remote, r.scheduler.Now())
	if err = r.writeBoth(ctx, merged); err != nil {
		return models.AggregateRecord{}, err
	}

	r.logger.Info().
		Str("func", "*reconciler.ForceMerge").
		Str("account_id", r.accountID).
		Int("expenses", len(merged.Expenses)).
		Int("incomes", len(merged.Incomes)).
		Msg("records merged")
	return merged, nil
}

func (r *reconciler) loadLocal(ctx context.Context) (models.AggregateRecord, error) {
	local, err := r.cache.LoadRecord(ctx, r.accountID)
	if errors.Is(err, store.ErrRecordNotCached) {
		return models.NewAggregateRecord(r.accountID), nil
	}
	if err != nil {
		return models.AggregateRecord{}, fmt.Errorf("load local record: %w", err)
	}
	return local, nil
}

func (r *reconciler) writeBoth(ctx context.Context, record models.AggregateRecord) error {
	record.AccountID = r.accountID
	if err := r.remote.PutRecord(ctx, r.accountID, record); err != nil {
		return fmt.Errorf("put remote record: %w", classifyRemoteError(err))
	}
	if err := r.cache.SaveRecord(ctx, record); err != nil {
		return fmt.Errorf("save local record: %w", err)
	}
	return nil
}
