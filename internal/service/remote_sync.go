package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-fin-keeper/internal/adapter"
	"github.com/MKhiriev/go-fin-keeper/internal/logger"
	"github.com/MKhiriev/go-fin-keeper/internal/validators"
	"github.com/MKhiriev/go-fin-keeper/models"
)

type remoteSyncAdapter struct {
	remote    adapter.RemoteStore
	validator validators.Validator
	now       func() time.Time

	logger *logger.Logger
}

// NewRemoteSyncAdapter returns the [OperationApplier] that replays queued
// operations as read-modify-write cycles on the account's remote record.
//
// There is no concurrency token: two devices draining at the same moment
// can overwrite each other's change to the same record.
func NewRemoteSyncAdapter(remote adapter.RemoteStore, validator validators.Validator, logger *logger.Logger) OperationApplier {
	return &remoteSyncAdapter{
		remote:    remote,
		validator: validator,
		now:       time.Now,
		logger:    logger,
	}
}

func (a *remoteSyncAdapter) Apply(ctx context.Context, accountID string, op models.SyncOperation) (models.AggregateRecord, error) {
	log := a.logger.With().
		Str("func", "*remoteSyncAdapter.Apply").
		Str("account_id", accountID).
		Str("op_id", op.ID).
		Str("entity_type", string(op.EntityType)).
		Str("action", string(op.Action)).
		Logger()

	if err := a.validator.Validate(ctx, op, validators.FieldEntityType, validators.FieldAction, validators.FieldPayload); err != nil {
		log.Warn().Err(err).Msg("operation failed validation")
		return models.AggregateRecord{}, fmt.Errorf("%w: %w", ErrRejected, err)
	}

	record, err := FetchRecord(ctx, a.remote, accountID)
	if err != nil {
		log.Debug().Err(err).Msg("error fetching remote record")
		return models.AggregateRecord{}, err
	}

	if err = ApplyOperation(&record, op); err != nil {
		log.Warn().Err(err).Msg("operation cannot be applied")
		return models.AggregateRecord{}, fmt.Errorf("%w: %w", ErrRejected, err)
	}
	record.AccountID = accountID
	record.LastSync = a.now().UTC()

	if err = a.remote.PutRecord(ctx, accountID, record); err != nil {
		err = classifyRemoteError(err)
		log.Debug().Err(err).Msg("error writing remote record")
		return models.AggregateRecord{}, err
	}

	log.Debug().Msg("operation applied")
	return record, nil
}

// FetchRecord reads the record of accountID, substituting an empty record
// when the remote store has none.
func FetchRecord(ctx context.Context, remote adapter.RemoteStore, accountID string) (models.AggregateRecord, error) {
	record, err := remote.GetRecord(ctx, accountID)
	if errors.Is(err, adapter.ErrNotFound) {
		return models.NewAggregateRecord(accountID), nil
	}
	if err != nil {
		return models.AggregateRecord{}, classifyRemoteError(err)
	}
	if record.AccountID == "" {
		record.AccountID = accountID
	}

	return record, nil
}
