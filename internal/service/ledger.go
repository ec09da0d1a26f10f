package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/MKhiriev/go-fin-keeper/internal/logger"
	"github.com/MKhiriev/go-fin-keeper/internal/store"
	"github.com/MKhiriev/go-fin-keeper/internal/validators"
	"github.com/MKhiriev/go-fin-keeper/models"
)

type ledgerService struct {
	accountID string
	cache     store.RecordCache
	queue     Enqueuer
	validator validators.Validator

	// mu serialises read-modify-write cycles on the local record.
	mu sync.Mutex

	logger *logger.Logger
}

// NewLedgerService returns the LedgerService of accountID. Every mutation is
// applied to the local record first and then queued for the remote store,
// so it is visible immediately whether or not the device is online.
func NewLedgerService(accountID string, cache store.RecordCache, queue Enqueuer, validator validators.Validator, logger *logger.Logger) LedgerService {
	return &ledgerService{
		accountID: accountID,
		cache:     cache,
		queue:     queue,
		validator: validator,
		logger:    logger,
	}
}

func (l *ledgerService) Create(ctx context.Context, entityType models.EntityType, entity models.Entity) (models.SyncOperation, error) {
	if err := l.validateEntity(ctx, entityType, entity); err != nil {
		return models.SyncOperation{}, err
	}
	return l.mutate(ctx, entityType, models.ActionCreate, entity)
}

func (l *ledgerService) Update(ctx context.Context, entityType models.EntityType, entity models.Entity) (models.SyncOperation, error) {
	if err := l.validateEntity(ctx, entityType, entity); err != nil {
		return models.SyncOperation{}, err
	}
	return l.mutate(ctx, entityType, models.ActionUpdate, entity)
}

func (l *ledgerService) Delete(ctx context.Context, entityType models.EntityType, id string) (models.SyncOperation, error) {
	if id == "" {
		return models.SyncOperation{}, fmt.Errorf("%w: %w", ErrInvalidOperation, ErrEntityIDIsRequired)
	}
	return l.mutate(ctx, entityType, models.ActionDelete, struct {
		ID string `json:"id"`
	}{ID: id})
}

func (l *ledgerService) Record(ctx context.Context) (models.AggregateRecord, error) {
	record, err := l.cache.LoadRecord(ctx, l.accountID)
	if errors.Is(err, store.ErrRecordNotCached) {
		return models.NewAggregateRecord(l.accountID), nil
	}
	if err != nil {
		return models.AggregateRecord{}, fmt.Errorf("load local record: %w", err)
	}
	return record, nil
}

func (l *ledgerService) mutate(ctx context.Context, entityType models.EntityType, action models.Action, entity any) (models.SyncOperation, error) {
	op, err := NewOperation(entityType, action, entity)
	if err != nil {
		return models.SyncOperation{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	previous, err := l.Record(ctx)
	if err != nil {
		return models.SyncOperation{}, err
	}

	updated := previous.Clone()
	if err = ApplyOperation(&updated, op); err != nil {
		return models.SyncOperation{}, err
	}
	if err = l.cache.SaveRecord(ctx, updated); err != nil {
		return models.SyncOperation{}, fmt.Errorf("save local record: %w", err)
	}

	queued, err := l.queue.Enqueue(ctx, entityType, action, op.Payload)
	if err != nil {
		if rollbackErr := l.cache.SaveRecord(ctx, previous); rollbackErr != nil {
			l.logger.Err(rollbackErr).Str("func", "*ledgerService.mutate").Msg("error rolling back local record")
		}
		return models.SyncOperation{}, fmt.Errorf("enqueue operation: %w", err)
	}

	l.logger.Debug().
		Str("func", "*ledgerService.mutate").
		Str("op_id", queued.ID).
		Str("entity_type", string(entityType)).
		Str("action", string(action)).
		Msg("local mutation recorded")
	return queued, nil
}

func (l *ledgerService) validateEntity(ctx context.Context, entityType models.EntityType, entity models.Entity) error {
	if entity == nil {
		return fmt.Errorf("%w: nil entity", ErrInvalidOperation)
	}
	if !matchesType(entityType, entity) {
		return fmt.Errorf("%w: %T is not a %s", ErrUnsupportedEntity, entity, entityType)
	}
	if err := l.validator.Validate(ctx, entity); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOperation, err)
	}
	return nil
}

func matchesType(entityType models.EntityType, entity models.Entity) bool {
	switch entity.(type) {
	case models.Expense, *models.Expense:
		return entityType == models.EntityExpense
	case models.Income, *models.Income:
		return entityType == models.EntityIncome
	case models.Budget, *models.Budget:
		return entityType == models.EntityBudget
	case models.Category, *models.Category:
		return entityType == models.EntityCategory
	}
	return false
}
