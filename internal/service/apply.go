package service

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/MKhiriev/go-fin-keeper/models"
)

// ApplyOperation mutates record in place according to op. It is shared by
// the remote sync adapter and the local ledger so both sides of a sync apply
// an operation identically.
//
// create appends the payload; update replaces every element with the payload
// id, appending when none matches; delete removes every element with the
// payload id. An error means op can never be applied and wraps
// [ErrInvalidOperation].
func ApplyOperation(record *models.AggregateRecord, op models.SyncOperation) error {
	var err error
	switch op.EntityType {
	case models.EntityExpense:
		record.Expenses, err = applyToCollection(record.Expenses, op)
	case models.EntityIncome:
		record.Incomes, err = applyToCollection(record.Incomes, op)
	case models.EntityBudget:
		record.Budgets, err = applyToCollection(record.Budgets, op)
	case models.EntityCategory:
		record.Categories, err = applyToCollection(record.Categories, op)
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedEntity, op.EntityType)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOperation, err)
	}

	return nil
}

func applyToCollection[T models.Entity](items []T, op models.SyncOperation) ([]T, error) {
	var entity T
	if err := json.Unmarshal(op.Payload, &entity); err != nil {
		return items, fmt.Errorf("decode %s payload: %w", op.EntityType, err)
	}

	id := entity.EntityID()
	if id == "" {
		return items, ErrEntityIDIsRequired
	}

	switch op.Action {
	case models.ActionCreate:
		return append(items, entity), nil
	case models.ActionUpdate:
		replaced := false
		for i := range items {
			if items[i].EntityID() == id {
				items[i] = entity
				replaced = true
			}
		}
		if !replaced {
			items = append(items, entity)
		}
		return items, nil
	case models.ActionDelete:
		return slices.DeleteFunc(items, func(item T) bool { return item.EntityID() == id }), nil
	}

	return items, fmt.Errorf("%w: %q", ErrUnsupportedAction, op.Action)
}

// NewOperation builds an operation from a typed entity. ID and EnqueuedAt
// are left for the queue manager to assign.
func NewOperation(entityType models.EntityType, action models.Action, entity any) (models.SyncOperation, error) {
	payload, err := json.Marshal(entity)
	if err != nil {
		return models.SyncOperation{}, fmt.Errorf("%w: encode payload: %w", ErrInvalidOperation, err)
	}

	return models.SyncOperation{
		EntityType: entityType,
		Action:     action,
		Payload:    payload,
	}, nil
}
