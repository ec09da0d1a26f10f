package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-fin-keeper/internal/validators"
	"github.com/MKhiriev/go-fin-keeper/models"
)

// RecordValidationService rejects malformed input before it reaches the
// wrapped RecordService.
type RecordValidationService struct {
	inner     RecordService
	validator validators.Validator
}

func NewRecordValidationService() RecordServiceWrapper {
	return &RecordValidationService{
		validator: validators.NewRecordValidator(),
	}
}

func (v *RecordValidationService) GetRecord(ctx context.Context, accountID string) (models.AggregateRecord, error) {
	if accountID == "" {
		return models.AggregateRecord{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, validators.ErrInvalidAccountID)
	}
	return v.inner.GetRecord(ctx, accountID)
}

func (v *RecordValidationService) PutRecord(ctx context.Context, accountID string, record models.AggregateRecord) error {
	if accountID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDataProvided, validators.ErrInvalidAccountID)
	}
	if err := v.validator.Validate(ctx, record, validators.FieldEntities); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}
	for _, e := range record.Expenses {
		if err := v.validator.Validate(ctx, e); err != nil {
			return fmt.Errorf("%w: expense %s: %w", ErrInvalidDataProvided, e.ID, err)
		}
	}
	for _, i := range record.Incomes {
		if err := v.validator.Validate(ctx, i); err != nil {
			return fmt.Errorf("%w: income %s: %w", ErrInvalidDataProvided, i.ID, err)
		}
	}
	for _, b := range record.Budgets {
		if err := v.validator.Validate(ctx, b); err != nil {
			return fmt.Errorf("%w: budget %s: %w", ErrInvalidDataProvided, b.ID, err)
		}
	}
	for _, c := range record.Categories {
		if err := v.validator.Validate(ctx, c); err != nil {
			return fmt.Errorf("%w: category %s: %w", ErrInvalidDataProvided, c.ID, err)
		}
	}

	return v.inner.PutRecord(ctx, accountID, record)
}

func (v *RecordValidationService) QueryByField(ctx context.Context, collection, field, value string) ([]models.AggregateRecord, error) {
	if collection == "" || field == "" || value == "" {
		return nil, fmt.Errorf("%w: collection, field and value are required", ErrInvalidDataProvided)
	}
	return v.inner.QueryByField(ctx, collection, field, value)
}

func (v *RecordValidationService) Wrap(inner RecordService) RecordService {
	v.inner = inner
	return v
}
