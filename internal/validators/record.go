package validators

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MKhiriev/go-fin-keeper/models"
	"github.com/shopspring/decimal"
)

// Field names accepted by RecordValidator.Validate.
const (
	FieldID         = "id"
	FieldEntityType = "entity_type"
	FieldAction     = "action"
	FieldPayload    = "payload"
	FieldAttempt    = "attempt"
	FieldAccountID  = "account_id"
	FieldAmount     = "amount"
	FieldCurrency   = "currency"
	FieldCategory   = "category"
	FieldName       = "name"
	FieldEntities   = "entities"
)

// RecordValidator validates SyncOperation, AggregateRecord and the four
// entity types, by value or by pointer.
type RecordValidator struct{}

// NewRecordValidator returns a RecordValidator as a Validator.
func NewRecordValidator() Validator {
	return &RecordValidator{}
}

func (v *RecordValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.SyncOperation:
		return v.validateOperation(value, fields...)
	case *models.SyncOperation:
		return v.validateOperation(*value, fields...)

	case models.AggregateRecord:
		return v.validateRecord(value, fields...)
	case *models.AggregateRecord:
		return v.validateRecord(*value, fields...)

	case models.Expense:
		return v.validateTransaction(value.ID, value.Amount, value.Currency, fields...)
	case *models.Expense:
		return v.validateTransaction(value.ID, value.Amount, value.Currency, fields...)

	case models.Income:
		return v.validateTransaction(value.ID, value.Amount, value.Currency, fields...)
	case *models.Income:
		return v.validateTransaction(value.ID, value.Amount, value.Currency, fields...)

	case models.Budget:
		return v.validateBudget(value, fields...)
	case *models.Budget:
		return v.validateBudget(*value, fields...)

	case models.Category:
		return v.validateCategory(value, fields...)
	case *models.Category:
		return v.validateCategory(*value, fields...)

	default:
		return ErrUnsupportedType
	}
}

func (v *RecordValidator) validateOperation(op models.SyncOperation, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldID, FieldEntityType, FieldAction, FieldPayload, FieldAttempt}
	}

	for _, f := range fields {
		switch f {
		case FieldID:
			if op.ID == "" {
				return ErrInvalidOperationID
			}
		case FieldEntityType:
			if !op.EntityType.Valid() {
				return fmt.Errorf("%w: %q", ErrInvalidEntityType, op.EntityType)
			}
		case FieldAction:
			if !op.Action.Valid() {
				return fmt.Errorf("%w: %q", ErrInvalidAction, op.Action)
			}
		case FieldPayload:
			if err := validatePayload(op.Payload); err != nil {
				return err
			}
		case FieldAttempt:
			if op.Attempt < 0 {
				return ErrInvalidAttempt
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

// validatePayload requires a JSON object with a non-empty string "id".
func validatePayload(payload json.RawMessage) error {
	if len(payload) == 0 {
		return ErrEmptyPayload
	}

	var head struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(payload, &head); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	if head.ID == "" {
		return ErrInvalidEntityID
	}

	return nil
}

func (v *RecordValidator) validateRecord(record models.AggregateRecord, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldAccountID, FieldEntities}
	}

	for _, f := range fields {
		switch f {
		case FieldAccountID:
			if record.AccountID == "" {
				return ErrInvalidAccountID
			}
		case FieldEntities:
			if err := validateIDs("expenses", record.Expenses); err != nil {
				return err
			}
			if err := validateIDs("incomes", record.Incomes); err != nil {
				return err
			}
			if err := validateIDs("budgets", record.Budgets); err != nil {
				return err
			}
			if err := validateIDs("categories", record.Categories); err != nil {
				return err
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func validateIDs[T models.Entity](collection string, items []T) error {
	for i, item := range items {
		if item.EntityID() == "" {
			return fmt.Errorf("%s at index %d: %w", collection, i, ErrInvalidEntityID)
		}
	}
	return nil
}

func (v *RecordValidator) validateTransaction(id string, amount decimal.Decimal, currency string, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldID, FieldAmount, FieldCurrency}
	}

	for _, f := range fields {
		switch f {
		case FieldID:
			if id == "" {
				return ErrInvalidEntityID
			}
		case FieldAmount:
			if amount.IsNegative() {
				return ErrNegativeAmount
			}
		case FieldCurrency:
			if currency != "" && !isCurrencyCode(currency) {
				return ErrInvalidCurrency
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *RecordValidator) validateBudget(budget models.Budget, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldID, FieldCategory, FieldAmount, FieldCurrency}
	}

	for _, f := range fields {
		switch f {
		case FieldID:
			if budget.ID == "" {
				return ErrInvalidEntityID
			}
		case FieldCategory:
			if budget.Category == "" {
				return ErrEmptyCategory
			}
		case FieldAmount:
			if budget.Limit.IsNegative() {
				return ErrNegativeAmount
			}
		case FieldCurrency:
			if budget.Currency != "" && !isCurrencyCode(budget.Currency) {
				return ErrInvalidCurrency
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *RecordValidator) validateCategory(category models.Category, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldID, FieldName}
	}

	for _, f := range fields {
		switch f {
		case FieldID:
			if category.ID == "" {
				return ErrInvalidEntityID
			}
		case FieldName:
			if category.Name == "" {
				return ErrEmptyName
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func isCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
