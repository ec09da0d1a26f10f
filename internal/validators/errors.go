package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrInvalidOperationID = errors.New("invalid operation id")
	ErrInvalidEntityType  = errors.New("invalid entity type")
	ErrInvalidAction      = errors.New("invalid action")
	ErrEmptyPayload       = errors.New("payload is required")
	ErrMalformedPayload   = errors.New("payload is not a JSON object")
	ErrInvalidEntityID    = errors.New("invalid entity id")
	ErrInvalidAttempt     = errors.New("invalid attempt counter")
	ErrInvalidAccountID   = errors.New("invalid account id")
	ErrNegativeAmount     = errors.New("amount must not be negative")
	ErrInvalidCurrency    = errors.New("currency must be a three-letter code")
	ErrEmptyCategory      = errors.New("category is required")
	ErrEmptyName          = errors.New("name is required")
)
