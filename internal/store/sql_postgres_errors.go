package store

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
)

// ErrorClassification tells whether a failed database call may be retried.
type ErrorClassification int

const (
	// NonRetryable is the default for unknown errors, constraint violations,
	// syntax errors and data exceptions.
	NonRetryable ErrorClassification = iota

	// Retryable marks failures that may succeed on a later attempt: lost
	// connections, rollbacks, resource exhaustion.
	Retryable
)

// PostgresErrorClassifier implements [ErrorClassificator] using SQLSTATE
// classes.
type PostgresErrorClassifier struct{}

// NewPostgresErrorClassifier constructs a [PostgresErrorClassifier].
func NewPostgresErrorClassifier() *PostgresErrorClassifier {
	return &PostgresErrorClassifier{}
}

// Classify implements [ErrorClassificator]. Deadline expiry counts as
// retryable; a plain cancellation does not.
func (c *PostgresErrorClassifier) Classify(err error) ErrorClassification {
	if err == nil {
		return NonRetryable
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Retryable
	}

	code := postgresError(err)
	if code == "" {
		return NonRetryable
	}
	return ClassifyPgCode(code)
}

// ClassifyPgCode maps a SQLSTATE to a classification.
//
// Retryable: class 08 (connection exception), class 40 (transaction
// rollback), class 53 (insufficient resources), 57P01-57P03 (shutdown,
// cannot connect now) and 57014 (query canceled by timeout).
// See https://www.postgresql.org/docs/current/errcodes-appendix.html.
func ClassifyPgCode(code string) ErrorClassification {
	switch {
	case pgerrcode.IsConnectionException(code),
		pgerrcode.IsTransactionRollback(code),
		pgerrcode.IsInsufficientResources(code):
		return Retryable
	}

	switch code {
	case pgerrcode.AdminShutdown,
		pgerrcode.CrashShutdown,
		pgerrcode.CannotConnectNow,
		pgerrcode.QueryCanceled:
		return Retryable
	}

	return NonRetryable
}
