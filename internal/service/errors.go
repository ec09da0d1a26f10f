package service

import "errors"

// Sync outcome taxonomy. Every error returned by [OperationApplier.Apply]
// wraps exactly one of the first three.
var (
	// ErrTransientIO marks failures worth retrying: the network, a timeout,
	// a 5xx. The operation stays queued.
	ErrTransientIO = errors.New("transient i/o failure")

	// ErrRejected marks an operation the remote store will never accept. It
	// is dropped from the queue immediately and surfaced to the user.
	ErrRejected = errors.New("operation rejected")

	// ErrNotFound is an absent remote record. Reads treat it as an empty
	// record, so it only escapes from writes.
	ErrNotFound = errors.New("remote record not found")

	// ErrMaxRetriesExceeded is recorded when an operation is dropped after
	// its last transient failure.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

// Queue manager lifecycle and drain guards.
var (
	ErrManagerNotStarted  = errors.New("sync queue manager is not started")
	ErrManagerShutDown    = errors.New("sync queue manager is shut down")
	ErrManagerStarted     = errors.New("sync queue manager is already started")
	ErrOffline            = errors.New("offline")
	ErrDrainInProgress    = errors.New("drain already in progress")
	ErrDrainFailed        = errors.New("drain failed")
	ErrPersistingQueue    = errors.New("error persisting queue")
	ErrEmptyAccountID     = errors.New("account id is required")
	ErrNilDependency      = errors.New("required dependency is nil")
	ErrInvalidOperation   = errors.New("invalid operation")
	ErrUnsupportedAction  = errors.New("unsupported action")
	ErrUnsupportedEntity  = errors.New("unsupported entity type")
	ErrEntityIDIsRequired = errors.New("entity id is required")
)

// Server side.
var (
	ErrVersionIsNotSpecified   = errors.New("app version is not specified")
	ErrAccountMismatch         = errors.New("record belongs to another account")
	ErrInvalidDataProvided     = errors.New("invalid data provided")
	ErrTokenCreationFailed     = errors.New("token creation failed")
	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")
	ErrNoHouseholdID           = errors.New("household id is required")
)
