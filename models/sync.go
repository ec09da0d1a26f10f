package models

import (
	"encoding/json"
	"time"
)

// Action is the kind of mutation a [SyncOperation] carries.
type Action string

const (
	// ActionCreate appends the payload to its collection.
	ActionCreate Action = "create"

	// ActionUpdate replaces the element whose id matches the payload.
	ActionUpdate Action = "update"

	// ActionDelete removes the element whose id matches the payload.
	ActionDelete Action = "delete"
)

// Valid reports whether a is a supported action.
func (a Action) Valid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete:
		return true
	}
	return false
}

// SyncOperation is one queued local mutation waiting to be replayed against
// the remote store.
type SyncOperation struct {
	// ID is assigned at enqueue time and never changes.
	ID string `json:"id"`

	EntityType EntityType `json:"entityType"`
	Action     Action     `json:"action"`

	// Payload is the full entity record as JSON. For deletes it needs to
	// carry at least the entity id.
	Payload json.RawMessage `json:"payload"`

	EnqueuedAt time.Time `json:"enqueuedAt"`

	// Attempt counts failed delivery attempts so far.
	Attempt int `json:"attempt"`
}

// QueueSchemaVersion is the current layout version of a persisted queue.
const QueueSchemaVersion = 1

// QueueDocument is the persisted form of the whole operation queue, stored
// under one fixed key per installation.
type QueueDocument struct {
	SchemaVersion int             `json:"schemaVersion"`
	Operations    []SyncOperation `json:"operations"`
}

// SyncError describes a terminal failure: an operation that was dropped from
// the queue and will never be retried. It is surfaced to the UI.
type SyncError struct {
	OperationID string     `json:"operationId"`
	EntityType  EntityType `json:"entityType"`
	Action      Action     `json:"action"`
	Attempts    int        `json:"attempts"`
	Reason      string     `json:"reason"`
	At          time.Time  `json:"at"`
}

// SyncSnapshot is the read-only view of the queue manager's state that the UI
// polls.
type SyncSnapshot struct {
	Connected     bool          `json:"connected"`
	Syncing       bool          `json:"syncing"`
	PendingCount  int           `json:"pendingCount"`
	LastAttemptAt time.Time     `json:"lastAttemptAt"`
	LastSuccessAt time.Time     `json:"lastSuccessAt"`
	RetryInterval time.Duration `json:"retryInterval"`
	RecentErrors  []SyncError   `json:"recentErrors,omitempty"`
}
