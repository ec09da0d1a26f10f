// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter talks to the remote document store that holds one
// aggregate record per account.
//
// [RemoteStore] is the transport-agnostic contract used by the sync services.
// The package ships an HTTP implementation ([NewHTTPRemoteStore]) for the
// fin-keeper record server and an in-memory one ([NewMemoryRemoteStore]).
//
// Errors are sentinel values from errors.go so callers classify them with
// [errors.Is], e.g. [ErrNotFound] for an absent record or [ErrTransport] when
// the server could not be reached.
package adapter

import (
	"context"

	"github.com/MKhiriev/go-fin-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/remote_store_mock.go -package=mock

// RemoteStore reads and writes whole aggregate records.
type RemoteStore interface {
	// GetRecord returns the record of accountID, or [ErrNotFound] if the
	// store has none.
	GetRecord(ctx context.Context, accountID string) (models.AggregateRecord, error)

	// PutRecord replaces the whole record of accountID.
	PutRecord(ctx context.Context, accountID string, record models.AggregateRecord) error

	// QueryByField returns every record in collection whose field equals
	// value. Order is unspecified.
	QueryByField(ctx context.Context, collection, field, value string) ([]models.AggregateRecord, error)
}

// HealthChecker reports whether the remote store is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) (models.HealthResponse, error)
}
