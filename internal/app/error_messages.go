// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app contains shared application-layer constants used across the
// record server's handlers and middleware.
//
// All Msg* constants are human-readable message strings that are written into
// HTTP response bodies or log entries to describe the outcome of an operation.
package app

const (
	// MsgInvalidDataProvided is returned when a record or query fails
	// validation.
	MsgInvalidDataProvided = "invalid data provided"

	// MsgInvalidJSON is returned when the request body cannot be decoded.
	MsgInvalidJSON = "invalid JSON was passed"

	// MsgInternalServerError is returned when an unexpected server-side
	// failure occurs that the client cannot resolve.
	MsgInternalServerError = "internal server error"

	// MsgTokenIsExpiredOrInvalid is returned when a JWT bearer token is
	// either expired or cannot be verified (e.g. wrong signature).
	MsgTokenIsExpiredOrInvalid = "token is expired or invalid"

	// MsgAccessDenied is returned when a device writes the record of an
	// account its token was not issued for.
	MsgAccessDenied = "access denied"

	// MsgRecordNotFound is returned when the account has no record yet.
	MsgRecordNotFound = "record not found"

	// MsgUnsupportedField is returned by record queries on a field that is
	// not indexed.
	MsgUnsupportedField = "unsupported query field"

	// MsgTemporarilyUnavailable is returned for database failures worth
	// retrying. Clients treat it as transient.
	MsgTemporarilyUnavailable = "storage temporarily unavailable, retry later"

	// MsgIntegrityCheckFailed is returned when the record hash sent with a
	// PUT does not match the record.
	MsgIntegrityCheckFailed = "integrity check failed"
)
