// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package validators checks finance entities, queued sync operations and
// aggregate records before they are applied or written.
//
// Validate accepts an optional list of field names so callers can restrict
// the check to a subset of rules, e.g. only the entity id of a delete
// payload.
package validators

import "context"

// Validator validates arbitrary input values, optionally restricted to the
// named fields.
type Validator interface {
	Validate(context.Context, any, ...string) error
}
