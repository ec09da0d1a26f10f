// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"errors"
	"fmt"

	"github.com/MKhiriev/go-fin-keeper/internal/adapter"
)

// classifyRemoteError wraps err with the sync outcome it stands for.
//
// Requests the server refused on their content are rejected. Everything else,
// including errors this function does not recognise, is transient.
func classifyRemoteError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrTransientIO), errors.Is(err, ErrRejected), errors.Is(err, ErrNotFound):
		return err
	case errors.Is(err, adapter.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, adapter.ErrBadRequest),
		errors.Is(err, adapter.ErrForbidden),
		errors.Is(err, adapter.ErrConflict),
		errors.Is(err, adapter.ErrUnprocessable),
		errors.Is(err, ErrInvalidOperation):
		return fmt.Errorf("%w: %w", ErrRejected, err)
	default:
		return fmt.Errorf("%w: %w", ErrTransientIO, err)
	}
}

// IsTerminal reports whether err means the operation must be dropped
// without another attempt.
func IsTerminal(err error) bool {
	return errors.Is(err, ErrRejected)
}
