// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import "context"

// Client defines the lifecycle contract of the device runtime.
type Client interface {
	// Start loads the persisted queue and begins watching connectivity.
	Start(ctx context.Context) error

	// Shutdown stops background work, waits for a running drain and
	// releases local storage.
	Shutdown(ctx context.Context) error
}
