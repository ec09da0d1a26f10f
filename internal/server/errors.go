// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import "errors"

var (
	// errNoRecordHandler is returned when the record API router is missing.
	errNoRecordHandler = errors.New("record API handler is not configured")
	// errNoListenAddress is returned when no HTTP address was configured.
	errNoListenAddress = errors.New("record API listen address is empty")
)
