// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"errors"
	"strings"

	"github.com/MKhiriev/go-fin-keeper/internal/service"
)

func humanizeSyncError(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, service.ErrOffline):
		return "Offline: changes stay queued until the server is reachable"
	case errors.Is(err, service.ErrDrainInProgress):
		return "A sync is already running"
	case errors.Is(err, service.ErrManagerShutDown), errors.Is(err, service.ErrManagerNotStarted):
		return "Sync is not running"
	}

	s := strings.ToLower(err.Error())
	if strings.Contains(s, "connection refused") ||
		strings.Contains(s, "dial tcp") ||
		strings.Contains(s, "no such host") ||
		strings.Contains(s, "network is unreachable") ||
		strings.Contains(s, "i/o timeout") ||
		strings.Contains(s, "context deadline exceeded") {
		return "No network or server unavailable"
	}

	return err.Error()
}
