// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "strings"

func (cfg *StructuredConfig) validateServer() error {
	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Server.HTTPAddress == "" || cfg.Server.RequestTimeout <= 0 {
		return ErrInvalidServerConfigs
	}

	if cfg.App.TokenSignKey == "" || cfg.App.TokenIssuer == "" || cfg.App.HashKey == "" {
		return ErrInvalidAppConfigs
	}

	return nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.Storage.DSN == "" || strings.Contains(cfg.Storage.DSN, ":memory:") {
		return ErrInvalidStorageConfigs
	}

	if cfg.Adapter.HTTPAddress == "" || cfg.Adapter.RequestTimeout <= 0 {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Sync.AccountID == "" {
		return ErrMissingAccountID
	}

	if cfg.Sync.BatchSize <= 0 || cfg.Sync.MaxAttempts <= 0 || cfg.Sync.MaxErrors <= 0 ||
		cfg.Sync.BaseRetryInterval <= 0 || cfg.Sync.MaxRetryInterval < cfg.Sync.BaseRetryInterval ||
		cfg.Sync.PeriodicInterval <= 0 || cfg.Sync.ProbeInterval <= 0 {
		return ErrInvalidSyncConfigs
	}

	return nil
}
