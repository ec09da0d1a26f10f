// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the device-side runtime of fin-keeper.
//
// It wires the local storages, the remote record store, the sync services
// and the connectivity monitor into a single process lifecycle shared by
// the CLI commands and the status UI.
package client
