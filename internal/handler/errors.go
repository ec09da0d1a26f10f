// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package handler

import "errors"

// errNoHandlersAreCreated means the server config has no HTTP address. The
// record server refuses to start without one.
var errNoHandlersAreCreated = errors.New("no handlers are created")
