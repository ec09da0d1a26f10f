// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/MKhiriev/go-fin-keeper/models"
)

// QueueKey is the fixed storage key of the operation queue.
const QueueKey = "pending-operations"

func encodeQueue(ops []models.SyncOperation) ([]byte, error) {
	if ops == nil {
		ops = []models.SyncOperation{}
	}

	doc := models.QueueDocument{SchemaVersion: models.QueueSchemaVersion, Operations: ops}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodingDocument, err)
	}
	return data, nil
}

// decodeQueue accepts the versioned document and, for queues written before
// versioning existed, a bare JSON array of operations.
func decodeQueue(data []byte) ([]models.SyncOperation, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []models.SyncOperation{}, nil
	}

	if data[0] == '[' {
		var ops []models.SyncOperation
		if err := json.Unmarshal(data, &ops); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptQueue, err)
		}
		return nonNil(ops), nil
	}

	var doc models.QueueDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptQueue, err)
	}
	if doc.SchemaVersion > models.QueueSchemaVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedQueueVersion, doc.SchemaVersion)
	}

	return nonNil(doc.Operations), nil
}

func nonNil(ops []models.SyncOperation) []models.SyncOperation {
	if ops == nil {
		return []models.SyncOperation{}
	}
	return ops
}
