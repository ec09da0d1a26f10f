// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-fin-keeper/internal/logger"
	"github.com/MKhiriev/go-fin-keeper/models"
)

// recordRepository is the PostgreSQL [RecordRepository]. The whole aggregate
// lives in a JSONB column; household_id is denormalised for queryByField.
type recordRepository struct {
	db     *DB
	logger *logger.Logger
}

// NewRecordRepository constructs a [RecordRepository] on db.
func NewRecordRepository(db *DB, logger *logger.Logger) RecordRepository {
	logger.Debug().Msg("creating record repository")
	return &recordRepository{db: db, logger: logger}
}

func (r *recordRepository) GetRecord(ctx context.Context, accountID string) (models.AggregateRecord, error) {
	log := logger.FromContext(ctx)

	var document []byte
	err := r.db.QueryRowContext(ctx, getRecord, accountID).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return models.AggregateRecord{}, ErrRecordNotFound
	}
	if err != nil {
		log.Err(err).Str("func", "*recordRepository.GetRecord").Str("account_id", accountID).Msg("error selecting record")
		return models.AggregateRecord{}, r.db.wrapDBError(ErrExecutingQuery, err)
	}

	var record models.AggregateRecord
	if err = json.Unmarshal(document, &record); err != nil {
		log.Err(err).Str("func", "*recordRepository.GetRecord").Str("account_id", accountID).Msg("error decoding record")
		return models.AggregateRecord{}, fmt.Errorf("%w: %w", ErrDecodingDocument, err)
	}

	return record, nil
}

func (r *recordRepository) PutRecord(ctx context.Context, record models.AggregateRecord) error {
	log := logger.FromContext(ctx)

	document, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncodingDocument, err)
	}

	var householdID sql.NullString
	if record.HouseholdID != nil {
		householdID = sql.NullString{String: *record.HouseholdID, Valid: true}
	}

	if _, err = r.db.ExecContext(ctx, putRecord, record.AccountID, householdID, string(document)); err != nil {
		log.Err(err).Str("func", "*recordRepository.PutRecord").
			Str("account_id", record.AccountID).
			Str("pg_code", postgresError(err)).
			Msg("error upserting record")
		return r.db.wrapDBError(ErrExecutingStatement, err)
	}

	return nil
}

func (r *recordRepository) QueryByField(ctx context.Context, field, value string) ([]models.AggregateRecord, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildQueryByField(field, value)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*recordRepository.QueryByField").Str("field", field).Msg("error querying records")
		return nil, r.db.wrapDBError(ErrExecutingQuery, err)
	}
	defer rows.Close()

	records := make([]models.AggregateRecord, 0)
	for rows.Next() {
		var document []byte
		if err = rows.Scan(&document); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}

		var record models.AggregateRecord
		if err = json.Unmarshal(document, &record); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecodingDocument, err)
		}
		records = append(records, record)
	}
	if err = rows.Err(); err != nil {
		return nil, r.db.wrapDBError(ErrScanningRows, err)
	}

	return records, nil
}
