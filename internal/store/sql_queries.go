package store

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// SQLite (client).
const (
	loadQueue = `SELECT schema_version, document
		FROM sync_queue
		WHERE queue_key = ?;`

	saveQueue = `INSERT INTO sync_queue (queue_key, schema_version, document, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (queue_key) DO UPDATE SET
			schema_version = excluded.schema_version,
			document = excluded.document,
			updated_at = excluded.updated_at;`

	loadCachedRecord = `SELECT document
		FROM local_records
		WHERE account_id = ?;`

	saveCachedRecord = `INSERT INTO local_records (account_id, document, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (account_id) DO UPDATE SET
			document = excluded.document,
			updated_at = excluded.updated_at;`
)

// PostgreSQL (server).
const (
	getRecord = `SELECT document
		FROM records
		WHERE account_id = $1;`

	putRecord = `INSERT INTO records (account_id, household_id, document, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (account_id) DO UPDATE SET
			household_id = EXCLUDED.household_id,
			document = EXCLUDED.document,
			updated_at = NOW();`
)

// queryableColumns maps record JSON field names to indexed columns.
var queryableColumns = map[string]string{
	"householdId": "household_id",
	"accountId":   "account_id",
}

// buildQueryByField builds the SELECT for RecordRepository.QueryByField.
func buildQueryByField(field, value string) (string, []any, error) {
	column, ok := queryableColumns[field]
	if !ok {
		return "", nil, fmt.Errorf("%w: %q", ErrUnsupportedField, field)
	}

	query, args, err := sq.Select("document").
		From("records").
		Where(sq.Eq{column: value}).
		OrderBy("account_id").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}
