package dataset

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"vetgate/internal/verification/models"
)

// PostgresStore reads reference lists from PostgreSQL. Periodic file imports
// maintain the table; this store only ever reads.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed reference store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// FindByName implements Store against the reference_records table. Names are
// stored pre-normalized by the import job so the query is a plain equality.
func (s *PostgresStore) FindByName(ctx context.Context, list models.CheckType, normalizedName string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT full_name, COALESCE(date_of_birth, ''), COALESCE(attributes, '{}')
		FROM reference_records
		WHERE list = $1 AND normalized_name = $2
	`, string(list), normalizedName)
	if err != nil {
		return nil, fmt.Errorf("query reference records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var record Record
		var attrsJSON []byte
		if err := rows.Scan(&record.FullName, &record.DateOfBirth, &attrsJSON); err != nil {
			return nil, fmt.Errorf("scan reference record: %w", err)
		}
		if len(attrsJSON) > 0 {
			if err := json.Unmarshal(attrsJSON, &record.Attributes); err != nil {
				return nil, fmt.Errorf("decode record attributes: %w", err)
			}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reference records: %w", err)
	}
	return records, nil
}

// Insert adds a record to a list. Used by imports and integration tests.
func (s *PostgresStore) Insert(ctx context.Context, list models.CheckType, record Record) error {
	attrsJSON, err := json.Marshal(record.Attributes)
	if err != nil {
		return fmt.Errorf("encode record attributes: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reference_records (list, normalized_name, full_name, date_of_birth, attributes)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5)
	`, string(list), NormalizeName(record.FullName), record.FullName, record.DateOfBirth, attrsJSON)
	if err != nil {
		return fmt.Errorf("insert reference record: %w", err)
	}
	return nil
}
