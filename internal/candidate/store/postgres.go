package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"vetgate/internal/candidate/models"
	vmodels "vetgate/internal/verification/models"
	id "vetgate/pkg/domain"
	"vetgate/pkg/platform/sentinel"
	"vetgate/pkg/platform/tx"
)

// PostgresStore persists candidates in PostgreSQL. The compliance snapshot is
// stored as a JSONB document because it is replaced wholesale on every run and
// never queried per-check.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const uniqueViolation = "23505"

// querier is satisfied by *sql.DB and *sql.Tx; writes join a transaction
// carried in the context when one is present.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) conn(ctx context.Context) querier {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return s.db
}

func (s *PostgresStore) Create(ctx context.Context, candidate *models.Candidate) error {
	compliance, err := json.Marshal(candidate.Compliance)
	if err != nil {
		return fmt.Errorf("marshal compliance state: %w", err)
	}
	_, err = s.conn(ctx).ExecContext(ctx, `
		INSERT INTO candidates (
			id, full_name, date_of_birth, state, license_number, dea_number,
			source_channel, compliance, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		candidate.ID.String(),
		candidate.FullName,
		nullString(candidate.DateOfBirth),
		nullString(candidate.State),
		nullString(candidate.LicenseNumber),
		nullString(candidate.DEANumber),
		nullString(candidate.SourceChannel),
		compliance,
		candidate.CreatedAt,
		candidate.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create candidate: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, candidateID id.CandidateID) (*models.Candidate, error) {
	row := s.conn(ctx).QueryRowContext(ctx, `
		SELECT id, full_name, date_of_birth, state, license_number, dea_number,
		       source_channel, compliance, created_at, updated_at
		FROM candidates
		WHERE id = $1`,
		candidateID.String(),
	)
	candidate, err := scanCandidate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find candidate: %w", err)
	}
	return candidate, nil
}

func (s *PostgresStore) Update(ctx context.Context, candidate *models.Candidate) error {
	compliance, err := json.Marshal(candidate.Compliance)
	if err != nil {
		return fmt.Errorf("marshal compliance state: %w", err)
	}
	result, err := s.conn(ctx).ExecContext(ctx, `
		UPDATE candidates
		SET full_name = $2, date_of_birth = $3, state = $4, license_number = $5,
		    dea_number = $6, source_channel = $7, compliance = $8, updated_at = $9
		WHERE id = $1`,
		candidate.ID.String(),
		candidate.FullName,
		nullString(candidate.DateOfBirth),
		nullString(candidate.State),
		nullString(candidate.LicenseNumber),
		nullString(candidate.DEANumber),
		nullString(candidate.SourceChannel),
		compliance,
		candidate.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update candidate: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update candidate: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Candidate, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT id, full_name, date_of_birth, state, license_number, dea_number,
		       source_channel, compliance, created_at, updated_at
		FROM candidates
		ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	var candidates []*models.Candidate
	for rows.Next() {
		candidate, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("list candidates: %w", err)
		}
		candidates = append(candidates, candidate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	return candidates, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCandidate(row rowScanner) (*models.Candidate, error) {
	var (
		candidate  models.Candidate
		rawID      string
		dob        sql.NullString
		state      sql.NullString
		license    sql.NullString
		dea        sql.NullString
		channel    sql.NullString
		compliance []byte
	)
	err := row.Scan(
		&rawID, &candidate.FullName, &dob, &state, &license, &dea,
		&channel, &compliance, &candidate.CreatedAt, &candidate.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	candidateID, err := id.ParseCandidateID(rawID)
	if err != nil {
		return nil, fmt.Errorf("stored candidate id invalid: %w", err)
	}
	candidate.ID = candidateID
	candidate.DateOfBirth = dob.String
	candidate.State = state.String
	candidate.LicenseNumber = license.String
	candidate.DEANumber = dea.String
	candidate.SourceChannel = channel.String
	if len(compliance) > 0 {
		if err := json.Unmarshal(compliance, &candidate.Compliance); err != nil {
			return nil, fmt.Errorf("unmarshal compliance state: %w", err)
		}
	} else {
		candidate.Compliance = vmodels.ComplianceState{}
	}
	return &candidate, nil
}

func nullString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
