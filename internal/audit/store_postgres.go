package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	id "vetgate/pkg/domain"
)

// PostgresStore persists audit events in the audit_events table. Payloads are
// opaque JSONB; queries only ever filter by candidate or recency.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}
	var candidateID any
	if !event.CandidateID.IsNil() {
		candidateID = event.CandidateID.String()
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_events (id, event_type, candidate_id, payload, occurred_at)
		VALUES ($1, $2, $3, $4, $5)`,
		event.ID, string(event.Type), candidateID, payload, event.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByCandidate(ctx context.Context, candidateID id.CandidateID) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event_type, candidate_id, payload, occurred_at
		FROM audit_events
		WHERE candidate_id = $1
		ORDER BY occurred_at`,
		candidateID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()
	return collect(rows)
}

func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event_type, candidate_id, payload, occurred_at
		FROM audit_events
		ORDER BY occurred_at DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list recent audit events: %w", err)
	}
	defer rows.Close()
	return collect(rows)
}

func collect(rows *sql.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		var (
			event       Event
			eventType   string
			candidateID sql.NullString
			payload     []byte
		)
		if err := rows.Scan(&event.ID, &eventType, &candidateID, &payload, &event.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Type = EventType(eventType)
		if candidateID.Valid {
			parsed, err := uuid.Parse(candidateID.String)
			if err != nil {
				return nil, fmt.Errorf("stored candidate id invalid: %w", err)
			}
			event.CandidateID = id.CandidateID(parsed)
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &event.Payload); err != nil {
				return nil, fmt.Errorf("decode audit payload: %w", err)
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
