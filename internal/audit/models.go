// Package audit records what the system did to whom: candidate intake,
// verification runs, job lifecycle transitions. Events are append-only and
// transport-agnostic so stores and sinks can fan out.
package audit

import (
	"time"

	"github.com/google/uuid"

	id "vetgate/pkg/domain"
)

// EventType names an audited action.
type EventType string

const (
	EventCandidateCreated EventType = "candidate.created"
	EventRunCompleted     EventType = "verification.run_completed"
	EventJobEnqueued      EventType = "verification.job_enqueued"
	EventJobFailed        EventType = "verification.job_failed"
)

// Event is emitted from domain logic to capture one key action.
type Event struct {
	ID          uuid.UUID         `json:"id"`
	Type        EventType         `json:"type"`
	CandidateID id.CandidateID    `json:"candidate_id,omitempty"`
	Payload     map[string]string `json:"payload,omitempty"`
	OccurredAt  time.Time         `json:"occurred_at"`
}
