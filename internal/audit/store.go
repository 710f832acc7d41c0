package audit

import (
	"context"

	id "vetgate/pkg/domain"
)

// Store is the append-only persistence port for audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByCandidate(ctx context.Context, candidateID id.CandidateID) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
