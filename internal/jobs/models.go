// Package jobs defines the asynchronous verification job contract. Two
// interchangeable backends implement it: an in-process queue for
// single-instance deployments and a Redis-backed queue that survives
// restarts. Callers are backend-agnostic.
package jobs

import (
	"context"
	"time"

	id "vetgate/pkg/domain"
)

// Status is the four-value job state, plus UNKNOWN for states the backing
// store cannot resolve.
type Status string

const (
	StatusQueued    Status = "QUEUED"
	StatusRunning   Status = "RUNNING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusUnknown   Status = "UNKNOWN"
)

// Terminal reports whether the job can no longer transition.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Snapshot tracks one "run compliance for candidate X" request. One job
// always corresponds to exactly one full run across all registered checks.
type Snapshot struct {
	ID          id.JobID       `json:"id"`
	CandidateID id.CandidateID `json:"candidate_id"`
	Status      Status         `json:"status"`
	Error       string         `json:"error,omitempty"`
	Attempts    int            `json:"attempts"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Queue is the backend-agnostic job contract.
type Queue interface {
	// EnqueueTier1 schedules one full verification run for the candidate and
	// returns the initial QUEUED snapshot. Exactly one run is triggered per
	// call.
	EnqueueTier1(ctx context.Context, candidateID id.CandidateID) (Snapshot, error)

	// GetJob returns the current snapshot, or sentinel.ErrNotFound for ids
	// the backend has never seen.
	GetJob(ctx context.Context, jobID id.JobID) (Snapshot, error)
}

// Processor performs the actual verification run for a claimed job. Both
// queue backends and the synchronous endpoint share one processor so async
// and sync runs cannot diverge.
type Processor interface {
	Process(ctx context.Context, candidateID id.CandidateID) error
}

// ProcessorFunc adapts a function to the Processor interface.
type ProcessorFunc func(ctx context.Context, candidateID id.CandidateID) error

func (f ProcessorFunc) Process(ctx context.Context, candidateID id.CandidateID) error {
	return f(ctx, candidateID)
}
