package handler

import (
	"time"

	"vetgate/internal/jobs"
)

// JobResponse is the HTTP representation of a verification job snapshot.
type JobResponse struct {
	ID          string    `json:"id"`
	CandidateID string    `json:"candidate_id"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	Attempts    int       `json:"attempts"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FromSnapshot converts a job snapshot to its response form.
func FromSnapshot(snapshot jobs.Snapshot) JobResponse {
	return JobResponse{
		ID:          snapshot.ID.String(),
		CandidateID: snapshot.CandidateID.String(),
		Status:      string(snapshot.Status),
		Error:       snapshot.Error,
		Attempts:    snapshot.Attempts,
		CreatedAt:   snapshot.CreatedAt,
		UpdatedAt:   snapshot.UpdatedAt,
	}
}
