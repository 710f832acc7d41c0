// Package domain holds typed identifiers shared across feature slices. IDs
// must be valid, non-empty, non-nil UUIDs; Parse* constructors enforce that
// invariant at trust boundaries.
package domain

import (
	"github.com/google/uuid"

	dErrors "vetgate/pkg/domain-errors"
)

// CandidateID identifies a candidate under verification.
type CandidateID uuid.UUID

// JobID identifies an asynchronous verification job.
type JobID uuid.UUID

// NewCandidateID returns a fresh random candidate id.
func NewCandidateID() CandidateID {
	return CandidateID(uuid.New())
}

// NewJobID returns a fresh random job id.
func NewJobID() JobID {
	return JobID(uuid.New())
}

// ParseCandidateID validates and parses a candidate id from its string form.
func ParseCandidateID(s string) (CandidateID, error) {
	u, err := parseUUID(s, "candidate id")
	return CandidateID(u), err
}

// ParseJobID validates and parses a job id from its string form.
func ParseJobID(s string) (JobID, error) {
	u, err := parseUUID(s, "job id")
	return JobID(u), err
}

func (id CandidateID) String() string { return uuid.UUID(id).String() }
func (id CandidateID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id JobID) String() string { return uuid.UUID(id).String() }
func (id JobID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func parseUUID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, what+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, what+" must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, what+" must not be the nil UUID")
	}
	return u, nil
}
