// Package models defines the candidate entity owned by the intake and
// verification flows.
package models

import (
	"strings"
	"time"

	id "vetgate/pkg/domain"
	dErrors "vetgate/pkg/domain-errors"

	vmodels "vetgate/internal/verification/models"
)

// Candidate is a person moving through the hiring pipeline. The compliance
// state is owned exclusively by this entity and replaced wholesale by each
// verification run.
type Candidate struct {
	ID            id.CandidateID          `json:"id"`
	FullName      string                  `json:"full_name"`
	DateOfBirth   string                  `json:"date_of_birth,omitempty"` // ISO date, empty when unknown
	State         string                  `json:"state,omitempty"`
	LicenseNumber string                  `json:"license_number,omitempty"`
	DEANumber     string                  `json:"dea_number,omitempty"`
	SourceChannel string                  `json:"source_channel,omitempty"`
	Compliance    vmodels.ComplianceState `json:"compliance"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

const dateLayout = "2006-01-02"

// NewCandidate validates intake invariants and returns a candidate with an
// empty compliance state. Callers initialize the all-PENDING state separately
// because the canonical check list belongs to the verification slice.
func NewCandidate(candidateID id.CandidateID, fullName, dateOfBirth string) (*Candidate, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "candidate full name is required")
	}
	dateOfBirth = strings.TrimSpace(dateOfBirth)
	if dateOfBirth != "" {
		if _, err := time.Parse(dateLayout, dateOfBirth); err != nil {
			return nil, dErrors.New(dErrors.CodeInvariantViolation, "date_of_birth must be an ISO date (YYYY-MM-DD)")
		}
	}
	now := time.Now()
	return &Candidate{
		ID:          candidateID,
		FullName:    fullName,
		DateOfBirth: dateOfBirth,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
