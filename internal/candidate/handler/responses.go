package handler

import (
	"time"

	"vetgate/internal/candidate/models"
	vmodels "vetgate/internal/verification/models"
)

// CandidateResponse is the HTTP representation of a candidate.
type CandidateResponse struct {
	ID            string                  `json:"id"`
	FullName      string                  `json:"full_name"`
	DateOfBirth   string                  `json:"date_of_birth,omitempty"`
	State         string                  `json:"state,omitempty"`
	LicenseNumber string                  `json:"license_number,omitempty"`
	DEANumber     string                  `json:"dea_number,omitempty"`
	SourceChannel string                  `json:"source_channel,omitempty"`
	Compliance    vmodels.ComplianceState `json:"compliance"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

// FromCandidate converts the domain entity to its response form.
func FromCandidate(candidate *models.Candidate) CandidateResponse {
	return CandidateResponse{
		ID:            candidate.ID.String(),
		FullName:      candidate.FullName,
		DateOfBirth:   candidate.DateOfBirth,
		State:         candidate.State,
		LicenseNumber: candidate.LicenseNumber,
		DEANumber:     candidate.DEANumber,
		SourceChannel: candidate.SourceChannel,
		Compliance:    candidate.Compliance,
		CreatedAt:     candidate.CreatedAt,
		UpdatedAt:     candidate.UpdatedAt,
	}
}

// CandidateListResponse wraps the list endpoint payload.
type CandidateListResponse struct {
	Candidates []CandidateResponse `json:"candidates"`
	Total      int                 `json:"total"`
}

func FromCandidates(candidates []*models.Candidate) CandidateListResponse {
	out := CandidateListResponse{
		Candidates: make([]CandidateResponse, 0, len(candidates)),
		Total:      len(candidates),
	}
	for _, candidate := range candidates {
		out.Candidates = append(out.Candidates, FromCandidate(candidate))
	}
	return out
}
