package handler

import (
	"strings"
	"time"

	"vetgate/internal/candidate/service"
	dErrors "vetgate/pkg/domain-errors"
)

// CreateCandidateRequest is the HTTP request body for POST /candidates.
type CreateCandidateRequest struct {
	FullName      string `json:"full_name"`
	DateOfBirth   string `json:"date_of_birth"`
	State         string `json:"state"`
	LicenseNumber string `json:"license_number"`
	DEANumber     string `json:"dea_number"`
	SourceChannel string `json:"source_channel"`
}

// Validate validates and normalizes the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *CreateCandidateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.FullName = strings.TrimSpace(r.FullName)
	if r.FullName == "" {
		return dErrors.New(dErrors.CodeValidation, "full_name is required")
	}
	if len(r.FullName) > 200 {
		return dErrors.New(dErrors.CodeValidation, "full_name must be at most 200 characters")
	}

	r.DateOfBirth = strings.TrimSpace(r.DateOfBirth)
	if r.DateOfBirth != "" {
		if _, err := time.Parse("2006-01-02", r.DateOfBirth); err != nil {
			return dErrors.New(dErrors.CodeValidation, "date_of_birth must be an ISO date (YYYY-MM-DD)")
		}
	}

	r.State = strings.TrimSpace(r.State)
	r.LicenseNumber = strings.TrimSpace(r.LicenseNumber)
	r.DEANumber = strings.TrimSpace(r.DEANumber)
	r.SourceChannel = strings.TrimSpace(r.SourceChannel)
	return nil
}

// Params maps the request onto service input.
func (r *CreateCandidateRequest) Params() service.CreateParams {
	return service.CreateParams{
		FullName:      r.FullName,
		DateOfBirth:   r.DateOfBirth,
		State:         r.State,
		LicenseNumber: r.LicenseNumber,
		DEANumber:     r.DEANumber,
		SourceChannel: r.SourceChannel,
	}
}
