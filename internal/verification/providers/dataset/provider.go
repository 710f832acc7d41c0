// Package dataset implements verification checks backed by bounded, pre-loaded
// reference lists (exclusion, sanctions, and debarment data from periodic file
// imports).
package dataset

import (
	"context"
	"fmt"
	"time"

	cmodels "vetgate/internal/candidate/models"
	"vetgate/internal/verification/models"
)

// Match/confidence heuristic: exact normalized-name equality, with date of
// birth required to agree only when both sides have one. Deliberately biased
// toward false positives — flags route to human review, never to automatic
// rejection, so under-matching is the worse failure mode.
const (
	confidenceFlagged = 0.75
	confidenceClear   = 0.95
)

// ListTypes returns the check types served by reference-list lookups, in
// canonical tier-1 order.
func ListTypes() []models.CheckType {
	return []models.CheckType{
		models.CheckFederalExclusions,
		models.CheckSanctions,
		models.CheckDebarment,
	}
}

// Provider runs one reference-list check against the injected store.
type Provider struct {
	checkType models.CheckType
	source    string
	store     Store
}

// New constructs a dataset provider for one list.
func New(checkType models.CheckType, source string, store Store) *Provider {
	return &Provider{checkType: checkType, source: source, store: store}
}

// Type implements providers.Provider.
func (p *Provider) Type() models.CheckType {
	return p.checkType
}

// Run looks the candidate up on the reference list. A store fault is reported
// as an ERROR result, not a returned error; lookups against reference data
// cannot otherwise fail.
func (p *Provider) Run(ctx context.Context, candidate *cmodels.Candidate) (models.VerificationCheckResult, error) {
	start := time.Now()

	records, err := p.store.FindByName(ctx, p.checkType, NormalizeName(candidate.FullName))
	if err != nil {
		return models.VerificationCheckResult{
			CheckType:   p.checkType,
			Source:      p.source,
			Status:      models.StatusError,
			Summary:     "reference list lookup failed",
			ErrorDetail: err.Error(),
			CheckedAt:   time.Now(),
			LatencyMS:   time.Since(start).Milliseconds(),
		}, nil
	}

	var matches []models.MatchedRecord
	for _, record := range records {
		if !dobAgrees(candidate.DateOfBirth, record.DateOfBirth) {
			continue
		}
		matches = append(matches, toMatchedRecord(record))
	}

	if len(matches) > 0 {
		return models.VerificationCheckResult{
			CheckType:  p.checkType,
			Source:     p.source,
			Status:     models.StatusFlagged,
			Summary:    fmt.Sprintf("%d possible match(es) on %s; review required", len(matches), p.source),
			Confidence: confidenceFlagged,
			Matches:    matches,
			CheckedAt:  time.Now(),
			LatencyMS:  time.Since(start).Milliseconds(),
		}, nil
	}

	return models.VerificationCheckResult{
		CheckType:  p.checkType,
		Source:     p.source,
		Status:     models.StatusClear,
		Summary:    fmt.Sprintf("no matching records on %s", p.source),
		Confidence: confidenceClear,
		CheckedAt:  time.Now(),
		LatencyMS:  time.Since(start).Milliseconds(),
	}, nil
}

// dobAgrees applies the date-of-birth rule: when both the candidate and the
// record carry a date of birth they must agree; otherwise the name match alone
// is sufficient to flag.
func dobAgrees(candidateDOB, recordDOB string) bool {
	if candidateDOB == "" || recordDOB == "" {
		return true
	}
	return candidateDOB == recordDOB
}

func toMatchedRecord(record Record) models.MatchedRecord {
	match := models.MatchedRecord{
		"full_name": record.FullName,
	}
	if record.DateOfBirth != "" {
		match["date_of_birth"] = record.DateOfBirth
	}
	for k, v := range record.Attributes {
		match[k] = v
	}
	return match
}
