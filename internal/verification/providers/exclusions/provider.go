// Package exclusions implements the government exclusions-registry check as a
// live REST API provider. The provider boundary is exception-free: missing
// credentials degrade to PENDING and transport failures become ERROR results,
// so the orchestrator never sees a thrown failure from here.
package exclusions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	cmodels "vetgate/internal/candidate/models"
	"vetgate/internal/verification/models"
)

const (
	confidenceFlagged = 0.8
	confidenceClear   = 0.95

	defaultBaseURL = "https://api.exclusions.example.gov/v1"
	defaultTimeout = 10 * time.Second

	sourceLabel = "Government Exclusions Registry"
)

// Config holds the provider's connection settings. An empty APIKey leaves the
// provider registered but inactive: every run reports PENDING until the
// credential is provisioned.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Provider queries the exclusions registry per candidate.
type Provider struct {
	cfg    Config
	client *http.Client
}

// New constructs the live API provider. The HTTP client carries a bounded
// timeout so a hung registry call can never stall a verification batch.
func New(cfg Config) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Provider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Type implements providers.Provider.
func (p *Provider) Type() models.CheckType {
	return models.CheckGovAPIExclusions
}

type searchResponse struct {
	Total   int              `json:"total"`
	Results []map[string]any `json:"results"`
}

// Run performs one registry search keyed by the candidate's name. Retry policy
// belongs to the job queue, not here: a failed attempt is reported once.
func (p *Provider) Run(ctx context.Context, candidate *cmodels.Candidate) (models.VerificationCheckResult, error) {
	start := time.Now()

	if p.cfg.APIKey == "" {
		// Not yet configured is a recoverable state distinct from "attempted
		// and failed"; it must never read as an error.
		return p.result(models.StatusPending, "registry API key not configured; check pending integration", 0, nil, start), nil
	}

	searchURL := fmt.Sprintf("%s/search?%s", p.cfg.BaseURL, url.Values{"name": {candidate.FullName}}.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return p.errorResult("building registry request failed", err, start), nil
	}
	req.Header.Set("X-Api-Key", p.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return p.errorResult("registry request failed", err, start), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return p.result(models.StatusError,
			fmt.Sprintf("registry returned HTTP %d", resp.StatusCode), 0, nil, start), nil
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return p.errorResult("decoding registry response failed", err, start), nil
	}

	if body.Total > 0 || len(body.Results) > 0 {
		matches := make([]models.MatchedRecord, 0, len(body.Results))
		for _, raw := range body.Results {
			matches = append(matches, toMatchedRecord(raw))
		}
		result := p.result(models.StatusFlagged,
			fmt.Sprintf("%d exclusion record(s) returned; review required", max(body.Total, len(body.Results))),
			confidenceFlagged, matches, start)
		return result, nil
	}

	return p.result(models.StatusClear, "no exclusion records returned", confidenceClear, nil, start), nil
}

func (p *Provider) result(status models.CheckStatus, summary string, confidence float64, matches []models.MatchedRecord, start time.Time) models.VerificationCheckResult {
	return models.VerificationCheckResult{
		CheckType:  models.CheckGovAPIExclusions,
		Source:     sourceLabel,
		Status:     status,
		Summary:    summary,
		Confidence: confidence,
		Matches:    matches,
		CheckedAt:  time.Now(),
		LatencyMS:  time.Since(start).Milliseconds(),
	}
}

func (p *Provider) errorResult(summary string, err error, start time.Time) models.VerificationCheckResult {
	result := p.result(models.StatusError, summary, 0, nil, start)
	result.ErrorDetail = err.Error()
	return result
}

// toMatchedRecord flattens a raw registry record into the opaque string bag
// the rest of the pipeline carries around.
func toMatchedRecord(raw map[string]any) models.MatchedRecord {
	match := make(models.MatchedRecord, len(raw))
	for k, v := range raw {
		match[k] = fmt.Sprint(v)
	}
	return match
}
