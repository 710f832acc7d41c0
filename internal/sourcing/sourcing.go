// Package sourcing defines the boundary to external candidate-sourcing
// services. The real adapters (LinkedIn, aggregator APIs) live outside this
// repository; the intake path only depends on the Provider interface.
//
// The server binary does not mount an import entry point: imports are driven
// by the sourcing pipeline that owns provider credentials, which constructs an
// Intake against the candidate service directly. This package stays a library
// so that pipeline and the serving process share one intake path.
package sourcing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"vetgate/internal/candidate/service"
	"vetgate/pkg/email"
)

// CandidatePreview is the minimal profile a sourcing search yields before a
// candidate record exists.
type CandidatePreview struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	State       string `json:"state,omitempty"`
	Headline    string `json:"headline,omitempty"`
	ProfileURL  string `json:"profile_url,omitempty"`
}

// DisplayName resolves the name to store: the profile name when present,
// otherwise one derived from the email local part.
func (p CandidatePreview) DisplayName() string {
	if p.FullName != "" {
		return p.FullName
	}
	if p.Email != "" {
		first, last := email.DeriveNameFromEmail(p.Email)
		return first + " " + last
	}
	return ""
}

// Provider searches an external talent pool by free-text job description.
type Provider interface {
	SearchByJobDescription(ctx context.Context, jobDescription string) ([]CandidatePreview, error)
}

// MockProvider returns deterministic previews with a configurable latency so
// tests and local runs work without any external sourcing credentials.
type MockProvider struct {
	Latency  time.Duration
	Previews []CandidatePreview
}

func (p MockProvider) SearchByJobDescription(_ context.Context, _ string) ([]CandidatePreview, error) {
	time.Sleep(p.Latency)
	return p.Previews, nil
}

// Intake converts sourcing previews into candidate records.
type Intake struct {
	provider   Provider
	candidates *service.Service
	logger     *slog.Logger
}

// NewIntake wires a sourcing provider to the candidate service.
func NewIntake(provider Provider, candidates *service.Service, logger *slog.Logger) *Intake {
	if logger == nil {
		logger = slog.Default()
	}
	return &Intake{provider: provider, candidates: candidates, logger: logger}
}

const sourceChannelSourcing = "sourcing_import"

// Import searches the provider and creates one candidate per preview. A
// preview that fails validation is skipped with a warning; the rest of the
// batch proceeds. Returns the number of candidates created.
func (i *Intake) Import(ctx context.Context, jobDescription string) (int, error) {
	previews, err := i.provider.SearchByJobDescription(ctx, jobDescription)
	if err != nil {
		return 0, fmt.Errorf("sourcing search: %w", err)
	}

	created := 0
	for _, preview := range previews {
		_, err := i.candidates.Create(ctx, service.CreateParams{
			FullName:      preview.DisplayName(),
			DateOfBirth:   preview.DateOfBirth,
			State:         preview.State,
			SourceChannel: sourceChannelSourcing,
		})
		if err != nil {
			i.logger.Warn("skipping sourced preview",
				slog.String("full_name", preview.FullName),
				slog.String("error", err.Error()))
			continue
		}
		created++
	}

	i.logger.Info("sourcing import finished",
		slog.Int("previews", len(previews)),
		slog.Int("created", created))
	return created, nil
}
