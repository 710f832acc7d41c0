// Package service owns the verification run as one logical unit: load the
// candidate, fan out the checks, replace the compliance snapshot wholesale,
// save. Both the synchronous endpoint and the queue workers go through here so
// the two paths cannot drift.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"vetgate/internal/audit"
	cmodels "vetgate/internal/candidate/models"
	"vetgate/internal/platform/metrics"
	"vetgate/internal/verification/aggregate"
	"vetgate/internal/verification/fullview"
	"vetgate/internal/verification/models"
	"vetgate/internal/verification/orchestrator"
	checkregistry "vetgate/internal/verification/registry"
	id "vetgate/pkg/domain"
	dErrors "vetgate/pkg/domain-errors"
	"vetgate/pkg/platform/sentinel"
)

type CandidateStore interface {
	FindByID(ctx context.Context, candidateID id.CandidateID) (*cmodels.Candidate, error)
	Update(ctx context.Context, candidate *cmodels.Candidate) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service runs verification and builds compliance views.
type Service struct {
	candidates     CandidateStore
	orchestrator   *orchestrator.Orchestrator
	static         *checkregistry.Registry
	views          *fullview.Builder
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service.
func New(candidates CandidateStore, orch *orchestrator.Orchestrator, static *checkregistry.Registry, opts ...Option) *Service {
	s := &Service{
		candidates:   candidates,
		orchestrator: orch,
		static:       static,
		views:        fullview.New(static),
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InitialState is the all-PENDING snapshot a candidate starts with: one
// placeholder result per automated check, in canonical order.
func (s *Service) InitialState() models.ComplianceState {
	order := s.static.Tier1Order()
	checks := make([]models.VerificationCheckResult, len(order))
	now := time.Now().UTC()
	for i, checkType := range order {
		checks[i] = models.VerificationCheckResult{
			CheckType: checkType,
			Source:    s.static.LabelFor(checkType),
			Status:    models.StatusPending,
			Summary:   "not yet run",
			CheckedAt: now,
		}
	}
	return models.ComplianceState{
		Checks:       checks,
		TrafficLight: aggregate.TrafficLightFor(checks),
		Progress:     aggregate.Progress(checks),
	}
}

// Run executes all automated checks for the candidate and replaces its
// compliance state wholesale. Overlapping runs for the same candidate are
// last-write-wins.
func (s *Service) Run(ctx context.Context, candidateID id.CandidateID) (*cmodels.Candidate, error) {
	candidate, err := s.candidates.FindByID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "candidate not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load candidate")
	}

	result := s.orchestrator.RunTier1(ctx, candidate)

	candidate.Compliance = models.ComplianceState{
		Checks:       result.Checks,
		TrafficLight: result.TrafficLight,
		Progress:     result.Progress,
		LastRunAt:    result.CompletedAt,
	}
	candidate.UpdatedAt = result.CompletedAt

	if err := s.candidates.Update(ctx, candidate); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "candidate not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save verification results")
	}

	s.observeRun(result)
	s.logAudit(ctx, audit.EventRunCompleted, candidateID, map[string]string{
		"traffic_light": string(result.TrafficLight),
		"progress":      result.Progress,
		"duration_ms":   strconv.FormatInt(result.DurationMS, 10),
	})

	return candidate, nil
}

// FullView builds the complete compliance picture for a candidate, declared
// checks included.
func (s *Service) FullView(ctx context.Context, candidateID id.CandidateID) (models.FullComplianceView, error) {
	candidate, err := s.candidates.FindByID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.FullComplianceView{}, dErrors.New(dErrors.CodeNotFound, "candidate not found")
		}
		return models.FullComplianceView{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load candidate")
	}
	return s.views.Build(candidate.Compliance), nil
}

func (s *Service) observeRun(result orchestrator.RunResult) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveRun(string(result.TrafficLight), time.Duration(result.DurationMS)*time.Millisecond)
	for _, check := range result.Checks {
		s.metrics.ObserveCheck(string(check.CheckType), string(check.Status),
			time.Duration(check.LatencyMS)*time.Millisecond)
	}
}

func (s *Service) logAudit(ctx context.Context, eventType audit.EventType, candidateID id.CandidateID, payload map[string]string) {
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, audit.Event{
		Type:        eventType,
		CandidateID: candidateID,
		Payload:     payload,
	}); err != nil {
		s.logger.Warn("failed to emit audit event", "event_type", eventType, "error", err)
	}
}
