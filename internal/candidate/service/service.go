// Package service owns candidate intake and reads.
package service

import (
	"context"
	"errors"
	"log/slog"

	"vetgate/internal/audit"
	"vetgate/internal/candidate/models"
	"vetgate/internal/candidate/store"
	"vetgate/internal/platform/metrics"
	vmodels "vetgate/internal/verification/models"
	id "vetgate/pkg/domain"
	dErrors "vetgate/pkg/domain-errors"
	"vetgate/pkg/platform/sentinel"
)

// ComplianceInitializer supplies the all-PENDING snapshot new candidates
// start with. The canonical check list belongs to the verification slice.
type ComplianceInitializer interface {
	InitialState() vmodels.ComplianceState
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// CreateParams carries validated-enough intake input; the candidate
// constructor enforces the actual invariants.
type CreateParams struct {
	FullName      string
	DateOfBirth   string
	State         string
	LicenseNumber string
	DEANumber     string
	SourceChannel string
}

// Service orchestrates candidate intake and lookup.
type Service struct {
	store          store.Store
	compliance     ComplianceInitializer
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
func New(candidates store.Store, compliance ComplianceInitializer, opts ...Option) *Service {
	s := &Service{
		store:      candidates,
		compliance: compliance,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create registers a new candidate with an all-PENDING compliance state.
func (s *Service) Create(ctx context.Context, params CreateParams) (*models.Candidate, error) {
	candidate, err := models.NewCandidate(id.NewCandidateID(), params.FullName, params.DateOfBirth)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, dErrors.MessageOf(err))
		}
		return nil, err
	}
	candidate.State = params.State
	candidate.LicenseNumber = params.LicenseNumber
	candidate.DEANumber = params.DEANumber
	candidate.SourceChannel = params.SourceChannel
	candidate.Compliance = s.compliance.InitialState()

	if err := s.store.Create(ctx, candidate); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create candidate")
	}

	s.logAudit(ctx, candidate)
	if s.metrics != nil {
		s.metrics.IncrementCandidatesCreated()
	}
	return candidate, nil
}

// Get fetches one candidate.
func (s *Service) Get(ctx context.Context, candidateID id.CandidateID) (*models.Candidate, error) {
	candidate, err := s.store.FindByID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "candidate not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load candidate")
	}
	return candidate, nil
}

// List returns all candidates, newest first.
func (s *Service) List(ctx context.Context) ([]*models.Candidate, error) {
	candidates, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list candidates")
	}
	return candidates, nil
}

func (s *Service) logAudit(ctx context.Context, candidate *models.Candidate) {
	if s.auditPublisher == nil {
		return
	}
	err := s.auditPublisher.Emit(ctx, audit.Event{
		Type:        audit.EventCandidateCreated,
		CandidateID: candidate.ID,
		Payload: map[string]string{
			"full_name":      candidate.FullName,
			"source_channel": candidate.SourceChannel,
		},
	})
	if err != nil {
		s.logger.Warn("failed to emit audit event", "event_type", audit.EventCandidateCreated, "error", err)
	}
}
