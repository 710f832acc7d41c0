package orchestrator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	cmodels "vetgate/internal/candidate/models"
	"vetgate/internal/verification/models"
	"vetgate/internal/verification/providers"
	checkregistry "vetgate/internal/verification/registry"
	id "vetgate/pkg/domain"
)

// stubProvider returns a canned result, or fails in a configurable way.
type stubProvider struct {
	checkType  models.CheckType
	resultType models.CheckType // reported in the result when set; simulates a buggy provider
	status     models.CheckStatus
	err        error
	panicMsg   string
	delay      time.Duration
}

func (p *stubProvider) Type() models.CheckType { return p.checkType }

func (p *stubProvider) Run(_ context.Context, _ *cmodels.Candidate) (models.VerificationCheckResult, error) {
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	if p.panicMsg != "" {
		panic(p.panicMsg)
	}
	if p.err != nil {
		return models.VerificationCheckResult{}, p.err
	}
	reported := p.checkType
	if p.resultType != "" {
		reported = p.resultType
	}
	return models.VerificationCheckResult{
		CheckType: reported,
		Source:    "stub",
		Status:    p.status,
		Summary:   "stubbed",
		CheckedAt: time.Now().UTC(),
	}, nil
}

type OrchestratorSuite struct {
	suite.Suite

	static    *checkregistry.Registry
	candidate *cmodels.Candidate
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorSuite))
}

func (s *OrchestratorSuite) SetupTest() {
	static, err := checkregistry.Load()
	s.Require().NoError(err)
	s.static = static

	candidate, err := cmodels.NewCandidate(id.NewCandidateID(), "Test Person", "1990-01-01")
	s.Require().NoError(err)
	s.candidate = candidate
}

func (s *OrchestratorSuite) newOrchestrator(provs ...providers.Provider) *Orchestrator {
	registry := providers.NewRegistry(s.static)
	for _, p := range provs {
		s.Require().NoError(registry.Register(p))
	}
	return New(s.static, registry, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

// allTier1Stubs registers a clear stub for every tier-1 check.
func (s *OrchestratorSuite) allTier1Stubs() []providers.Provider {
	var provs []providers.Provider
	for _, t := range s.static.Tier1Order() {
		provs = append(provs, &stubProvider{checkType: t, status: models.StatusClear})
	}
	return provs
}

// ============================================================
// RunTier1
// ============================================================

func (s *OrchestratorSuite) TestRunTier1_AllClear() {
	orch := s.newOrchestrator(s.allTier1Stubs()...)

	result := orch.RunTier1(context.Background(), s.candidate)

	order := s.static.Tier1Order()
	s.Require().Len(result.Checks, len(order))
	for i, check := range result.Checks {
		s.Equal(order[i], check.CheckType, "canonical order must be preserved")
		s.Equal(models.StatusClear, check.Status)
	}
	s.Equal(models.LightGreen, result.TrafficLight)
	s.Equal("4/4", result.Progress)
	s.False(result.CompletedAt.IsZero())
}

func (s *OrchestratorSuite) TestRunTier1_CanonicalOrderDespiteCompletionOrder() {
	// The first check in canonical order finishes last.
	order := s.static.Tier1Order()
	var provs []providers.Provider
	for i, t := range order {
		delay := time.Duration(0)
		if i == 0 {
			delay = 30 * time.Millisecond
		}
		provs = append(provs, &stubProvider{checkType: t, status: models.StatusClear, delay: delay})
	}
	orch := s.newOrchestrator(provs...)

	result := orch.RunTier1(context.Background(), s.candidate)

	for i, check := range result.Checks {
		s.Equal(order[i], check.CheckType)
	}
}

func (s *OrchestratorSuite) TestRunTier1_NoProviders_AllErrorYellow() {
	orch := s.newOrchestrator()

	result := orch.RunTier1(context.Background(), s.candidate)

	s.Require().Len(result.Checks, len(s.static.Tier1Order()))
	for _, check := range result.Checks {
		s.Equal(models.StatusError, check.Status)
		s.Equal("no provider registered", check.Summary)
	}
	s.Equal(models.LightYellow, result.TrafficLight)
	s.Equal("4/4", result.Progress)
}

func (s *OrchestratorSuite) TestRunTier1_OneFlagged_Red() {
	order := s.static.Tier1Order()
	var provs []providers.Provider
	for i, t := range order {
		status := models.StatusClear
		if i == 1 {
			status = models.StatusFlagged
		}
		provs = append(provs, &stubProvider{checkType: t, status: status})
	}
	orch := s.newOrchestrator(provs...)

	result := orch.RunTier1(context.Background(), s.candidate)

	s.Equal(models.LightRed, result.TrafficLight)
	s.Equal(models.StatusFlagged, result.Checks[1].Status)
}

func (s *OrchestratorSuite) TestRunTier1_ProviderError_ContainedToSlot() {
	order := s.static.Tier1Order()
	var provs []providers.Provider
	for i, t := range order {
		p := &stubProvider{checkType: t, status: models.StatusClear}
		if i == 2 {
			p.err = errors.New("wiring bug")
		}
		provs = append(provs, p)
	}
	orch := s.newOrchestrator(provs...)

	result := orch.RunTier1(context.Background(), s.candidate)

	s.Equal(models.StatusError, result.Checks[2].Status)
	s.Contains(result.Checks[2].ErrorDetail, "wiring bug")
	s.Zero(result.Checks[2].LatencyMS, "failure results carry no latency")
	for i, check := range result.Checks {
		if i == 2 {
			continue
		}
		s.Equal(models.StatusClear, check.Status, "other checks must be unaffected")
	}
	s.Equal(models.LightYellow, result.TrafficLight)
}

func (s *OrchestratorSuite) TestRunTier1_ProviderPanic_ContainedToSlot() {
	order := s.static.Tier1Order()
	var provs []providers.Provider
	for i, t := range order {
		p := &stubProvider{checkType: t, status: models.StatusClear}
		if i == 0 {
			p.panicMsg = "nil map write"
		}
		provs = append(provs, p)
	}
	orch := s.newOrchestrator(provs...)

	result := orch.RunTier1(context.Background(), s.candidate)

	s.Equal(models.StatusError, result.Checks[0].Status)
	s.Contains(result.Checks[0].ErrorDetail, "nil map write")
	s.Zero(result.Checks[0].LatencyMS, "failure results carry no latency")
	s.Equal(models.LightYellow, result.TrafficLight)
}

func (s *OrchestratorSuite) TestRunTier1_DurationReflectsSlowestProvider() {
	order := s.static.Tier1Order()
	var provs []providers.Provider
	for i, t := range order {
		delay := time.Duration(0)
		if i == len(order)-1 {
			delay = 50 * time.Millisecond
		}
		provs = append(provs, &stubProvider{checkType: t, status: models.StatusClear, delay: delay})
	}
	orch := s.newOrchestrator(provs...)

	result := orch.RunTier1(context.Background(), s.candidate)

	s.GreaterOrEqual(result.DurationMS, int64(50))
}

func (s *OrchestratorSuite) TestRunTier1_CheckTypeForcedToSlot() {
	// A misbehaving provider reporting the wrong type cannot corrupt the slot.
	order := s.static.Tier1Order()
	provs := s.allTier1Stubs()
	provs[0].(*stubProvider).resultType = models.CheckSanctions
	orch := s.newOrchestrator(provs...)

	result := orch.RunTier1(context.Background(), s.candidate)

	for i, check := range result.Checks {
		s.Equal(order[i], check.CheckType)
	}
}
