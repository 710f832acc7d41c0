package fullview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"vetgate/internal/verification/models"
	checkregistry "vetgate/internal/verification/registry"
)

type FullviewSuite struct {
	suite.Suite

	builder *Builder
	static  *checkregistry.Registry
}

func TestFullviewSuite(t *testing.T) {
	suite.Run(t, new(FullviewSuite))
}

func (s *FullviewSuite) SetupSuite() {
	static, err := checkregistry.Load()
	s.Require().NoError(err)
	s.static = static
	s.builder = New(static)
}

func (s *FullviewSuite) rowFor(view models.FullComplianceView, t models.CheckType) models.FullComplianceCheck {
	for _, row := range view.Checks {
		if row.CheckType == t {
			return row
		}
	}
	s.Require().Failf("row not found", "check %q missing from view", t)
	return models.FullComplianceCheck{}
}

func (s *FullviewSuite) TestBuild_EmptyState_AllDeclaredChecks() {
	view := s.builder.Build(models.ComplianceState{})

	s.Equal(s.static.Size(), view.Total)
	s.Len(view.Checks, s.static.Size())
	s.Equal(0, view.Live)
	s.True(view.LastRunAt.IsZero())

	// Registry-only rows keep their declared lifecycle and are not executable.
	row := s.rowFor(view, models.CheckStateLicense)
	s.Equal(models.StageWaitingIntegration, row.Stage)
	s.Equal(models.ResultPending, row.Result)
	s.False(row.Executable)
	s.NotEmpty(row.ETA)
}

func (s *FullviewSuite) TestBuild_RegistryOrderPreserved() {
	view := s.builder.Build(models.ComplianceState{})

	entries := s.static.Entries()
	for i, row := range view.Checks {
		s.Equal(entries[i].Type, row.CheckType)
		s.Equal(entries[i].Label, row.Label)
	}
}

func (s *FullviewSuite) TestBuild_LiveResultClassification() {
	ranAt := time.Now().UTC()
	state := models.ComplianceState{
		Checks: []models.VerificationCheckResult{
			{CheckType: models.CheckFederalExclusions, Status: models.StatusClear},
			{CheckType: models.CheckSanctions, Status: models.StatusFlagged},
			{CheckType: models.CheckDebarment, Status: models.StatusError},
			{CheckType: models.CheckGovAPIExclusions, Status: models.StatusPending,
				Summary: "registry API key not configured; check pending integration"},
		},
		LastRunAt: ranAt,
	}

	view := s.builder.Build(state)

	s.Equal(4, view.Live)
	s.Equal(ranAt, view.LastRunAt)
	s.Len(view.Checks, s.static.Size(), "length invariant: one row per declared check")

	s.Run("clear becomes completed pass", func() {
		row := s.rowFor(view, models.CheckFederalExclusions)
		s.Equal(models.StageCompleted, row.Stage)
		s.Equal(models.ResultPass, row.Result)
		s.True(row.Executable)
	})
	s.Run("flagged becomes completed flag", func() {
		row := s.rowFor(view, models.CheckSanctions)
		s.Equal(models.StageCompleted, row.Stage)
		s.Equal(models.ResultFlag, row.Result)
		s.True(row.Executable)
	})
	s.Run("error becomes blocked", func() {
		row := s.rowFor(view, models.CheckDebarment)
		s.Equal(models.StageBlocked, row.Stage)
		s.Equal(models.ResultBlocked, row.Result)
	})
	s.Run("unconfigured pending waits on integration", func() {
		row := s.rowFor(view, models.CheckGovAPIExclusions)
		s.Equal(models.StageWaitingIntegration, row.Stage)
		s.Equal(models.ResultPending, row.Result)
		s.False(row.Executable)
	})
}

func (s *FullviewSuite) TestBuild_InFlightPendingShowsRunning() {
	state := models.ComplianceState{
		Checks: []models.VerificationCheckResult{
			{CheckType: models.CheckFederalExclusions, Status: models.StatusPending, Summary: "queued"},
		},
	}

	view := s.builder.Build(state)

	row := s.rowFor(view, models.CheckFederalExclusions)
	s.Equal(models.StageRunning, row.Stage)
	s.Equal(models.ResultPending, row.Result)
	s.True(row.Executable)
}

func (s *FullviewSuite) TestBuild_ExecutableRowsDropETA() {
	state := models.ComplianceState{
		Checks: []models.VerificationCheckResult{
			{CheckType: models.CheckFederalExclusions, Status: models.StatusClear},
		},
	}

	view := s.builder.Build(state)

	s.Empty(s.rowFor(view, models.CheckFederalExclusions).ETA)
}
