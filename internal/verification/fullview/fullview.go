// Package fullview builds the complete compliance picture: every check the
// product declares, merged with whatever live results the last verification
// run produced. The view is computed on demand from the static registry plus
// the candidate's stored state and is never persisted.
package fullview

import (
	"strings"
	"time"

	"vetgate/internal/verification/models"
	checkregistry "vetgate/internal/verification/registry"
)

// Builder merges the static check table with live run results.
type Builder struct {
	static *checkregistry.Registry
}

func New(static *checkregistry.Registry) *Builder {
	return &Builder{static: static}
}

// Build produces one row per declared check, in registry order. The row count
// always equals the registry size regardless of how many checks have run.
func (b *Builder) Build(state models.ComplianceState) models.FullComplianceView {
	live := make(map[models.CheckType]models.VerificationCheckResult, len(state.Checks))
	for _, check := range state.Checks {
		live[check.CheckType] = check
	}

	entries := b.static.Entries()
	checks := make([]models.FullComplianceCheck, 0, len(entries))
	liveCount := 0
	for _, entry := range entries {
		row := models.FullComplianceCheck{
			CheckType: entry.Type,
			Label:     entry.Label,
			Stage:     entry.Stage,
			Result:    models.ResultPending,
			ETA:       entry.ETA,
		}
		if result, ok := live[entry.Type]; ok {
			liveCount++
			row.Stage, row.Result, row.Executable = classify(result)
			if row.Executable {
				row.ETA = ""
			}
		}
		checks = append(checks, row)
	}

	return models.FullComplianceView{
		Checks:    checks,
		Total:     len(checks),
		Live:      liveCount,
		BuiltAt:   time.Now().UTC(),
		LastRunAt: state.LastRunAt,
	}
}

// classify maps one live result onto the display lifecycle and coarse outcome.
// A PENDING result whose summary says the source is not configured means the
// check exists in code but cannot execute in this deployment; it is shown as
// waiting on integration rather than as an in-flight run.
func classify(result models.VerificationCheckResult) (models.LifecycleStage, models.CoarseResult, bool) {
	switch result.Status {
	case models.StatusClear:
		return models.StageCompleted, models.ResultPass, true
	case models.StatusFlagged:
		return models.StageCompleted, models.ResultFlag, true
	case models.StatusError:
		return models.StageBlocked, models.ResultBlocked, true
	case models.StatusPending:
		if strings.Contains(result.Summary, "not configured") {
			return models.StageWaitingIntegration, models.ResultPending, false
		}
		return models.StageRunning, models.ResultPending, true
	default:
		return models.StageBlocked, models.ResultBlocked, true
	}
}
