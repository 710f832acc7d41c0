// Package orchestrator fans one candidate out across every automated check and
// fans the results back in. One degraded or slow source must never sink the
// whole run: each check lands in its own result slot, failures included, and
// the output order is always the canonical registry order regardless of which
// goroutine finished first.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	cmodels "vetgate/internal/candidate/models"
	"vetgate/internal/verification/aggregate"
	"vetgate/internal/verification/models"
	"vetgate/internal/verification/providers"
	checkregistry "vetgate/internal/verification/registry"
)

// RunResult is the outcome of one complete tier-1 pass for a candidate.
type RunResult struct {
	Checks       []models.VerificationCheckResult
	Progress     string
	TrafficLight models.TrafficLight
	CompletedAt  time.Time
	DurationMS   int64
}

// Orchestrator runs all automated checks for a candidate concurrently.
type Orchestrator struct {
	static    *checkregistry.Registry
	providers *providers.Registry
	logger    *slog.Logger
}

type Option func(*Orchestrator)

func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

func New(static *checkregistry.Registry, provs *providers.Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		static:    static,
		providers: provs,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RunTier1 executes every tier-1 check for the candidate. Checks run
// concurrently; the returned slice preserves the canonical registry order. A
// check with no registered provider, a provider error, or a provider panic
// all become per-check ERROR results rather than failing the run.
func (o *Orchestrator) RunTier1(ctx context.Context, candidate *cmodels.Candidate) RunResult {
	order := o.static.Tier1Order()
	checks := make([]models.VerificationCheckResult, len(order))
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	for i, checkType := range order {
		provider, ok := o.providers.Get(checkType)
		if !ok {
			checks[i] = models.VerificationCheckResult{
				CheckType:   checkType,
				Source:      "orchestrator",
				Status:      models.StatusError,
				Summary:     "no provider registered",
				CheckedAt:   time.Now().UTC(),
				ErrorDetail: fmt.Sprintf("check %q has no registered provider", checkType),
			}
			continue
		}

		// Each goroutine owns exactly one slot, so no locking is needed.
		g.Go(func() error {
			checks[i] = o.runOne(gctx, provider, checkType, candidate)
			return nil
		})
	}

	// Goroutines never return errors; Wait is purely a join point.
	_ = g.Wait()

	completedAt := time.Now().UTC()
	result := RunResult{
		Checks:       checks,
		Progress:     aggregate.Progress(checks),
		TrafficLight: aggregate.TrafficLightFor(checks),
		CompletedAt:  completedAt,
		DurationMS:   time.Since(start).Milliseconds(),
	}

	o.logger.Info("tier-1 verification run completed",
		"candidate_id", candidate.ID,
		"checks", len(checks),
		"progress", result.Progress,
		"traffic_light", result.TrafficLight,
		"duration_ms", result.DurationMS,
	)
	return result
}

func (o *Orchestrator) runOne(
	ctx context.Context,
	provider providers.Provider,
	checkType models.CheckType,
	candidate *cmodels.Candidate,
) (result models.VerificationCheckResult) {
	// Failure results carry zero latency: no meaningful provider round trip
	// happened, and a partial elapsed time would skew the latency histogram.
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("verification provider panicked",
				"check_type", checkType,
				"candidate_id", candidate.ID,
				"panic", r,
			)
			result = models.VerificationCheckResult{
				CheckType:   checkType,
				Source:      "orchestrator",
				Status:      models.StatusError,
				Summary:     "check failed unexpectedly",
				CheckedAt:   time.Now().UTC(),
				ErrorDetail: fmt.Sprintf("panic: %v", r),
			}
		}
	}()

	res, err := provider.Run(ctx, candidate)
	if err != nil {
		o.logger.Error("verification provider returned error",
			"check_type", checkType,
			"candidate_id", candidate.ID,
			"error", err,
		)
		return models.VerificationCheckResult{
			CheckType:   checkType,
			Source:      "orchestrator",
			Status:      models.StatusError,
			Summary:     "check failed",
			CheckedAt:   time.Now().UTC(),
			ErrorDetail: err.Error(),
		}
	}
	// Providers choose their own type constant; enforce slot consistency.
	res.CheckType = checkType
	return res
}
