// Package providers defines the uniform contract every verification source
// implements, and the closed registry the orchestrator resolves them from.
package providers

import (
	"context"
	"fmt"

	cmodels "vetgate/internal/candidate/models"
	"vetgate/internal/verification/models"
	checkregistry "vetgate/internal/verification/registry"
)

// Provider is the universal interface all verification sources implement.
//
// Contract:
//   - Expected conditions (missing credentials, unreachable dependency) are
//     reported as a normal result with status PENDING or ERROR, never as a
//     returned error. The error return is reserved for programmer mistakes;
//     the orchestrator converts it to a per-check ERROR result.
//   - Run must be safe to call concurrently for different candidates; no
//     shared mutable state beyond read-only configuration and reference data.
//   - Each result records the wall-clock latency of the attempt.
//   - FLAGGED means "plausible match, needs human review". Flags are advisory
//     and never escalate to a hard rejection.
type Provider interface {
	// Type returns the single check type this provider services.
	Type() models.CheckType

	// Run performs the check for one candidate.
	Run(ctx context.Context, candidate *cmodels.Candidate) (models.VerificationCheckResult, error)
}

// Registry maps check types to their registered provider. The type set is
// closed: registering a provider for a check the static registry does not
// declare fails at startup rather than being silently skipped.
type Registry struct {
	static    *checkregistry.Registry
	providers map[models.CheckType]Provider
}

// NewRegistry creates an empty provider registry bound to the static check
// table.
func NewRegistry(static *checkregistry.Registry) *Registry {
	return &Registry{
		static:    static,
		providers: make(map[models.CheckType]Provider),
	}
}

// Register adds a provider. It rejects unknown check types and duplicate
// registrations so rollout mistakes surface at startup.
func (r *Registry) Register(p Provider) error {
	t := p.Type()
	if _, declared := r.static.Lookup(t); !declared {
		return fmt.Errorf("provider for undeclared check type %q", t)
	}
	if _, exists := r.providers[t]; exists {
		return fmt.Errorf("provider for %q already registered", t)
	}
	r.providers[t] = p
	return nil
}

// Get retrieves the provider for a check type, if one is registered.
func (r *Registry) Get(t models.CheckType) (Provider, bool) {
	p, ok := r.providers[t]
	return p, ok
}

// Registered reports how many checks currently have a live provider.
func (r *Registry) Registered() int {
	return len(r.providers)
}
