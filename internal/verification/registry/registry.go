// Package registry loads the declarative table of every check the product
// supports. The table is versioned configuration data, embedded at build time,
// so the full compliance view and the orchestrator share one source of truth.
package registry

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"vetgate/internal/verification/models"
)

//go:embed checks.yaml
var checksYAML []byte

// Entry is one declared check: its identity, display label, rollout tier, and
// lifecycle stage for checks that cannot run yet.
type Entry struct {
	Type  models.CheckType      `yaml:"type"`
	Label string                `yaml:"label"`
	Tier  int                   `yaml:"tier"`
	Stage models.LifecycleStage `yaml:"stage"`
	ETA   string                `yaml:"eta"`
}

type checksFile struct {
	Checks []Entry `yaml:"checks"`
}

// Registry is the loaded, validated static check table.
type Registry struct {
	entries []Entry
	byType  map[models.CheckType]Entry
}

var validStages = map[models.LifecycleStage]bool{
	models.StageReadyNow:              true,
	models.StageWaitingIntegration:    true,
	models.StageWaitingPartnership:    true,
	models.StageWaitingManualResponse: true,
}

// Load parses and validates the embedded check table. Duplicate types, unknown
// stages, or tier-1 entries that are not READY_NOW fail loudly so a bad config
// never reaches serving.
func Load() (*Registry, error) {
	return parse(checksYAML)
}

func parse(raw []byte) (*Registry, error) {
	var file checksFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse check registry: %w", err)
	}
	if len(file.Checks) == 0 {
		return nil, fmt.Errorf("check registry is empty")
	}

	byType := make(map[models.CheckType]Entry, len(file.Checks))
	for _, entry := range file.Checks {
		if entry.Type == "" {
			return nil, fmt.Errorf("check registry entry missing type")
		}
		if entry.Label == "" {
			return nil, fmt.Errorf("check %q missing label", entry.Type)
		}
		if _, dup := byType[entry.Type]; dup {
			return nil, fmt.Errorf("check %q declared twice", entry.Type)
		}
		if !validStages[entry.Stage] {
			return nil, fmt.Errorf("check %q has unknown stage %q", entry.Type, entry.Stage)
		}
		if entry.Tier == 1 && entry.Stage != models.StageReadyNow {
			return nil, fmt.Errorf("tier-1 check %q must be READY_NOW, got %q", entry.Type, entry.Stage)
		}
		if entry.Tier < 1 || entry.Tier > 3 {
			return nil, fmt.Errorf("check %q has invalid tier %d", entry.Type, entry.Tier)
		}
		byType[entry.Type] = entry
	}

	return &Registry{entries: file.Checks, byType: byType}, nil
}

// Entries returns all declared checks in registry order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Tier1Order returns the canonical ordered list of automated check types. The
// order is significant: verification output must always preserve it.
func (r *Registry) Tier1Order() []models.CheckType {
	var order []models.CheckType
	for _, entry := range r.entries {
		if entry.Tier == 1 {
			order = append(order, entry.Type)
		}
	}
	return order
}

// Lookup returns the declared entry for a check type.
func (r *Registry) Lookup(t models.CheckType) (Entry, bool) {
	entry, ok := r.byType[t]
	return entry, ok
}

// LabelFor returns the display label for a check type, falling back to the
// raw type for unknown checks (which should not occur after validation).
func (r *Registry) LabelFor(t models.CheckType) string {
	if entry, ok := r.byType[t]; ok {
		return entry.Label
	}
	return string(t)
}

// Size is the number of declared checks. The full compliance view always has
// exactly this many rows.
func (r *Registry) Size() int {
	return len(r.entries)
}
