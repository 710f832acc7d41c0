// Package models holds the verification domain types shared by providers, the
// orchestrator, and the read-side views.
package models

import "time"

// CheckType identifies one verification source. The set is closed per rollout
// tier; adding a type requires a provider (or declarative registry entry) and
// a display template.
type CheckType string

// Tier-1 checks have automated providers registered today.
const (
	CheckFederalExclusions CheckType = "federal_exclusions"
	CheckSanctions         CheckType = "sanctions"
	CheckDebarment         CheckType = "debarment"
	CheckGovAPIExclusions  CheckType = "gov_api_exclusions"
)

// Declared checks without a live provider yet. They appear in the full
// compliance view with their rollout lifecycle but are never executed.
const (
	CheckStateLicense           CheckType = "state_license"
	CheckDEARegistration        CheckType = "dea_registration"
	CheckNPDB                   CheckType = "npdb"
	CheckABMSCertification      CheckType = "abms_certification"
	CheckIdentityVerification   CheckType = "identity_verification"
	CheckGlobalWatchlist        CheckType = "global_watchlist"
	CheckMediaScreen            CheckType = "media_screen"
	CheckCriminalRecords        CheckType = "criminal_records"
	CheckEducationVerification  CheckType = "education_verification"
	CheckEmploymentVerification CheckType = "employment_verification"
	CheckReferenceCheck         CheckType = "reference_check"
)

// CheckStatus is the outcome of one check attempt.
type CheckStatus string

const (
	StatusPending CheckStatus = "PENDING"
	StatusClear   CheckStatus = "CLEAR"
	StatusFlagged CheckStatus = "FLAGGED"
	StatusError   CheckStatus = "ERROR"
)

// Completed reports whether the status represents a finished attempt. PENDING
// means the check has not run (or cannot run yet); everything else counts
// toward progress.
func (s CheckStatus) Completed() bool {
	return s != StatusPending
}

// TrafficLight is the three-level aggregate compliance signal.
type TrafficLight string

const (
	LightGreen  TrafficLight = "GREEN"
	LightYellow TrafficLight = "YELLOW"
	LightRed    TrafficLight = "RED"
)

// MatchedRecord is an opaque key/value bag describing one record a provider
// matched against the candidate. Contents are provider-specific.
type MatchedRecord map[string]string

// VerificationCheckResult is the immutable outcome of running one check for
// one candidate at one point in time. A new run produces a new result; prior
// results are never mutated in place.
type VerificationCheckResult struct {
	CheckType   CheckType       `json:"check_type"`
	Source      string          `json:"source"`
	Status      CheckStatus     `json:"status"`
	Summary     string          `json:"summary"`
	Confidence  float64         `json:"confidence"`
	Matches     []MatchedRecord `json:"matches,omitempty"`
	CheckedAt   time.Time       `json:"checked_at"`
	LatencyMS   int64           `json:"latency_ms"`
	ErrorDetail string          `json:"error_detail,omitempty"`
}

// ComplianceState is a candidate's current verification snapshot. It is
// replaced wholesale on each run; there is no partial merge across runs.
type ComplianceState struct {
	Checks       []VerificationCheckResult `json:"checks"`
	TrafficLight TrafficLight              `json:"traffic_light"`
	Progress     string                    `json:"progress"`
	LastRunAt    time.Time                 `json:"last_run_at"`
}

// LifecycleStage describes where a declared check sits in the rollout.
type LifecycleStage string

const (
	StageReadyNow              LifecycleStage = "READY_NOW"
	StageRunning               LifecycleStage = "RUNNING"
	StageCompleted             LifecycleStage = "COMPLETED"
	StageWaitingIntegration    LifecycleStage = "WAITING_INTEGRATION"
	StageWaitingPartnership    LifecycleStage = "WAITING_PARTNERSHIP"
	StageWaitingManualResponse LifecycleStage = "WAITING_MANUAL_RESPONSE"
	StageBlocked               LifecycleStage = "BLOCKED"
)

// CoarseResult is the four-value display outcome of the full compliance view.
type CoarseResult string

const (
	ResultPass    CoarseResult = "PASS"
	ResultFlag    CoarseResult = "FLAG"
	ResultPending CoarseResult = "PENDING"
	ResultBlocked CoarseResult = "BLOCKED"
)

// FullComplianceCheck is one row of the full compliance view: a declared check
// merged with its live result, if any.
type FullComplianceCheck struct {
	CheckType  CheckType      `json:"check_type"`
	Label      string         `json:"label"`
	Stage      LifecycleStage `json:"stage"`
	Result     CoarseResult   `json:"result"`
	ETA        string         `json:"eta,omitempty"`
	Executable bool           `json:"executable"`
}

// FullComplianceView joins live results with every check the product declares,
// including ones with no provider yet. Computed on demand, never persisted.
type FullComplianceView struct {
	Checks    []FullComplianceCheck `json:"checks"`
	Total     int                   `json:"total"`
	Live      int                   `json:"live"`
	BuiltAt   time.Time             `json:"built_at"`
	LastRunAt time.Time             `json:"last_run_at,omitempty"`
}
