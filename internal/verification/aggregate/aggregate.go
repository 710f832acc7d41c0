// Package aggregate computes the overall trust signal from a batch of check
// results. Pure functions, order-independent over status values: compliance
// status must never silently average away a single serious hit, so precedence
// is strict (RED > YELLOW > GREEN) with no numeric blending.
package aggregate

import (
	"fmt"

	"vetgate/internal/verification/models"
)

// Progress formats the completed/total counter. A check counts as completed
// whenever its status is anything but PENDING.
func Progress(checks []models.VerificationCheckResult) string {
	completed := 0
	for _, check := range checks {
		if check.Status.Completed() {
			completed++
		}
	}
	return fmt.Sprintf("%d/%d", completed, len(checks))
}

// TrafficLightFor reduces heterogeneous check statuses to the three-level
// signal:
//
//	RED    — any check FLAGGED; a single flag dominates everything else
//	YELLOW — else any check PENDING or ERROR; incomplete or failed checks
//	         prevent a clean bill of health but are not disqualifying
//	GREEN  — all checks completed and clear
func TrafficLightFor(checks []models.VerificationCheckResult) models.TrafficLight {
	light := models.LightGreen
	for _, check := range checks {
		switch check.Status {
		case models.StatusFlagged:
			return models.LightRed
		case models.StatusPending, models.StatusError:
			light = models.LightYellow
		}
	}
	return light
}
