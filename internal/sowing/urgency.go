package sowing

import "github.com/alexanderramin/furrow/internal/domain"

// Days-of-supply thresholds. Product constants, not derived.
const (
	CriticalBelowDays = 3.0
	WarningBelowDays  = 7.0

	DefaultTargetDays = 7.0

	// DisplayCapDays bounds the presented days of supply; decisions use the true ratio.
	DisplayCapDays = 99
)

// ClassifyUrgency maps true days of supply to an urgency tier.
func ClassifyUrgency(daysOfSupply float64) domain.Urgency {
	switch {
	case daysOfSupply < CriticalBelowDays:
		return domain.UrgencyCritical
	case daysOfSupply < WarningBelowDays:
		return domain.UrgencyWarning
	default:
		return domain.UrgencyHealthy
	}
}

// UrgencyPriority returns a sort priority (lower = more urgent).
func UrgencyPriority(u domain.Urgency) int {
	switch u {
	case domain.UrgencyCritical:
		return 0
	case domain.UrgencyWarning:
		return 1
	default:
		return 2
	}
}
