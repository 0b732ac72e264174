package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SowingNeed is a derived per-crop planting recommendation. It is recomputed on
// every call and never persisted.
type SowingNeed struct {
	CropID       string
	CropName     string
	CropCategory CropCategory
	WeeklyDemand float64
	// CurrentPipeline is the number of batch units (trays/ports/blocks) in production.
	CurrentPipeline int
	// DaysOfSupply is the true ratio used for every decision.
	DaysOfSupply float64
	// DisplayDaysOfSupply is capped for presentation only.
	DisplayDaysOfSupply int
	Urgency             Urgency
	RecommendedQty      int
	BatchUnit           Unit
	GrowDays            int
	Reason              string

	YieldPerUnit      float64
	YieldUnit         string
	PlantingDays      []time.Weekday
	EstimatedSeedCost decimal.Decimal
}

// IsPlantingDay reports whether day is a scheduled sowing weekday for this crop.
func (n *SowingNeed) IsPlantingDay(day time.Time) bool {
	for _, wd := range n.PlantingDays {
		if wd == day.Weekday() {
			return true
		}
	}
	return false
}
