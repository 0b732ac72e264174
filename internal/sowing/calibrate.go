package sowing

import (
	"math"

	"github.com/alexanderramin/furrow/internal/domain"
)

// Calibration is the observed yield of a variety's harvested batches.
type Calibration struct {
	VarietyID       string
	CatalogYield    float64
	CalibratedYield float64
	Samples         int
	// MeanAccuracy is the average yield accuracy percentage, nil without samples.
	MeanAccuracy *int
}

// SmoothYield moves the current yield-per-unit toward an observed value:
// new = 0.7 * current + 0.3 * observed. Returns current unchanged if observed
// is not positive.
func SmoothYield(current, observed float64) float64 {
	if observed <= 0 {
		return current
	}
	if current <= 0 {
		return observed
	}
	return math.Round((0.7*current+0.3*observed)*100) / 100
}

// CalibrateYield derives a calibrated yield-per-unit from harvested batches of
// one variety. Batches without a recorded yield or quantity are ignored.
func CalibrateYield(v *domain.Variety, batches []domain.Batch) Calibration {
	c := Calibration{
		VarietyID:       v.ID,
		CatalogYield:    v.YieldPerUnit,
		CalibratedYield: v.YieldPerUnit,
	}

	var perUnitSum, accuracySum float64
	accuracyN := 0
	for i := range batches {
		b := &batches[i]
		if b.VarietyID != v.ID || !b.IsHarvested() || b.HarvestYield == nil || b.Quantity <= 0 {
			continue
		}
		c.Samples++
		perUnitSum += *b.HarvestYield / float64(b.Quantity)
		if b.ExpectedYield > 0 {
			accuracySum += *b.HarvestYield / b.ExpectedYield * 100
			accuracyN++
		}
	}
	if c.Samples == 0 {
		return c
	}
	c.CalibratedYield = SmoothYield(v.YieldPerUnit, perUnitSum/float64(c.Samples))
	if accuracyN > 0 {
		mean := int(math.Round(accuracySum / float64(accuracyN)))
		c.MeanAccuracy = &mean
	}
	return c
}
