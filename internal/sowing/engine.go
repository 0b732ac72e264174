// Package sowing decides what to plant: per-crop days of supply, urgency and
// recommended batch quantities, plus capacity allocation and yield calibration.
package sowing

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/alexanderramin/furrow/internal/catalog"
	"github.com/alexanderramin/furrow/internal/demand"
	"github.com/alexanderramin/furrow/internal/domain"
	"github.com/alexanderramin/furrow/internal/pipeline"
	"github.com/shopspring/decimal"
)

var (
	ErrUnknownVariety = errors.New("unknown variety")
	ErrNothingToPlant = errors.New("recommended quantity is zero")
)

type Input struct {
	Demand    map[string]demand.Demand
	Pipelines map[string]pipeline.Pipeline
	Catalog   *catalog.Catalog
	// TargetDays is the buffer recommendations restore. Defaults to DefaultTargetDays.
	TargetDays float64
	// YieldOverrides replaces the catalog yield-per-unit for a variety, e.g. with
	// a calibrated yield.
	YieldOverrides map[string]float64
}

// Recommend returns one SowingNeed per crop with positive weekly demand, sorted
// most urgent first. Crops missing from the catalog are skipped.
func Recommend(in Input) []domain.SowingNeed {
	target := in.TargetDays
	if target <= 0 {
		target = DefaultTargetDays
	}

	needs := make([]domain.SowingNeed, 0, len(in.Demand))
	for cropID, d := range in.Demand {
		if d.WeeklyDemand <= 0 {
			continue
		}
		v, ok := in.Catalog.Lookup(cropID)
		if !ok {
			continue
		}
		def, _ := in.Catalog.Category(v.Category)

		yield := v.YieldPerUnit
		if y, ok := in.YieldOverrides[cropID]; ok && y > 0 {
			yield = y
		}
		units := in.Pipelines[cropID].CurrentPipeline

		days := DaysOfSupply(units, yield, d.WeeklyDemand)
		qty := RecommendedQty(target, d.WeeklyDemand, units, yield)
		unit := domain.CoalesceStr(d.Unit, v.YieldUnit)

		needs = append(needs, domain.SowingNeed{
			CropID:              v.ID,
			CropName:            v.Name,
			CropCategory:        v.Category,
			WeeklyDemand:        d.WeeklyDemand,
			CurrentPipeline:     units,
			DaysOfSupply:        days,
			DisplayDaysOfSupply: DisplayDays(days),
			Urgency:             ClassifyUrgency(days),
			RecommendedQty:      qty,
			BatchUnit:           def.Unit,
			GrowDays:            v.GrowDays,
			Reason:              Reason(days, d.WeeklyDemand, unit),
			YieldPerUnit:        yield,
			YieldUnit:           unit,
			PlantingDays:        v.PlantingDays,
			EstimatedSeedCost:   v.SeedCost.Mul(decimal.NewFromInt(int64(qty))),
		})
	}
	SortNeeds(needs)
	return needs
}

// DaysOfSupply is pipeline output divided by daily demand. It is zero with an
// empty pipeline and +Inf only when demand is not positive; callers skip that case.
func DaysOfSupply(pipelineUnits int, yieldPerUnit, weeklyDemand float64) float64 {
	if pipelineUnits <= 0 || yieldPerUnit <= 0 {
		return 0
	}
	if weeklyDemand <= 0 {
		return math.Inf(1)
	}
	return float64(pipelineUnits) * yieldPerUnit / (weeklyDemand / 7)
}

// RecommendedQty is the number of batch units needed to restore targetDays of
// supply. Never negative; zero when yield is unknown.
func RecommendedQty(targetDays, weeklyDemand float64, pipelineUnits int, yieldPerUnit float64) int {
	if yieldPerUnit <= 0 || weeklyDemand <= 0 {
		return 0
	}
	shortfall := targetDays*weeklyDemand/7 - float64(max(0, pipelineUnits))*yieldPerUnit
	return int(math.Ceil(math.Max(0, shortfall/yieldPerUnit)))
}

// DisplayDays caps days of supply for presentation.
func DisplayDays(days float64) int {
	if math.IsInf(days, 1) || days >= DisplayCapDays {
		return DisplayCapDays
	}
	return int(math.Floor(math.Max(0, days)))
}

// Reason renders the human explanation of a need, e.g.
// "3 days of supply remaining, demand is 20 oz/wk".
func Reason(days, weeklyDemand float64, unit string) string {
	shown := strconv.Itoa(DisplayDays(days))
	if DisplayDays(days) >= DisplayCapDays {
		shown = strconv.Itoa(DisplayCapDays) + "+"
	}
	noun := "days"
	if shown == "1" {
		noun = "day"
	}
	rate := strconv.FormatFloat(math.Round(weeklyDemand*10)/10, 'f', -1, 64)
	if unit != "" {
		rate += " " + unit
	}
	return fmt.Sprintf("%s %s of supply remaining, demand is %s/wk", shown, noun, rate)
}

// PlantRequest describes a new batch.
type PlantRequest struct {
	VarietyID string
	Quantity  int
	SowDate   time.Time
	Source    domain.BatchSource
	Notes     string
	By        string
}

// NewBatch builds a batch at its category's first stage with every schedule
// date derived from the catalog. A past sow date back-dates the first stage
// entry. The caller assigns the ID.
func NewBatch(cat *catalog.Catalog, req PlantRequest, now time.Time) (domain.Batch, error) {
	v, ok := cat.Lookup(req.VarietyID)
	if !ok {
		return domain.Batch{}, fmt.Errorf("%w: %q", ErrUnknownVariety, req.VarietyID)
	}
	if req.Quantity <= 0 {
		return domain.Batch{}, fmt.Errorf("quantity must be positive, got %d", req.Quantity)
	}
	def, _ := cat.Category(v.Category)

	sow := req.SowDate
	if sow.IsZero() {
		sow = now
	}
	s := catalog.ScheduleFor(v, sow)
	first := def.FirstStage().ID
	source := req.Source
	if source == "" {
		source = domain.SourceManual
	}
	// A batch logged after the fact entered its first stage on the sow date.
	entered := now
	if s.SowDate.Before(domain.DateOf(now)) {
		entered = s.SowDate
	}

	return domain.Batch{
		Category:              v.Category,
		VarietyID:             v.ID,
		VarietyName:           v.Name,
		Quantity:              req.Quantity,
		Unit:                  def.Unit,
		Stage:                 first,
		Source:                source,
		Notes:                 req.Notes,
		SowDate:               s.SowDate,
		SoakDate:              s.SoakDate,
		UncoverDate:           s.UncoverDate,
		EstimatedHarvestStart: &s.HarvestStart,
		EstimatedHarvestEnd:   &s.HarvestEnd,
		StageHistory:          []domain.StageEntry{{Stage: first, EnteredAt: entered, By: req.By}},
		ExpectedYield:         float64(req.Quantity) * v.YieldPerUnit,
		CreatedAt:             now,
		UpdatedAt:             now,
	}, nil
}

// PlantFromNeed turns an accepted recommendation into a new batch sown today.
func PlantFromNeed(need domain.SowingNeed, cat *catalog.Catalog, now time.Time, by string) (domain.Batch, error) {
	if need.RecommendedQty <= 0 {
		return domain.Batch{}, fmt.Errorf("%s: %w", need.CropName, ErrNothingToPlant)
	}
	return NewBatch(cat, PlantRequest{
		VarietyID: need.CropID,
		Quantity:  need.RecommendedQty,
		SowDate:   domain.DateOf(now),
		Source:    domain.SourceRecommendation,
		Notes:     need.Reason,
		By:        by,
	}, now)
}
