package sowing

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/alexanderramin/furrow/internal/catalog"
	"github.com/alexanderramin/furrow/internal/demand"
	"github.com/alexanderramin/furrow/internal/domain"
	"github.com/alexanderramin/furrow/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

var crops = catalog.MustDefault()

func demandOf(rates map[string]float64) map[string]demand.Demand {
	out := make(map[string]demand.Demand, len(rates))
	for id, r := range rates {
		out[id] = demand.Demand{CropID: id, WeeklyDemand: r, Unit: "oz"}
	}
	return out
}

func pipelinesOf(units map[string]int) map[string]pipeline.Pipeline {
	out := make(map[string]pipeline.Pipeline, len(units))
	for id, u := range units {
		out[id] = pipeline.Pipeline{CropID: id, CurrentPipeline: u}
	}
	return out
}

func TestDaysOfSupply_TenDaysIsHealthy(t *testing.T) {
	days := DaysOfSupply(10, 6, 42)
	assert.Equal(t, 10.0, days)
	assert.Equal(t, domain.UrgencyHealthy, ClassifyUrgency(days))
}

func TestDaysOfSupply_EmptyPipelineIsCritical(t *testing.T) {
	for _, weekly := range []float64{0.5, 7, 42, 1000} {
		days := DaysOfSupply(0, 6, weekly)
		assert.Equal(t, 0.0, days)
		assert.Equal(t, domain.UrgencyCritical, ClassifyUrgency(days))
	}
}

func TestClassifyUrgency_Boundaries(t *testing.T) {
	assert.Equal(t, domain.UrgencyCritical, ClassifyUrgency(2.99))
	assert.Equal(t, domain.UrgencyWarning, ClassifyUrgency(3))
	assert.Equal(t, domain.UrgencyWarning, ClassifyUrgency(6.99))
	assert.Equal(t, domain.UrgencyHealthy, ClassifyUrgency(7))
	assert.Equal(t, domain.UrgencyHealthy, ClassifyUrgency(math.Inf(1)))
}

func TestRecommendedQty(t *testing.T) {
	// target 7 days × 6 oz/day = 42 oz; pipeline 2 × 6 = 12 oz; short 30 oz = 5 trays
	assert.Equal(t, 5, RecommendedQty(7, 42, 2, 6))
	// short 31 oz rounds up to 6
	assert.Equal(t, 6, RecommendedQty(7, 43, 2, 6))
	assert.Equal(t, 0, RecommendedQty(7, 42, 10, 6), "surplus never goes negative")
	assert.Equal(t, 0, RecommendedQty(7, 42, 0, 0), "unknown yield")
}

func TestRecommendedQty_Property_NeverNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 1000; trial++ {
		target := rng.Float64()*30 - 5
		weekly := rng.Float64()*400 - 100
		units := rng.Intn(60) - 10
		yield := rng.Float64()*20 - 4

		qty := RecommendedQty(target, weekly, units, yield)
		assert.GreaterOrEqual(t, qty, 0, "trial %d: target=%v weekly=%v units=%d yield=%v",
			trial, target, weekly, units, yield)
	}
}

func TestDisplayDays(t *testing.T) {
	assert.Equal(t, 0, DisplayDays(0))
	assert.Equal(t, 3, DisplayDays(3.9))
	assert.Equal(t, 98, DisplayDays(98.5))
	assert.Equal(t, 99, DisplayDays(250))
	assert.Equal(t, 99, DisplayDays(math.Inf(1)))
}

func TestReason(t *testing.T) {
	assert.Equal(t, "3 days of supply remaining, demand is 20 oz/wk", Reason(3.5, 20, "oz"))
	assert.Equal(t, "1 day of supply remaining, demand is 17.5 oz/wk", Reason(1.2, 17.5, "oz"))
	assert.Equal(t, "99+ days of supply remaining, demand is 2 lb/wk", Reason(400, 2, "lb"))
	assert.Equal(t, "0 days of supply remaining, demand is 4/wk", Reason(0, 4, ""))
}

func TestRecommend_SpecExample(t *testing.T) {
	// Radish yields 7 oz/tray; use an override to hit 6 oz/tray.
	needs := Recommend(Input{
		Demand:         demandOf(map[string]float64{"radish": 42}),
		Pipelines:      pipelinesOf(map[string]int{"radish": 10}),
		Catalog:        crops,
		YieldOverrides: map[string]float64{"radish": 6},
	})

	require.Len(t, needs, 1)
	n := needs[0]
	assert.Equal(t, "radish", n.CropID)
	assert.Equal(t, 10.0, n.DaysOfSupply)
	assert.Equal(t, 10, n.DisplayDaysOfSupply)
	assert.Equal(t, domain.UrgencyHealthy, n.Urgency)
	assert.Equal(t, 0, n.RecommendedQty)
	assert.Equal(t, domain.UnitTray, n.BatchUnit)
	assert.Equal(t, 8, n.GrowDays)
	assert.Equal(t, "10 days of supply remaining, demand is 42 oz/wk", n.Reason)
}

func TestRecommend_SkipsZeroDemandAndUnknownCrops(t *testing.T) {
	needs := Recommend(Input{
		Demand:    demandOf(map[string]float64{"basil": 0, "dragonfruit": 20, "pea": -3, "arugula": 9}),
		Pipelines: pipelinesOf(nil),
		Catalog:   crops,
	})
	require.Len(t, needs, 1)
	assert.Equal(t, "arugula", needs[0].CropID)
	assert.Equal(t, domain.UrgencyCritical, needs[0].Urgency)
}

func TestRecommend_SortsByUrgencyThenSupplyThenName(t *testing.T) {
	needs := Recommend(Input{
		Demand: demandOf(map[string]float64{
			"sunflower": 70, // 10 oz/day
			"pea":       63, // 9 oz/day
			"radish":    49, // 7 oz/day
			"broccoli":  42, // 6 oz/day
			"basil":     14, // 2 oz/day
		}),
		Pipelines: pipelinesOf(map[string]int{
			"sunflower": 2,  // 20 oz => 2 days, critical
			"pea":       0,  // critical, 0 days
			"radish":    4,  // 28 oz => 4 days, warning
			"broccoli":  10, // 60 oz => 10 days, healthy
			"basil":     0,  // critical, 0 days
		}),
		Catalog: crops,
	})

	ids := make([]string, len(needs))
	for i, n := range needs {
		ids[i] = n.CropID
	}
	// basil and pea tie on 0 days; "Genovese Basil" sorts before "Pea Shoots".
	assert.Equal(t, []string{"basil", "pea", "sunflower", "radish", "broccoli"}, ids)
}

func TestRecommend_SeedCostAndDefaultTarget(t *testing.T) {
	needs := Recommend(Input{
		Demand:    demandOf(map[string]float64{"sunflower": 70}),
		Pipelines: pipelinesOf(map[string]int{"sunflower": 1}),
		Catalog:   crops,
	})
	require.Len(t, needs, 1)
	// 70 oz target - 10 oz pipeline = 60 oz / 10 oz per tray = 6 trays
	assert.Equal(t, 6, needs[0].RecommendedQty)
	assert.Equal(t, "14.4", needs[0].EstimatedSeedCost.String())
}

func TestRecommend_CustomTarget(t *testing.T) {
	needs := Recommend(Input{
		Demand:     demandOf(map[string]float64{"sunflower": 70}),
		Pipelines:  pipelinesOf(nil),
		Catalog:    crops,
		TargetDays: 14,
	})
	require.Len(t, needs, 1)
	assert.Equal(t, 14, needs[0].RecommendedQty)
}

func TestNewBatch_Sunflower(t *testing.T) {
	b, err := NewBatch(crops, PlantRequest{VarietyID: "sunflower", Quantity: 3, By: "sam"}, testNow)
	require.NoError(t, err)

	assert.Equal(t, domain.StageSown, b.Stage)
	assert.Equal(t, domain.UnitTray, b.Unit)
	assert.Equal(t, domain.SourceManual, b.Source)
	assert.Equal(t, domain.DateOf(testNow), b.SowDate)
	require.NotNil(t, b.SoakDate)
	assert.Equal(t, domain.AddDays(testNow, -1), *b.SoakDate)
	require.NotNil(t, b.UncoverDate)
	assert.Equal(t, domain.AddDays(testNow, 5), *b.UncoverDate)
	require.NotNil(t, b.EstimatedHarvestStart)
	assert.Equal(t, domain.AddDays(testNow, 9), *b.EstimatedHarvestStart)
	assert.Equal(t, domain.AddDays(testNow, 12), *b.EstimatedHarvestEnd)
	assert.Equal(t, 30.0, b.ExpectedYield)
	require.Len(t, b.StageHistory, 1)
	assert.Equal(t, domain.StageEntry{Stage: domain.StageSown, EnteredAt: testNow, By: "sam"}, b.StageHistory[0])
	assert.Empty(t, b.ID)
}

func TestNewBatch_BackdatedSowDate(t *testing.T) {
	sow := domain.AddDays(testNow, -4)
	b, err := NewBatch(crops, PlantRequest{VarietyID: "pea", Quantity: 1, SowDate: sow}, testNow)
	require.NoError(t, err)
	assert.Equal(t, sow, b.SowDate)
	assert.Equal(t, sow, b.StageHistory[0].EnteredAt)
	assert.Equal(t, testNow, b.CreatedAt)
}

func TestNewBatch_Errors(t *testing.T) {
	_, err := NewBatch(crops, PlantRequest{VarietyID: "nope", Quantity: 1}, testNow)
	assert.True(t, errors.Is(err, ErrUnknownVariety))

	_, err = NewBatch(crops, PlantRequest{VarietyID: "basil", Quantity: 0}, testNow)
	require.Error(t, err)
}

func TestPlantFromNeed(t *testing.T) {
	need := domain.SowingNeed{CropID: "blue-oyster", CropName: "Blue Oyster", RecommendedQty: 4, Reason: "0 days of supply remaining, demand is 6 lb/wk"}

	b, err := PlantFromNeed(need, crops, testNow, "sam")
	require.NoError(t, err)
	assert.Equal(t, domain.StageInoculated, b.Stage)
	assert.Equal(t, domain.UnitBlock, b.Unit)
	assert.Equal(t, 4, b.Quantity)
	assert.Equal(t, domain.SourceRecommendation, b.Source)
	assert.Equal(t, need.Reason, b.Notes)
	assert.Equal(t, domain.DateOf(testNow), b.SowDate)
	assert.Nil(t, b.UncoverDate)

	need.RecommendedQty = 0
	_, err = PlantFromNeed(need, crops, testNow, "sam")
	assert.ErrorIs(t, err, ErrNothingToPlant)
}
