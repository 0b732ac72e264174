package lifecycle

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/alexanderramin/furrow/internal/catalog"
	"github.com/alexanderramin/furrow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

var cat = catalog.MustDefault()

func ptr[T any](v T) *T { return &v }

func sunflowerBatch(stage domain.StageID) *domain.Batch {
	sow := domain.AddDays(testNow, -4)
	return &domain.Batch{
		ID:           "b-1",
		Category:     domain.CategoryMicrogreens,
		VarietyID:    "sunflower",
		VarietyName:  "Sunflower",
		Quantity:     4,
		Unit:         domain.UnitTray,
		Stage:        stage,
		SowDate:      sow,
		StageHistory: []domain.StageEntry{{Stage: domain.StageSown, EnteredAt: sow}},
	}
}

func TestResolveStage_KnownStage(t *testing.T) {
	s, idx, ok := ResolveStage(cat, sunflowerBatch(domain.StageLight))
	require.True(t, ok)
	assert.Equal(t, domain.StageLight, s.ID)
	assert.Equal(t, 2, idx)
}

func TestResolveStage_UnknownStageFallsBackToFirst(t *testing.T) {
	b := sunflowerBatch("mystery")
	s, idx, ok := ResolveStage(cat, b)
	require.True(t, ok)
	assert.Equal(t, domain.StageSown, s.ID)
	assert.Equal(t, 0, idx)

	b.Stage = ""
	s, _, ok = ResolveStage(cat, b)
	require.True(t, ok)
	assert.Equal(t, domain.StageSown, s.ID)
}

func TestResolveStage_UnknownCategoryUsesVariety(t *testing.T) {
	b := sunflowerBatch(domain.StageBlackout)
	b.Category = ""
	s, _, ok := ResolveStage(cat, b)
	require.True(t, ok)
	assert.Equal(t, domain.StageBlackout, s.ID)

	b.VarietyID = "unknown"
	_, _, ok = ResolveStage(cat, b)
	assert.False(t, ok)
}

func TestAdvance_SownToBlackoutSetsUncoverDate(t *testing.T) {
	b := sunflowerBatch(domain.StageSown)

	u, err := Advance(cat, b, testNow, "sam")
	require.NoError(t, err)
	require.NotNil(t, u.Stage)
	assert.Equal(t, domain.StageBlackout, *u.Stage)
	require.NotNil(t, u.History)
	assert.Equal(t, domain.StageEntry{Stage: domain.StageBlackout, EnteredAt: testNow, By: "sam"}, *u.History)
	require.NotNil(t, u.UncoverDate)
	assert.Equal(t, time.Date(2025, 6, 18, 0, 0, 0, 0, time.UTC), *u.UncoverDate)

	assert.Equal(t, domain.StageSown, b.Stage, "input batch must not change")
	assert.Len(t, b.StageHistory, 1)
}

func TestAdvance_BlackoutToLightLeavesUncoverDate(t *testing.T) {
	u, err := Advance(cat, sunflowerBatch(domain.StageBlackout), testNow, "")
	require.NoError(t, err)
	assert.Equal(t, domain.StageLight, *u.Stage)
	assert.Nil(t, u.UncoverDate)
}

func TestAdvance_LastGrowingStageRequiresHarvest(t *testing.T) {
	_, err := Advance(cat, sunflowerBatch(domain.StageLight), testNow, "")
	assert.ErrorIs(t, err, ErrReadyForHarvest)
}

func TestAdvance_Harvested(t *testing.T) {
	_, err := Advance(cat, sunflowerBatch(domain.StageHarvested), testNow, "")
	assert.ErrorIs(t, err, ErrAlreadyHarvested)
}

func TestAdvance_UnknownCategory(t *testing.T) {
	b := sunflowerBatch(domain.StageSown)
	b.Category = "cacti"
	b.VarietyID = "saguaro"
	_, err := Advance(cat, b, testNow, "")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestAdvance_UnknownStageAdvancesFromFirst(t *testing.T) {
	u, err := Advance(cat, sunflowerBatch("bogus"), testNow, "")
	require.NoError(t, err)
	assert.Equal(t, domain.StageBlackout, *u.Stage)
}

func TestAdvance_MushroomPath(t *testing.T) {
	b := &domain.Batch{Category: domain.CategoryMushrooms, VarietyID: "blue-oyster", Stage: domain.StageInoculated}
	var seen []domain.StageID
	for {
		u, err := Advance(cat, b, testNow, "")
		if errors.Is(err, ErrReadyForHarvest) {
			break
		}
		require.NoError(t, err)
		next := u.Apply(*b)
		b = &next
		seen = append(seen, b.Stage)
	}
	assert.Equal(t, []domain.StageID{domain.StageColonizing, domain.StagePinning, domain.StageFruiting}, seen)
}

func TestHarvest_FromAnyStage(t *testing.T) {
	for _, stage := range []domain.StageID{domain.StageSown, domain.StageBlackout, domain.StageLight, "bogus"} {
		b := sunflowerBatch(stage)
		u, err := Harvest(b, ptr(38.5), testNow, "sam")
		require.NoError(t, err, stage)
		out := u.Apply(*b)
		assert.Equal(t, domain.StageHarvested, out.Stage)
		require.NotNil(t, out.HarvestedAt)
		assert.Equal(t, testNow, *out.HarvestedAt)
		require.NotNil(t, out.HarvestYield)
		assert.Equal(t, 38.5, *out.HarvestYield)
		assert.Equal(t, domain.StageHarvested, out.StageHistory[len(out.StageHistory)-1].Stage)
	}
}

func TestHarvest_NilYield(t *testing.T) {
	u, err := Harvest(sunflowerBatch(domain.StageLight), nil, testNow, "")
	require.NoError(t, err)
	assert.Nil(t, u.HarvestYield)
	assert.NotNil(t, u.HarvestedAt)
}

func TestHarvest_AlreadyHarvested(t *testing.T) {
	u, err := Harvest(sunflowerBatch(domain.StageHarvested), ptr(1.0), testNow, "")
	assert.ErrorIs(t, err, ErrAlreadyHarvested)
	assert.Nil(t, u)
}

func TestTransitions_RejectDatesBeforeLastStageChange(t *testing.T) {
	b := sunflowerBatch(domain.StageSown)
	b.StageHistory = []domain.StageEntry{{Stage: domain.StageSown, EnteredAt: testNow}}
	earlier := domain.AddDays(testNow, -5)

	u, err := Advance(cat, b, earlier, "")
	assert.ErrorIs(t, err, ErrBeforeLastTransition)
	assert.Nil(t, u)

	u, err = Harvest(b, ptr(10.0), earlier, "")
	assert.ErrorIs(t, err, ErrBeforeLastTransition)
	assert.Nil(t, u)
}

func TestTransitions_SameDayEarlierInstantIsClamped(t *testing.T) {
	b := sunflowerBatch(domain.StageSown)
	b.StageHistory = []domain.StageEntry{{Stage: domain.StageSown, EnteredAt: testNow}}
	midnight := domain.DateOf(testNow)

	u, err := Advance(cat, b, midnight, "")
	require.NoError(t, err)
	assert.Equal(t, testNow, u.History.EnteredAt)
	assert.Equal(t, testNow, u.UpdatedAt)

	advanced := u.Apply(*b)
	u, err = Harvest(&advanced, nil, midnight, "")
	require.NoError(t, err)
	assert.Equal(t, testNow, u.History.EnteredAt)
	assert.Equal(t, testNow, *u.HarvestedAt)

	done := u.Apply(advanced)
	for i := 1; i < len(done.StageHistory); i++ {
		assert.False(t, done.StageHistory[i].EnteredAt.Before(done.StageHistory[i-1].EnteredAt),
			"entry %d goes back in time", i)
	}
}

func TestNextTransition_BlackoutDueOnUncoverDate(t *testing.T) {
	b := sunflowerBatch(domain.StageBlackout)
	entered := domain.AddDays(testNow, -2)
	b.StageHistory = append(b.StageHistory, domain.StageEntry{Stage: domain.StageBlackout, EnteredAt: entered})
	uncover := domain.AddDays(testNow, 1)
	b.UncoverDate = &uncover

	a, ok := NextTransition(cat, b, testNow)
	require.True(t, ok)
	assert.Equal(t, domain.StageLight, a.NextStage.ID)
	assert.Equal(t, uncover, a.DueDate)
	assert.False(t, a.NeedsAdvance)
	assert.Equal(t, 2, a.DaysInCurrentStage)
	assert.Equal(t, 3, a.ExpectedDays)
	assert.False(t, a.IsOverdue)

	a, _ = NextTransition(cat, b, domain.AddDays(testNow, 1))
	assert.True(t, a.NeedsAdvance, "due on the uncover date itself")
}

func TestNextTransition_OverdueIsIndependentOfNeedsAdvance(t *testing.T) {
	b := sunflowerBatch(domain.StageBlackout)
	entered := domain.AddDays(testNow, -5)
	b.StageHistory = append(b.StageHistory, domain.StageEntry{Stage: domain.StageBlackout, EnteredAt: entered})
	// Uncover date pushed out manually: not yet due, but the stage has run long.
	uncover := domain.AddDays(testNow, 2)
	b.UncoverDate = &uncover

	a, ok := NextTransition(cat, b, testNow)
	require.True(t, ok)
	assert.False(t, a.NeedsAdvance)
	assert.True(t, a.IsOverdue)
}

func TestNextTransition_SownDueAfterGermination(t *testing.T) {
	b := sunflowerBatch(domain.StageSown)
	a, ok := NextTransition(cat, b, testNow)
	require.True(t, ok)
	assert.Equal(t, domain.AddDays(b.SowDate, 2), a.DueDate)
	assert.True(t, a.NeedsAdvance)
	assert.True(t, a.IsOverdue, "4 days in a 2 day stage")
}

func TestNextTransition_LastStageHasNoNext(t *testing.T) {
	b := sunflowerBatch(domain.StageLight)
	b.StageHistory = append(b.StageHistory, domain.StageEntry{Stage: domain.StageLight, EnteredAt: testNow})
	a, ok := NextTransition(cat, b, testNow)
	require.True(t, ok)
	assert.False(t, a.HasNext)
	assert.False(t, a.NeedsAdvance)
}

func TestNextTransition_HarvestedOrUnknown(t *testing.T) {
	_, ok := NextTransition(cat, sunflowerBatch(domain.StageHarvested), testNow)
	assert.False(t, ok)

	b := sunflowerBatch(domain.StageSown)
	b.Category, b.VarietyID = "", ""
	_, ok = NextTransition(cat, b, testNow)
	assert.False(t, ok)
}

func TestHarvestWindow(t *testing.T) {
	start := domain.DateOf(testNow)
	end := domain.AddDays(start, 2)
	b := sunflowerBatch(domain.StageLight)
	b.EstimatedHarvestStart = &start
	b.EstimatedHarvestEnd = &end

	w := HarvestWindow(b, testNow)
	assert.True(t, w.InWindow)
	assert.Equal(t, 2, w.DaysRemaining)
	assert.Equal(t, 0, w.DaysInWindow)
	assert.False(t, w.IsUrgent)

	w = HarvestWindow(b, end.Add(9*time.Hour))
	assert.True(t, w.InWindow)
	assert.Equal(t, 0, w.DaysRemaining)
	assert.True(t, w.IsUrgent)

	w = HarvestWindow(b, domain.AddDays(end, 1))
	assert.False(t, w.InWindow)

	w = HarvestWindow(b, domain.AddDays(start, -1))
	assert.False(t, w.InWindow)
}

func TestHarvestWindow_MissingDatesOrHarvested(t *testing.T) {
	assert.False(t, HarvestWindow(sunflowerBatch(domain.StageLight), testNow).InWindow)

	start := domain.DateOf(testNow)
	b := sunflowerBatch(domain.StageHarvested)
	b.EstimatedHarvestStart, b.EstimatedHarvestEnd = &start, &start
	assert.False(t, HarvestWindow(b, testNow).InWindow)
}

func TestYieldAccuracy(t *testing.T) {
	got := YieldAccuracy(ptr(50.0), ptr(45.0))
	require.NotNil(t, got)
	assert.Equal(t, 90, *got)

	assert.Nil(t, YieldAccuracy(ptr(0.0), ptr(10.0)))
	assert.Nil(t, YieldAccuracy(ptr(50.0), nil))
	assert.Nil(t, YieldAccuracy(nil, ptr(10.0)))
	assert.Nil(t, YieldAccuracy(ptr(-3.0), ptr(10.0)))

	got = YieldAccuracy(ptr(30.0), ptr(40.0))
	require.NotNil(t, got)
	assert.Equal(t, 133, *got)
}

func TestYieldAccuracy_NonFinite(t *testing.T) {
	assert.Nil(t, YieldAccuracy(ptr(50.0), ptr(math.NaN())))
	assert.Nil(t, YieldAccuracy(ptr(50.0), ptr(math.Inf(1))))
	assert.Nil(t, YieldAccuracy(ptr(math.Inf(1)), ptr(10.0)))
	assert.Nil(t, YieldAccuracy(ptr(1e-320), ptr(1e300)))
}
