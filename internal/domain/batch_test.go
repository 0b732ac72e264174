package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func TestBatchUpdate_ApplyDoesNotMutateInput(t *testing.T) {
	b := Batch{
		Stage:        StageSown,
		StageHistory: []StageEntry{{Stage: StageSown, EnteredAt: testNow.AddDate(0, 0, -2)}},
	}
	next := StageBlackout
	u := &BatchUpdate{
		Stage:     &next,
		History:   &StageEntry{Stage: StageBlackout, EnteredAt: testNow},
		UpdatedAt: testNow,
	}

	out := u.Apply(b)

	assert.Equal(t, StageSown, b.Stage)
	assert.Len(t, b.StageHistory, 1)
	assert.Equal(t, StageBlackout, out.Stage)
	require.Len(t, out.StageHistory, 2)
	assert.Equal(t, StageBlackout, out.StageHistory[1].Stage)
	assert.Equal(t, testNow, out.UpdatedAt)
}

func TestBatchUpdate_ApplyHarvestFields(t *testing.T) {
	y := 42.5
	u := &BatchUpdate{HarvestedAt: &testNow, HarvestYield: &y}
	out := u.Apply(Batch{Stage: StageLight})

	require.NotNil(t, out.HarvestedAt)
	assert.Equal(t, testNow, *out.HarvestedAt)
	require.NotNil(t, out.HarvestYield)
	assert.Equal(t, 42.5, *out.HarvestYield)

	y = 0
	assert.Equal(t, 42.5, *out.HarvestYield, "applied yield should not alias the update")
}

func TestStageEnteredAt_PrefersLatestMatchingEntry(t *testing.T) {
	sow := testNow.AddDate(0, 0, -5)
	b := Batch{
		Stage:   StageBlackout,
		SowDate: sow,
		StageHistory: []StageEntry{
			{Stage: StageSown, EnteredAt: sow},
			{Stage: StageBlackout, EnteredAt: testNow.AddDate(0, 0, -1)},
		},
	}
	assert.Equal(t, testNow.AddDate(0, 0, -1), b.StageEnteredAt())
}

func TestStageEnteredAt_FallsBackToSowDate(t *testing.T) {
	sow := testNow.AddDate(0, 0, -3)
	b := Batch{Stage: StageLight, SowDate: sow}
	assert.Equal(t, sow, b.StageEnteredAt())
}

func TestStageEnteredAt_FallsBackToCreatedAt(t *testing.T) {
	b := Batch{Stage: StageLight, CreatedAt: testNow}
	assert.Equal(t, testNow, b.StageEnteredAt())
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Sunflower", (&Batch{VarietyID: "sunflower", VarietyName: "Sunflower"}).DisplayName())
	assert.Equal(t, "sunflower", (&Batch{VarietyID: "sunflower"}).DisplayName())
}

func TestDaysBetween_IgnoresTimeOfDay(t *testing.T) {
	a := time.Date(2025, 1, 1, 23, 59, 0, 0, time.UTC)
	b := time.Date(2025, 1, 2, 0, 1, 0, 0, time.UTC)
	assert.Equal(t, 1, DaysBetween(a, b))
	assert.Equal(t, -1, DaysBetween(b, a))
	assert.Equal(t, 0, DaysBetween(a, a.Add(time.Minute)))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-01-10")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("01/10/2025")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YYYY-MM-DD")
}

func TestOrderDemandDate(t *testing.T) {
	delivery := testNow.AddDate(0, 0, 3)
	o := Order{CreatedAt: testNow, RequestedDeliveryDate: &delivery}
	assert.Equal(t, delivery, o.DemandDate())

	o.RequestedDeliveryDate = nil
	assert.Equal(t, testNow, o.DemandDate())
}

func TestCategoryDef_StageIndex(t *testing.T) {
	def := CategoryDef{Stages: []Stage{{ID: StageSown}, {ID: StageBlackout}, {ID: StageHarvested}}}
	assert.Equal(t, 1, def.StageIndex(StageBlackout))
	assert.Equal(t, -1, def.StageIndex(StageFruiting))
	assert.Equal(t, StageSown, def.FirstStage().ID)
}

func TestUnitPlural(t *testing.T) {
	assert.Equal(t, "tray", UnitTray.Plural(1))
	assert.Equal(t, "trays", UnitTray.Plural(3))
	assert.Equal(t, "blocks", UnitBlock.Plural(0))
}
