// Package board derives the crew's daily views from batches and sowing needs:
// what to advance, what to harvest and what to sow today. Inputs are never modified.
package board

import (
	"sort"
	"time"

	"github.com/alexanderramin/furrow/internal/catalog"
	"github.com/alexanderramin/furrow/internal/domain"
	"github.com/alexanderramin/furrow/internal/lifecycle"
	"github.com/alexanderramin/furrow/internal/sowing"
)

type AdvanceSuggestion struct {
	Batch              domain.Batch
	SuggestedNextStage domain.Stage
	DueDate            time.Time
	IsOverdue          bool
	DaysInCurrentStage int
	ExpectedDays       int
}

type HarvestCandidate struct {
	Batch         domain.Batch
	DaysInWindow  int
	DaysRemaining int
	IsUrgent      bool
}

// NeedingStageAdvance returns active batches whose next transition is due,
// overdue ones first, then the longest waiting.
func NeedingStageAdvance(batches []domain.Batch, cat *catalog.Catalog, now time.Time) []AdvanceSuggestion {
	var out []AdvanceSuggestion
	for i := range batches {
		b := &batches[i]
		a, ok := lifecycle.NextTransition(cat, b, now)
		if !ok || !a.NeedsAdvance {
			continue
		}
		out = append(out, AdvanceSuggestion{
			Batch:              *b,
			SuggestedNextStage: a.NextStage,
			DueDate:            a.DueDate,
			IsOverdue:          a.IsOverdue,
			DaysInCurrentStage: a.DaysInCurrentStage,
			ExpectedDays:       a.ExpectedDays,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.IsOverdue != b.IsOverdue {
			return a.IsOverdue
		}
		if !a.DueDate.Equal(b.DueDate) {
			return a.DueDate.Before(b.DueDate)
		}
		return a.Batch.ID < b.Batch.ID
	})
	return out
}

// InHarvestWindow returns batches harvestable today, fewest days remaining first.
func InHarvestWindow(batches []domain.Batch, now time.Time) []HarvestCandidate {
	var out []HarvestCandidate
	for i := range batches {
		b := &batches[i]
		w := lifecycle.HarvestWindow(b, now)
		if !w.InWindow {
			continue
		}
		out = append(out, HarvestCandidate{
			Batch:         *b,
			DaysInWindow:  w.DaysInWindow,
			DaysRemaining: w.DaysRemaining,
			IsUrgent:      w.IsUrgent,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DaysRemaining != out[j].DaysRemaining {
			return out[i].DaysRemaining < out[j].DaysRemaining
		}
		return out[i].Batch.ID < out[j].Batch.ID
	})
	return out
}

// TodaysSowingNeeds keeps every critical and warning need plus healthy needs
// whose planting schedule includes today. A healthy need usually carries a
// zero quantity: today is a routine sowing day, not a shortfall.
func TodaysSowingNeeds(needs []domain.SowingNeed, now time.Time) []domain.SowingNeed {
	out := make([]domain.SowingNeed, 0, len(needs))
	for i := range needs {
		n := &needs[i]
		switch n.Urgency {
		case domain.UrgencyCritical, domain.UrgencyWarning:
			out = append(out, *n)
		default:
			if n.IsPlantingDay(now) {
				out = append(out, *n)
			}
		}
	}
	sowing.SortNeeds(out)
	return out
}

// Board is the combined daily view.
type Board struct {
	Date     time.Time
	Advance  []AdvanceSuggestion
	Harvest  []HarvestCandidate
	SowToday []domain.SowingNeed
}

func Build(batches []domain.Batch, needs []domain.SowingNeed, cat *catalog.Catalog, now time.Time) Board {
	return Board{
		Date:     domain.DateOf(now),
		Advance:  NeedingStageAdvance(batches, cat, now),
		Harvest:  InHarvestWindow(batches, now),
		SowToday: TodaysSowingNeeds(needs, now),
	}
}
