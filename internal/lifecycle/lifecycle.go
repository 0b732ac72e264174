// Package lifecycle is the batch stage state machine. Every function is pure:
// transitions return a domain.BatchUpdate for the caller to persist and never
// touch the batch they are given.
package lifecycle

import (
	"errors"
	"math"
	"time"

	"github.com/alexanderramin/furrow/internal/catalog"
	"github.com/alexanderramin/furrow/internal/domain"
)

var (
	ErrAlreadyHarvested = errors.New("batch is already harvested")
	ErrReadyForHarvest  = errors.New("batch is at its last growing stage; harvest it instead")
	ErrUnknownCategory  = errors.New("batch category is unknown")
	// ErrBeforeLastTransition rejects a transition dated on a day before the
	// batch's latest stage history entry.
	ErrBeforeLastTransition = errors.New("transition date is before the batch's last stage change")
)

// ResolveStage returns the batch's current stage and its index in the category
// stage list. A stage missing from the list resolves to the first stage. An
// unknown category falls back to the variety's category; ok is false only when
// neither is known.
func ResolveStage(cat *catalog.Catalog, b *domain.Batch) (domain.Stage, int, bool) {
	def, ok := ResolveCategory(cat, b)
	if !ok {
		return domain.Stage{}, -1, false
	}
	idx := def.StageIndex(b.Stage)
	if idx < 0 {
		idx = 0
	}
	return def.Stages[idx], idx, true
}

// ResolveCategory returns the batch's category definition, falling back to the
// variety's category when the stored one is unknown.
func ResolveCategory(cat *catalog.Catalog, b *domain.Batch) (domain.CategoryDef, bool) {
	if def, ok := cat.Category(b.Category); ok {
		return def, true
	}
	if v, ok := cat.Lookup(b.VarietyID); ok {
		return cat.Category(v.Category)
	}
	return domain.CategoryDef{}, false
}

// NextStage returns the stage following the batch's current one. It reports
// false when the batch is harvested, at its last growing stage or uncategorized.
func NextStage(cat *catalog.Catalog, b *domain.Batch) (domain.Stage, bool) {
	if b.IsHarvested() {
		return domain.Stage{}, false
	}
	def, ok := ResolveCategory(cat, b)
	if !ok {
		return domain.Stage{}, false
	}
	_, idx, _ := ResolveStage(cat, b)
	next := def.Stages[idx+1]
	if next.ID == domain.StageHarvested {
		return domain.Stage{}, false
	}
	return next, true
}

// Advance moves a batch one stage forward. Harvest is never reached through
// Advance; the last growing stage returns ErrReadyForHarvest.
func Advance(cat *catalog.Catalog, b *domain.Batch, now time.Time, by string) (*domain.BatchUpdate, error) {
	if b.IsHarvested() {
		return nil, ErrAlreadyHarvested
	}
	if _, ok := ResolveCategory(cat, b); !ok {
		return nil, ErrUnknownCategory
	}
	next, ok := NextStage(cat, b)
	if !ok {
		return nil, ErrReadyForHarvest
	}
	now, err := transitionTime(b, now)
	if err != nil {
		return nil, err
	}

	stage := next.ID
	u := &domain.BatchUpdate{
		Stage:     &stage,
		History:   &domain.StageEntry{Stage: stage, EnteredAt: now, By: by},
		UpdatedAt: now,
	}
	if stage == domain.StageBlackout {
		days := 0
		if v, ok := cat.Lookup(b.VarietyID); ok {
			days = v.BlackoutDays
		}
		uncover := domain.AddDays(now, days)
		u.UncoverDate = &uncover
	}
	return u, nil
}

// Harvest moves a batch to the terminal stage from any stage. yield may be nil
// when the harvest was not weighed.
func Harvest(b *domain.Batch, yield *float64, now time.Time, by string) (*domain.BatchUpdate, error) {
	if b.IsHarvested() {
		return nil, ErrAlreadyHarvested
	}
	now, err := transitionTime(b, now)
	if err != nil {
		return nil, err
	}
	stage := domain.StageHarvested
	harvestedAt := now
	u := &domain.BatchUpdate{
		Stage:       &stage,
		History:     &domain.StageEntry{Stage: stage, EnteredAt: now, By: by},
		HarvestedAt: &harvestedAt,
		UpdatedAt:   now,
	}
	if yield != nil {
		y := *yield
		u.HarvestYield = &y
	}
	return u, nil
}

// transitionTime returns the instant a new history entry is recorded at, keeping
// EnteredAt non-decreasing. A date before the day of the latest entry is
// rejected; an earlier instant on that same day is clamped to the entry.
func transitionTime(b *domain.Batch, now time.Time) (time.Time, error) {
	var last time.Time
	for _, e := range b.StageHistory {
		if e.EnteredAt.After(last) {
			last = e.EnteredAt
		}
	}
	if last.IsZero() {
		return now, nil
	}
	if domain.DateOf(now).Before(domain.DateOf(last)) {
		return time.Time{}, ErrBeforeLastTransition
	}
	if now.Before(last) {
		return last, nil
	}
	return now, nil
}

// Advisory is the suggested next transition of a batch. NeedsAdvance and
// IsOverdue are independent: one is date based, the other duration based.
type Advisory struct {
	Current            domain.Stage
	NextStage          domain.Stage
	HasNext            bool
	DueDate            time.Time
	NeedsAdvance       bool
	IsOverdue          bool
	DaysInCurrentStage int
	ExpectedDays       int
}

// NextTransition computes the advisory for a batch as of now. The due date is
// the uncover date for batches in blackout, otherwise the stage entry date plus
// the expected stage duration. Harvested and uncategorized batches report ok=false.
func NextTransition(cat *catalog.Catalog, b *domain.Batch, now time.Time) (Advisory, bool) {
	if b.IsHarvested() {
		return Advisory{}, false
	}
	current, _, ok := ResolveStage(cat, b)
	if !ok {
		return Advisory{}, false
	}

	v, _ := cat.Lookup(b.VarietyID)
	entered := b.StageEnteredAt()
	a := Advisory{
		Current:            current,
		DaysInCurrentStage: max(0, domain.DaysBetween(entered, now)),
		ExpectedDays:       catalog.ExpectedStageDays(v, current.ID),
	}
	a.NextStage, a.HasNext = NextStage(cat, b)

	if current.ID == domain.StageBlackout && b.UncoverDate != nil {
		a.DueDate = domain.DateOf(*b.UncoverDate)
	} else {
		a.DueDate = domain.AddDays(entered, a.ExpectedDays)
	}
	a.NeedsAdvance = a.HasNext && !domain.DateOf(now).Before(a.DueDate)
	a.IsOverdue = a.ExpectedDays > 0 && a.DaysInCurrentStage > a.ExpectedDays
	return a, true
}

// WindowStatus describes where today falls in a batch's harvest window.
type WindowStatus struct {
	InWindow      bool
	DaysInWindow  int
	DaysRemaining int
	IsUrgent      bool
}

// HarvestWindow reports whether now is inside the inclusive estimated harvest
// window of b. The last day of the window is urgent.
func HarvestWindow(b *domain.Batch, now time.Time) WindowStatus {
	if b.IsHarvested() || b.EstimatedHarvestStart == nil || b.EstimatedHarvestEnd == nil {
		return WindowStatus{}
	}
	today := domain.DateOf(now)
	start := domain.DateOf(*b.EstimatedHarvestStart)
	end := domain.DateOf(*b.EstimatedHarvestEnd)
	if today.Before(start) || today.After(end) {
		return WindowStatus{}
	}
	remaining := domain.DaysBetween(today, end)
	return WindowStatus{
		InWindow:      true,
		DaysInWindow:  domain.DaysBetween(start, today),
		DaysRemaining: remaining,
		IsUrgent:      remaining == 0,
	}
}

// YieldAccuracy returns actual as a rounded percentage of expected, or nil when
// either is missing, not finite, or expected is not positive.
func YieldAccuracy(expected, actual *float64) *int {
	if expected == nil || actual == nil || *expected <= 0 || !finite(*expected) || !finite(*actual) {
		return nil
	}
	ratio := *actual / *expected * 100
	if !finite(ratio) {
		return nil
	}
	pct := int(math.Round(ratio))
	return &pct
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
