// Package demand turns customer orders into a weekly demand rate per crop.
package demand

import (
	"math"
	"sort"
	"time"

	"github.com/alexanderramin/furrow/internal/domain"
)

// DefaultLookbackWeeks is the trailing window used when none is configured.
const DefaultLookbackWeeks = 4

// DefaultCountedStatuses are the order statuses that represent realized demand.
var DefaultCountedStatuses = []domain.OrderStatus{
	domain.OrderPlaced, domain.OrderConfirmed, domain.OrderDelivered,
}

// Resolver maps an order product name to a catalog variety.
// *catalog.Catalog satisfies it.
type Resolver interface {
	ResolveProduct(name string) (*domain.Variety, bool)
}

type Options struct {
	Now time.Time
	// LookbackWeeks > 0 keeps orders dated within that many trailing weeks and
	// divides by it. Zero averages over the whole observed span.
	LookbackWeeks int
	// CountedStatuses defaults to DefaultCountedStatuses when empty.
	CountedStatuses []domain.OrderStatus
}

type Demand struct {
	CropID       string
	WeeklyDemand float64
	Unit         string
	TotalOrdered float64
	OrderCount   int
}

type Result struct {
	ByCrop map[string]Demand
	// Unmatched lists order item names that matched no variety, sorted.
	Unmatched []string
}

// Aggregate sums counted order quantities per crop and derives a weekly rate.
// Orders and items are read only.
func Aggregate(orders []domain.Order, r Resolver, opts Options) Result {
	counted := make(map[domain.OrderStatus]bool)
	statuses := opts.CountedStatuses
	if len(statuses) == 0 {
		statuses = DefaultCountedStatuses
	}
	for _, s := range statuses {
		counted[s] = true
	}

	today := domain.DateOf(opts.Now)
	var cutoff time.Time
	if opts.LookbackWeeks > 0 {
		cutoff = domain.AddDays(today, -7*opts.LookbackWeeks)
	}

	byCrop := make(map[string]Demand)
	unmatched := make(map[string]bool)
	var earliest, latest time.Time

	for i := range orders {
		o := &orders[i]
		if !counted[o.Status] {
			continue
		}
		when := domain.DateOf(o.DemandDate())
		if opts.LookbackWeeks > 0 && when.Before(cutoff) {
			continue
		}

		matchedAny := false
		for _, item := range o.Items {
			if item.Quantity <= 0 {
				continue
			}
			v, ok := r.ResolveProduct(item.Name)
			if !ok {
				unmatched[item.Name] = true
				continue
			}
			d := byCrop[v.ID]
			d.CropID = v.ID
			d.Unit = v.YieldUnit
			d.TotalOrdered += item.Quantity
			if !matchedAny {
				d.OrderCount++
			}
			byCrop[v.ID] = d
			matchedAny = true
		}
		if !matchedAny {
			continue
		}
		if earliest.IsZero() || when.Before(earliest) {
			earliest = when
		}
		if latest.IsZero() || when.After(latest) {
			latest = when
		}
	}

	weeks := float64(opts.LookbackWeeks)
	if opts.LookbackWeeks <= 0 {
		weeks = observedWeeks(earliest, latest, today)
	}
	for id, d := range byCrop {
		d.WeeklyDemand = d.TotalOrdered / weeks
		byCrop[id] = d
	}

	res := Result{ByCrop: byCrop}
	for name := range unmatched {
		res.Unmatched = append(res.Unmatched, name)
	}
	sort.Strings(res.Unmatched)
	return res
}

// observedWeeks is the span from the earliest counted order to the later of
// today and the latest order, in weeks, never less than one.
func observedWeeks(earliest, latest, today time.Time) float64 {
	if earliest.IsZero() {
		return 1
	}
	end := today
	if latest.After(end) {
		end = latest
	}
	days := domain.DaysBetween(earliest, end)
	return math.Max(1, float64(days)/7)
}
