package sowing

import (
	"fmt"

	"github.com/alexanderramin/furrow/internal/domain"
)

// Allocation is the planting quantity granted to one need.
type Allocation struct {
	Need      domain.SowingNeed
	Allocated int
	// Partial is set when less than the recommended quantity fit.
	Partial bool
}

type BlockerCode string

const (
	BlockerNoCapacity   BlockerCode = "NO_CAPACITY"
	BlockerUnknownUnit  BlockerCode = "UNKNOWN_UNIT"
	BlockerNothingToAdd BlockerCode = "NOTHING_TO_PLANT"
)

// CapacityBlocker explains why a need received nothing.
type CapacityBlocker struct {
	CropID  string
	Code    BlockerCode
	Message string
}

// AllocateCapacity hands out free grow-room slots per unit to needs in the order
// given, which should already be sorted most urgent first. A need gets at most
// its recommended quantity; whatever does not fit is reported as a blocker.
func AllocateCapacity(needs []domain.SowingNeed, free map[domain.Unit]int) ([]Allocation, []CapacityBlocker) {
	remaining := make(map[domain.Unit]int, len(free))
	for u, n := range free {
		remaining[u] = max(0, n)
	}

	var allocs []Allocation
	var blockers []CapacityBlocker
	for _, n := range needs {
		if n.RecommendedQty <= 0 {
			blockers = append(blockers, CapacityBlocker{
				CropID:  n.CropID,
				Code:    BlockerNothingToAdd,
				Message: "Supply already meets the target",
			})
			continue
		}
		left, known := remaining[n.BatchUnit]
		if !known {
			blockers = append(blockers, CapacityBlocker{
				CropID:  n.CropID,
				Code:    BlockerUnknownUnit,
				Message: fmt.Sprintf("No capacity configured for %s", n.BatchUnit.Plural(2)),
			})
			continue
		}
		if left <= 0 {
			blockers = append(blockers, CapacityBlocker{
				CropID:  n.CropID,
				Code:    BlockerNoCapacity,
				Message: fmt.Sprintf("No free %s left", n.BatchUnit.Plural(2)),
			})
			continue
		}

		granted := clamp(n.RecommendedQty, 1, left)
		remaining[n.BatchUnit] = left - granted
		allocs = append(allocs, Allocation{
			Need:      n,
			Allocated: granted,
			Partial:   granted < n.RecommendedQty,
		})
	}
	return allocs, blockers
}

func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
