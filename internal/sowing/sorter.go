package sowing

import (
	"sort"

	"github.com/alexanderramin/furrow/internal/domain"
)

// SortNeeds orders needs by the canonical display rules:
// 1. Urgency: critical > warning > healthy
// 2. True days of supply: lowest first
// 3. Crop name: lexical ascending
// 4. Crop ID: lexical ascending
func SortNeeds(needs []domain.SowingNeed) {
	sort.SliceStable(needs, func(i, j int) bool {
		a, b := needs[i], needs[j]

		pa, pb := UrgencyPriority(a.Urgency), UrgencyPriority(b.Urgency)
		if pa != pb {
			return pa < pb
		}
		if a.DaysOfSupply != b.DaysOfSupply {
			return a.DaysOfSupply < b.DaysOfSupply
		}
		if a.CropName != b.CropName {
			return a.CropName < b.CropName
		}
		return a.CropID < b.CropID
	})
}
