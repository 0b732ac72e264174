// Package catalog holds the crop reference data: category stage sequences and
// per-variety grow parameters. A Catalog is loaded and validated once at start
// and is read-only afterwards, so it is safe for concurrent use.
package catalog

import (
	"strings"
	"time"

	"github.com/alexanderramin/furrow/internal/domain"
)

type Catalog struct {
	varieties map[string]*domain.Variety
	order     []string
	byName    map[string]string // lower-cased id, name or alias -> variety id
}

// Lookup returns the variety for id. Unknown ids return nil, false.
// The returned variety is shared and must not be modified.
func (c *Catalog) Lookup(id string) (*domain.Variety, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.varieties[id]
	return v, ok
}

// Varieties returns every variety in catalog order.
func (c *Catalog) Varieties() []*domain.Variety {
	out := make([]*domain.Variety, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.varieties[id])
	}
	return out
}

// ResolveProduct maps an order product name to a variety by id, display name or
// alias, case-insensitively.
func (c *Catalog) ResolveProduct(name string) (*domain.Variety, bool) {
	if c == nil {
		return nil, false
	}
	id, ok := c.byName[normalizeName(name)]
	if !ok {
		return nil, false
	}
	return c.varieties[id], true
}

// Category returns the definition of a category.
func (c *Catalog) Category(cat domain.CropCategory) (domain.CategoryDef, bool) {
	def, ok := categoryDefs[cat]
	return def, ok
}

// Stages returns the ordered stage list of a category, or nil when unknown.
func (c *Catalog) Stages(cat domain.CropCategory) []domain.Stage {
	return categoryDefs[cat].Stages
}

// EstimatedHarvest returns the harvest window for a variety sown on sowDate,
// or nil when the variety is unknown.
func (c *Catalog) EstimatedHarvest(varietyID string, sowDate time.Time) *domain.HarvestEstimate {
	v, ok := c.Lookup(varietyID)
	if !ok {
		return nil
	}
	start := domain.AddDays(sowDate, v.GrowDays)
	return &domain.HarvestEstimate{
		Start: start,
		End:   domain.AddDays(start, v.HarvestWindow),
	}
}

// ScheduleFor derives every schedule date of a batch sown on sowDate.
// Varieties that soak are soaked the day before sowing.
func ScheduleFor(v *domain.Variety, sowDate time.Time) domain.Schedule {
	sow := domain.DateOf(sowDate)
	s := domain.Schedule{
		SowDate:      sow,
		HarvestStart: domain.AddDays(sow, v.GrowDays),
	}
	s.HarvestEnd = domain.AddDays(s.HarvestStart, v.HarvestWindow)
	if v.SoakHours > 0 {
		soak := domain.AddDays(sow, -1)
		s.SoakDate = &soak
	}
	if v.BlackoutDays > 0 {
		uncover := domain.AddDays(sow, v.GerminationDays+v.BlackoutDays)
		s.UncoverDate = &uncover
	}
	return s
}

// ExpectedStageDays returns how long a batch of v is expected to stay in stage.
// Explicit StageDays overrides win. Otherwise microgreens use germination and
// blackout days with the light stage taking the rest of GrowDays; other
// categories give the first stage GerminationDays and split the remaining grow
// days evenly across the later pre-harvest stages.
func ExpectedStageDays(v *domain.Variety, stage domain.StageID) int {
	if v == nil || stage == domain.StageHarvested {
		return 0
	}
	if d, ok := v.StageDays[stage]; ok {
		return d
	}
	if v.Category == domain.CategoryMicrogreens {
		switch stage {
		case domain.StageSown:
			return v.GerminationDays
		case domain.StageBlackout:
			return v.BlackoutDays
		case domain.StageLight:
			return max(0, v.GrowDays-v.GerminationDays-v.BlackoutDays)
		}
		return 0
	}

	def, ok := categoryDefs[v.Category]
	if !ok {
		return 0
	}
	idx := def.StageIndex(stage)
	preHarvest := len(def.Stages) - 1
	if idx < 0 || idx >= preHarvest {
		return 0
	}
	if idx == 0 {
		return v.GerminationDays
	}
	rest := max(0, v.GrowDays-v.GerminationDays)
	slots := preHarvest - 1
	share := rest / slots
	if idx == preHarvest-1 {
		share += rest % slots
	}
	return share
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Categories returns the known category definitions in display order.
func Categories() []domain.CategoryDef {
	out := make([]domain.CategoryDef, 0, len(categoryDefs))
	for _, cat := range domain.AllCategories() {
		out = append(out, categoryDefs[cat])
	}
	return out
}
