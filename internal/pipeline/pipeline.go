// Package pipeline summarizes the batches currently in production per crop.
package pipeline

import (
	"github.com/alexanderramin/furrow/internal/catalog"
	"github.com/alexanderramin/furrow/internal/domain"
	"github.com/alexanderramin/furrow/internal/lifecycle"
)

type StageCount struct {
	Count int // batches
	Units int // trays/ports/blocks
}

type Pipeline struct {
	CropID          string
	Category        domain.CropCategory
	CurrentPipeline int
	ByStage         map[domain.StageID]StageCount
}

// Inspect groups active batches by variety. Harvested batches are skipped and a
// stage outside the category's list counts toward the first stage.
func Inspect(batches []domain.Batch, cat *catalog.Catalog) map[string]Pipeline {
	out := make(map[string]Pipeline)
	for i := range batches {
		b := &batches[i]
		if b.IsHarvested() || b.VarietyID == "" {
			continue
		}
		stage, category := groupingStage(cat, b)

		p, ok := out[b.VarietyID]
		if !ok {
			p = Pipeline{
				CropID:   b.VarietyID,
				Category: category,
				ByStage:  make(map[domain.StageID]StageCount),
			}
		}
		qty := max(0, b.Quantity)
		p.CurrentPipeline += qty
		sc := p.ByStage[stage]
		sc.Count++
		sc.Units += qty
		p.ByStage[stage] = sc
		out[b.VarietyID] = p
	}
	return out
}

func groupingStage(cat *catalog.Catalog, b *domain.Batch) (domain.StageID, domain.CropCategory) {
	def, ok := lifecycle.ResolveCategory(cat, b)
	if !ok {
		return b.Stage, b.Category
	}
	stage, _, _ := lifecycle.ResolveStage(cat, b)
	return stage.ID, def.Category
}

// Funnel returns per-stage totals across all crops of a category in stage order.
func Funnel(pipes map[string]Pipeline, cat *catalog.Catalog, category domain.CropCategory) []StageTotal {
	var out []StageTotal
	for _, s := range cat.Stages(category) {
		if s.ID == domain.StageHarvested {
			continue
		}
		total := StageTotal{Stage: s}
		for _, p := range pipes {
			if p.Category != category {
				continue
			}
			sc := p.ByStage[s.ID]
			total.Count += sc.Count
			total.Units += sc.Units
		}
		out = append(out, total)
	}
	return out
}

type StageTotal struct {
	Stage domain.Stage
	StageCount
}
