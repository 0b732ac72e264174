package catalog

import "github.com/alexanderramin/furrow/internal/domain"

var harvestedStage = domain.Stage{
	ID:          domain.StageHarvested,
	Label:       "Harvested",
	Description: "Cut, weighed and moved to the cooler",
}

// categoryDefs is the closed set of crop categories and their stage sequences.
var categoryDefs = map[domain.CropCategory]domain.CategoryDef{
	domain.CategoryMicrogreens: {
		Category: domain.CategoryMicrogreens,
		Label:    "Microgreens",
		Unit:     domain.UnitTray,
		Stages: []domain.Stage{
			{ID: domain.StageSown, Label: "Sown", Description: "Seeded and stacked under weight to germinate"},
			{ID: domain.StageBlackout, Label: "Blackout", Description: "Unstacked and covered to stretch stems"},
			{ID: domain.StageLight, Label: "Light", Description: "Uncovered on the light rack"},
			harvestedStage,
		},
	},
	domain.CategoryLeafyGreens: {
		Category: domain.CategoryLeafyGreens,
		Label:    "Leafy Greens",
		Unit:     domain.UnitPort,
		Stages: []domain.Stage{
			{ID: domain.StageSeeded, Label: "Seeded", Description: "Seeded into plugs"},
			{ID: domain.StageGermination, Label: "Germination", Description: "Sprouting in the nursery"},
			{ID: domain.StageTransplanted, Label: "Transplanted", Description: "Moved into tower ports"},
			{ID: domain.StageGrowing, Label: "Growing", Description: "Bulking up in the towers"},
			harvestedStage,
		},
	},
	domain.CategoryHerbs: {
		Category: domain.CategoryHerbs,
		Label:    "Herbs",
		Unit:     domain.UnitPort,
		Stages: []domain.Stage{
			{ID: domain.StageSeeded, Label: "Seeded", Description: "Seeded into plugs"},
			{ID: domain.StageGermination, Label: "Germination", Description: "Sprouting in the nursery"},
			{ID: domain.StageTransplanted, Label: "Transplanted", Description: "Moved into tower ports"},
			{ID: domain.StageGrowing, Label: "Growing", Description: "Growing to first cut"},
			harvestedStage,
		},
	},
	domain.CategoryMushrooms: {
		Category: domain.CategoryMushrooms,
		Label:    "Mushrooms",
		Unit:     domain.UnitBlock,
		Stages: []domain.Stage{
			{ID: domain.StageInoculated, Label: "Inoculated", Description: "Substrate block inoculated with spawn"},
			{ID: domain.StageColonizing, Label: "Colonizing", Description: "Mycelium running through the block"},
			{ID: domain.StagePinning, Label: "Pinning", Description: "Block opened, primordia forming"},
			{ID: domain.StageFruiting, Label: "Fruiting", Description: "Clusters developing in the fruiting room"},
			harvestedStage,
		},
	},
}
