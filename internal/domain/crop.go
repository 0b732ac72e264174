package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Stage struct {
	ID          StageID
	Label       string
	Description string
}

// CategoryDef describes a crop category: the unit batches are counted in and the
// ordered stage list. The last stage is always StageHarvested.
type CategoryDef struct {
	Category CropCategory
	Label    string
	Unit     Unit
	Stages   []Stage
}

// FirstStage returns the stage every new batch of this category starts in.
func (c CategoryDef) FirstStage() Stage {
	return c.Stages[0]
}

// StageIndex returns the position of id in the stage list, or -1.
func (c CategoryDef) StageIndex(id StageID) int {
	for i, s := range c.Stages {
		if s.ID == id {
			return i
		}
	}
	return -1
}

type Variety struct {
	ID       string
	Name     string
	Category CropCategory

	// Schedule
	GrowDays        int // sow to first harvestable day
	HarvestWindow   int // days the batch stays harvestable once ready
	GerminationDays int
	BlackoutDays    int // microgreens only
	SoakHours       int

	// Yield is measured in YieldUnit per batch unit (tray/port/block).
	YieldPerUnit float64
	YieldUnit    string

	// SeedCost is per batch unit; WholesalePrice is per YieldUnit.
	SeedCost       decimal.Decimal
	WholesalePrice decimal.Decimal

	// PlantingDays are the weekdays on which succession sowing is scheduled.
	PlantingDays []time.Weekday
	// StageDays overrides the derived expected duration of individual stages.
	StageDays map[StageID]int
	// Aliases are order product names that refer to this variety.
	Aliases []string
}

type HarvestEstimate struct {
	Start time.Time
	End   time.Time
}

// Schedule holds the dates derived from a variety and a sow date.
type Schedule struct {
	SowDate      time.Time
	SoakDate     *time.Time
	UncoverDate  *time.Time
	HarvestStart time.Time
	HarvestEnd   time.Time
}
