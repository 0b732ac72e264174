package app

import (
	"time"

	"github.com/alexanderramin/furrow/internal/domain"
	"github.com/alexanderramin/furrow/internal/lifecycle"
)

// PlantRequest starts a new batch. When FromRecommendation is set, Quantity may
// be zero and the current recommendation for the variety supplies it.
type PlantRequest struct {
	Now                *time.Time
	VarietyID          string
	Quantity           int
	SowDate            *time.Time
	Notes              string
	By                 string
	FromRecommendation bool
}

type AdvanceRequest struct {
	Now     *time.Time
	BatchID string
	By      string
}

type HarvestRequest struct {
	Now     *time.Time
	BatchID string
	// Yield is the weighed harvest in the variety's yield unit. Optional.
	Yield *float64
	By    string
}

type ListBatchesRequest struct {
	Now              *time.Time
	IncludeHarvested bool
	VarietyID        string
	Category         domain.CropCategory
}

// BatchView is a batch with its derived lifecycle state at GeneratedAt.
type BatchView struct {
	GeneratedAt time.Time
	Batch       domain.Batch
	StageLabel  string
	// Advisory is nil for harvested batches.
	Advisory      *lifecycle.Advisory
	Window        lifecycle.WindowStatus
	YieldAccuracy *int
}

// TransitionResponse reports a stage change applied to a batch.
type TransitionResponse struct {
	Batch     domain.Batch
	FromStage domain.StageID
	ToStage   domain.StageID
	// EventErr is set when the change committed but its event was not published.
	EventErr error
}
