package app

import (
	"time"

	"github.com/alexanderramin/furrow/internal/board"
	"github.com/alexanderramin/furrow/internal/domain"
	"github.com/alexanderramin/furrow/internal/pipeline"
	"github.com/alexanderramin/furrow/internal/sowing"
)

type RecommendRequest struct {
	Now *time.Time
	// Category limits results to one crop category. Empty means all.
	Category domain.CropCategory
	// Plan allocates free capacity across the needs, most urgent first.
	Plan bool
	// Capacity overrides the configured free capacity when Plan is set.
	Capacity map[domain.Unit]int
}

func NewRecommendRequest() RecommendRequest {
	return RecommendRequest{}
}

type RecommendResponse struct {
	GeneratedAt   time.Time
	LookbackWeeks int
	TargetDays    float64
	Needs         []domain.SowingNeed
	// Allocations and Blockers are set only for planning requests.
	Allocations []sowing.Allocation
	Blockers    []sowing.CapacityBlocker
	// UnmatchedProducts are order item names no variety matched.
	UnmatchedProducts []string
	Warnings          []string
}

type PipelineRequest struct {
	Now      *time.Time
	Category domain.CropCategory
}

// CategoryFunnel is the per-stage total for one category.
type CategoryFunnel struct {
	Category domain.CropCategory
	Label    string
	Unit     domain.Unit
	Stages   []pipeline.StageTotal
}

type PipelineResponse struct {
	GeneratedAt time.Time
	// Pipelines is sorted by category order, then crop ID.
	Pipelines []pipeline.Pipeline
	Funnels   []CategoryFunnel
}

type BoardRequest struct {
	Now *time.Time
}

type BoardResponse struct {
	GeneratedAt time.Time
	Board       board.Board
}

type YieldReportRequest struct {
	VarietyID string
}

type YieldReportResponse struct {
	Calibrations []sowing.Calibration
}
