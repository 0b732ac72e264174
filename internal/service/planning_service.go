package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/alexanderramin/furrow/internal/app"
	"github.com/alexanderramin/furrow/internal/board"
	"github.com/alexanderramin/furrow/internal/catalog"
	"github.com/alexanderramin/furrow/internal/clock"
	"github.com/alexanderramin/furrow/internal/demand"
	"github.com/alexanderramin/furrow/internal/domain"
	"github.com/alexanderramin/furrow/internal/pipeline"
	"github.com/alexanderramin/furrow/internal/repository"
	"github.com/alexanderramin/furrow/internal/sowing"
)

// PlanningSettings are the tunables of the recommendation run.
type PlanningSettings struct {
	LookbackWeeks   int
	TargetDays      float64
	CountedStatuses []domain.OrderStatus
	Capacity        map[domain.Unit]int
	// CalibrateYield replaces catalog yields with smoothed observed yields.
	CalibrateYield bool
}

func DefaultPlanningSettings() PlanningSettings {
	return PlanningSettings{
		LookbackWeeks:   demand.DefaultLookbackWeeks,
		TargetDays:      sowing.DefaultTargetDays,
		CountedStatuses: demand.DefaultCountedStatuses,
	}
}

type planningService struct {
	batches  repository.BatchRepo
	orders   repository.OrderRepo
	catalog  *catalog.Catalog
	clock    clock.Clock
	settings PlanningSettings
	observer UseCaseObserver
}

func NewPlanningService(
	batches repository.BatchRepo,
	orders repository.OrderRepo,
	cat *catalog.Catalog,
	clk clock.Clock,
	settings PlanningSettings,
	observers ...UseCaseObserver,
) app.PlanningUseCase {
	return &planningService{
		batches:  batches,
		orders:   orders,
		catalog:  cat,
		clock:    clk,
		settings: settings,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *planningService) Recommend(ctx context.Context, req app.RecommendRequest) (resp *app.RecommendResponse, err error) {
	startedAt := time.Now()
	fields := map[string]any{"plan": req.Plan}
	if req.Category != "" {
		fields["category"] = string(req.Category)
	}
	defer func() { observe(ctx, s.observer, "recommend", startedAt, fields, &err) }()

	if req.Category != "" && !req.Category.IsValid() {
		return nil, invalid("unknown category %q", req.Category)
	}
	now := clock.Resolve(s.clock, req.Now)

	needs, unmatched, err := s.needs(ctx, now)
	if err != nil {
		return nil, err
	}
	if req.Category != "" {
		needs = filterNeeds(needs, req.Category)
	}
	fields["needs"] = len(needs)

	resp = &app.RecommendResponse{
		GeneratedAt:       now,
		LookbackWeeks:     s.settings.LookbackWeeks,
		TargetDays:        s.targetDays(),
		Needs:             needs,
		UnmatchedProducts: unmatched,
	}
	if len(unmatched) > 0 {
		resp.Warnings = append(resp.Warnings,
			fmt.Sprintf("%d ordered product name(s) matched no variety", len(unmatched)))
	}
	if req.Plan {
		capacity := req.Capacity
		if capacity == nil {
			capacity = s.settings.Capacity
		}
		resp.Allocations, resp.Blockers = sowing.AllocateCapacity(needs, capacity)
		fields["allocated"] = len(resp.Allocations)
	}
	return resp, nil
}

// needs runs demand aggregation, pipeline inspection and the sowing engine as of now.
func (s *planningService) needs(ctx context.Context, now time.Time) ([]domain.SowingNeed, []string, error) {
	active, err := s.batches.List(ctx, repository.BatchFilter{})
	if err != nil {
		return nil, nil, fmt.Errorf("loading batches: %w", err)
	}

	filter := repository.OrderFilter{Statuses: s.settings.CountedStatuses}
	if len(filter.Statuses) == 0 {
		filter.Statuses = demand.DefaultCountedStatuses
	}
	if s.settings.LookbackWeeks > 0 {
		since := domain.AddDays(now, -7*s.settings.LookbackWeeks)
		filter.Since = &since
	}
	orders, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, nil, fmt.Errorf("loading orders: %w", err)
	}

	dem := demand.Aggregate(derefOrders(orders), s.catalog, demand.Options{
		Now:             now,
		LookbackWeeks:   s.settings.LookbackWeeks,
		CountedStatuses: filter.Statuses,
	})

	var overrides map[string]float64
	if s.settings.CalibrateYield {
		cals, err := s.calibrations(ctx, "")
		if err != nil {
			return nil, nil, err
		}
		overrides = make(map[string]float64, len(cals))
		for _, c := range cals {
			if c.Samples > 0 {
				overrides[c.VarietyID] = c.CalibratedYield
			}
		}
	}

	needs := sowing.Recommend(sowing.Input{
		Demand:         dem.ByCrop,
		Pipelines:      pipeline.Inspect(derefBatches(active), s.catalog),
		Catalog:        s.catalog,
		TargetDays:     s.settings.TargetDays,
		YieldOverrides: overrides,
	})
	return needs, dem.Unmatched, nil
}

func (s *planningService) targetDays() float64 {
	if s.settings.TargetDays > 0 {
		return s.settings.TargetDays
	}
	return sowing.DefaultTargetDays
}

func (s *planningService) Pipeline(ctx context.Context, req app.PipelineRequest) (*app.PipelineResponse, error) {
	if req.Category != "" && !req.Category.IsValid() {
		return nil, invalid("unknown category %q", req.Category)
	}
	now := clock.Resolve(s.clock, req.Now)

	active, err := s.batches.List(ctx, repository.BatchFilter{})
	if err != nil {
		return nil, fmt.Errorf("loading batches: %w", err)
	}
	pipes := pipeline.Inspect(derefBatches(active), s.catalog)

	resp := &app.PipelineResponse{GeneratedAt: now}
	for _, p := range pipes {
		if req.Category != "" && p.Category != req.Category {
			continue
		}
		resp.Pipelines = append(resp.Pipelines, p)
	}
	order := categoryOrder()
	sort.Slice(resp.Pipelines, func(i, j int) bool {
		a, b := resp.Pipelines[i], resp.Pipelines[j]
		if order[a.Category] != order[b.Category] {
			return order[a.Category] < order[b.Category]
		}
		return a.CropID < b.CropID
	})

	for _, def := range catalog.Categories() {
		if req.Category != "" && def.Category != req.Category {
			continue
		}
		resp.Funnels = append(resp.Funnels, app.CategoryFunnel{
			Category: def.Category,
			Label:    def.Label,
			Unit:     def.Unit,
			Stages:   pipeline.Funnel(pipes, s.catalog, def.Category),
		})
	}
	return resp, nil
}

func (s *planningService) Board(ctx context.Context, req app.BoardRequest) (resp *app.BoardResponse, err error) {
	startedAt := time.Now()
	fields := map[string]any{}
	defer func() { observe(ctx, s.observer, "board", startedAt, fields, &err) }()

	now := clock.Resolve(s.clock, req.Now)
	needs, _, err := s.needs(ctx, now)
	if err != nil {
		return nil, err
	}
	active, err := s.batches.List(ctx, repository.BatchFilter{})
	if err != nil {
		return nil, fmt.Errorf("loading batches: %w", err)
	}

	b := board.Build(derefBatches(active), needs, s.catalog, now)
	fields["advance"] = len(b.Advance)
	fields["harvest"] = len(b.Harvest)
	fields["sow_today"] = len(b.SowToday)
	return &app.BoardResponse{GeneratedAt: now, Board: b}, nil
}

func (s *planningService) YieldReport(ctx context.Context, req app.YieldReportRequest) (*app.YieldReportResponse, error) {
	if req.VarietyID != "" {
		if _, ok := s.catalog.Lookup(req.VarietyID); !ok {
			return nil, classify(fmt.Errorf("%w: %q", sowing.ErrUnknownVariety, req.VarietyID))
		}
	}
	cals, err := s.calibrations(ctx, req.VarietyID)
	if err != nil {
		return nil, err
	}
	return &app.YieldReportResponse{Calibrations: cals}, nil
}

// calibrations computes yield calibration for every catalog variety, or just
// varietyID when set.
func (s *planningService) calibrations(ctx context.Context, varietyID string) ([]sowing.Calibration, error) {
	all, err := s.batches.List(ctx, repository.BatchFilter{IncludeHarvested: true, VarietyID: varietyID})
	if err != nil {
		return nil, fmt.Errorf("loading harvest history: %w", err)
	}
	batches := derefBatches(all)

	var out []sowing.Calibration
	for _, v := range s.catalog.Varieties() {
		if varietyID != "" && v.ID != varietyID {
			continue
		}
		out = append(out, sowing.CalibrateYield(v, batches))
	}
	return out, nil
}

func filterNeeds(needs []domain.SowingNeed, category domain.CropCategory) []domain.SowingNeed {
	out := needs[:0:0]
	for _, n := range needs {
		if n.CropCategory == category {
			out = append(out, n)
		}
	}
	return out
}

func categoryOrder() map[domain.CropCategory]int {
	out := make(map[domain.CropCategory]int)
	for i, c := range domain.AllCategories() {
		out[c] = i
	}
	return out
}

func derefBatches(in []*domain.Batch) []domain.Batch {
	out := make([]domain.Batch, len(in))
	for i, b := range in {
		out[i] = *b
	}
	return out
}

func derefOrders(in []*domain.Order) []domain.Order {
	out := make([]domain.Order, len(in))
	for i, o := range in {
		out[i] = *o
	}
	return out
}
