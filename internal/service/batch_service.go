package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/alexanderramin/furrow/internal/app"
	"github.com/alexanderramin/furrow/internal/catalog"
	"github.com/alexanderramin/furrow/internal/clock"
	"github.com/alexanderramin/furrow/internal/db"
	"github.com/alexanderramin/furrow/internal/domain"
	"github.com/alexanderramin/furrow/internal/events"
	"github.com/alexanderramin/furrow/internal/lifecycle"
	"github.com/alexanderramin/furrow/internal/repository"
	"github.com/alexanderramin/furrow/internal/sowing"
	"github.com/google/uuid"
)

// DefaultActor is recorded in stage history when a request names no one.
const DefaultActor = "furrow"

type batchService struct {
	batches   repository.BatchRepo
	uow       db.UnitOfWork
	catalog   *catalog.Catalog
	clock     clock.Clock
	planning  app.PlanningUseCase
	publisher events.Publisher
	observer  UseCaseObserver
}

// NewBatchService wires the batch use cases. planning is consulted only for
// plant-from-recommendation; publisher may be nil.
func NewBatchService(
	batches repository.BatchRepo,
	uow db.UnitOfWork,
	cat *catalog.Catalog,
	clk clock.Clock,
	planning app.PlanningUseCase,
	publisher events.Publisher,
	observers ...UseCaseObserver,
) app.BatchUseCase {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &batchService{
		batches:   batches,
		uow:       uow,
		catalog:   cat,
		clock:     clk,
		planning:  planning,
		publisher: publisher,
		observer:  useCaseObserverOrNoop(observers),
	}
}

func (s *batchService) Plant(ctx context.Context, req app.PlantRequest) (batch *domain.Batch, err error) {
	startedAt := time.Now()
	fields := map[string]any{"variety": req.VarietyID, "from_recommendation": req.FromRecommendation}
	defer func() { observe(ctx, s.observer, "plant", startedAt, fields, &err) }()

	now := clock.Resolve(s.clock, req.Now)
	by := actor(req.By)

	v, ok := s.catalog.ResolveProduct(req.VarietyID)
	if !ok {
		return nil, classify(fmt.Errorf("%w: %q", sowing.ErrUnknownVariety, req.VarietyID))
	}

	plant := sowing.PlantRequest{
		VarietyID: v.ID,
		Quantity:  req.Quantity,
		SowDate:   domain.DateOf(now),
		Source:    domain.SourceManual,
		Notes:     req.Notes,
		By:        by,
	}
	if req.SowDate != nil {
		plant.SowDate = domain.DateOf(*req.SowDate)
	}
	if req.FromRecommendation {
		need, err := s.currentNeed(ctx, v, now)
		if err != nil {
			return nil, err
		}
		if plant.Quantity <= 0 {
			plant.Quantity = need.RecommendedQty
		}
		if plant.Quantity <= 0 {
			return nil, classify(fmt.Errorf("%s: %w", v.Name, sowing.ErrNothingToPlant))
		}
		plant.Source = domain.SourceRecommendation
		if plant.Notes == "" {
			plant.Notes = need.Reason
		}
	}
	if plant.Quantity <= 0 {
		return nil, invalid("quantity must be positive, got %d", plant.Quantity)
	}

	b, err := sowing.NewBatch(s.catalog, plant, now)
	if err != nil {
		return nil, classify(err)
	}
	b.ID = uuid.New().String()
	fields["batch_id"] = b.ID
	fields["quantity"] = b.Quantity

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLiteBatchRepo(tx).Create(ctx, &b)
	})
	if err != nil {
		return nil, fmt.Errorf("planting %s: %w", v.ID, err)
	}

	if pubErr := s.publisher.Publish(ctx, events.NewBatchEvent(events.BatchPlanted, &b, "", by, now)); pubErr != nil {
		fields["event_error"] = pubErr.Error()
	}
	return &b, nil
}

// currentNeed returns today's recommendation for v. A variety without demand
// yields a zero need.
func (s *batchService) currentNeed(ctx context.Context, v *domain.Variety, now time.Time) (domain.SowingNeed, error) {
	if s.planning == nil {
		return domain.SowingNeed{}, fmt.Errorf("planting from recommendation: no planning service configured")
	}
	resp, err := s.planning.Recommend(ctx, app.RecommendRequest{Now: &now})
	if err != nil {
		return domain.SowingNeed{}, fmt.Errorf("loading recommendation: %w", err)
	}
	for _, n := range resp.Needs {
		if n.CropID == v.ID {
			return n, nil
		}
	}
	return domain.SowingNeed{CropID: v.ID, CropName: v.Name}, nil
}

func (s *batchService) Advance(ctx context.Context, req app.AdvanceRequest) (resp *app.TransitionResponse, err error) {
	startedAt := time.Now()
	fields := map[string]any{"batch_id": req.BatchID}
	defer func() { observe(ctx, s.observer, "advance", startedAt, fields, &err) }()

	now := clock.Resolve(s.clock, req.Now)
	by := actor(req.By)
	resp, err = s.transition(ctx, req.BatchID, func(b *domain.Batch) (*domain.BatchUpdate, error) {
		return lifecycle.Advance(s.catalog, b, now, by)
	})
	if err != nil {
		return nil, err
	}
	fields["from"] = string(resp.FromStage)
	fields["to"] = string(resp.ToStage)

	resp.EventErr = s.publisher.Publish(ctx, events.NewBatchEvent(events.BatchStageAdvanced, &resp.Batch, resp.FromStage, by, now))
	if resp.EventErr != nil {
		fields["event_error"] = resp.EventErr.Error()
	}
	return resp, nil
}

func (s *batchService) Harvest(ctx context.Context, req app.HarvestRequest) (resp *app.TransitionResponse, err error) {
	startedAt := time.Now()
	fields := map[string]any{"batch_id": req.BatchID}
	defer func() { observe(ctx, s.observer, "harvest", startedAt, fields, &err) }()

	if req.Yield != nil && (*req.Yield < 0 || math.IsNaN(*req.Yield) || math.IsInf(*req.Yield, 0)) {
		return nil, invalid("yield must be a finite number >= 0, got %g", *req.Yield)
	}
	now := clock.Resolve(s.clock, req.Now)
	by := actor(req.By)
	resp, err = s.transition(ctx, req.BatchID, func(b *domain.Batch) (*domain.BatchUpdate, error) {
		return lifecycle.Harvest(b, req.Yield, now, by)
	})
	if err != nil {
		return nil, err
	}
	fields["from"] = string(resp.FromStage)
	if req.Yield != nil {
		fields["yield"] = *req.Yield
	}

	resp.EventErr = s.publisher.Publish(ctx, events.NewBatchEvent(events.BatchHarvested, &resp.Batch, resp.FromStage, by, now))
	if resp.EventErr != nil {
		fields["event_error"] = resp.EventErr.Error()
	}
	return resp, nil
}

// transition reads the batch, computes the update and writes it in one transaction.
func (s *batchService) transition(ctx context.Context, id string, compute func(*domain.Batch) (*domain.BatchUpdate, error)) (*app.TransitionResponse, error) {
	var resp app.TransitionResponse
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repo := repository.NewSQLiteBatchRepo(tx)
		b, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		u, err := compute(b)
		if err != nil {
			return err
		}
		if err := repo.ApplyUpdate(ctx, b.ID, u); err != nil {
			return err
		}
		resp.FromStage = b.Stage
		resp.Batch = u.Apply(*b)
		resp.ToStage = resp.Batch.Stage
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}
	return &resp, nil
}

func (s *batchService) Show(ctx context.Context, id string) (*app.BatchView, error) {
	b, err := s.batches.GetByID(ctx, id)
	if err != nil {
		return nil, classify(err)
	}
	v := s.view(b, clock.Resolve(s.clock, nil))
	return &v, nil
}

func (s *batchService) List(ctx context.Context, req app.ListBatchesRequest) ([]app.BatchView, error) {
	if req.Category != "" && !req.Category.IsValid() {
		return nil, invalid("unknown category %q", req.Category)
	}
	batches, err := s.batches.List(ctx, repository.BatchFilter{
		IncludeHarvested: req.IncludeHarvested,
		VarietyID:        req.VarietyID,
		Category:         req.Category,
	})
	if err != nil {
		return nil, fmt.Errorf("listing batches: %w", err)
	}
	now := clock.Resolve(s.clock, req.Now)
	out := make([]app.BatchView, 0, len(batches))
	for _, b := range batches {
		out = append(out, s.view(b, now))
	}
	return out, nil
}

func (s *batchService) view(b *domain.Batch, now time.Time) app.BatchView {
	v := app.BatchView{
		GeneratedAt: now,
		Batch:       *b,
		StageLabel:  string(b.Stage),
		Window:      lifecycle.HarvestWindow(b, now),
	}
	if st, _, ok := lifecycle.ResolveStage(s.catalog, b); ok {
		v.StageLabel = st.Label
	}
	if a, ok := lifecycle.NextTransition(s.catalog, b, now); ok {
		v.Advisory = &a
	}
	if b.IsHarvested() {
		expected := b.ExpectedYield
		v.YieldAccuracy = lifecycle.YieldAccuracy(&expected, b.HarvestYield)
	}
	return v
}

func actor(by string) string {
	if by == "" {
		return DefaultActor
	}
	return by
}
