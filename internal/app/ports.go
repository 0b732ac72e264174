package app

import (
	"context"
	"io"

	"github.com/alexanderramin/furrow/internal/domain"
)

type PlanningUseCase interface {
	Recommend(ctx context.Context, req RecommendRequest) (*RecommendResponse, error)
	Pipeline(ctx context.Context, req PipelineRequest) (*PipelineResponse, error)
	Board(ctx context.Context, req BoardRequest) (*BoardResponse, error)
	YieldReport(ctx context.Context, req YieldReportRequest) (*YieldReportResponse, error)
}

type BatchUseCase interface {
	Plant(ctx context.Context, req PlantRequest) (*domain.Batch, error)
	Advance(ctx context.Context, req AdvanceRequest) (*TransitionResponse, error)
	Harvest(ctx context.Context, req HarvestRequest) (*TransitionResponse, error)
	Show(ctx context.Context, id string) (*BatchView, error)
	List(ctx context.Context, req ListBatchesRequest) ([]BatchView, error)
}

type OrderUseCase interface {
	Import(ctx context.Context, r io.Reader) (*ImportOrdersResult, error)
	Record(ctx context.Context, req RecordOrderRequest) (*domain.Order, error)
	List(ctx context.Context, req ListOrdersRequest) ([]*domain.Order, error)
}
