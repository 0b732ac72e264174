// Package events publishes batch lifecycle events after their writes commit.
package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/alexanderramin/furrow/internal/domain"
)

type Type string

const (
	BatchPlanted       Type = "batch.planted"
	BatchStageAdvanced Type = "batch.stage_advanced"
	BatchHarvested     Type = "batch.harvested"
)

// BatchEvent is the JSON payload of every batch event. Kafka messages are keyed
// by BatchID so one batch's events stay ordered within a partition.
type BatchEvent struct {
	Type       Type           `json:"type"`
	BatchID    string         `json:"batch_id"`
	VarietyID  string         `json:"variety_id"`
	Category   string         `json:"category"`
	Quantity   int            `json:"quantity"`
	Unit       string         `json:"unit"`
	Stage      domain.StageID `json:"stage"`
	FromStage  domain.StageID `json:"from_stage,omitempty"`
	Yield      *float64       `json:"yield,omitempty"`
	By         string         `json:"by,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// NewBatchEvent snapshots b after a transition. from is the stage b left, if any.
func NewBatchEvent(t Type, b *domain.Batch, from domain.StageID, by string, at time.Time) BatchEvent {
	return BatchEvent{
		Type:       t,
		BatchID:    b.ID,
		VarietyID:  b.VarietyID,
		Category:   string(b.Category),
		Quantity:   b.Quantity,
		Unit:       string(b.Unit),
		Stage:      b.Stage,
		FromStage:  from,
		Yield:      b.HarvestYield,
		By:         by,
		OccurredAt: at.UTC(),
	}
}

// Publisher delivers batch events. Callers treat errors as non-fatal.
type Publisher interface {
	Publish(ctx context.Context, e BatchEvent) error
	Close() error
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, BatchEvent) error { return nil }
func (NoopPublisher) Close() error                              { return nil }

// LogPublisher writes events to a logger. Used when no brokers are configured.
type LogPublisher struct {
	Logger *slog.Logger
}

func (p LogPublisher) Publish(ctx context.Context, e BatchEvent) error {
	if p.Logger == nil {
		return nil
	}
	attrs := []any{"type", string(e.Type), "batch_id", e.BatchID, "variety", e.VarietyID, "stage", string(e.Stage)}
	if e.FromStage != "" {
		attrs = append(attrs, "from_stage", string(e.FromStage))
	}
	if e.Yield != nil {
		attrs = append(attrs, "yield", *e.Yield)
	}
	p.Logger.InfoContext(ctx, "batch_event", attrs...)
	return nil
}

func (LogPublisher) Close() error { return nil }
