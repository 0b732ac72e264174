package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/furrow/internal/domain"
)

// BatchFilter narrows BatchRepo.List. The zero value lists active batches.
type BatchFilter struct {
	IncludeHarvested bool
	VarietyID        string
	Category         domain.CropCategory
}

type BatchRepo interface {
	Create(ctx context.Context, b *domain.Batch) error
	GetByID(ctx context.Context, id string) (*domain.Batch, error)
	List(ctx context.Context, f BatchFilter) ([]*domain.Batch, error)
	// ApplyUpdate writes the set fields of u and appends its history entry.
	ApplyUpdate(ctx context.Context, id string, u *domain.BatchUpdate) error
}

// OrderFilter narrows OrderRepo.List. Since compares against the order's
// demand date (requested delivery, else creation).
type OrderFilter struct {
	Since    *time.Time
	Statuses []domain.OrderStatus
}

type OrderRepo interface {
	// Upsert inserts the order or replaces it and its items.
	Upsert(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, f OrderFilter) ([]*domain.Order, error)
}
