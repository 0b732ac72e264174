package testutil

import (
	"time"

	"github.com/alexanderramin/furrow/internal/domain"
	"github.com/google/uuid"
)

// Batch options
type BatchOption func(*domain.Batch)

func WithVariety(id, name string, category domain.CropCategory, unit domain.Unit) BatchOption {
	return func(b *domain.Batch) {
		b.VarietyID = id
		b.VarietyName = name
		b.Category = category
		b.Unit = unit
	}
}

func WithQuantity(n int) BatchOption {
	return func(b *domain.Batch) {
		b.Quantity = n
	}
}

// WithStage moves the batch to stage, recording the entry at enteredAt.
func WithStage(stage domain.StageID, enteredAt time.Time) BatchOption {
	return func(b *domain.Batch) {
		b.Stage = stage
		b.StageHistory = append(b.StageHistory, domain.StageEntry{Stage: stage, EnteredAt: enteredAt, By: "test"})
	}
}

func WithSowDate(d time.Time) BatchOption {
	return func(b *domain.Batch) {
		b.SowDate = domain.DateOf(d)
		if len(b.StageHistory) > 0 {
			b.StageHistory[0].EnteredAt = b.SowDate
		}
	}
}

func WithHarvestWindow(start, end time.Time) BatchOption {
	return func(b *domain.Batch) {
		s, e := domain.DateOf(start), domain.DateOf(end)
		b.EstimatedHarvestStart = &s
		b.EstimatedHarvestEnd = &e
	}
}

func WithHarvest(at time.Time, yield float64) BatchOption {
	return func(b *domain.Batch) {
		b.Stage = domain.StageHarvested
		b.HarvestedAt = &at
		b.HarvestYield = &yield
		b.StageHistory = append(b.StageHistory, domain.StageEntry{Stage: domain.StageHarvested, EnteredAt: at, By: "test"})
	}
}

func WithExpectedYield(y float64) BatchOption {
	return func(b *domain.Batch) {
		b.ExpectedYield = y
	}
}

func WithNotes(n string) BatchOption {
	return func(b *domain.Batch) {
		b.Notes = n
	}
}

// NewTestBatch returns a freshly sown sunflower batch of 2 trays.
func NewTestBatch(sowDate time.Time, opts ...BatchOption) *domain.Batch {
	now := time.Now().UTC().Truncate(time.Second)
	sow := domain.DateOf(sowDate)
	b := &domain.Batch{
		ID:           uuid.New().String(),
		Category:     domain.CategoryMicrogreens,
		VarietyID:    "sunflower",
		VarietyName:  "Sunflower",
		Quantity:     2,
		Unit:         domain.UnitTray,
		Stage:        domain.StageSown,
		Source:       domain.SourceManual,
		SowDate:      sow,
		StageHistory: []domain.StageEntry{{Stage: domain.StageSown, EnteredAt: sow, By: "test"}},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Order options
type OrderOption func(*domain.Order)

func WithItem(name string, qty float64) OrderOption {
	return func(o *domain.Order) {
		o.Items = append(o.Items, domain.OrderItem{Name: name, Quantity: qty})
	}
}

func WithOrderStatus(s domain.OrderStatus) OrderOption {
	return func(o *domain.Order) {
		o.Status = s
	}
}

func WithDeliveryDate(d time.Time) OrderOption {
	return func(o *domain.Order) {
		day := domain.DateOf(d)
		o.RequestedDeliveryDate = &day
	}
}

func WithCustomer(c string) OrderOption {
	return func(o *domain.Order) {
		o.Customer = c
	}
}

// NewTestOrder returns a placed order with no items created at createdAt.
func NewTestOrder(createdAt time.Time, opts ...OrderOption) *domain.Order {
	o := &domain.Order{
		ID:        uuid.New().String(),
		Customer:  "Test Bistro",
		Status:    domain.OrderPlaced,
		CreatedAt: createdAt.UTC().Truncate(time.Second),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
