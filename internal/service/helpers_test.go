package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/furrow/internal/app"
	"github.com/alexanderramin/furrow/internal/catalog"
	"github.com/alexanderramin/furrow/internal/clock"
	"github.com/alexanderramin/furrow/internal/db"
	"github.com/alexanderramin/furrow/internal/domain"
	"github.com/alexanderramin/furrow/internal/events"
	"github.com/alexanderramin/furrow/internal/repository"
	"github.com/alexanderramin/furrow/internal/testutil"
	"github.com/stretchr/testify/require"
)

// Sunday
var testNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

var crops = catalog.MustDefault()

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.BatchEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.BatchEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

type fixture struct {
	db        *sql.DB
	batches   repository.BatchRepo
	orders    repository.OrderRepo
	uow       db.UnitOfWork
	planning  app.PlanningUseCase
	batchSvc  app.BatchUseCase
	orderSvc  app.OrderUseCase
	publisher *recordingPublisher
	observer  *recordingObserver
}

func newFixture(t *testing.T, settings PlanningSettings) *fixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	f := &fixture{
		db:        database,
		batches:   repository.NewSQLiteBatchRepo(database),
		orders:    repository.NewSQLiteOrderRepo(database),
		uow:       testutil.NewTestUoW(database),
		publisher: &recordingPublisher{},
		observer:  &recordingObserver{},
	}
	clk := clock.Fixed{At: testNow}
	f.planning = NewPlanningService(f.batches, f.orders, crops, clk, settings, f.observer)
	f.batchSvc = NewBatchService(f.batches, f.uow, crops, clk, f.planning, f.publisher, f.observer)
	f.orderSvc = NewOrderService(f.orders, f.uow, f.observer)
	return f
}

func (f *fixture) addOrder(t *testing.T, daysAgo int, status domain.OrderStatus, items ...domain.OrderItem) {
	t.Helper()
	o := testutil.NewTestOrder(testNow.AddDate(0, 0, -daysAgo), testutil.WithOrderStatus(status))
	o.Items = items
	require.NoError(t, f.orders.Upsert(context.Background(), o))
}

func (f *fixture) addBatch(t *testing.T, b *domain.Batch) {
	t.Helper()
	require.NoError(t, f.batches.Create(context.Background(), b))
}

func item(name string, qty float64) domain.OrderItem {
	return domain.OrderItem{Name: name, Quantity: qty}
}

func ptr[T any](v T) *T { return &v }
