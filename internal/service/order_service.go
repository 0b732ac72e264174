package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/alexanderramin/furrow/internal/app"
	"github.com/alexanderramin/furrow/internal/db"
	"github.com/alexanderramin/furrow/internal/domain"
	"github.com/alexanderramin/furrow/internal/importer"
	"github.com/alexanderramin/furrow/internal/repository"
)

type orderService struct {
	orders   repository.OrderRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewOrderService(orders repository.OrderRepo, uow db.UnitOfWork, observers ...UseCaseObserver) app.OrderUseCase {
	return &orderService{
		orders:   orders,
		uow:      uow,
		observer: useCaseObserverOrNoop(observers),
	}
}

// Import upserts every valid order of an export in one transaction. Invalid
// orders are skipped and reported; they never abort the import.
func (s *orderService) Import(ctx context.Context, r io.Reader) (result *app.ImportOrdersResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{}
	defer func() { observe(ctx, s.observer, "import-orders", startedAt, fields, &err) }()

	export, err := importer.DecodeOrderExport(r)
	if err != nil {
		return nil, app.NewRequestError(app.ErrInvalidRequest, err)
	}

	result = &app.ImportOrdersResult{}
	seen := make(map[string]bool, len(export.Orders))
	var valid []*domain.Order
	for i := range export.Orders {
		raw := &export.Orders[i]
		errs := importer.ValidateOrder(i, raw)
		if raw.ID != "" && seen[raw.ID] {
			errs = append(errs, fmt.Errorf("orders[%d]: duplicate id %q", i, raw.ID))
		}
		if len(errs) > 0 {
			result.Rejected = append(result.Rejected, errors.Join(errs...).Error())
			continue
		}
		seen[raw.ID] = true
		o, err := importer.ConvertOrder(raw)
		if err != nil {
			result.Rejected = append(result.Rejected, err.Error())
			continue
		}
		valid = append(valid, o)
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repo := repository.NewSQLiteOrderRepo(tx)
		for _, o := range valid {
			if err := repo.Upsert(ctx, o); err != nil {
				return fmt.Errorf("order %s: %w", o.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("importing orders: %w", err)
	}

	for _, o := range valid {
		result.Items += len(o.Items)
	}
	result.Imported = len(valid)
	fields["imported"] = result.Imported
	fields["rejected"] = len(result.Rejected)
	return result, nil
}

func (s *orderService) Record(ctx context.Context, req app.RecordOrderRequest) (order *domain.Order, err error) {
	startedAt := time.Now()
	fields := map[string]any{"order_id": req.ID}
	defer func() { observe(ctx, s.observer, "record-order", startedAt, fields, &err) }()

	if errs := importer.ValidateOrder(0, &req); len(errs) > 0 {
		return nil, app.NewRequestError(app.ErrInvalidRequest, errors.Join(errs...))
	}
	order, err = importer.ConvertOrder(&req)
	if err != nil {
		return nil, app.NewRequestError(app.ErrInvalidRequest, err)
	}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLiteOrderRepo(tx).Upsert(ctx, order)
	})
	if err != nil {
		return nil, fmt.Errorf("recording order %s: %w", order.ID, err)
	}
	return order, nil
}

func (s *orderService) List(ctx context.Context, req app.ListOrdersRequest) ([]*domain.Order, error) {
	orders, err := s.orders.List(ctx, repository.OrderFilter{Since: req.Since, Statuses: req.Statuses})
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return orders, nil
}
