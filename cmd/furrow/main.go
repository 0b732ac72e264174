package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexanderramin/furrow/internal/catalog"
	"github.com/alexanderramin/furrow/internal/cli"
	"github.com/alexanderramin/furrow/internal/clock"
	"github.com/alexanderramin/furrow/internal/config"
	"github.com/alexanderramin/furrow/internal/db"
	"github.com/alexanderramin/furrow/internal/events"
	"github.com/alexanderramin/furrow/internal/httpserver"
	"github.com/alexanderramin/furrow/internal/logging"
	"github.com/alexanderramin/furrow/internal/repository"
	"github.com/alexanderramin/furrow/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := logging.New(os.Stderr, cfg.Log.Level)

	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	database, err := db.OpenDB(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	publisher, err := newPublisher(cfg, logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	statuses, err := cfg.Statuses()
	if err != nil {
		return err
	}
	settings := service.PlanningSettings{
		LookbackWeeks:   cfg.Planning.LookbackWeeks,
		TargetDays:      cfg.Planning.TargetDays,
		CountedStatuses: statuses,
		Capacity:        cfg.FreeCapacity(),
		CalibrateYield:  cfg.Planning.CalibrateYield,
	}

	// Wire repositories and services
	batchRepo := repository.NewSQLiteBatchRepo(database)
	orderRepo := repository.NewSQLiteOrderRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)
	observer := service.NewLogUseCaseObserver(logger)
	clk := clock.System{}

	planning := service.NewPlanningService(batchRepo, orderRepo, cat, clk, settings, observer)
	batches := service.NewBatchService(batchRepo, uow, cat, clk, planning, publisher, observer)
	orders := service.NewOrderService(orderRepo, uow, observer)

	app := &cli.App{
		Planning:    planning,
		Batches:     batches,
		Orders:      orders,
		Catalog:     cat,
		DefaultAddr: cfg.HTTP.Addr,
	}
	app.Serve = func(ctx context.Context, addr string) error {
		srv := httpserver.New(httpserver.Deps{
			Planning: planning,
			Batches:  batches,
			Orders:   orders,
			Catalog:  cat,
			DB:       database,
			Logger:   logger,
		})
		return srv.ListenAndServe(ctx, addr)
	}

	// Detect interactive terminal for the harvest yield prompt.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}

func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.Catalog.Path != "" {
		cat, err := catalog.LoadFile(cfg.Catalog.Path)
		if err != nil {
			return nil, fmt.Errorf("loading catalog: %w", err)
		}
		return cat, nil
	}
	cat, err := catalog.Default()
	if err != nil {
		return nil, fmt.Errorf("loading built-in catalog: %w", err)
	}
	return cat, nil
}

// newPublisher sends batch events to Kafka when brokers are configured and to
// the log otherwise.
func newPublisher(cfg *config.Config, logger *slog.Logger) (events.Publisher, error) {
	if !cfg.EventsEnabled() {
		return events.LogPublisher{Logger: logger}, nil
	}
	p, err := events.NewKafkaPublisher(events.KafkaConfig{
		Brokers: cfg.Events.Brokers,
		Topic:   cfg.Events.Topic,
	})
	if err != nil {
		return nil, fmt.Errorf("configuring events: %w", err)
	}
	return p, nil
}
