package main

import (
	"context"
	"fmt"

	inventoryapp "github.com/rentalcore/backend/internal/application/inventory"
	printingapp "github.com/rentalcore/backend/internal/application/printing"
	rentalapp "github.com/rentalcore/backend/internal/application/rental"
	appshared "github.com/rentalcore/backend/internal/application/shared"
	tradeapp "github.com/rentalcore/backend/internal/application/trade"
	"github.com/rentalcore/backend/internal/domain/inventory"
	"github.com/rentalcore/backend/internal/domain/rental"
	"github.com/rentalcore/backend/internal/domain/shared"
	"github.com/rentalcore/backend/internal/domain/trade"
	"github.com/rentalcore/backend/internal/infrastructure/auth"
	"github.com/rentalcore/backend/internal/infrastructure/cache"
	"github.com/rentalcore/backend/internal/infrastructure/config"
	"github.com/rentalcore/backend/internal/infrastructure/event"
	"github.com/rentalcore/backend/internal/infrastructure/persistence"
	infra "github.com/rentalcore/backend/internal/infrastructure/printing"
	"github.com/rentalcore/backend/internal/infrastructure/storage"
	"github.com/rentalcore/backend/internal/infrastructure/telemetry"
	"github.com/rentalcore/backend/internal/interfaces/http/handler"
	"github.com/rentalcore/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// application holds the wired services and what must be released on exit
type application struct {
	handlers router.Handlers
	tokens   *auth.JWTService

	log       *zap.Logger
	bus       *event.InMemoryEventBus
	business  *telemetry.BusinessMetrics
	idemStore shared.IdempotencyStore
	printer   *infra.DocumentPrinter
}

func buildApplication(ctx context.Context, cfg *config.Config, db *persistence.Database, meters *telemetry.MeterProvider, log *zap.Logger) (*application, error) {
	app := &application{log: log}
	clock := shared.SystemClock{}

	repos := persistence.NewRepositories(db.DB, clock)
	scope := persistence.NewGormTransactionScope(db.DB, clock)
	customers := persistence.NewGormCustomerDirectory(db.DB)
	locations := persistence.NewGormLocationDirectory(db.DB)

	// Events are published after commit; handlers only observe.
	app.bus = event.NewInMemoryEventBus(log)
	app.bus.Subscribe(event.NewLogHandler(log,
		trade.EventTypeTransactionCreated,
		trade.EventTypeTransactionCancelled,
		trade.EventTypePaymentApplied,
		trade.EventTypeRefundProcessed,
		rental.EventTypeReturnFinalized,
		rental.EventTypeDepositReleased,
		inventory.EventTypeStockBelowThreshold,
	))
	if meters.IsEnabled() {
		business, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:  meters.Meter("rentalcore/business"),
			Logger: log,
			Clock:  clock,
			State:  telemetry.NewGormRentalStateProvider(db.DB),
		})
		if err != nil {
			return nil, fmt.Errorf("business metrics: %w", err)
		}
		app.business = business
		app.bus.Subscribe(business, business.EventTypes()...)
	}
	if err := app.bus.Start(ctx); err != nil {
		return nil, fmt.Errorf("start event bus: %w", err)
	}

	var guard *appshared.IdempotencyGuard
	if cfg.Idempotency.Enabled {
		factory := cache.NewIdempotencyStoreFactory(cfg.Idempotency, cfg.Redis, log)
		store, err := factory.CreateStore(ctx)
		if err != nil {
			return nil, fmt.Errorf("idempotency store: %w", err)
		}
		app.idemStore = store
		guard = appshared.NewIdempotencyGuard(store, factory.GuardConfig())
	}

	inventoryOpts := []inventoryapp.Option{
		inventoryapp.WithLogger(log),
		inventoryapp.WithClock(clock),
		inventoryapp.WithEventPublisher(app.bus),
		inventoryapp.WithIdempotency(guard),
	}
	items := inventoryapp.NewItemService(scope, repos.ItemRepo, inventoryOpts...)
	units := inventoryapp.NewUnitService(scope, repos.UnitRepo, locations, inventoryOpts...)
	stock := inventoryapp.NewStockService(scope, repos.StockRepo, inventoryOpts...)

	tradeOpts := []tradeapp.Option{
		tradeapp.WithLogger(log),
		tradeapp.WithClock(clock),
		tradeapp.WithEventPublisher(app.bus),
		tradeapp.WithIdempotency(guard),
		tradeapp.WithCustomerDirectory(customers),
		tradeapp.WithDefaultTaxRate(cfg.Rental.DefaultTaxRate),
	}
	txns := tradeapp.NewTransactionService(scope, repos.TransactionRepo, tradeOpts...)
	rentals := tradeapp.NewRentalService(scope, tradeOpts...)
	sales := tradeapp.NewSalesService(scope, tradeOpts...)

	rentalOpts := []rentalapp.Option{
		rentalapp.WithLogger(log),
		rentalapp.WithClock(clock),
		rentalapp.WithEventPublisher(app.bus),
	}
	if cfg.Storage.Enabled {
		evidence, err := storage.NewS3ObjectStorage(cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignExpiration(cfg.Storage.PresignExpiration),
			storage.WithClock(clock),
		)
		if err != nil {
			return nil, fmt.Errorf("evidence storage: %w", err)
		}
		if err := evidence.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("evidence bucket: %w", err)
		}
		rentalOpts = append(rentalOpts, rentalapp.WithEvidenceStorage(evidence, cfg.Storage.PresignExpiration))
	}
	returns := rentalapp.NewReturnService(scope, repos.ReturnRepo, repos.TransactionRepo, repos.ItemRepo, rentalOpts...)
	inspections := rentalapp.NewInspectionService(scope, repos.InspectionRepo, rentalOpts...)

	// a nil *DocumentPrinter must not reach the interface
	var printer printingapp.Printer
	if cfg.Printing.Enabled {
		engine, err := infra.NewTemplateEngine()
		if err != nil {
			return nil, fmt.Errorf("document templates: %w", err)
		}
		app.printer = infra.NewDocumentPrinter(engine, infra.NewChromedpRenderer(cfg.Printing, log))
		printer = app.printer
	}
	documents := printingapp.NewDocumentService(
		repos.TransactionRepo, repos.ReturnRepo, repos.ItemRepo, repos.UnitRepo,
		printer,
		infra.CompanyInfo{Name: cfg.Rental.CompanyName, Currency: cfg.Rental.Currency},
		printingapp.WithLogger(log),
		printingapp.WithClock(clock),
	)

	if cfg.JWT.Enabled {
		app.tokens = auth.NewJWTService(cfg.JWT, clock)
	}

	health := handler.NewHealthHandler(version).
		WithCheck("database", db.Ping)
	if app.idemStore != nil {
		store := app.idemStore
		health.WithCheck("idempotency", func(ctx context.Context) error {
			_, err := store.IsProcessed(ctx, "health")
			return err
		})
	}

	app.handlers = router.Handlers{
		Health:       health,
		Items:        handler.NewItemHandler(items),
		Units:        handler.NewUnitHandler(units),
		Stock:        handler.NewStockHandler(stock),
		Transactions: handler.NewTransactionHandler(txns, rentals, sales, returns, documents),
		Returns:      handler.NewReturnHandler(returns, txns, documents),
		Inspections:  handler.NewInspectionHandler(inspections),
		Audit:        handler.NewAuditHandler(appshared.NewAuditService(repos.AuditRepo)),
	}

	log.Info("Application wired",
		zap.Bool("idempotency", guard != nil),
		zap.Bool("evidence_storage", cfg.Storage.Enabled),
		zap.Bool("printing", cfg.Printing.Enabled),
		zap.Bool("jwt", cfg.JWT.Enabled),
		zap.Bool("business_metrics", app.business != nil),
	)
	return app, nil
}

// close stops the event bus and releases the optional integrations
func (a *application) close(ctx context.Context) {
	if err := a.bus.Stop(ctx); err != nil {
		a.log.Warn("Error stopping event bus", zap.Error(err))
	}
	if a.business != nil {
		if err := a.business.Stop(); err != nil {
			a.log.Warn("Error stopping business metrics", zap.Error(err))
		}
	}
	if a.printer != nil {
		if err := a.printer.Close(); err != nil {
			a.log.Warn("Error closing document printer", zap.Error(err))
		}
	}
	if a.idemStore != nil {
		if err := a.idemStore.Close(); err != nil {
			a.log.Warn("Error closing idempotency store", zap.Error(err))
		}
	}
}
