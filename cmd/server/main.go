package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/prepflow/backoffice/internal/config"
	"github.com/prepflow/backoffice/internal/events"
	"github.com/prepflow/backoffice/internal/repository/mongodb"
	"github.com/prepflow/backoffice/internal/repository/sheets"
	"github.com/prepflow/backoffice/internal/scheduler"
	"github.com/prepflow/backoffice/internal/server/handlers"
	"github.com/prepflow/backoffice/internal/server/router"
	bomsvc "github.com/prepflow/backoffice/internal/service/bom"
	inventorysvc "github.com/prepflow/backoffice/internal/service/inventory"
	reportingsvc "github.com/prepflow/backoffice/internal/service/reporting"
	stockcountsvc "github.com/prepflow/backoffice/internal/service/stockcount"
	"github.com/prepflow/backoffice/pkg/clients/webhook"
	"github.com/prepflow/backoffice/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	store, err := mongodb.NewStore(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName, baseLogger.Named("repo.mongodb"))
	if err != nil {
		baseLogger.Fatal("failed to init mongodb store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	var sheetsRepo sheets.Repository
	if cfg.SheetsEnabled() {
		sheetsRepo, err = sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		baseLogger.Info("google sheets export enabled")
	} else {
		baseLogger.Warn("google sheets export disabled, credentials not configured")
	}

	bus := events.NewBus(baseLogger.Named("events"))

	inventorySvc := inventorysvc.NewService(store, bus, cfg.Inventory.ClampNegativeOnHand, baseLogger.Named("svc.inventory"))
	bomSvc := bomsvc.NewService(store, baseLogger.Named("svc.bom"))
	stockCountSvc := stockcountsvc.NewService(store, baseLogger.Named("svc.stockcount"))
	reportingSvc := reportingsvc.NewService(store, sheetsRepo, baseLogger.Named("svc.reporting"))

	// Cost changes flow from the purchase order processor to the BOM
	// propagation engine through the bus, not through store watching.
	bus.Subscribe(bomSvc.Propagate)

	if cfg.Webhook.URL != "" {
		notifier := webhook.NewClient(cfg.Webhook.URL)
		bus.Subscribe(notifier.NotifyCostChange)
		baseLogger.Info("cost change webhook enabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if cfg.Inventory.WatchRawGoods {
		// For deployments where other writers share the database: diff
		// raw-good snapshots arriving on the change stream.
		watcher := bomsvc.NewWatcher(store, bus, baseLogger.Named("svc.bom.watcher"))
		stopWatch, err := watcher.Start(ctx)
		if err != nil {
			baseLogger.Fatal("failed to start raw goods watcher", zap.Error(err))
		}
		defer stopWatch()
	}

	sched := scheduler.NewScheduler(cfg.Valuation, reportingSvc, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	engine := router.New(router.Handlers{
		RawGoods:    handlers.NewRawGoodsHandler(inventorySvc, baseLogger.Named("handlers.rawgoods")),
		Orders:      handlers.NewOrdersHandler(inventorySvc, baseLogger.Named("handlers.orders")),
		BOM:         handlers.NewBOMHandler(bomSvc, baseLogger.Named("handlers.bom")),
		StockCounts: handlers.NewStockCountsHandler(stockCountSvc, baseLogger.Named("handlers.stockcounts")),
		Reports:     handlers.NewReportsHandler(reportingSvc, baseLogger.Named("handlers.reports")),
	}, baseLogger.Named("router"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
