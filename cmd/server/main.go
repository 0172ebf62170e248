package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/shankarelec/stocktrack/internal/auth"
	"github.com/shankarelec/stocktrack/internal/config"
	sheetsexport "github.com/shankarelec/stocktrack/internal/export/sheets"
	inventoryrepo "github.com/shankarelec/stocktrack/internal/repository/inventory"
	"github.com/shankarelec/stocktrack/internal/scheduler"
	"github.com/shankarelec/stocktrack/internal/server/handlers"
	"github.com/shankarelec/stocktrack/internal/server/router"
	"github.com/shankarelec/stocktrack/internal/service/sales"
	"github.com/shankarelec/stocktrack/internal/service/stock"
	"github.com/shankarelec/stocktrack/internal/service/views"
	"github.com/shankarelec/stocktrack/pkg/clients/notify"
	"github.com/shankarelec/stocktrack/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	loc := cfg.Location()

	var repo inventoryrepo.Repository
	if cfg.MongoDB.URI != "" {
		mongoRepo, err := inventoryrepo.NewMongoRepository(context.Background(), cfg.MongoDB, baseLogger.Named("repo.inventory"))
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		repo = mongoRepo
	} else {
		baseLogger.Warn("MONGODB_URI not set, using in-memory repository")
		repo = inventoryrepo.NewMemoryRepository()
	}

	store := stock.NewStore(repo, baseLogger.Named("svc.stock"))
	watcher := stock.NewWatcher(repo, store.Sync(), baseLogger.Named("svc.stock.watch"))
	projector := views.NewProjector(loc, cfg.Reporting.OverdueDays)
	aggregator := sales.NewAggregator(loc)

	var exporter sheetsexport.Exporter
	if cfg.Sheets.SpreadsheetID != "" {
		sheetExporter, err := sheetsexport.NewGoogleSheetExporter(context.Background(), cfg.Sheets, loc, baseLogger.Named("export.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets exporter", zap.Error(err))
		}
		exporter = sheetExporter
		baseLogger.Info("sheets export enabled")
	} else {
		baseLogger.Warn("sheets export not configured")
	}

	var notifier notify.Client
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewWebhookClient(cfg.Notify)
		baseLogger.Info("overdue webhook alerts enabled")
	}

	authProvider := auth.NewProvider(cfg.Auth, baseLogger.Named("auth"))

	// Data sync follows the session: sign-in opens a fresh watch session,
	// sign-out tears it down so stale events cannot leak into a later one.
	unsubscribe := authProvider.OnAuthChange(func(user *auth.User) {
		if user != nil {
			watcher.Start()
			return
		}
		watcher.Stop()
	})
	defer unsubscribe()
	defer watcher.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go store.Run(ctx)

	inventoryHandler := handlers.NewInventoryHandler(store, projector, aggregator, exporter, loc, baseLogger.Named("handlers.inventory"))
	authHandler := handlers.NewAuthHandler(authProvider, baseLogger.Named("handlers.auth"))
	engine := router.New(inventoryHandler, authHandler, authProvider, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg.Reporting, loc, store, projector, exporter, notifier, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

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
