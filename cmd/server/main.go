package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/dairycoop/internal/config"
	"github.com/mamadbah2/dairycoop/internal/repository"
	"github.com/mamadbah2/dairycoop/internal/repository/memory"
	"github.com/mamadbah2/dairycoop/internal/repository/mongodb"
	"github.com/mamadbah2/dairycoop/internal/repository/sheets"
	"github.com/mamadbah2/dairycoop/internal/scheduler"
	"github.com/mamadbah2/dairycoop/internal/server/handlers"
	"github.com/mamadbah2/dairycoop/internal/server/router"
	commandsvc "github.com/mamadbah2/dairycoop/internal/service/commands"
	dairysvc "github.com/mamadbah2/dairycoop/internal/service/dairy"
	ledgersvc "github.com/mamadbah2/dairycoop/internal/service/ledger"
	reportingsvc "github.com/mamadbah2/dairycoop/internal/service/reporting"
	statssvc "github.com/mamadbah2/dairycoop/internal/service/stats"
	whatsappsvc "github.com/mamadbah2/dairycoop/internal/service/whatsapp"
	whatsappclient "github.com/mamadbah2/dairycoop/pkg/clients/whatsapp"
	"github.com/mamadbah2/dairycoop/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, baseLogger)
	if err != nil {
		baseLogger.Fatal("failed to init store", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close store", zap.Error(err))
		}
	}()

	var exporter reportingsvc.Exporter
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		exporter = sheets.NewReportExporter(sheetsRepo, baseLogger.Named("repo.sheets"))
	} else {
		baseLogger.Info("google sheets export disabled")
	}

	loc := cfg.Location()

	ledgerSvc := ledgersvc.NewService(store, baseLogger.Named("svc.ledger"))
	statsSvc := statssvc.NewService(store, baseLogger.Named("svc.stats"))
	dairySvc := dairysvc.NewService(store, ledgerSvc, statsSvc, loc, baseLogger.Named("svc.dairy"))
	reportingSvc := reportingsvc.NewService(store, ledgerSvc, exporter, baseLogger.Named("svc.reporting"))
	commandDispatcher := commandsvc.NewService(dairySvc, reportingSvc, loc, baseLogger.Named("svc.commands"))

	var whatsClient whatsappclient.Client
	if cfg.WhatsApp.Enabled() {
		whatsClient = whatsappclient.NewClient(cfg.WhatsApp)
	} else {
		baseLogger.Warn("whatsapp token missing, outbound messages will be dropped")
		whatsClient = whatsappclient.NewNoopClient(baseLogger.Named("client.whatsapp"))
	}
	messagingSvc := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, commandDispatcher, baseLogger.Named("svc.whatsapp"))

	engine := router.New(router.Handlers{
		Dairy:   handlers.NewDairyHandler(dairySvc, baseLogger.Named("handlers.dairy")),
		Reports: handlers.NewReportHandler(reportingSvc, ledgerSvc, dairySvc, baseLogger.Named("handlers.reports")),
		Webhook: handlers.NewWebhookHandler(messagingSvc, baseLogger.Named("handlers.whatsapp")),
	}, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(*cfg, reportingSvc, ledgerSvc, messagingSvc, baseLogger.Named("scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("storage", cfg.Storage.Driver))
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

func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.Store, error) {
	if cfg.Storage.Driver == config.StorageMemory {
		log.Warn("using in-memory store, data is lost on restart")
		return memory.New(), nil
	}
	return mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
}
