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

	"github.com/mamadbah2/salesdesk/internal/config"
	"github.com/mamadbah2/salesdesk/internal/repository/sheets"
	"github.com/mamadbah2/salesdesk/internal/repository/stores"
	"github.com/mamadbah2/salesdesk/internal/scheduler"
	"github.com/mamadbah2/salesdesk/internal/server/handlers"
	"github.com/mamadbah2/salesdesk/internal/server/router"
	catalogsvc "github.com/mamadbah2/salesdesk/internal/service/catalog"
	directorysvc "github.com/mamadbah2/salesdesk/internal/service/directory"
	exportsvc "github.com/mamadbah2/salesdesk/internal/service/export"
	notifysvc "github.com/mamadbah2/salesdesk/internal/service/notify"
	reportingsvc "github.com/mamadbah2/salesdesk/internal/service/reporting"
	salessvc "github.com/mamadbah2/salesdesk/internal/service/sales"
	"github.com/mamadbah2/salesdesk/pkg/clients/pricelist"
	whatsappclient "github.com/mamadbah2/salesdesk/pkg/clients/whatsapp"
	"github.com/mamadbah2/salesdesk/pkg/logger"
)

const lookupTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	loc, err := cfg.Reporting.Location()
	if err != nil {
		baseLogger.Fatal("failed to load timezone", zap.Error(err))
	}

	store, err := stores.Open(context.Background(), cfg.Store)
	if err != nil {
		baseLogger.Fatal("failed to init store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close store", zap.Error(err))
		}
	}()

	catalogSvc := catalogsvc.NewService(store, baseLogger.Named("svc.catalog"))
	if err := catalogSvc.SeedDefaults(context.Background()); err != nil {
		baseLogger.Fatal("failed to seed bottle types", zap.Error(err))
	}

	var lookup salessvc.CatalogLookup = catalogSvc
	if cfg.Forms.CatalogLookupURL != "" {
		lookup = pricelist.NewClient(cfg.Forms.CatalogLookupURL, lookupTimeout)
		baseLogger.Info("remote price list enabled", zap.String("url", cfg.Forms.CatalogLookupURL))
	}

	sessions := salessvc.NewSessionManager(cfg.Forms.SessionTTL)
	salesSvc := salessvc.NewService(store, lookup, sessions, baseLogger.Named("svc.sales"))
	directorySvc := directorysvc.NewService(store, directorysvc.NewBroadcaster(), baseLogger.Named("svc.directory"))
	reportingSvc := reportingsvc.NewService(store, loc, baseLogger.Named("svc.reporting"))

	var sheetRepo sheets.Repository
	if cfg.Sheets.Enabled() {
		repo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		sheetRepo = repo
	} else {
		baseLogger.Warn("google sheets export not configured, nightly sync disabled")
	}
	exportSvc := exportsvc.NewService(store, sheetRepo, loc, baseLogger.Named("svc.export"))

	var whatsClient whatsappclient.Client
	if cfg.WhatsApp.Enabled() {
		whatsClient = whatsappclient.NewClient(cfg.WhatsApp)
	} else {
		baseLogger.Warn("whatsapp token missing, weekly digest disabled")
	}
	notifySvc := notifysvc.NewService(whatsClient, reportingSvc, cfg.WhatsApp.DigestTo, baseLogger.Named("svc.notify"))

	var syncer scheduler.SheetSyncer
	if sheetRepo != nil {
		syncer = exportSvc
	}
	sched := scheduler.NewScheduler(*cfg, loc, notifySvc, syncer, sessions, baseLogger.Named("scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	engine := router.New(router.Handlers{
		Forms:     handlers.NewFormHandler(salesSvc, baseLogger.Named("handlers.forms")),
		Sales:     handlers.NewSalesHandler(salesSvc, baseLogger.Named("handlers.sales")),
		Catalog:   handlers.NewCatalogHandler(catalogSvc, salesSvc, baseLogger.Named("handlers.catalog")),
		Directory: handlers.NewDirectoryHandler(directorySvc, baseLogger.Named("handlers.directory")),
		Reports:   handlers.NewReportHandler(reportingSvc, exportSvc, notifySvc, baseLogger.Named("handlers.reports")),
	}, baseLogger.Named("router"))

	// No write timeout: location event streams stay open.
	srv := &http.Server{
		Addr:        ":" + cfg.Server.Port,
		Handler:     engine,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("store", cfg.Store.Driver))
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
