package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/farmreports/internal/config"
	"github.com/mamadbah2/farmreports/internal/repository/kvstore"
	"github.com/mamadbah2/farmreports/internal/repository/mongodb"
	"github.com/mamadbah2/farmreports/internal/repository/redisstore"
	"github.com/mamadbah2/farmreports/internal/repository/sheets"
	"github.com/mamadbah2/farmreports/internal/scheduler"
	"github.com/mamadbah2/farmreports/internal/server/handlers"
	"github.com/mamadbah2/farmreports/internal/server/router"
	reportingsvc "github.com/mamadbah2/farmreports/internal/service/reporting"
	"github.com/mamadbah2/farmreports/pkg/clients/notify"
	"github.com/mamadbah2/farmreports/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	loc, err := cfg.Reporting.Location()
	if err != nil {
		baseLogger.Fatal("invalid timezone", zap.Error(err))
	}

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	var mongoClient *mongodb.Client
	if cfg.MongoDB.URI != "" {
		mongoClient, err = mongodb.Connect(startupCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to connect mongodb", zap.Error(err))
		}
		defer func() {
			if err := mongoClient.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
	}

	backend, closeBackend, err := openBackend(startupCtx, cfg, mongoClient)
	if err != nil {
		baseLogger.Fatal("failed to init storage backend", zap.String("backend", cfg.Store.Backend), zap.Error(err))
	}
	defer closeBackend()

	store := kvstore.New(backend, cfg.Store.CacheTTL, baseLogger.Named("repo.kv"))
	reportingSvc := reportingsvc.NewService(store, reportingsvc.Options{
		Location:         loc,
		DefaultRangeDays: cfg.Reporting.DefaultRangeDays,
	}, baseLogger)

	var deps scheduler.Deps
	var snapshots handlers.SnapshotLister
	if mongoClient != nil {
		repo := mongodb.NewSnapshotRepository(mongoClient)
		deps.Snapshots = repo
		snapshots = repo
		baseLogger.Info("report snapshots enabled")
	}

	var exporter handlers.Exporter
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(startupCtx, cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		sheetsExporter := sheets.NewExporter(sheetsRepo, sheets.DefaultSheet, baseLogger)
		deps.Exporter = sheetsExporter
		exporter = sheetsExporter
		baseLogger.Info("sheets export enabled")
	}

	if cfg.Notify.WebhookURL != "" {
		deps.Notifier = notify.NewClient(cfg.Notify)
		baseLogger.Info("digest notifications enabled")
	} else {
		baseLogger.Warn("notify webhook missing, digests will not be delivered")
	}

	reportHandler := handlers.NewReportHandler(reportingSvc, exporter, snapshots, baseLogger.Named("handlers.reports"))
	engine := router.New(reportHandler, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg.Reporting.CronSchedule, reportingSvc, deps, baseLogger.Named("scheduler"))
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("backend", cfg.Store.Backend))
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

// openBackend builds the configured storage backend and its cleanup func.
func openBackend(ctx context.Context, cfg *config.Config, mongoClient *mongodb.Client) (kvstore.Backend, func(), error) {
	noop := func() {}

	switch cfg.Store.Backend {
	case config.BackendRedis:
		client, err := redisstore.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, noop, err
		}
		return redisstore.NewBackend(client, cfg.Redis.KeyPrefix), func() { _ = client.Close() }, nil
	case config.BackendMongoDB:
		if mongoClient == nil {
			return nil, noop, errors.New("mongodb backend requires MONGODB_URI")
		}
		return mongodb.NewKVBackend(mongoClient, cfg.MongoDB.KVCollection), noop, nil
	case config.BackendMemory:
		backend := kvstore.NewMemoryBackend()
		if cfg.Store.SeedFile != "" {
			if err := backend.LoadSeedFile(cfg.Store.SeedFile); err != nil {
				return nil, noop, err
			}
		}
		return backend, noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown backend %q", cfg.Store.Backend)
	}
}
