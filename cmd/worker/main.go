package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/gatehouse-app/gatehouse/internal/app"
	"github.com/gatehouse-app/gatehouse/internal/partner"
	"github.com/gatehouse-app/gatehouse/internal/platform/cache"
	"github.com/gatehouse-app/gatehouse/internal/platform/db"
	"github.com/gatehouse-app/gatehouse/internal/visitor"
	"github.com/gatehouse-app/gatehouse/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	visitorPool, err := db.New(ctx, cfg.VisitorDSN)
	if err != nil {
		logger.Error("connect visitor database", slog.Any("error", err))
		os.Exit(1)
	}
	defer visitorPool.Close()

	partnerPool, err := db.New(ctx, cfg.PartnerDSN)
	if err != nil {
		logger.Error("connect partner database", slog.Any("error", err))
		os.Exit(1)
	}
	defer partnerPool.Close()

	// The backfill bumps the shared cache version; without redis the HTTP
	// side simply serves slightly stale supplier dropdowns until TTL.
	var supplierCache *cache.Cache
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, cache invalidation disabled", slog.Any("error", err))
	} else {
		defer func() { _ = redisClient.Close() }()
		supplierCache = cache.NewCache(redisClient, cfg.SupplierCacheTTL)
	}

	partnerRepo := partner.NewRepository(partnerPool)
	partnerService := partner.NewService(partnerRepo, supplierCache, logger)

	visitorRepo := visitor.NewRepository(visitorPool)
	visitorService := visitor.NewService(visitorRepo, partnerService, logger)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskPartnerBackfill, Handler: jobs.NewPartnerBackfillHandler(partnerService, logger)},
			{Type: jobs.TaskVisitorRepair, Handler: jobs.NewVisitorRepairHandler(visitorService, logger)},
		},
		Cron: []jobs.CronRegistration{
			// The partner-master feed lands overnight; link new children
			// before the desk opens.
			{Spec: "0 3 * * *", Task: jobs.NewPartnerBackfillTask()},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting worker")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
