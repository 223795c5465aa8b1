package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gatehouse-app/gatehouse/internal/app"
	"github.com/gatehouse-app/gatehouse/internal/logistics"
	"github.com/gatehouse-app/gatehouse/internal/observability"
	"github.com/gatehouse-app/gatehouse/internal/partner"
	"github.com/gatehouse-app/gatehouse/internal/platform/cache"
	"github.com/gatehouse-app/gatehouse/internal/platform/db"
	"github.com/gatehouse-app/gatehouse/internal/visitor"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	// The supplier cache is optional: the service degrades to direct
	// queries when redis is unreachable.
	var supplierCache *cache.Cache
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, supplier cache disabled", slog.Any("error", err))
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
		supplierCache = cache.NewCache(redisClient, cfg.SupplierCacheTTL)
	}

	metrics := observability.NewMetrics()

	partnerRepo := partner.NewRepository(partnerPool)
	partnerService := partner.NewService(partnerRepo, supplierCache, logger)

	visitorRepo := visitor.NewRepository(visitorPool)
	visitorService := visitor.NewService(visitorRepo, partnerService, logger)

	logisticsRepo := logistics.NewRepository(partnerPool)
	logisticsService := logistics.NewService(logisticsRepo)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		VisitorHandler:   visitor.NewHandler(logger, visitorService, metrics),
		PartnerHandler:   partner.NewHandler(logger, partnerService, visitorService),
		LogisticsHandler: logistics.NewHandler(logger, logisticsService),
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
