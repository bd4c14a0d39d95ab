package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/leadkhata/leadkhata/internal/app"
	"github.com/leadkhata/leadkhata/internal/customer"
	"github.com/leadkhata/leadkhata/internal/dashboard"
	"github.com/leadkhata/leadkhata/internal/leadextraction"
	"github.com/leadkhata/leadkhata/internal/leadselling"
	"github.com/leadkhata/leadkhata/internal/ledger"
	"github.com/leadkhata/leadkhata/internal/migration"
	"github.com/leadkhata/leadkhata/internal/platform/cache"
	"github.com/leadkhata/leadkhata/internal/platform/db"
	"github.com/leadkhata/leadkhata/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	client, err := db.Connect(ctx, cfg.MongoURI)
	if err != nil {
		logger.Error("connect mongo", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Warn("mongo disconnect", slog.Any("error", err))
		}
	}()
	database := client.Database(cfg.MongoDB)

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	customerService := customer.NewService(customer.NewRepository(database))

	ledgerRepo := ledger.NewRepository(database)
	ledgerService := ledger.NewService(ledgerRepo, customerService, logger)

	extractionRepo := leadextraction.NewRepository(database)
	extractionService := leadextraction.NewService(extractionRepo, customerService)

	saleRepo := leadselling.NewRepository(database)
	saleService := leadselling.NewService(saleRepo, customerService)

	dashboardCache := dashboard.NewCache(redisClient, 5*time.Minute)
	dashboardService := dashboard.NewService(ledgerService, extractionService, saleService, dashboardCache, logger)

	migrationService := migration.NewService(ledgerRepo, extractionRepo, saleRepo, dashboardService, logger)

	backfillJob := jobs.NewBackfillJob(migrationService, logger)
	warmupJob := jobs.NewWarmupJob(dashboardService, logger)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskMigrationBackfill, Handler: backfillJob.Handle},
			{Type: jobs.TaskDashboardWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "15 1 * * *", Task: jobs.NewWarmupTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
