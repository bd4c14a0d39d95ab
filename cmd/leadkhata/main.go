package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/leadkhata/leadkhata/internal/app"
	"github.com/leadkhata/leadkhata/internal/auth"
	"github.com/leadkhata/leadkhata/internal/customer"
	"github.com/leadkhata/leadkhata/internal/dashboard"
	"github.com/leadkhata/leadkhata/internal/leadextraction"
	"github.com/leadkhata/leadkhata/internal/leadselling"
	"github.com/leadkhata/leadkhata/internal/ledger"
	"github.com/leadkhata/leadkhata/internal/migration"
	"github.com/leadkhata/leadkhata/internal/platform/cache"
	"github.com/leadkhata/leadkhata/internal/platform/db"
	"github.com/leadkhata/leadkhata/internal/report"
	"github.com/leadkhata/leadkhata/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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
		logger.Warn("redis unavailable, caching disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}
	}()

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	authService := auth.NewService(auth.NewRepository(database))
	authHandler := auth.NewHandler(logger, authService, tokens, cfg.IsProduction())
	authMiddleware := auth.NewMiddleware(tokens)

	customerService := customer.NewService(customer.NewRepository(database))
	customerHandler := customer.NewHandler(logger, customerService)

	ledgerRepo := ledger.NewRepository(database)
	ledgerService := ledger.NewService(ledgerRepo, customerService, logger)
	ledgerHandler := ledger.NewHandler(logger, ledgerService)

	extractionRepo := leadextraction.NewRepository(database)
	extractionService := leadextraction.NewService(extractionRepo, customerService)
	extractionHandler := leadextraction.NewHandler(logger, extractionService)

	saleRepo := leadselling.NewRepository(database)
	saleService := leadselling.NewService(saleRepo, customerService)
	saleHandler := leadselling.NewHandler(logger, saleService)

	dashboardCache := dashboard.NewCache(redisClient, 5*time.Minute)
	dashboardService := dashboard.NewService(ledgerService, extractionService, saleService, dashboardCache, logger)
	dashboardHandler := dashboard.NewHandler(logger, dashboardService)

	reportService := report.NewService(ledgerService, customerService)
	reportHandler := report.NewHandler(logger, reportService)

	migrationService := migration.NewService(ledgerRepo, extractionRepo, saleRepo, dashboardService, logger)

	var jobHandler *jobs.Handler
	var enqueuer migration.Enqueuer
	if redisClient != nil {
		jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		if err != nil {
			logger.Warn("jobs client", slog.Any("error", err))
		} else {
			defer func() {
				if err := jobClient.Close(); err != nil {
					logger.Warn("jobs client close", slog.Any("error", err))
				}
			}()
			enqueuer = jobClient
		}

		inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		defer func() {
			if err := inspector.Close(); err != nil {
				logger.Warn("inspector close", slog.Any("error", err))
			}
		}()
		jobHandler = jobs.NewHandler(inspector, logger)
	}
	migrationHandler := migration.NewHandler(logger, migrationService, enqueuer)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		AuthHandler:       authHandler,
		AuthMiddleware:    authMiddleware,
		CustomerHandler:   customerHandler,
		LedgerHandler:     ledgerHandler,
		ExtractionHandler: extractionHandler,
		SellingHandler:    saleHandler,
		DashboardHandler:  dashboardHandler,
		ReportHandler:     reportHandler,
		MigrationHandler:  migrationHandler,
		JobHandler:        jobHandler,
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
