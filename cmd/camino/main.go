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

	"github.com/camino-saas/camino/internal/app"
	"github.com/camino-saas/camino/internal/auth"
	"github.com/camino-saas/camino/internal/invoices"
	"github.com/camino-saas/camino/internal/notes"
	"github.com/camino-saas/camino/internal/observability"
	"github.com/camino-saas/camino/internal/platform/cache"
	"github.com/camino-saas/camino/internal/platform/db"
	"github.com/camino-saas/camino/internal/quotes"
	"github.com/camino-saas/camino/internal/shared"
	"github.com/camino-saas/camino/internal/tenants"
	"github.com/camino-saas/camino/internal/users"
	"github.com/camino-saas/camino/jobs"
	"github.com/camino-saas/camino/report"
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

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

	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(dbpool)
	captureMode := notes.CaptureMode(cfg.SignatureCaptureMode)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL, redisClient)
	authMW := auth.Middleware{Tokens: tokens, Logger: logger}

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	reportClient := report.NewClient(cfg.GotenbergURL)
	renderer, err := report.NewRenderer(reportClient)
	if err != nil {
		logger.Error("init renderer", slog.Any("error", err))
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbpool)
	userService := users.NewService(userRepo)
	userHandler := users.NewHandler(logger, userService)

	authService := auth.NewService(userRepo, tokens)
	authHandler := auth.NewHandler(logger, authService, authMW)

	tenantRepo := tenants.NewRepository(dbpool)
	tenantHandler := tenants.NewHandler(logger, tenantRepo)

	noteRepo := notes.NewRepository(dbpool)
	noteService := notes.NewService(notes.ServiceParams{
		Repo:    noteRepo,
		Audit:   auditLogger,
		Logger:  logger,
		Events:  jobs.Events{Client: jobClient, Logger: logger},
		Metrics: metrics,
		Mode:    captureMode,
	})
	noteHandler := notes.NewHandler(logger, noteService, renderer)

	invoiceRepo := invoices.NewRepository(dbpool)
	invoiceService := invoices.NewService(invoices.ServiceParams{
		Repo:    invoiceRepo,
		Notes:   noteRepo,
		Audit:   auditLogger,
		Logger:  logger,
		Metrics: metrics,
		Events:  jobs.Events{Client: jobClient, Logger: logger},
		Mode:    captureMode,
	})
	invoiceHandler := invoices.NewHandler(logger, invoiceService, renderer)

	quoteRepo := quotes.NewRepository(dbpool)
	quoteService := quotes.NewService(quoteRepo, noteService, auditLogger, logger)
	quoteHandler := quotes.NewHandler(logger, quoteService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:   logger,
		Config:   cfg,
		Metrics:  metrics,
		AuthMW:   authMW,
		Auth:     authHandler,
		Tenants:  tenantHandler,
		Users:    userHandler,
		Notes:    noteHandler,
		Invoices: invoiceHandler,
		Quotes:   quoteHandler,
		Jobs:     jobHandler,
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
