package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/camino-saas/camino/internal/app"
	jobmetrics "github.com/camino-saas/camino/internal/jobs"
	"github.com/camino-saas/camino/internal/platform/db"
	"github.com/camino-saas/camino/jobs"
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}

	client, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	metrics := jobmetrics.NewMetrics(nil)

	mailer := jobs.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom, logger)
	mailer.Metrics = metrics
	noteSigned := jobs.NewNoteSignedJob(pool, client, logger, metrics)
	invoiceCreated := jobs.NewInvoiceCreatedJob(pool, client, logger, metrics)
	backup := jobs.NewBackupJob(pool, client, cfg.BackupDir, logger, metrics)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: redisOpts,
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeSendEmail, Handler: mailer.Handle},
			{Type: jobs.TaskTypeNoteSigned, Handler: noteSigned.Handle},
			{Type: jobs.TaskTypeInvoiceCreated, Handler: invoiceCreated.Handle},
			{Type: jobs.TaskTypeTenantBackup, Handler: backup.HandleTenant},
			{Type: jobs.TaskTypeBackupAll, Handler: backup.HandleAll},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.BackupCron, Task: jobs.NewBackupAllTask()},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker started", slog.String("redis", cfg.RedisAddr))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
