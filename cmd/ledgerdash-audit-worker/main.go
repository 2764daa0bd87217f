package main

import (
	"context"
	"errors"
	"os"
	"time"

	"ledgerdash/internal/amqp"
	"ledgerdash/internal/cli"
	"ledgerdash/internal/log"
	"ledgerdash/internal/storage"
	"ledgerdash/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()

	logger, logCloser, err := cli.SetupLogger(cfg)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	defer logCloser.Close()

	logger.Info("Starting ledgerdash-audit-worker", log.FieldOperation, log.OpStartup)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required by the audit worker")
		os.Exit(1)
	}

	repo, err := storage.NewUserRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 2*time.Minute)
	client, err := amqp.NewClient(connectCtx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey, 5, logger)
	cancelConnect()
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		if err := client.Close(); err != nil {
			logger.Error("AMQP close error", log.FieldError, err)
		}
	})

	auditWorker := worker.NewAuditWorker(repo, logger)
	if err := auditWorker.Run(ctx, client, cfg.AMQPQueue); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err, "queue", cfg.AMQPQueue)
		client.Close()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Audit worker stopped")
}
