package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"traguardi/internal/amqp"
	"traguardi/internal/cli"
	"traguardi/internal/core"
	"traguardi/internal/report"
	"traguardi/internal/report/google"
	"traguardi/internal/report/memory"
	"traguardi/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting traguardi-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	sqliteRepo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer sqliteRepo.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	factory := report.NewFactory(logger)
	factory.Register(report.BackendMemory, func(_ context.Context) (report.Writer, error) {
		return memory.New(), nil
	})
	factory.Register(report.BackendSheets, func(ctx context.Context) (report.Writer, error) {
		return google.NewFromEnv(ctx)
	})

	reports, err := factory.Create(ctx, cfg.ReportBackend)
	if err != nil {
		logger.Error("Failed to initialize report backend", "error", err, "backend", cfg.ReportBackend)
		os.Exit(1)
	}

	policy := core.StatusPolicy{
		OnTrackFactor: cfg.OnTrackFactor,
		AtRiskFactor:  cfg.AtRiskFactor,
	}

	reviewWorker := worker.NewReviewWorker(sqliteRepo, reports, policy, cfg.ReviewBatchSize)

	// On startup, review any goals that might have been missed
	logger.Info("Performing startup review check...")
	if err := reviewWorker.StartupReviewCheck(ctx); err != nil {
		logger.Error("Failed startup review check", "error", err)
		// Don't exit - continue with normal operation
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		g.Go(func() error {
			err := amqpClient.ConsumeGoalReviews(gctx, func(msg *amqp.GoalReviewMessage) error {
				return reviewWorker.HandleReviewMessage(gctx, msg)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Message consumption failed", "error", err)
				return err
			}
			return nil
		})
	} else {
		logger.Info("AMQP disabled - relying on periodic reviews only")
	}

	g.Go(func() error {
		ticker := time.NewTicker(cfg.ReviewInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if err := reviewWorker.ReviewAll(gctx); err != nil {
					logger.Error("Periodic review failed", "error", err)
				}
			}
		}
	})

	g.Go(func() error {
		ticker := time.NewTicker(cfg.ExportInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if err := reviewWorker.ExportBreakdown(gctx); err != nil {
					logger.Error("Breakdown export failed", "error", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker shutdown complete")
}
