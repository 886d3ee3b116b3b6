package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"hrms/internal/domain/leave"
	"hrms/internal/platform/config"
	"hrms/internal/platform/db"
	"hrms/internal/platform/jobs"
	"hrms/internal/platform/metrics"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "worker failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer pool.Close()

	leaveService := leave.NewService(leave.NewStore(pool))

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisAddr:   cfg.RedisAddr,
		AccrualCron: cfg.AccrualCron,
		YearEndCron: cfg.YearEndCron,
		Handlers:    jobs.NewLeaveHandlers(leaveService, metrics.New()),
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	logger.Info("worker starting", "redis", cfg.RedisAddr,
		"accrualCron", cfg.AccrualCron, "yearEndCron", cfg.YearEndCron)

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
