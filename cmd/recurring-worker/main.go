package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"bilancio/internal/amqp"
	"bilancio/internal/cli"
	"bilancio/internal/core"
	"bilancio/internal/log"
	"bilancio/internal/services"
)

// recurring-worker keeps the current month materialized without anyone
// opening the app: an initial pass at startup, then one per configured
// interval, until a shutdown signal arrives.
func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)

	logger.Info("Starting recurring-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	policy := cli.LoadPolicy(logger, cfg.PolicyFile)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	var events *amqp.Client
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing store-only", log.FieldError, err)
		} else {
			events = client
			defer events.Close()
		}
	}

	svc := services.NewBudgetService(repo, policy.Policy, policy.Pots, events)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Recurring materialization configured",
		"interval", cfg.MaterializeInterval,
		log.FieldPath, cfg.SQLiteDBPath)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		runPass(ctx, logger, svc)

		ticker := time.NewTicker(cfg.MaterializeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				runPass(ctx, logger, svc)
			}
		}
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		logger.Error("Worker stopped unexpectedly", log.FieldError, err)
		return
	}
	logger.Info("Recurring-worker shutdown complete")
}

// runPass materializes the month the wall clock currently falls in. Errors
// are logged, never fatal: the next tick retries.
func runPass(ctx context.Context, logger *log.Logger, svc *services.BudgetService) {
	reference := core.DateOf(time.Now())
	report, err := svc.RunMaterialization(ctx, reference)
	if err != nil {
		logger.Error("Materialization pass failed", log.FieldError, err)
		return
	}
	logger.Info("Materialization pass finished",
		log.FieldMonth, reference.Month().String(),
		"created", report.Created,
		"skipped", report.Skipped,
		"failed", len(report.Failed))
	for _, f := range report.Failed {
		logger.Warn("Rule instance could not be written",
			log.FieldRuleID, f.RuleID, log.FieldError, f.Err)
	}
}
