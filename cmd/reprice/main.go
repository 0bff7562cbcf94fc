// Command reprice re-runs the configured price model over every stored prediction
// and updates the rows whose price changed.
// Usage: go run ./cmd/reprice [-batch 500]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"autoprice/internal/app"
	"autoprice/internal/config"
	"autoprice/internal/logging"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	batchSize := flag.Int("batch", 500, "rows fetched per page")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg.History.Enabled = true

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, logger, app.Options{})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	summary, err := a.History.Reprice(ctx, *batchSize)
	if err != nil {
		return fmt.Errorf("repricing predictions: %w", err)
	}

	logger.Info("reprice complete",
		zap.Int("scanned", summary.Scanned),
		zap.Int("updated", summary.Updated),
		zap.Int("unchanged", summary.Unchanged),
		zap.Int("skipped", summary.Skipped))
	return nil
}
