// Package worker runs periodic maintenance alongside the storefront server.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Sweeper deletes expired cart snapshots.
type Sweeper interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// Config holds worker configuration
type Config struct {
	// WorkerID uniquely identifies this worker instance in logs
	WorkerID string

	// Interval is how often expired snapshots are swept
	Interval time.Duration

	// Timeout bounds a single sweep
	Timeout time.Duration
}

// Worker sweeps expired cart snapshots on a fixed interval.
type Worker struct {
	config  Config
	sweeper Sweeper
	logger  *slog.Logger
}

// NewWorker creates a new snapshot sweeper
func NewWorker(sweeper Sweeper, config Config, logger *slog.Logger) *Worker {
	// Set defaults
	if config.WorkerID == "" {
		config.WorkerID = fmt.Sprintf("sweeper-%s", uuid.New().String()[:8])
	}
	if config.Interval <= 0 {
		config.Interval = time.Hour
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Worker{
		config:  config,
		sweeper: sweeper,
		logger:  logger.With("worker_id", config.WorkerID),
	}
}

// Start sweeps once immediately and then on every tick until the context is
// cancelled.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("worker starting", "interval", w.config.Interval)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	w.Sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker shutting down")
			return ctx.Err()

		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep runs a single pass and returns the number of snapshots removed.
// Failures are logged and retried on the next tick.
func (w *Worker) Sweep(ctx context.Context) int64 {
	sweepCtx, cancel := context.WithTimeout(ctx, w.config.Timeout)
	defer cancel()

	start := time.Now()
	n, err := w.sweeper.DeleteExpired(sweepCtx)
	if err != nil {
		w.logger.Error("snapshot sweep failed", "error", err)
		return 0
	}

	if n > 0 {
		w.logger.Info("expired cart snapshots removed",
			"count", n,
			"duration", time.Since(start),
		)
	}
	return n
}
