package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"budgetbook/internal/amqp"
	"budgetbook/internal/log"
	"budgetbook/internal/mirror"

	"golang.org/x/sync/errgroup"
)

// Runner runs one full synchronization.
type Runner interface {
	SyncAll(ctx context.Context) (mirror.Report, error)
}

// Consumer delivers sync requests to a handler until ctx is done.
type Consumer interface {
	ConsumeSyncRequests(ctx context.Context, handler amqp.Handler) error
}

// SyncWorker runs the synchronizer for every queued request and, optionally,
// on a fixed interval as a backstop for lost messages.
type SyncWorker struct {
	runner   Runner
	interval time.Duration
	logger   *log.Logger
}

func NewSyncWorker(runner Runner, interval time.Duration) *SyncWorker {
	return &SyncWorker{
		runner:   runner,
		interval: interval,
		logger:   log.Default().WithComponent(log.ComponentWorker),
	}
}

// HandleSyncRequest runs one synchronization. A request arriving while a run
// is in flight is acknowledged: the running sync already covers it.
func (w *SyncWorker) HandleSyncRequest(ctx context.Context, msg *amqp.SyncRequestMessage) error {
	rep, err := w.runner.SyncAll(ctx)
	if errors.Is(err, mirror.ErrSyncInProgress) {
		w.logger.InfoContext(ctx, "Sync already running, request coalesced", "request_id", msg.RequestID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("sync request %s: %w", msg.RequestID, err)
	}

	w.logger.InfoContext(ctx, "Sync request completed",
		"request_id", msg.RequestID,
		"tables", len(rep.Tables),
		"failed_tables", rep.Failed(),
		"summary", rep.Summary())
	return nil
}

// Run consumes requests and drives the periodic sync until ctx is cancelled
// or the consumer fails.
func (w *SyncWorker) Run(ctx context.Context, consumer Consumer) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return consumer.ConsumeSyncRequests(ctx, w.HandleSyncRequest)
	})

	if w.interval > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(w.interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-ticker.C:
					w.periodicSync(ctx)
				}
			}
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (w *SyncWorker) periodicSync(ctx context.Context) {
	rep, err := w.runner.SyncAll(ctx)
	switch {
	case errors.Is(err, mirror.ErrSyncInProgress):
		w.logger.DebugContext(ctx, "Skipping periodic sync, run in progress")
	case err != nil:
		w.logger.ErrorContext(ctx, "Periodic sync failed", log.FieldError, err)
	default:
		w.logger.InfoContext(ctx, "Periodic sync completed", "summary", rep.Summary())
	}
}
