package worker

import (
	"context"
	"log/slog"
	"time"
)

// TickFunc is one batch pass. It returns an error only when the whole pass
// failed; per-item failures are reported inside the tick's own result.
type TickFunc func(ctx context.Context) error

// Runner invokes a tick function on a fixed interval until the context is
// cancelled. It replaces the cron trigger the batch workers would otherwise
// need: the tick stays a plain function that tests can call directly.
type Runner struct {
	name     string
	interval time.Duration
	tick     TickFunc
	log      *slog.Logger
}

func NewRunner(name string, interval time.Duration, tick TickFunc, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{
		name:     name,
		interval: interval,
		tick:     tick,
		log:      log.With(slog.String("worker", name)),
	}
}

// Run blocks until ctx is cancelled. The first tick fires immediately so a
// restart does not wait a full interval to catch up.
func (r *Runner) Run(ctx context.Context) {
	r.log.Info("worker started", slog.Duration("interval", r.interval))

	r.runOnce(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("worker stopped")
			return
		case <-ticker.C:
			r.runOnce(ctx)
		}
	}
}

func (r *Runner) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := r.tick(ctx); err != nil {
		r.log.Error("tick failed", slog.Any("err", err))
	}
}
