package feedback

import (
	"context"
	"log/slog"
	"time"
)

// Runner executes sweeps on a fixed schedule, independent of request
// traffic.
type Runner struct {
	manager  *Manager
	interval time.Duration
	log      *slog.Logger
}

// NewRunner creates a Runner. A nil logger falls back to slog.Default.
func NewRunner(manager *Manager, interval time.Duration, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{manager: manager, interval: interval, log: log}
}

// Run sweeps once immediately, then on every tick until ctx is
// cancelled. Sweep failures are logged and the schedule continues.
func (r *Runner) Run(ctx context.Context) {
	r.sweep(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

func (r *Runner) sweep(ctx context.Context) {
	res, err := r.manager.Sweep(ctx, "")
	if err != nil {
		r.log.Warn("sweep failed", "err", err)
		return
	}
	r.log.Info("sweep complete", "soft_deleted", res.SoftDeleted, "hard_deleted", res.HardDeleted)
}
