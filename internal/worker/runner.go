package worker

import (
	"context"
	"log/slog"
	"time"

	"coachrelay/internal/observability"
)

// Job is one periodic check in the poll cycle.
type Job struct {
	Name string
	Run  func(ctx context.Context, now time.Time) error
}

// Runner drives the poll cycle: an immediate run at startup, then one cycle
// per tick. Jobs run sequentially and a failure in one never aborts the
// others; a failed job simply tries again next tick.
type Runner struct {
	Interval time.Duration
	Jobs     []Job
}

func (r *Runner) Start(ctx context.Context) error {
	slog.Info("poll loop starting", "interval", r.Interval, "jobs", len(r.Jobs))

	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	r.Cycle(ctx)

	for {
		select {
		case <-ticker.C:
			r.Cycle(ctx)
		case <-ctx.Done():
			slog.Info("poll loop stopping")
			return ctx.Err()
		}
	}
}

// Cycle runs every job once. Exported so tests and one-shot tooling can drive
// it without the ticker.
func (r *Runner) Cycle(ctx context.Context) {
	for _, job := range r.Jobs {
		if ctx.Err() != nil {
			return
		}
		now := time.Now().UTC()
		start := now
		if err := job.Run(ctx, now); err != nil {
			observability.CycleRuns.WithLabelValues(job.Name, "error").Inc()
			slog.Error("job failed", "job", job.Name, "duration", time.Since(start), "err", err)
			continue
		}
		observability.CycleRuns.WithLabelValues(job.Name, "ok").Inc()
	}
}
