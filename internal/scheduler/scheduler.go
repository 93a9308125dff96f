// Package scheduler drives periodic evaluation cycles. It owns no compliance
// logic: it ticks, invokes the service, and logs the outcome. Failed cycles
// are logged and skipped; the next tick starts clean.
package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Runner is the slice of the compliance service the scheduler needs.
type Runner interface {
	RunCycle(ctx context.Context) error
}

// RunnerFunc adapts a plain function to the Runner interface.
type RunnerFunc func(ctx context.Context) error

func (f RunnerFunc) RunCycle(ctx context.Context) error { return f(ctx) }

// Scheduler invokes the runner on a fixed interval until its context ends.
type Scheduler struct {
	runner   Runner
	interval time.Duration
	logger   *slog.Logger
}

// New constructs a scheduler. Intervals below one second are rejected by
// clamping to one second; evaluation inputs are attestations, not ticks.
func New(runner Runner, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval < time.Second {
		interval = time.Second
	}
	return &Scheduler{runner: runner, interval: interval, logger: logger}
}

// Run blocks until ctx is done, firing one cycle per interval. Overlapping
// cycles cannot happen: the next tick is not consumed until the current cycle
// returns.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.runner.RunCycle(ctx); err != nil {
				s.logger.ErrorContext(ctx, "scheduled evaluation failed", "error", err)
			}
		}
	}
}
