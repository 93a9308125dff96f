package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSchedulerRunsCycles(t *testing.T) {
	var cycles atomic.Int64
	s := New(RunnerFunc(func(context.Context) error {
		cycles.Add(1)
		return nil
	}), time.Second, discardLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 2500*time.Millisecond)
	defer cancel()

	err := s.Run(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.GreaterOrEqual(t, cycles.Load(), int64(2))
}

func TestSchedulerStopsOnCancel(t *testing.T) {
	s := New(RunnerFunc(func(context.Context) error { return nil }), time.Hour, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSchedulerSurvivesFailedCycles(t *testing.T) {
	var cycles atomic.Int64
	s := New(RunnerFunc(func(context.Context) error {
		cycles.Add(1)
		return errors.New("source down")
	}), time.Second, discardLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 2500*time.Millisecond)
	defer cancel()

	_ = s.Run(ctx)
	assert.GreaterOrEqual(t, cycles.Load(), int64(2), "failures must not stop the ticker")
}

func TestSchedulerClampsShortIntervals(t *testing.T) {
	s := New(RunnerFunc(func(context.Context) error { return nil }), time.Millisecond, discardLogger())
	assert.Equal(t, time.Second, s.interval)
}
