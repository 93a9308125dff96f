// Package fetch supplies reserve and liability snapshots to the evaluation
// service. The decision core never blocks on the network; everything slow and
// fallible lives here, behind a timeout.
package fetch

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	dErrors "attestra/pkg/domain-errors"

	"attestra/internal/compliance/metrics"
	"attestra/internal/domain"
)

// defaultGatherTimeout bounds one snapshot-gathering round. Rule evaluation
// itself completes in microseconds; this is the budget for the outside world.
const defaultGatherTimeout = 10 * time.Second

// ReserveSource fetches the issuer's reserve attestation snapshot.
type ReserveSource interface {
	FetchReserves(ctx context.Context) (domain.ReserveData, error)
}

// LiabilitySource fetches the issuer's liability snapshot.
type LiabilitySource interface {
	FetchLiabilities(ctx context.Context) (domain.LiabilityData, error)
}

// Snapshot is one evaluation cycle's worth of input data. The core consumes
// it and discards it; nothing here outlives the cycle except the cache copy
// governed by its retention TTL.
type Snapshot struct {
	Reserves    domain.ReserveData
	Liabilities domain.LiabilityData
	FetchedAt   time.Time
	Latencies   Latencies
}

// Latencies records per-source fetch durations for observability.
type Latencies struct {
	Reserves    time.Duration
	Liabilities time.Duration
}

// Gatherer fetches both snapshots in parallel with shared cancellation. A
// cache, when configured, absorbs transient source outages within its TTL.
type Gatherer struct {
	reserves    ReserveSource
	liabilities LiabilitySource
	cache       *SnapshotCache
	metrics     *metrics.Metrics
	logger      *slog.Logger
	timeout     time.Duration
}

// GathererOption configures a Gatherer.
type GathererOption func(*Gatherer)

// WithCache enables snapshot caching with outage fallback.
func WithCache(cache *SnapshotCache) GathererOption {
	return func(g *Gatherer) { g.cache = cache }
}

// WithMetrics enables fetch latency observation.
func WithMetrics(m *metrics.Metrics) GathererOption {
	return func(g *Gatherer) { g.metrics = m }
}

// WithTimeout overrides the per-round gather timeout.
func WithTimeout(d time.Duration) GathererOption {
	return func(g *Gatherer) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// NewGatherer constructs a Gatherer over the two sources.
func NewGatherer(reserves ReserveSource, liabilities LiabilitySource, logger *slog.Logger, opts ...GathererOption) *Gatherer {
	g := &Gatherer{
		reserves:    reserves,
		liabilities: liabilities,
		logger:      logger,
		timeout:     defaultGatherTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Gather fetches both snapshots in parallel, cancelling the sibling fetch on
// first failure. On a source error it falls back to the cache before giving
// up.
func (g *Gatherer) Gather(ctx context.Context) (*Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	eg, egCtx := errgroup.WithContext(ctx)
	snapshot := &Snapshot{FetchedAt: time.Now().UTC()}

	eg.Go(func() error {
		start := time.Now()
		reserves, err := g.reserves.FetchReserves(egCtx)
		snapshot.Latencies.Reserves = time.Since(start)
		g.metrics.ObserveSnapshotLatency("reserves", snapshot.Latencies.Reserves)

		if err != nil {
			if cached, ok := g.cachedReserves(egCtx, err); ok {
				snapshot.Reserves = cached
				return nil
			}
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "reserve source unavailable")
		}
		snapshot.Reserves = reserves
		return nil
	})

	eg.Go(func() error {
		start := time.Now()
		liabilities, err := g.liabilities.FetchLiabilities(egCtx)
		snapshot.Latencies.Liabilities = time.Since(start)
		g.metrics.ObserveSnapshotLatency("liabilities", snapshot.Latencies.Liabilities)

		if err != nil {
			if cached, ok := g.cachedLiabilities(egCtx, err); ok {
				snapshot.Liabilities = cached
				return nil
			}
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "liability source unavailable")
		}
		snapshot.Liabilities = liabilities
		return nil
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	if g.cache != nil {
		// Best effort; a cache write failure must not block evaluation.
		if err := g.cache.Save(ctx, snapshot.Reserves, snapshot.Liabilities); err != nil && g.logger != nil {
			g.logger.WarnContext(ctx, "snapshot cache write failed", "error", err)
		}
	}
	return snapshot, nil
}

func (g *Gatherer) cachedReserves(ctx context.Context, cause error) (domain.ReserveData, bool) {
	if g.cache == nil {
		return domain.ReserveData{}, false
	}
	cached, err := g.cache.FindReserves(ctx)
	if err != nil {
		return domain.ReserveData{}, false
	}
	if g.logger != nil {
		g.logger.WarnContext(ctx, "reserve source failed, using cached snapshot", "error", cause)
	}
	return cached, true
}

// UnconfiguredSource stands in when no provider endpoints are configured.
// Scheduled cycles then fail cleanly while ad-hoc evaluations over
// caller-supplied snapshots keep working.
type UnconfiguredSource struct{}

func (UnconfiguredSource) FetchReserves(context.Context) (domain.ReserveData, error) {
	return domain.ReserveData{}, dErrors.New(dErrors.CodeUnavailable, "no reserve source configured")
}

func (UnconfiguredSource) FetchLiabilities(context.Context) (domain.LiabilityData, error) {
	return domain.LiabilityData{}, dErrors.New(dErrors.CodeUnavailable, "no liability source configured")
}

func (g *Gatherer) cachedLiabilities(ctx context.Context, cause error) (domain.LiabilityData, bool) {
	if g.cache == nil {
		return domain.LiabilityData{}, false
	}
	cached, err := g.cache.FindLiabilities(ctx)
	if err != nil {
		return domain.LiabilityData{}, false
	}
	if g.logger != nil {
		g.logger.WarnContext(ctx, "liability source failed, using cached snapshot", "error", cause)
	}
	return cached, true
}
