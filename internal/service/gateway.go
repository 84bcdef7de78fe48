// Package service contains the gateway orchestrators: the request-
// handling state machines that decide between cache hit, coalesced
// wait, refresh, stale fallback, and hard failure.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Widell98/MarketMind-sub004/internal/domain"
)

// marketsCacheKey is the single cache key the market gateway uses today.
const marketsCacheKey = "markets"

// staleWarning is attached to responses served from an expired snapshot
// after a failed refresh.
const staleWarning = "upstream provider unavailable; serving cached data from last successful fetch"

// MarketFetcher is the upstream call the gateway coalesces. The
// platform client implements it.
type MarketFetcher interface {
	FetchMarkets(ctx context.Context) ([]domain.Market, error)
}

// GatewayConfig holds the gateway's cache and refresh policy.
type GatewayConfig struct {
	// TTL is how long a snapshot stays fresh.
	TTL time.Duration
	// MinRefreshInterval is the minimum gap between actual upstream
	// calls, independent of TTL. An expired snapshot younger than this
	// is served stale instead of triggering a refresh.
	MinRefreshInterval time.Duration
	// DefaultLimit replaces a missing or non-positive FilterSpec.Limit.
	DefaultLimit int
}

// Gateway shields the upstream provider from redundant traffic: one
// in-flight fetch serves every concurrent caller, expired data is
// re-fetched at most once per MinRefreshInterval, and the last good
// snapshot is served when the provider is down. It is the only
// component that writes to the snapshot cache.
type Gateway struct {
	fetcher MarketFetcher
	cache   domain.SnapshotCache
	cfg     GatewayConfig
	group   singleflight.Group
	logger  *slog.Logger

	now func() time.Time // swapped out in tests
}

// NewGateway creates a Gateway. It is constructed once per process and
// owns all per-key coordination state.
func NewGateway(fetcher MarketFetcher, cache domain.SnapshotCache, cfg GatewayConfig, logger *slog.Logger) *Gateway {
	return &Gateway{
		fetcher: fetcher,
		cache:   cache,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// Query serves one inbound request: it resolves a snapshot through the
// cache/refresh state machine and applies the filter to it. The only
// error it returns is the cold-start case, when there is no cached
// snapshot and the upstream fetch fails.
func (g *Gateway) Query(ctx context.Context, spec domain.FilterSpec) (domain.QueryResult, error) {
	if spec.Limit <= 0 && g.cfg.DefaultLimit > 0 {
		spec.Limit = g.cfg.DefaultLimit
	}

	now := g.now()
	snap, ok := g.cache.Read(marketsCacheKey)

	// Cache valid: serve immediately.
	if ok && snap.Valid(now) {
		return g.serve(snap, spec, true, "", false), nil
	}

	// Expired but the last upstream call is too recent: serve stale
	// rather than hammer upstream. No warning; this is policy, not
	// degradation.
	if ok && now.Sub(snap.FetchedAt) < g.cfg.MinRefreshInterval {
		return g.serve(snap, spec, true, "", false), nil
	}

	fresh, coalesced, err := g.refresh(ctx)
	if err != nil {
		if ok {
			g.logger.WarnContext(ctx, "gateway: refresh failed, serving stale snapshot",
				slog.Time("fetched_at", snap.FetchedAt),
				slog.String("error", err.Error()),
			)
			return g.serve(snap, spec, true, staleWarning, true), nil
		}
		return domain.QueryResult{}, fmt.Errorf("gateway: %w: %w", domain.ErrNoCachedData, err)
	}

	// Callers that coalesced onto another caller's fetch did not
	// trigger an upstream call of their own; report those as hits.
	return g.serve(fresh, spec, coalesced, "", false), nil
}

// refresh performs at most one upstream fetch regardless of how many
// callers race into it. The singleflight group clears its in-flight
// marker on every exit path, so a failed or timed-out fetch never
// blocks later retries. The returned bool reports whether this caller
// shared another caller's fetch.
func (g *Gateway) refresh(ctx context.Context) (domain.Snapshot, bool, error) {
	v, err, shared := g.group.Do(marketsCacheKey, func() (any, error) {
		markets, err := g.fetcher.FetchMarkets(ctx)
		if err != nil {
			return nil, err
		}

		snap := domain.NewSnapshot(markets, g.now(), g.cfg.TTL)
		g.cache.Write(marketsCacheKey, snap)

		g.logger.InfoContext(ctx, "gateway: snapshot refreshed",
			slog.Int("markets", len(markets)),
			slog.Time("expires_at", snap.ExpiresAt),
		)
		return snap, nil
	})
	if err != nil {
		return domain.Snapshot{}, shared, err
	}
	return v.(domain.Snapshot), shared, nil
}

// serve applies the filter to a snapshot without mutating it and wraps
// the result with cache metadata.
func (g *Gateway) serve(snap domain.Snapshot, spec domain.FilterSpec, hit bool, warning string, degraded bool) domain.QueryResult {
	return domain.QueryResult{
		Markets:   domain.ApplyFilter(snap.Markets, spec),
		FetchedAt: snap.FetchedAt,
		CacheHit:  hit,
		Warning:   warning,
		Degraded:  degraded,
	}
}
