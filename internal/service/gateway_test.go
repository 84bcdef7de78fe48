package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Widell98/MarketMind-sub004/internal/cache/memory"
	"github.com/Widell98/MarketMind-sub004/internal/domain"
)

// fakeFetcher counts upstream calls and serves canned data or a canned
// error, with an optional delay to widen concurrency windows.
type fakeFetcher struct {
	mu      sync.Mutex
	calls   int
	markets []domain.Market
	err     error
	delay   time.Duration
}

func (f *fakeFetcher) FetchMarkets(ctx context.Context) ([]domain.Market, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.markets, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testGateway builds a gateway with a controllable clock. Advancing the
// returned *time.Time moves the gateway's view of now.
func testGateway(fetcher *fakeFetcher, cfg GatewayConfig) (*Gateway, *time.Time) {
	g := NewGateway(fetcher, memory.NewSnapshotCache(), cfg, testLogger())
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return now }
	return g, &now
}

func TestQueryColdStartFetches(t *testing.T) {
	fetcher := &fakeFetcher{markets: []domain.Market{{ID: "a"}}}
	g, _ := testGateway(fetcher, GatewayConfig{TTL: time.Minute, MinRefreshInterval: 30 * time.Second})

	res, err := g.Query(context.Background(), domain.FilterSpec{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if fetcher.callCount() != 1 {
		t.Errorf("upstream calls = %d, want 1", fetcher.callCount())
	}
	if res.CacheHit {
		t.Error("CacheHit = true on cold start")
	}
	if res.Warning != "" || res.Degraded {
		t.Errorf("unexpected degradation: %+v", res)
	}
	if len(res.Markets) != 1 || res.Markets[0].ID != "a" {
		t.Errorf("Markets = %+v", res.Markets)
	}
}

func TestQueryServesValidCacheWithoutFetching(t *testing.T) {
	fetcher := &fakeFetcher{markets: []domain.Market{{ID: "a"}}}
	g, now := testGateway(fetcher, GatewayConfig{TTL: time.Minute, MinRefreshInterval: 30 * time.Second})

	if _, err := g.Query(context.Background(), domain.FilterSpec{}); err != nil {
		t.Fatalf("warm-up query: %v", err)
	}

	*now = now.Add(30 * time.Second) // still within TTL

	res, err := g.Query(context.Background(), domain.FilterSpec{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if fetcher.callCount() != 1 {
		t.Errorf("upstream calls = %d, want 1", fetcher.callCount())
	}
	if !res.CacheHit {
		t.Error("CacheHit = false on valid cache")
	}
}

func TestQueryRefreshesExpiredCache(t *testing.T) {
	fetcher := &fakeFetcher{markets: []domain.Market{{ID: "a"}}}
	g, now := testGateway(fetcher, GatewayConfig{TTL: time.Minute, MinRefreshInterval: 30 * time.Second})

	if _, err := g.Query(context.Background(), domain.FilterSpec{}); err != nil {
		t.Fatalf("warm-up query: %v", err)
	}

	*now = now.Add(90 * time.Second) // past TTL and past the refresh interval

	res, err := g.Query(context.Background(), domain.FilterSpec{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if fetcher.callCount() != 2 {
		t.Errorf("upstream calls = %d, want 2", fetcher.callCount())
	}
	if res.CacheHit {
		t.Error("CacheHit = true on a fresh fetch")
	}
}

func TestQueryRateLimitOverridesExpiry(t *testing.T) {
	fetcher := &fakeFetcher{markets: []domain.Market{{ID: "a"}}}
	g, now := testGateway(fetcher, GatewayConfig{TTL: time.Minute, MinRefreshInterval: 2 * time.Minute})

	if _, err := g.Query(context.Background(), domain.FilterSpec{}); err != nil {
		t.Fatalf("warm-up query: %v", err)
	}

	// Expired, but the last upstream call is younger than the minimum
	// refresh interval: stale data is served without a fetch.
	*now = now.Add(90 * time.Second)

	res, err := g.Query(context.Background(), domain.FilterSpec{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if fetcher.callCount() != 1 {
		t.Errorf("upstream calls = %d, want 1", fetcher.callCount())
	}
	if !res.CacheHit {
		t.Error("CacheHit = false on rate-limited stale serve")
	}
	if res.Warning != "" || res.Degraded {
		t.Errorf("rate-limited stale serve is policy, not degradation: %+v", res)
	}
}

func TestQueryStaleFallbackOnRefreshFailure(t *testing.T) {
	fetcher := &fakeFetcher{markets: []domain.Market{{ID: "a"}}}
	g, now := testGateway(fetcher, GatewayConfig{TTL: time.Minute, MinRefreshInterval: 30 * time.Second})

	if _, err := g.Query(context.Background(), domain.FilterSpec{}); err != nil {
		t.Fatalf("warm-up query: %v", err)
	}

	*now = now.Add(2 * time.Minute)
	fetcher.mu.Lock()
	fetcher.err = errors.New("provider down")
	fetcher.mu.Unlock()

	res, err := g.Query(context.Background(), domain.FilterSpec{})
	if err != nil {
		t.Fatalf("stale fallback should not error: %v", err)
	}
	if !res.CacheHit || !res.Degraded || res.Warning == "" {
		t.Errorf("want degraded stale hit with warning, got %+v", res)
	}
	if len(res.Markets) != 1 || res.Markets[0].ID != "a" {
		t.Errorf("Markets = %+v, want the stale snapshot", res.Markets)
	}
}

func TestQueryColdStartFailure(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("provider down")}
	g, _ := testGateway(fetcher, GatewayConfig{TTL: time.Minute})

	_, err := g.Query(context.Background(), domain.FilterSpec{})
	if err == nil {
		t.Fatal("want error on cold start with a failing provider")
	}
	if !errors.Is(err, domain.ErrNoCachedData) {
		t.Errorf("error = %v, want ErrNoCachedData", err)
	}
}

func TestQueryCoalescesConcurrentFetches(t *testing.T) {
	fetcher := &fakeFetcher{
		markets: []domain.Market{{ID: "a"}},
		delay:   50 * time.Millisecond,
	}
	g := NewGateway(fetcher, memory.NewSnapshotCache(), GatewayConfig{TTL: time.Minute}, testLogger())

	const callers = 10
	var wg sync.WaitGroup
	results := make([]domain.QueryResult, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = g.Query(context.Background(), domain.FilterSpec{})
		}(i)
	}
	wg.Wait()

	if got := fetcher.callCount(); got != 1 {
		t.Errorf("upstream calls = %d, want 1", got)
	}
	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if len(results[i].Markets) != 1 {
			t.Errorf("caller %d got %d markets", i, len(results[i].Markets))
		}
		if !results[i].FetchedAt.Equal(results[0].FetchedAt) {
			t.Errorf("caller %d observed a different snapshot", i)
		}
	}
}

func TestQueryAppliesConfiguredDefaultLimit(t *testing.T) {
	fetcher := &fakeFetcher{markets: []domain.Market{{ID: "a"}, {ID: "b"}, {ID: "c"}}}
	g, _ := testGateway(fetcher, GatewayConfig{TTL: time.Minute, DefaultLimit: 2})

	res, err := g.Query(context.Background(), domain.FilterSpec{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(res.Markets) != 2 {
		t.Errorf("len(Markets) = %d, want configured default limit 2", len(res.Markets))
	}
}

func TestQueryFilterDoesNotMutateCachedSnapshot(t *testing.T) {
	fetcher := &fakeFetcher{markets: []domain.Market{{ID: "a", Liquidity: 1}, {ID: "b", Liquidity: 100}}}
	g, _ := testGateway(fetcher, GatewayConfig{TTL: time.Minute})

	if _, err := g.Query(context.Background(), domain.FilterSpec{MinLiquidity: 50}); err != nil {
		t.Fatalf("filtered query: %v", err)
	}

	res, err := g.Query(context.Background(), domain.FilterSpec{})
	if err != nil {
		t.Fatalf("unfiltered query: %v", err)
	}
	if len(res.Markets) != 2 {
		t.Errorf("cached snapshot shrank to %d markets after a filtered query", len(res.Markets))
	}
}
