package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Widell98/MarketMind-sub004/internal/domain"
)

// SearchFetcher is the upstream call the lookup cache fronts. The
// payload is opaque to the gateway.
type SearchFetcher interface {
	SearchRaw(ctx context.Context, query string) ([]byte, error)
}

// LookupConfig holds the persisted cache policy. The TTL here is much
// longer than the market gateway's; the rows back content-lookup and
// reporting flows where day-old data is acceptable.
type LookupConfig struct {
	TTL                time.Duration
	MinRefreshInterval time.Duration
}

// Lookup is the persisted twin of Gateway: the same fetch → cache →
// stale-fallback state machine, with PostgreSQL as the storage medium
// so entries survive process restarts.
type Lookup struct {
	store   domain.ResponseCacheStore
	fetcher SearchFetcher
	cfg     LookupConfig
	group   singleflight.Group
	logger  *slog.Logger

	now func() time.Time
}

// NewLookup creates a Lookup service.
func NewLookup(store domain.ResponseCacheStore, fetcher SearchFetcher, cfg LookupConfig, logger *slog.Logger) *Lookup {
	return &Lookup{
		store:   store,
		fetcher: fetcher,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// CacheKey derives the opaque row key from the request's intent,
// subject, and normalized query text, so semantically identical
// requests collapse to one row.
func CacheKey(intent, subject, query string) string {
	h := sha256.Sum256([]byte(intent + "\x00" + subject + "\x00" + normalizeQuery(query)))
	return hex.EncodeToString(h[:])
}

// normalizeQuery lowercases and collapses all whitespace runs so
// cosmetic differences do not fragment the cache.
func normalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

// Fetch resolves one lookup request through the persisted cache,
// calling upstream at most once per key across concurrent callers.
func (l *Lookup) Fetch(ctx context.Context, intent, subject, query string) (domain.LookupResult, error) {
	key := CacheKey(intent, subject, query)
	now := l.now()

	row, err := l.store.Get(ctx, key)
	hasRow := err == nil
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		// A broken store reads as a miss; the fetch path below still
		// works, it just cannot fall back to stale data.
		l.logger.WarnContext(ctx, "lookup: cache read failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}

	if hasRow && row.Valid(now) {
		return lookupHit(row, true, "", false), nil
	}
	if hasRow && now.Sub(row.FetchedAt) < l.cfg.MinRefreshInterval {
		return lookupHit(row, true, "", false), nil
	}

	fresh, coalesced, err := l.refresh(ctx, key, query)
	if err != nil {
		if hasRow {
			l.logger.WarnContext(ctx, "lookup: refresh failed, serving stale row",
				slog.String("key", key),
				slog.Time("fetched_at", row.FetchedAt),
				slog.String("error", err.Error()),
			)
			return lookupHit(row, true, staleWarning, true), nil
		}
		return domain.LookupResult{}, fmt.Errorf("lookup: %w: %w", domain.ErrNoCachedData, err)
	}

	return lookupHit(fresh, coalesced, "", false), nil
}

// refresh fetches and persists one row under singleflight. A failed
// Put is logged but does not fail the request; the fetched payload is
// still served.
func (l *Lookup) refresh(ctx context.Context, key, query string) (domain.CachedResponse, bool, error) {
	v, err, shared := l.group.Do(key, func() (any, error) {
		payload, err := l.fetcher.SearchRaw(ctx, query)
		if err != nil {
			return nil, err
		}

		fetchedAt := l.now()
		row := domain.CachedResponse{
			Key:       key,
			Payload:   payload,
			FetchedAt: fetchedAt,
			ExpiresAt: fetchedAt.Add(l.cfg.TTL),
		}
		if putErr := l.store.Put(ctx, row); putErr != nil {
			l.logger.WarnContext(ctx, "lookup: cache write failed",
				slog.String("key", key),
				slog.String("error", putErr.Error()),
			)
		}
		return row, nil
	})
	if err != nil {
		return domain.CachedResponse{}, shared, err
	}
	return v.(domain.CachedResponse), shared, nil
}

// PurgeExpired deletes rows whose expiry has passed. The app run loop
// calls it periodically.
func (l *Lookup) PurgeExpired(ctx context.Context) error {
	n, err := l.store.DeleteExpired(ctx, l.now())
	if err != nil {
		return fmt.Errorf("lookup: purge expired: %w", err)
	}
	if n > 0 {
		l.logger.InfoContext(ctx, "lookup: purged expired rows", slog.Int64("rows", n))
	}
	return nil
}

func lookupHit(row domain.CachedResponse, hit bool, warning string, degraded bool) domain.LookupResult {
	return domain.LookupResult{
		Payload:   row.Payload,
		FetchedAt: row.FetchedAt,
		CacheHit:  hit,
		Warning:   warning,
		Degraded:  degraded,
	}
}
