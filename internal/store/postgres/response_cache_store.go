package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Widell98/MarketMind-sub004/internal/domain"
)

// ResponseCacheStore implements domain.ResponseCacheStore on the
// response_cache table.
type ResponseCacheStore struct {
	pool *pgxpool.Pool
}

// NewResponseCacheStore creates a store backed by the given pool.
func NewResponseCacheStore(pool *pgxpool.Pool) *ResponseCacheStore {
	return &ResponseCacheStore{pool: pool}
}

// Get returns the cached row for key, expired or not; validity is the
// caller's decision. It returns domain.ErrNotFound when no row exists.
func (s *ResponseCacheStore) Get(ctx context.Context, key string) (domain.CachedResponse, error) {
	var row domain.CachedResponse
	err := s.pool.QueryRow(ctx, `
		SELECT cache_key, payload, fetched_at, expires_at
		FROM response_cache WHERE cache_key = $1`,
		key,
	).Scan(&row.Key, &row.Payload, &row.FetchedAt, &row.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.CachedResponse{}, domain.ErrNotFound
		}
		return domain.CachedResponse{}, fmt.Errorf("postgres: get response_cache %s: %w", key, err)
	}
	return row, nil
}

// Put upserts the row, fully superseding any previous payload for the
// same key in a single statement.
func (s *ResponseCacheStore) Put(ctx context.Context, row domain.CachedResponse) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO response_cache (cache_key, payload, fetched_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (cache_key) DO UPDATE SET
			payload    = EXCLUDED.payload,
			fetched_at = EXCLUDED.fetched_at,
			expires_at = EXCLUDED.expires_at`,
		row.Key, row.Payload, row.FetchedAt, row.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: put response_cache %s: %w", row.Key, err)
	}
	return nil
}

// DeleteExpired removes rows whose expiry lies before now and returns
// the number deleted.
func (s *ResponseCacheStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM response_cache WHERE expires_at < $1`, now,
	)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete expired response_cache rows: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Compile-time interface check.
var _ domain.ResponseCacheStore = (*ResponseCacheStore)(nil)
