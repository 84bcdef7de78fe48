package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Widell98/MarketMind-sub004/internal/cache/memory"
	"github.com/Widell98/MarketMind-sub004/internal/cache/redis"
	"github.com/Widell98/MarketMind-sub004/internal/columns"
	"github.com/Widell98/MarketMind-sub004/internal/config"
	"github.com/Widell98/MarketMind-sub004/internal/domain"
	"github.com/Widell98/MarketMind-sub004/internal/platform/polymarket"
	"github.com/Widell98/MarketMind-sub004/internal/server"
	"github.com/Widell98/MarketMind-sub004/internal/server/handler"
	"github.com/Widell98/MarketMind-sub004/internal/service"
	"github.com/Widell98/MarketMind-sub004/internal/store/postgres"
)

// Dependencies bundles everything App.Run needs to operate. It is constructed
// by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	Gateway *service.Gateway
	Lookup  *service.Lookup // nil when the persisted lookup cache is disabled
	Server  *server.Server
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Upstream provider client ---
	provider := polymarket.NewClient(polymarket.ClientConfig{
		BaseURL:    cfg.Provider.Endpoint,
		APIKey:     cfg.Provider.ApiKey,
		Timeout:    cfg.Provider.Timeout.Duration,
		MaxRetries: cfg.Provider.Retries,
	})

	// --- Market gateway ---
	deps.Gateway = service.NewGateway(
		provider,
		memory.NewSnapshotCache(),
		service.GatewayConfig{
			TTL:                cfg.Gateway.TTL.Duration,
			MinRefreshInterval: cfg.Gateway.MinRefreshInterval.Duration,
			DefaultLimit:       cfg.Gateway.DefaultLimit,
		},
		logger,
	)

	// --- PostgreSQL + persisted lookup cache (optional) ---
	if cfg.Lookup.Enabled {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}

		deps.Lookup = service.NewLookup(
			postgres.NewResponseCacheStore(pgClient.Pool()),
			provider,
			service.LookupConfig{
				TTL:                cfg.Lookup.TTL.Duration,
				MinRefreshInterval: cfg.Lookup.MinRefreshInterval.Duration,
			},
			logger,
		)
	}

	// --- Redis per-client rate limiter (optional) ---
	var limiter domain.RateLimiter
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		limiter = redis.NewRateLimiter(redisClient)
	}

	// --- HTTP server ---
	engine := columns.NewEngine(columns.DefaultConfig())

	handlers := server.Handlers{
		Health:  handler.NewHealthHandler(logger),
		Markets: handler.NewMarketsHandler(deps.Gateway, logger),
		Imports: handler.NewImportsHandler(engine, logger),
	}
	if deps.Lookup != nil {
		handlers.Lookup = handler.NewLookupHandler(deps.Lookup, logger)
	}

	deps.Server = server.NewServer(server.Config{
		Port:        cfg.Server.Port,
		CORSOrigins: cfg.Server.CORSOrigins,
		APIKey:      cfg.Server.ApiKey,
		RateLimit:   cfg.Redis.RateLimit,
		RateWindow:  cfg.Redis.RateWindow.Duration,
	}, handlers, limiter, logger)

	return deps, cleanup, nil
}
