package main

import (
	"context"
	"fmt"

	"zombie-scanner/internal/catalog"
	"zombie-scanner/internal/config"
	"zombie-scanner/internal/logging"
	"zombie-scanner/internal/observability"
	"zombie-scanner/internal/points"
	"zombie-scanner/internal/price"
	"zombie-scanner/internal/rewards"
	"zombie-scanner/internal/scancache"
	"zombie-scanner/internal/scanner"
	"zombie-scanner/internal/session"
	"zombie-scanner/internal/solana"
	"zombie-scanner/internal/storage"
	chstore "zombie-scanner/internal/storage/clickhouse"
	"zombie-scanner/internal/storage/memory"
	pgstore "zombie-scanner/internal/storage/postgres"
)

// app holds the wired components shared by the commands.
type app struct {
	cfg     *config.Config
	log     logging.Logger
	cache   scancache.Cache
	scanner *scanner.Scanner
	tracker *session.Tracker
	points  *points.Service
	claimer *rewards.Claimer

	closers []func()
}

// stores holds the storage implementations.
type stores struct {
	sessions  storage.SessionStore
	claims    storage.ClaimStore
	snapshots storage.ScanSnapshotStore // nil disables snapshot recording
}

// newApp wires every component from cfg. metrics may be nil.
func newApp(ctx context.Context, cfg *config.Config, log logging.Logger, metrics *observability.Metrics) (*app, error) {
	a := &app{cfg: cfg, log: log}

	cat, err := catalog.LoadFile(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}

	st, err := a.createStores(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.cache, err = a.createCache(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	rpcOpts := []solana.ClientOption{
		solana.WithTimeout(cfg.Solana.RPCTimeout),
		solana.WithRateLimit(cfg.Solana.RPCRPS, cfg.Solana.RPCBurst),
	}
	if metrics != nil {
		rpcOpts = append(rpcOpts, solana.WithObserver(metrics.RPCObserver()))
	}
	ledger := solana.NewHTTPClient(cfg.Solana.RPCEndpoint, rpcOpts...)

	var prices price.Source = price.Noop{}
	if cfg.Price.Enabled {
		prices = price.NewJupiter(cfg.Price.Endpoint, cfg.Price.Timeout, log)
	}

	scanOpts := []scanner.Option{scanner.WithLogger(log)}
	if metrics != nil {
		scanOpts = append(scanOpts, scanner.WithObserver(metrics.ScanObserver()))
	}
	if st.snapshots != nil {
		scanOpts = append(scanOpts, scanner.WithObserver(points.SnapshotRecorder(st.snapshots, log)))
	}
	a.scanner = scanner.New(ledger, a.cache, cat, prices, cfg.ScannerConfig(), scanOpts...)

	a.tracker = session.NewTracker(st.sessions, func(ctx context.Context, address string) error {
		_, err := a.scanner.Scan(ctx, address)
		return err
	}, session.Config{Network: cfg.Network(), Debounce: cfg.Scanner.Debounce}, log)
	a.closers = append(a.closers, a.tracker.Stop)
	if metrics != nil {
		a.tracker.AddListener(metrics)
	}

	a.points = points.NewService(a.scanner, a.tracker)

	claimOpts := []rewards.Option{rewards.WithLogger(log)}
	if cfg.Rewards.Endpoint != "" {
		breakerCfg := rewards.BreakerConfig{
			FailureThreshold: cfg.Rewards.BreakerFailures,
			OpenTimeout:      cfg.Rewards.BreakerOpenTimeout,
		}
		if metrics != nil {
			breakerCfg.OnStateChange = metrics.BreakerStateChange
		}
		primary := rewards.NewHTTPProvider(cfg.Rewards.Endpoint, cfg.Rewards.APIKey, cfg.Rewards.Timeout, log)
		claimOpts = append(claimOpts, rewards.WithPrimary(primary, rewards.NewBreaker(breakerCfg)))
	}
	if metrics != nil {
		claimOpts = append(claimOpts, rewards.WithObserver(metrics.ClaimObserver()))
		metrics.RegisterCache(a.cache)
	}
	a.claimer = rewards.NewClaimer(a.points, st.claims, rewards.NewLocalProvider(), cfg.Network(), claimOpts...)

	return a, nil
}

// createStores creates all required stores.
func (a *app) createStores(ctx context.Context) (*stores, error) {
	if a.cfg.Storage.UseMemory {
		return &stores{
			sessions: memory.NewSessionStore(),
			claims:   memory.NewClaimStore(),
		}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, a.cfg.Storage.PostgresDSN, a.cfg.Storage.PostgresConns)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, pool.Close)

	st := &stores{
		sessions: pgstore.NewSessionStore(pool),
		claims:   pgstore.NewClaimStore(pool),
	}

	// ClickHouse (analytics, optional)
	if a.cfg.Storage.ClickhouseDSN != "" {
		conn, err := chstore.NewConn(ctx, a.cfg.Storage.ClickhouseDSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = conn.Close() })
		st.snapshots = chstore.NewScanSnapshotStore(conn)
	}

	return st, nil
}

func (a *app) createCache(ctx context.Context) (scancache.Cache, error) {
	cacheCfg := a.cfg.CacheConfig()
	if a.cfg.Cache.RedisURL == "" {
		return scancache.NewMemory(cacheCfg), nil
	}

	client, err := scancache.NewRedisClient(ctx, a.cfg.Cache.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("scan cache: %w", err)
	}
	a.closers = append(a.closers, func() { _ = client.Close() })
	return scancache.NewRedis(client, cacheCfg), nil
}

// Close releases resources in reverse order of creation.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
