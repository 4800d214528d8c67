// Package scanner finds the zombie assets held by a wallet.
//
// A scan enumerates the wallet's token accounts, keeps allowlisted tokens and
// NFTs from dead collections, enriches tokens with price and dormancy, then
// classifies and scores every asset. Results are cached per address.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"zombie-scanner/internal/catalog"
	"zombie-scanner/internal/domain"
	"zombie-scanner/internal/logging"
	"zombie-scanner/internal/price"
	"zombie-scanner/internal/scancache"
	"zombie-scanner/internal/solana"
)

// Default configuration values.
const (
	DefaultEnumerateTimeout      = 10 * time.Second
	DefaultScanTimeout           = 60 * time.Second
	DefaultDormancyLookbackLimit = 5
	DefaultMetadataConcurrency   = 8
)

// Config configures a Scanner.
type Config struct {
	Network       domain.Network
	TokenPrograms []string

	// EnumerateTimeout bounds each getTokenAccountsByOwner call.
	EnumerateTimeout time.Duration
	// ScanTimeout bounds a whole scan once started.
	ScanTimeout time.Duration
	// DormancyLookbackLimit is how many token assets, in discovery order, get a
	// dormancy lookup. Zero disables lookups.
	DormancyLookbackLimit int
	// MetadataConcurrency bounds parallel NFT metadata and dormancy fetches.
	MetadataConcurrency int
}

// DefaultConfig returns the default scanner configuration.
func DefaultConfig() Config {
	return Config{
		Network:               domain.NetworkMainnet,
		TokenPrograms:         []string{solana.TokenProgramID, solana.Token2022ProgramID},
		EnumerateTimeout:      DefaultEnumerateTimeout,
		ScanTimeout:           DefaultScanTimeout,
		DormancyLookbackLimit: DefaultDormancyLookbackLimit,
		MetadataConcurrency:   DefaultMetadataConcurrency,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Network == "" {
		c.Network = def.Network
	}
	if len(c.TokenPrograms) == 0 {
		c.TokenPrograms = def.TokenPrograms
	}
	if c.EnumerateTimeout <= 0 {
		c.EnumerateTimeout = def.EnumerateTimeout
	}
	if c.ScanTimeout <= 0 {
		c.ScanTimeout = def.ScanTimeout
	}
	if c.DormancyLookbackLimit < 0 {
		c.DormancyLookbackLimit = 0
	}
	if c.MetadataConcurrency <= 0 {
		c.MetadataConcurrency = def.MetadataConcurrency
	}
	return c
}

// Result describes one completed Scan or Refresh call.
type Result struct {
	Address     string
	Network     domain.Network
	Assets      []domain.Asset
	Duration    time.Duration
	CompletedAt time.Time
	FromCache   bool
	Refresh     bool
	Err         error
}

// Observer is notified after every Scan or Refresh call.
type Observer func(ctx context.Context, res Result)

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets the logger.
func WithLogger(log logging.Logger) Option {
	return func(s *Scanner) {
		s.log = logging.Component(log, "scanner")
	}
}

// WithObserver registers an observer; observers run in registration order.
func WithObserver(fn Observer) Option {
	return func(s *Scanner) {
		s.observers = append(s.observers, fn)
	}
}

// WithClock overrides the clock.
func WithClock(now func() time.Time) Option {
	return func(s *Scanner) {
		s.nowFn = now
	}
}

// Scanner produces the qualifying asset set for a wallet. Safe for concurrent use.
type Scanner struct {
	ledger    solana.LedgerClient
	cache     scancache.Cache
	catalog   *catalog.Catalog
	prices    price.Source
	cfg       Config
	log       logging.Logger
	observers []Observer
	nowFn     func() time.Time

	inflight singleflight.Group
}

// New creates a Scanner.
func New(ledger solana.LedgerClient, cache scancache.Cache, cat *catalog.Catalog, prices price.Source, cfg Config, opts ...Option) *Scanner {
	if prices == nil {
		prices = price.Noop{}
	}
	s := &Scanner{
		ledger:  ledger,
		cache:   cache,
		catalog: cat,
		prices:  prices,
		cfg:     cfg.withDefaults(),
		log:     logging.Component(nil, "scanner"),
		nowFn:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Network returns the network the scanner queries.
func (s *Scanner) Network() domain.Network {
	return s.cfg.Network
}

// Scan returns the wallet's zombie assets, serving from cache when possible.
// A wallet with no qualifying holdings yields an empty slice.
func (s *Scanner) Scan(ctx context.Context, address string) ([]domain.Asset, error) {
	start := s.nowFn()

	if err := ValidateAddress(address); err != nil {
		s.notify(ctx, Result{Address: address, Err: err})
		return nil, err
	}

	assets, ok, err := s.cache.Get(ctx, address)
	if err != nil {
		s.log.WithError(err).WithField("address", address).Warnf("cache read failed, scanning")
	}
	if ok {
		s.notify(ctx, Result{Address: address, Assets: assets, Duration: s.nowFn().Sub(start), FromCache: true})
		return assets, nil
	}

	assets, err = s.run(ctx, address)
	s.notify(ctx, Result{Address: address, Assets: assets, Duration: s.nowFn().Sub(start), Err: err})
	return assets, err
}

// Refresh drops the cached entry and scans again, repopulating the cache.
// It never joins a scan that was already in flight when it was called.
func (s *Scanner) Refresh(ctx context.Context, address string) ([]domain.Asset, error) {
	start := s.nowFn()

	if err := ValidateAddress(address); err != nil {
		s.notify(ctx, Result{Address: address, Refresh: true, Err: err})
		return nil, err
	}

	if err := s.cache.Delete(ctx, address); err != nil {
		s.log.WithError(err).WithField("address", address).Warnf("cache delete failed")
	}
	s.inflight.Forget(address)

	assets, err := s.run(ctx, address)
	s.notify(ctx, Result{Address: address, Assets: assets, Duration: s.nowFn().Sub(start), Refresh: true, Err: err})
	return assets, err
}

// Invalidate drops the cached entry for address without scanning.
func (s *Scanner) Invalidate(ctx context.Context, address string) error {
	return s.cache.Delete(ctx, address)
}

// run joins or starts the single in-flight scan for address. The scan itself
// is detached from ctx and bounded by ScanTimeout; ctx only limits the wait.
func (s *Scanner) run(ctx context.Context, address string) ([]domain.Asset, error) {
	ch := s.inflight.DoChan(address, func() (interface{}, error) {
		scanCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ScanTimeout)
		defer cancel()
		return s.scan(scanCtx, address)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return domain.CloneAssets(res.Val.([]domain.Asset)), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Scanner) scan(ctx context.Context, address string) ([]domain.Asset, error) {
	log := s.log.WithField("address", address)

	holdings, err := s.enumerate(ctx, address)
	if err != nil {
		return nil, err
	}

	tokens, candidates, err := s.partition(ctx, log, holdings)
	if err != nil {
		return nil, err
	}
	nfts := s.resolveNFTs(ctx, log, candidates)
	prices := s.enrichTokens(ctx, log, tokens)

	assets := make([]domain.Asset, 0, len(tokens)+len(nfts))
	assets = append(assets, tokens...)
	assets = append(assets, nfts...)
	for i := range assets {
		classify(s.catalog, &assets[i], prices)
	}

	if err := s.cache.Put(ctx, address, assets); err != nil {
		log.WithError(err).Warnf("cache write failed")
	}

	log.WithFields(logging.Fields{
		"holdings": len(holdings),
		"tokens":   len(tokens),
		"nfts":     len(nfts),
	}).Infof("scan complete")

	return assets, nil
}

// enumerate lists the wallet's token accounts under every configured program.
func (s *Scanner) enumerate(ctx context.Context, address string) ([]holding, error) {
	var holdings []holding

	for _, program := range s.cfg.TokenPrograms {
		ectx, cancel := context.WithTimeout(ctx, s.cfg.EnumerateTimeout)
		accounts, err := s.ledger.GetTokenAccountsByOwner(ectx, address, program)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("enumerate token accounts (%s): %w", program, ledgerTimeout(err))
		}

		for _, acct := range accounts {
			h, ok := s.decodeHolding(acct, program)
			if ok {
				holdings = append(holdings, h)
			}
		}
	}

	return holdings, nil
}

func (s *Scanner) notify(ctx context.Context, res Result) {
	res.Network = s.cfg.Network
	res.CompletedAt = s.nowFn()
	for _, fn := range s.observers {
		fn(ctx, res)
	}
}

// ledgerTimeout tags a deadline expiry as ErrLedgerTimeout.
func ledgerTimeout(err error) error {
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, solana.ErrLedgerTimeout) {
		return fmt.Errorf("%w: %w", solana.ErrLedgerTimeout, err)
	}
	return err
}

// ValidateAddress checks that address is a base58 32-byte public key.
func ValidateAddress(address string) error {
	if _, err := solana.DecodePubkey(address); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return nil
}
