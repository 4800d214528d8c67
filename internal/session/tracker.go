// Package session tracks wallet connections and schedules debounced scans.
package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"zombie-scanner/internal/domain"
	"zombie-scanner/internal/logging"
	"zombie-scanner/internal/scanner"
	"zombie-scanner/internal/storage"
)

// ScanFunc scans a wallet after its connect debounce elapses.
type ScanFunc func(ctx context.Context, address string) error

// Listener is told when a wallet becomes connected or disconnected.
type Listener interface {
	WalletConnected(address string)
	WalletDisconnected(address string)
}

// Config configures a Tracker.
type Config struct {
	Network  domain.Network
	Debounce time.Duration
}

// Tracker records wallet sessions and runs one debounced scan per connect burst.
type Tracker struct {
	store   storage.SessionStore
	network domain.Network
	scan    ScanFunc
	deb     *Debouncer
	log     logging.Logger
	nowFn   func() time.Time

	mu        sync.RWMutex
	active    map[string]time.Time // address -> last connect
	listeners []Listener
}

// NewTracker creates a Tracker. scan may be nil, in which case connects only
// record the session.
func NewTracker(store storage.SessionStore, scan ScanFunc, cfg Config, log logging.Logger) *Tracker {
	if cfg.Network == "" {
		cfg.Network = domain.NetworkMainnet
	}
	t := &Tracker{
		store:   store,
		network: cfg.Network,
		scan:    scan,
		log:     logging.Component(log, "session"),
		nowFn:   time.Now,
		active:  make(map[string]time.Time),
	}
	t.deb = NewDebouncer(cfg.Debounce, t.runScan)
	return t
}

// AddListener registers l for connect and disconnect events.
func (t *Tracker) AddListener(l Listener) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, l)
}

// Connect records a connection and schedules a scan. A reconnect inside the
// debounce window restarts the timer.
func (t *Tracker) Connect(ctx context.Context, address string) (*domain.WalletSession, error) {
	if err := scanner.ValidateAddress(address); err != nil {
		return nil, err
	}

	now := t.nowFn()
	sess, err := t.store.RecordConnect(ctx, address, t.network, now.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("record connect: %w", err)
	}

	t.mu.Lock()
	_, already := t.active[address]
	t.active[address] = now
	listeners := append([]Listener(nil), t.listeners...)
	t.mu.Unlock()

	if t.scan != nil {
		if t.deb.Schedule(address) {
			t.log.WithField("address", address).Debugf("reconnect inside debounce window, timer reset")
		}
	}
	if !already {
		for _, l := range listeners {
			l.WalletConnected(address)
		}
	}

	return sess, nil
}

// Disconnect cancels a pending scan for address. Returns true if a scan was
// still pending.
func (t *Tracker) Disconnect(address string) bool {
	cancelled := t.deb.Cancel(address)

	t.mu.Lock()
	_, was := t.active[address]
	delete(t.active, address)
	listeners := append([]Listener(nil), t.listeners...)
	t.mu.Unlock()

	if was {
		for _, l := range listeners {
			l.WalletDisconnected(address)
		}
	}
	return cancelled
}

// FirstConnectedAt returns the wallet's first recorded connection. Wallets
// that never connected report ok=false.
func (t *Tracker) FirstConnectedAt(ctx context.Context, address string) (time.Time, bool, error) {
	sess, err := t.store.Get(ctx, address, t.network)
	if errors.Is(err, storage.ErrNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("get session: %w", err)
	}
	return time.UnixMilli(sess.FirstConnectedAt), true, nil
}

// Active returns connected wallet addresses in sorted order.
func (t *Tracker) Active() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]string, 0, len(t.active))
	for addr := range t.active {
		out = append(out, addr)
	}
	sort.Strings(out)
	return out
}

// PendingScans returns the number of debounced scans not yet started.
func (t *Tracker) PendingScans() int {
	return t.deb.Pending()
}

// Housekeep disconnects wallets idle longer than maxIdle and drops stale
// debounce entries. Returns the number of wallets disconnected.
func (t *Tracker) Housekeep(maxIdle time.Duration) int {
	cutoff := t.nowFn().Add(-maxIdle)

	t.mu.RLock()
	var idle []string
	for addr, at := range t.active {
		if at.Before(cutoff) {
			idle = append(idle, addr)
		}
	}
	t.mu.RUnlock()

	for _, addr := range idle {
		t.Disconnect(addr)
	}
	if n := t.deb.Prune(maxIdle); n > 0 {
		t.log.WithField("count", n).Warnf("pruned stale debounce entries")
	}
	return len(idle)
}

// Stop cancels every pending scan.
func (t *Tracker) Stop() {
	t.deb.Stop()
}

func (t *Tracker) runScan(address string) {
	ctx := context.Background()
	log := t.log.WithField("address", address)

	if err := t.scan(ctx, address); err != nil {
		log.WithError(err).Warnf("debounced scan failed")
		return
	}

	if err := t.store.MarkScanned(ctx, address, t.network, t.nowFn().UnixMilli()); err != nil {
		log.WithError(err).Warnf("record scan time failed")
	}
}
