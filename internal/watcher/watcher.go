// Package watcher evicts a wallet's cached scan when the ledger reports
// activity mentioning it.
package watcher

import (
	"context"
	"sync"
	"time"

	"zombie-scanner/internal/logging"
	"zombie-scanner/internal/solana"
)

// DefaultRequestTimeout bounds subscribe and unsubscribe calls.
const DefaultRequestTimeout = 15 * time.Second

// Invalidator drops a wallet's cached scan.
type Invalidator interface {
	Invalidate(ctx context.Context, address string) error
}

// Hooks are optional callbacks for metrics.
type Hooks struct {
	Notified      func(address string)
	Subscriptions func(active int)
}

type watch struct {
	id         uint64
	subscribed bool
}

// Watcher keeps one logs subscription per connected wallet. It implements
// session.Listener.
type Watcher struct {
	ws      solana.WSClient
	inv     Invalidator
	log     logging.Logger
	hooks   Hooks
	timeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	watches map[string]*watch
}

// New creates a Watcher. Background work stops when ctx is done or Close is called.
func New(ctx context.Context, ws solana.WSClient, inv Invalidator, hooks Hooks, log logging.Logger) *Watcher {
	ctx, cancel := context.WithCancel(ctx)
	return &Watcher{
		ws:      ws,
		inv:     inv,
		log:     logging.Component(log, "watcher"),
		hooks:   hooks,
		timeout: DefaultRequestTimeout,
		ctx:     ctx,
		cancel:  cancel,
		watches: make(map[string]*watch),
	}
}

// WalletConnected starts watching address. Subscribing happens in the background.
func (w *Watcher) WalletConnected(address string) {
	w.mu.Lock()
	if _, ok := w.watches[address]; ok || w.ctx.Err() != nil {
		w.mu.Unlock()
		return
	}
	wt := &watch{}
	w.watches[address] = wt
	w.mu.Unlock()

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.subscribe(address, wt)
	}()
}

// WalletDisconnected stops watching address.
func (w *Watcher) WalletDisconnected(address string) {
	w.mu.Lock()
	wt, ok := w.watches[address]
	if ok {
		delete(w.watches, address)
	}
	active := len(w.watches)
	w.mu.Unlock()

	if !ok {
		return
	}
	w.reportSubscriptions(active)
	if wt.subscribed {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.unsubscribe(address, wt.id)
		}()
	}
}

// Watching returns the number of wallets being watched.
func (w *Watcher) Watching() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.watches)
}

// Close unsubscribes every wallet and waits for background work.
func (w *Watcher) Close() {
	w.mu.Lock()
	var ids []uint64
	for addr, wt := range w.watches {
		if wt.subscribed {
			ids = append(ids, wt.id)
		}
		delete(w.watches, addr)
	}
	w.mu.Unlock()

	for _, id := range ids {
		w.unsubscribe("", id)
	}
	w.cancel()
	w.wg.Wait()
}

func (w *Watcher) subscribe(address string, wt *watch) {
	log := w.log.WithField("address", address)

	ctx, cancel := context.WithTimeout(w.ctx, w.timeout)
	sub, err := w.ws.SubscribeLogs(ctx, solana.LogsFilter{Mentions: []string{address}})
	cancel()
	if err != nil {
		log.WithError(err).Warnf("logs subscription failed")
		w.mu.Lock()
		if w.watches[address] == wt {
			delete(w.watches, address)
		}
		w.mu.Unlock()
		return
	}

	w.mu.Lock()
	current := w.watches[address] == wt
	if current {
		wt.id = sub.ID
		wt.subscribed = true
	}
	active := len(w.watches)
	w.mu.Unlock()

	if !current {
		// Disconnected while subscribing.
		w.unsubscribe(address, sub.ID)
		return
	}
	w.reportSubscriptions(active)
	log.Debugf("watching wallet activity")

	w.consume(address, sub)
}

// consume runs until the subscription channel is closed.
func (w *Watcher) consume(address string, sub *solana.Subscription) {
	for n := range sub.C {
		if w.hooks.Notified != nil {
			w.hooks.Notified(address)
		}
		if err := w.inv.Invalidate(w.ctx, address); err != nil {
			w.log.WithError(err).WithField("address", address).Warnf("cache invalidation failed")
			continue
		}
		w.log.WithFields(logging.Fields{
			"address":   address,
			"signature": n.Signature,
		}).Debugf("wallet activity, cached scan dropped")
	}
}

func (w *Watcher) unsubscribe(address string, id uint64) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(w.ctx), w.timeout)
	defer cancel()
	if err := w.ws.Unsubscribe(ctx, id); err != nil {
		w.log.WithError(err).WithField("address", address).Debugf("logs unsubscribe failed")
	}
}

func (w *Watcher) reportSubscriptions(active int) {
	if w.hooks.Subscriptions != nil {
		w.hooks.Subscriptions(active)
	}
}
