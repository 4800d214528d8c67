package watcher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zombie-scanner/internal/logging"
	"zombie-scanner/internal/solana"
)

type fakeWS struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]chan solana.LogNotification
	byAddr map[string]uint64
	failOn string
}

func newFakeWS() *fakeWS {
	return &fakeWS{
		subs:   make(map[uint64]chan solana.LogNotification),
		byAddr: make(map[string]uint64),
	}
}

func (f *fakeWS) SubscribeLogs(_ context.Context, filter solana.LogsFilter) (*solana.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	addr := filter.Mentions[0]
	if addr == f.failOn {
		return nil, errors.New("subscribe refused")
	}
	f.nextID++
	ch := make(chan solana.LogNotification, 4)
	f.subs[f.nextID] = ch
	f.byAddr[addr] = f.nextID
	return &solana.Subscription{ID: f.nextID, C: ch}, nil
}

func (f *fakeWS) Unsubscribe(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.subs[id]
	if !ok {
		return solana.ErrUnknownSubscription
	}
	delete(f.subs, id)
	close(ch)
	return nil
}

func (f *fakeWS) Close() error { return nil }

func (f *fakeWS) active() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

func (f *fakeWS) notify(address, signature string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.subs[f.byAddr[address]]
	if !ok {
		return false
	}
	ch <- solana.LogNotification{Signature: signature}
	return true
}

type recordingInvalidator struct {
	mu      sync.Mutex
	dropped []string
}

func (r *recordingInvalidator) Invalidate(_ context.Context, address string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dropped = append(r.dropped, address)
	return nil
}

func (r *recordingInvalidator) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.dropped)
}

func TestWatcher_NotificationInvalidates(t *testing.T) {
	ws := newFakeWS()
	inv := &recordingInvalidator{}
	var notified int32
	var mu sync.Mutex
	w := New(context.Background(), ws, inv, Hooks{
		Notified: func(string) {
			mu.Lock()
			notified++
			mu.Unlock()
		},
	}, logging.Nop())
	defer w.Close()

	w.WalletConnected("wallet-a")
	w.WalletConnected("wallet-a")
	require.Eventually(t, func() bool { return ws.active() == 1 }, time.Second, 5*time.Millisecond)

	require.True(t, ws.notify("wallet-a", "sig-1"))
	require.Eventually(t, func() bool { return inv.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"wallet-a"}, inv.dropped)

	mu.Lock()
	assert.Equal(t, int32(1), notified)
	mu.Unlock()
}

func TestWatcher_DisconnectUnsubscribes(t *testing.T) {
	ws := newFakeWS()
	var lastActive int
	var mu sync.Mutex
	w := New(context.Background(), ws, &recordingInvalidator{}, Hooks{
		Subscriptions: func(n int) {
			mu.Lock()
			lastActive = n
			mu.Unlock()
		},
	}, logging.Nop())
	defer w.Close()

	w.WalletConnected("wallet-a")
	w.WalletConnected("wallet-b")
	require.Eventually(t, func() bool { return ws.active() == 2 }, time.Second, 5*time.Millisecond)

	w.WalletDisconnected("wallet-a")
	require.Eventually(t, func() bool { return ws.active() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, w.Watching())

	mu.Lock()
	assert.Equal(t, 1, lastActive)
	mu.Unlock()

	w.WalletDisconnected("unknown")
	assert.Equal(t, 1, w.Watching())
}

func TestWatcher_SubscribeFailureAllowsRetry(t *testing.T) {
	ws := newFakeWS()
	ws.failOn = "wallet-a"
	w := New(context.Background(), ws, &recordingInvalidator{}, Hooks{}, logging.Nop())
	defer w.Close()

	w.WalletConnected("wallet-a")
	require.Eventually(t, func() bool { return w.Watching() == 0 }, time.Second, 5*time.Millisecond)

	ws.mu.Lock()
	ws.failOn = ""
	ws.mu.Unlock()

	w.WalletConnected("wallet-a")
	require.Eventually(t, func() bool { return ws.active() == 1 }, time.Second, 5*time.Millisecond)
}

func TestWatcher_CloseReleasesSubscriptions(t *testing.T) {
	ws := newFakeWS()
	w := New(context.Background(), ws, &recordingInvalidator{}, Hooks{}, logging.Nop())

	w.WalletConnected("wallet-a")
	w.WalletConnected("wallet-b")
	require.Eventually(t, func() bool { return ws.active() == 2 }, time.Second, 5*time.Millisecond)

	w.Close()
	assert.Zero(t, ws.active())
	assert.Zero(t, w.Watching())

	w.WalletConnected("wallet-c")
	assert.Zero(t, w.Watching())
}
