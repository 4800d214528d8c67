package session

import (
	"sync"
	"time"
)

// DefaultDebounce is the delay between a connect and its scan.
const DefaultDebounce = time.Second

// Debouncer delays a per-key action. Scheduling a key that is already
// pending restarts its timer; cancelling drops it. Distinct keys are
// independent. Safe for concurrent use.
type Debouncer struct {
	delay time.Duration
	fire  func(key string)

	mu      sync.Mutex
	pending map[string]*pendingCall
	seq     uint64
	stopped bool
}

type pendingCall struct {
	timer *time.Timer
	seq   uint64
	at    time.Time
}

// NewDebouncer creates a Debouncer that calls fire(key) delay after the last
// Schedule(key). fire runs on its own goroutine.
func NewDebouncer(delay time.Duration, fire func(key string)) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{
		delay:   delay,
		fire:    fire,
		pending: make(map[string]*pendingCall),
	}
}

// Schedule arms or re-arms the timer for key. Returns true if a pending call
// was reset.
func (d *Debouncer) Schedule(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return false
	}

	reset := false
	if p, ok := d.pending[key]; ok {
		p.timer.Stop()
		reset = true
	}

	d.seq++
	seq := d.seq
	d.pending[key] = &pendingCall{
		seq:   seq,
		at:    time.Now(),
		timer: time.AfterFunc(d.delay, func() { d.run(key, seq) }),
	}
	return reset
}

// Cancel drops the pending call for key. Returns true if one was pending.
func (d *Debouncer) Cancel(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.pending[key]
	if !ok {
		return false
	}
	p.timer.Stop()
	delete(d.pending, key)
	return true
}

// Pending returns the number of armed timers.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Prune drops entries armed longer than maxAge ago whose callback never ran.
// Returns how many were dropped.
func (d *Debouncer) Prune(maxAge time.Duration) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	n := 0
	for key, p := range d.pending {
		if p.at.Before(cutoff) {
			p.timer.Stop()
			delete(d.pending, key)
			n++
		}
	}
	return n
}

// Stop cancels every pending call; later Schedule calls are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	for key, p := range d.pending {
		p.timer.Stop()
		delete(d.pending, key)
	}
}

func (d *Debouncer) run(key string, seq uint64) {
	d.mu.Lock()
	p, ok := d.pending[key]
	if !ok || p.seq != seq {
		// superseded or cancelled after the timer fired
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	d.mu.Unlock()

	d.fire(key)
}
