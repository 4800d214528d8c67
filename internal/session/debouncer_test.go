package session

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fireLog struct {
	mu    sync.Mutex
	calls []string
}

func (f *fireLog) fire(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, key)
}

func (f *fireLog) snapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func TestDebouncer_FiresOnceAfterBurst(t *testing.T) {
	var log fireLog
	d := NewDebouncer(40*time.Millisecond, log.fire)

	assert.False(t, d.Schedule("w1"))
	time.Sleep(15 * time.Millisecond)
	assert.True(t, d.Schedule("w1"), "reschedule resets the pending timer")
	time.Sleep(15 * time.Millisecond)
	assert.True(t, d.Schedule("w1"))

	require.Eventually(t, func() bool { return len(log.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, []string{"w1"}, log.snapshot())
	assert.Zero(t, d.Pending())
}

func TestDebouncer_CancelPreventsFire(t *testing.T) {
	var fired atomic.Int32
	d := NewDebouncer(30*time.Millisecond, func(string) { fired.Add(1) })

	d.Schedule("w1")
	assert.True(t, d.Cancel("w1"))
	assert.False(t, d.Cancel("w1"))

	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, fired.Load())
}

func TestDebouncer_DistinctKeysIndependent(t *testing.T) {
	var log fireLog
	d := NewDebouncer(20*time.Millisecond, log.fire)

	d.Schedule("w1")
	d.Schedule("w2")
	d.Cancel("w1")

	require.Eventually(t, func() bool { return len(log.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"w2"}, log.snapshot())
}

func TestDebouncer_Stop(t *testing.T) {
	var fired atomic.Int32
	d := NewDebouncer(20*time.Millisecond, func(string) { fired.Add(1) })

	d.Schedule("w1")
	d.Stop()
	d.Schedule("w2")

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, fired.Load())
	assert.Zero(t, d.Pending())
}

func TestDebouncer_Prune(t *testing.T) {
	d := NewDebouncer(time.Hour, func(string) {})

	d.Schedule("w1")
	assert.Zero(t, d.Prune(time.Minute))
	assert.Equal(t, 1, d.Prune(0))
	assert.Zero(t, d.Pending())
}

func TestNewDebouncer_DefaultDelay(t *testing.T) {
	d := NewDebouncer(0, func(string) {})
	assert.Equal(t, DefaultDebounce, d.delay)
}
