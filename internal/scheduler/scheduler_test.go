package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zombie-scanner/internal/logging"
)

type countingSweeper struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (c *countingSweeper) Sweep(context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return 1, c.err
}

func (c *countingSweeper) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type recordingHousekeeper struct {
	mu      sync.Mutex
	maxIdle []time.Duration
}

func (r *recordingHousekeeper) Housekeep(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.maxIdle = append(r.maxIdle, maxIdle)
	return 2
}

func TestMaintenanceScheduler_RunsJobs(t *testing.T) {
	sweeper := &countingSweeper{}
	s := NewMaintenanceScheduler(sweeper, nil, Config{CacheSweepCron: "* * * * * *"}, logging.Nop())
	require.NoError(t, s.Start())
	defer s.Stop()

	require.Eventually(t, func() bool { return sweeper.count() >= 1 }, 3*time.Second, 20*time.Millisecond)
}

func TestMaintenanceScheduler_InvalidSpec(t *testing.T) {
	s := NewMaintenanceScheduler(&countingSweeper{}, nil, Config{CacheSweepCron: "every minute"}, logging.Nop())
	assert.Error(t, s.Start())
}

func TestMaintenanceScheduler_DirectCalls(t *testing.T) {
	sweeper := &countingSweeper{err: errors.New("redis down")}
	tracker := &recordingHousekeeper{}
	s := NewMaintenanceScheduler(sweeper, tracker, Config{}, logging.Nop())

	s.SweepCache()
	s.Housekeep()

	assert.Equal(t, 1, sweeper.count())
	assert.Equal(t, []time.Duration{30 * time.Minute}, tracker.maxIdle)
}
