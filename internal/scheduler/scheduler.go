// Package scheduler runs periodic maintenance: expired cache sweeps and idle
// session housekeeping.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"zombie-scanner/internal/logging"
)

// Sweeper removes expired cache entries.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// Housekeeper disconnects idle wallets.
type Housekeeper interface {
	Housekeep(maxIdle time.Duration) int
}

// Config holds cron specs with a leading seconds field.
type Config struct {
	CacheSweepCron string
	HousekeepCron  string
	SessionMaxIdle time.Duration
}

// MaintenanceScheduler runs maintenance jobs on cron schedules.
type MaintenanceScheduler struct {
	cron    *cron.Cron
	cfg     Config
	cache   Sweeper
	tracker Housekeeper
	log     logging.Logger
}

// NewMaintenanceScheduler creates a scheduler. A nil cache or tracker skips its job.
func NewMaintenanceScheduler(cache Sweeper, tracker Housekeeper, cfg Config, log logging.Logger) *MaintenanceScheduler {
	if cfg.SessionMaxIdle <= 0 {
		cfg.SessionMaxIdle = 30 * time.Minute
	}
	return &MaintenanceScheduler{
		cron:    cron.New(cron.WithSeconds()),
		cfg:     cfg,
		cache:   cache,
		tracker: tracker,
		log:     logging.Component(log, "scheduler"),
	}
}

// Start registers the jobs and starts the cron runner.
func (s *MaintenanceScheduler) Start() error {
	if s.cache != nil && s.cfg.CacheSweepCron != "" {
		if _, err := s.cron.AddFunc(s.cfg.CacheSweepCron, s.SweepCache); err != nil {
			return fmt.Errorf("cache sweep schedule %q: %w", s.cfg.CacheSweepCron, err)
		}
	}
	if s.tracker != nil && s.cfg.HousekeepCron != "" {
		if _, err := s.cron.AddFunc(s.cfg.HousekeepCron, s.Housekeep); err != nil {
			return fmt.Errorf("housekeep schedule %q: %w", s.cfg.HousekeepCron, err)
		}
	}

	s.cron.Start()
	s.log.Infof("Maintenance scheduler started with %d jobs", len(s.cron.Entries()))
	return nil
}

// Stop stops the runner and waits for running jobs.
func (s *MaintenanceScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Infof("Maintenance scheduler stopped")
}

// SweepCache removes expired scan cache entries.
func (s *MaintenanceScheduler) SweepCache() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := s.cache.Sweep(ctx)
	if err != nil {
		s.log.WithError(err).Warnf("cache sweep failed")
		return
	}
	if n > 0 {
		s.log.WithField("removed", n).Debugf("cache sweep completed")
	}
}

// Housekeep disconnects wallets idle longer than SessionMaxIdle.
func (s *MaintenanceScheduler) Housekeep() {
	if n := s.tracker.Housekeep(s.cfg.SessionMaxIdle); n > 0 {
		s.log.WithField("disconnected", n).Infof("idle wallets disconnected")
	}
}
