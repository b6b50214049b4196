package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Syncer defines the mirror refresh run on every tick
type Syncer interface {
	// Sync replaces the mirror with the database content and returns the number of tutorials written
	Sync(ctx context.Context) (int, error)
}

// SyncScheduler periodically refreshes the mirror from the database
type SyncScheduler struct {
	cron     *cron.Cron
	schedule string
	syncer   Syncer
	timeout  time.Duration
	logger   *zap.Logger
}

// NewSyncScheduler creates a new sync scheduler for a standard cron expression
// (descriptors such as "@every 15m" are accepted too)
func NewSyncScheduler(schedule string, syncer Syncer, timeout time.Duration, logger *zap.Logger) (*SyncScheduler, error) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid sync schedule %q: %w", schedule, err)
	}

	s := &SyncScheduler{
		cron:     cron.New(),
		schedule: schedule,
		syncer:   syncer,
		timeout:  timeout,
		logger:   logger,
	}
	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("failed to schedule sync: %w", err)
	}
	return s, nil
}

// Start starts the scheduler
func (s *SyncScheduler) Start() {
	s.cron.Start()
	s.logger.Info("Sync scheduler started", zap.String("schedule", s.schedule))
}

// Stop stops the scheduler and waits for a running sync to finish
func (s *SyncScheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Sync scheduler stopped")
}

// run executes a single sync bounded by the timeout
func (s *SyncScheduler) run() {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	count, err := s.syncer.Sync(ctx)
	if err != nil {
		s.logger.Warn("Scheduled sync skipped", zap.Error(err))
		return
	}
	s.logger.Info("Scheduled sync completed", zap.Int("count", count))
}
