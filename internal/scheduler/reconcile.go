// Package scheduler runs periodic mirror maintenance on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultSchedule runs reconciliation nightly at 03:00.
const DefaultSchedule = "0 3 * * *"

// Enqueuer hands reconciliation off to the task queue.
type Enqueuer interface {
	EnqueueReconcileAll(ctx context.Context) (string, error)
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateSchedule checks a standard five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// NextRun returns the first activation of schedule after from.
func NextRun(schedule string, from time.Time) (time.Time, error) {
	s, err := parser.Parse(schedule)
	if err != nil {
		return time.Time{}, err
	}
	return s.Next(from), nil
}

// ReconcileScheduler periodically enqueues a full mirror reconcile.
type ReconcileScheduler struct {
	enqueuer Enqueuer
	schedule string
	enabled  bool
	logger   *zap.Logger

	cron      *cron.Cron
	mu        sync.RWMutex
	isRunning bool
}

func NewReconcileScheduler(enqueuer Enqueuer, schedule string, enabled bool, logger *zap.Logger) *ReconcileScheduler {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReconcileScheduler{
		enqueuer: enqueuer,
		schedule: schedule,
		enabled:  enabled,
		logger:   logger,
		cron:     cron.New(cron.WithParser(parser)),
	}
}

// Start begins the scheduler if reconciliation is enabled. It stops when
// ctx is cancelled.
func (s *ReconcileScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if !s.enabled {
		s.logger.Info("reconcile scheduler disabled")
		return nil
	}

	if err := ValidateSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, func() { s.RunNow(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule reconcile job: %w", err)
	}

	s.cron.Start()
	s.isRunning = true

	next, _ := NextRun(s.schedule, time.Now())
	s.logger.Info("reconcile scheduler started",
		zap.String("schedule", s.schedule),
		zap.Time("next_run", next))

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop waits for a running job and stops the scheduler.
func (s *ReconcileScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	s.isRunning = false
	s.logger.Info("reconcile scheduler stopped")
}

// RunNow enqueues a reconcile immediately.
func (s *ReconcileScheduler) RunNow(ctx context.Context) {
	id, err := s.enqueuer.EnqueueReconcileAll(ctx)
	if err != nil {
		s.logger.Error("failed to enqueue reconcile", zap.Error(err))
		return
	}
	s.logger.Info("reconcile enqueued", zap.String("task_id", id))
}

func (s *ReconcileScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}
