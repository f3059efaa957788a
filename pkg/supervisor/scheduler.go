package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler drives periodic rescans of the chart configuration, for
// installations where charts arrive by copy or sync rather than through
// file events.
type Scheduler struct {
	cron *cron.Cron
	log  *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewScheduler builds an idle scheduler.
func NewScheduler(log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{cron: cron.New(), log: log}
}

// Start schedules task on the given cron expression ("@every 2m" style
// intervals included). An empty expression leaves the scheduler idle.
// Task errors are logged; the schedule keeps running.
func (s *Scheduler) Start(ctx context.Context, spec string, task func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if spec == "" {
		s.log.Info("rescan schedule not configured, skipping scheduler")
		return nil
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid rescan schedule %q: %w", spec, err)
	}
	if _, err := s.cron.AddFunc(spec, func() {
		if err := task(); err != nil {
			s.log.Error("scheduled rescan failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule rescan: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.log.Info("rescan scheduler started", "schedule", spec)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop halts the schedule and waits for a running task to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.running = false
		s.log.Info("rescan scheduler stopped")
	}
}

// IsRunning reports whether the schedule is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled rescan time, nil when idle.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
