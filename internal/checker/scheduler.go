package checker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// RunStatus describes the most recent scheduled run for readiness
// reporting.
type RunStatus struct {
	LastRun   time.Time `json:"last_run"`
	LastError string    `json:"last_error,omitempty"`
}

// Scheduler runs checks on a fixed interval in watch mode.
type Scheduler struct {
	cron    *cron.Cron
	checker *Checker
	log     *slog.Logger

	mu     sync.Mutex
	status RunStatus
}

// NewScheduler creates a Scheduler running the checker every interval.
// Force-notify is a single-run operator action and never applies to
// scheduled runs.
func NewScheduler(c *Checker, interval time.Duration, log *slog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(),
		checker: c,
		log:     log,
	}

	if _, err := s.cron.AddFunc("@every "+interval.String(), s.runCheck); err != nil {
		return nil, err
	}

	return s, nil
}

// Start begins running scheduled checks.
func (s *Scheduler) Start() {
	s.log.Info("scheduler started")
	s.cron.Start()
}

// Stop gracefully stops the scheduler, waiting for a running check to
// finish.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	return s.cron.Stop()
}

// Status returns the outcome of the most recent scheduled run.
func (s *Scheduler) Status() RunStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Scheduler) runCheck() {
	s.log.Info("scheduled check starting")
	err := s.checker.Run(context.Background(), false)
	if err != nil {
		s.log.Error("scheduled check failed", "error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = RunStatus{LastRun: time.Now()}
	if err != nil {
		s.status.LastError = err.Error()
	}
}
