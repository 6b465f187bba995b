// Package scheduler maintains one-shot reminder timers keyed by task ID.
// Each job arms a single wall-clock timer; firing and cancellation are
// terminal, and re-arming requires an explicit new Schedule call.
package scheduler

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrStopped is returned when a job is submitted after Stop.
var ErrStopped = errors.New("scheduler is stopped")

// FireFunc is the callback invoked when a job's instant arrives.
// It runs on its own goroutine, outside any request-handling context.
type FireFunc func(taskID int64)

// job tracks one armed timer. A job only ever lives in the jobs map while
// scheduled; firing or cancelling removes it, which makes the map also the
// "exists" check and prevents a second timer for the same ID.
type job struct {
	timer *time.Timer
	at    time.Time
}

// Scheduler owns at most one pending one-shot timer per task ID.
type Scheduler struct {
	mu      sync.Mutex
	jobs    map[int64]*job
	stopped bool
	logger  *slog.Logger
}

// New creates a Scheduler ready to accept jobs.
func New(logger *slog.Logger) *Scheduler {
	return &Scheduler{
		jobs:   make(map[int64]*job),
		logger: logger.With("component", "scheduler"),
	}
}

// Schedule arms a timer that invokes fire(taskID) at the given instant.
// If a job for taskID is already scheduled, this is a no-op and Schedule
// reports false; the existing timer keeps its original instant. Instants
// in the past fire as soon as practical. Returns ErrStopped after Stop.
func (s *Scheduler) Schedule(taskID int64, at time.Time, fire FireFunc) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return false, ErrStopped
	}

	if _, ok := s.jobs[taskID]; ok {
		s.logger.Debug("job already scheduled, ignoring", "task_id", taskID)
		return false, nil
	}

	delay := time.Until(at)
	if delay < 0 {
		delay = 0
	}

	j := &job{at: at}
	j.timer = time.AfterFunc(delay, func() {
		s.onFire(taskID, fire)
	})
	s.jobs[taskID] = j

	s.logger.Debug("job scheduled", "task_id", taskID, "fire_at", at)
	return true, nil
}

// onFire transitions a job to fired and runs the callback. If the job was
// cancelled between the timer firing and this goroutine taking the lock,
// the callback does not run.
func (s *Scheduler) onFire(taskID int64, fire FireFunc) {
	s.mu.Lock()
	_, ok := s.jobs[taskID]
	if !ok || s.stopped {
		s.mu.Unlock()
		return
	}
	delete(s.jobs, taskID)
	s.mu.Unlock()

	s.logger.Debug("job fired", "task_id", taskID)
	fire(taskID)
}

// Cancel stops the pending timer for taskID and guarantees its callback
// will not run. Cancelling a missing or already-fired job is a no-op;
// Cancel reports whether a pending job was actually cancelled.
func (s *Scheduler) Cancel(taskID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[taskID]
	if !ok {
		return false
	}

	// Removing the map entry is what blocks the callback: even when
	// Stop loses the race with an already-expired timer, onFire finds
	// no entry and returns without firing.
	j.timer.Stop()
	delete(s.jobs, taskID)

	s.logger.Debug("job cancelled", "task_id", taskID)
	return true
}

// Exists reports whether a job for taskID is currently scheduled.
func (s *Scheduler) Exists(taskID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.jobs[taskID]
	return ok
}

// Len returns the number of currently scheduled jobs.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.jobs)
}

// Stop cancels every pending job and rejects further Schedule calls.
// Safe to call more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	s.stopped = true

	for id, j := range s.jobs {
		j.timer.Stop()
		delete(s.jobs, id)
	}

	s.logger.Debug("scheduler stopped")
}
