package health

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/jonwraymond/healthops/observe"
)

// SchedulerConfig configures the probe scheduler.
type SchedulerConfig struct {
	// MaxConcurrent bounds how many probes may execute at the same time
	// across distinct names. Zero means unbounded. Runs for the same name
	// never overlap regardless of this setting.
	MaxConcurrent int64

	// Logger receives scheduling diagnostics. Default: discard.
	Logger observe.Logger
}

// Scheduler owns the timers that drive probe execution.
//
// Each probe has at most one pending timer, keyed by name. The next run for a
// probe is armed only as the last step of its current run, so runs for the
// same probe never overlap; runs for different probes are independent and may
// overlap in time.
type Scheduler struct {
	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
	sem     *semaphore.Weighted
	logger  observe.Logger
}

// NewScheduler creates a new probe scheduler.
func NewScheduler(config ...SchedulerConfig) *Scheduler {
	var cfg SchedulerConfig
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Logger == nil {
		cfg.Logger = observe.NoopLogger()
	}

	s := &Scheduler{
		timers: make(map[string]*time.Timer),
		logger: cfg.Logger,
	}
	if cfg.MaxConcurrent > 0 {
		s.sem = semaphore.NewWeighted(cfg.MaxConcurrent)
	}
	return s
}

// ScheduleInitial arms the first run of a probe. The first run fires after
// the schedule's InitialDelay, or after CheckInterval when no initial delay
// is configured; it is never immediate.
func (s *Scheduler) ScheduleInitial(p *ScheduledProbe) error {
	delay := p.Schedule().InitialDelay
	if delay <= 0 {
		delay = p.Schedule().CheckInterval
	}
	return s.after(p, delay)
}

// Schedule arms the next run of a probe. The interval depends on current
// health: CheckInterval while healthy, DowntimeInterval while unhealthy.
// It must be called after every run; a probe that is never rescheduled
// stops being checked.
func (s *Scheduler) Schedule(p *ScheduledProbe, currentlyHealthy bool) error {
	interval := p.Schedule().CheckInterval
	if !currentlyHealthy {
		interval = p.Schedule().DowntimeInterval
	}
	return s.after(p, interval)
}

// Unschedule cancels any pending run for the named probe. Unscheduling an
// unknown or already-unscheduled name is a no-op. A run already in flight is
// allowed to complete.
func (s *Scheduler) Unschedule(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[name]; ok {
		t.Stop()
		delete(s.timers, name)
	}
}

// Stop cancels all pending runs and rejects future scheduling.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	s.stopped = true
	for name, t := range s.timers {
		t.Stop()
		delete(s.timers, name)
	}
}

func (s *Scheduler) after(p *ScheduledProbe, delay time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrSchedulerStopped
	}

	name := p.Name()
	if t, ok := s.timers[name]; ok {
		t.Stop()
	}
	s.timers[name] = time.AfterFunc(delay, func() {
		s.run(p)
	})
	return nil
}

func (s *Scheduler) run(p *ScheduledProbe) {
	ctx := context.Background()

	if s.sem != nil {
		if err := s.sem.Acquire(ctx, 1); err != nil {
			return
		}
		defer s.sem.Release(1)
	}

	p.Run(ctx)
}
