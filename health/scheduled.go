package health

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jonwraymond/healthops/observe"
)

// ScheduledProbe binds one named probe to its schedule, its debounce state,
// and its telemetry. The manager owns all ScheduledProbe instances; the
// scheduler only holds timing handles keyed by name.
type ScheduledProbe struct {
	name     string
	typ      Type
	critical bool
	probe    Probe
	schedule Schedule
	state    *DebounceState

	scheduler *Scheduler
	reporter  StateListener
	tracer    observe.Tracer
	metrics   observe.Metrics
	logger    observe.Logger

	// active is cleared when the probe is removed so an in-flight run
	// cannot resurrect its own timer.
	active atomic.Bool
}

// NewScheduledProbe creates the per-tick executor for one probe.
func NewScheduledProbe(cfg ProbeConfig, probe Probe, scheduler *Scheduler, reporter StateListener,
	tracer observe.Tracer, metrics observe.Metrics, logger observe.Logger) *ScheduledProbe {
	sp := &ScheduledProbe{
		name:      cfg.Name,
		typ:       cfg.Type,
		critical:  cfg.Critical,
		probe:     probe,
		schedule:  cfg.Schedule,
		state:     NewDebounceState(cfg.Name, cfg.Schedule.FailureAttempts, cfg.Schedule.SuccessAttempts, cfg.initialState()),
		scheduler: scheduler,
		reporter:  reporter,
		tracer:    tracer,
		metrics:   metrics,
		logger:    logger.WithProbe(cfg.Name),
	}
	sp.active.Store(true)
	return sp
}

// Name returns the probe name.
func (p *ScheduledProbe) Name() string {
	return p.name
}

// Type returns the aggregate type this probe gates.
func (p *ScheduledProbe) Type() Type {
	return p.typ
}

// Critical reports whether this probe gates its type's aggregate state.
func (p *ScheduledProbe) Critical() bool {
	return p.critical
}

// Schedule returns the probe's timing parameters.
func (p *ScheduledProbe) Schedule() Schedule {
	return p.schedule
}

// Healthy returns the current debounced health value.
func (p *ScheduledProbe) Healthy() bool {
	return p.state.Healthy()
}

// deactivate stops the run loop: an in-flight run completes but will not
// arm the next timer.
func (p *ScheduledProbe) deactivate() {
	p.active.Store(false)
}

// Run executes one tick: probe, record, debounce, report, reschedule.
// It never panics; a panicking probe is a failing outcome.
func (p *ScheduledProbe) Run(ctx context.Context) {
	meta := observe.ProbeMeta{Name: p.name, Type: p.typ.String(), Critical: p.critical}

	ctx, span := p.tracer.StartSpan(ctx, meta)
	start := time.Now()
	result := p.check(ctx)
	result.Duration = time.Since(start)
	p.tracer.EndSpan(span, runError(result))

	p.metrics.RecordRun(ctx, meta, result.Duration, result.Healthy)

	if result.Healthy {
		p.reporter.OnHealthyCheck(p.name)
	} else {
		p.reporter.OnUnhealthyCheck(p.name)
		p.logger.Debug(ctx, "probe run unhealthy",
			observe.Field{Key: "message", Value: result.Message},
			observe.Field{Key: "error", Value: errString(result.Error)},
		)
	}

	if p.state.Update(result.Healthy) {
		p.logger.Info(ctx, "probe state changed",
			observe.Field{Key: "healthy", Value: p.state.Healthy()},
		)
		p.reporter.OnStateChanged(p.name, p.state.Healthy())
	}

	if !p.active.Load() {
		return
	}
	if err := p.scheduler.Schedule(p, p.state.Healthy()); err != nil {
		// A dropped schedule is an invisible monitoring gap; make it loud.
		p.logger.Error(ctx, "failed to reschedule probe",
			observe.Field{Key: "error", Value: err.Error()},
		)
	}
}

// check runs the wrapped probe, converting panics into failing outcomes so a
// misbehaving probe can never take down the scheduler.
func (p *ScheduledProbe) check(ctx context.Context) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("probe %q panicked: %v", p.name, r)
			p.logger.Error(ctx, "probe panicked",
				observe.Field{Key: "panic", Value: fmt.Sprint(r)},
			)
			result = Unhealthy("probe panicked", err)
		}
	}()
	return p.probe.Check(ctx)
}

// runError derives the span error for a run outcome.
func runError(r Result) error {
	if r.Healthy {
		return nil
	}
	if r.Error != nil {
		return r.Error
	}
	return ErrProbeUnhealthy
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
