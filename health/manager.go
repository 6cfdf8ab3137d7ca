package health

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jonwraymond/healthops/observe"
)

// aggregateTypes lists the types the manager aggregates and exports gauges for.
var aggregateTypes = []Type{TypeReady, TypeAlive}

// Config configures the health manager.
type Config struct {
	// Probes is the allowlist of probes the manager will schedule.
	Probes []ProbeConfig

	// ShutdownWaitPeriod is how long NotifyShutdownStarted blocks while
	// probes keep running, so external observers can see the transition
	// to unhealthy before the process exits. Default: 15 seconds
	ShutdownWaitPeriod time.Duration

	// InitialOverallState is the readiness reported before
	// InitializeAppHealth has seeded per-probe state. False means the
	// process reports unready until initialization. Liveness is not
	// affected; it defaults to healthy until real state exists.
	InitialOverallState bool
}

// DefaultConfig returns a config with the default process-wide parameters.
func DefaultConfig() Config {
	return Config{
		ShutdownWaitPeriod:  15 * time.Second,
		InitialOverallState: true,
	}
}

// Validate validates the manager configuration.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Probes))
	for _, pc := range c.Probes {
		if err := pc.Validate(); err != nil {
			return err
		}
		if seen[pc.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateProbe, pc.Name)
		}
		seen[pc.Name] = true
	}
	return nil
}

// Option configures a Manager.
type Option func(*Manager)

// WithScheduler sets the scheduler the manager drives. Default: a new
// unbounded scheduler.
func WithScheduler(s *Scheduler) Option {
	return func(m *Manager) { m.scheduler = s }
}

// WithLogger sets the logger. Default: discard.
func WithLogger(l observe.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithTracer sets the probe-run tracer. Default: no-op.
func WithTracer(t observe.Tracer) Option {
	return func(m *Manager) { m.tracer = t }
}

// WithMetrics sets the probe-run metrics recorder. Default: no-op.
func WithMetrics(mx observe.Metrics) Option {
	return func(m *Manager) { m.metrics = mx }
}

// WithMeter sets the OpenTelemetry meter used for the per-probe run counters
// and the per-type aggregate gauges.
func WithMeter(meter metric.Meter) Option {
	return func(m *Manager) { m.meter = meter }
}

// WithListener registers a state listener at construction time.
// Listeners can also be added later with AddListener.
func WithListener(l StateListener) Option {
	return func(m *Manager) { m.listeners = append(m.listeners, l) }
}

// WithObserver wires logger, tracer, and meter from a single Observer.
func WithObserver(obs observe.Observer) Option {
	return func(m *Manager) {
		m.logger = obs.Logger()
		m.tracer = observe.NewTracer(obs.Tracer())
		m.meter = obs.Meter()
	}
}

// Manager owns the registry of scheduled probes, aggregates per-type health,
// and coordinates the graceful-shutdown wait window.
//
// The manager exclusively owns all ScheduledProbe instances; the scheduler
// holds only timing handles keyed by name.
type Manager struct {
	mu                sync.RWMutex
	configs           map[string]ProbeConfig
	probes            map[string]*ScheduledProbe
	lastState         map[string]bool
	seeded            map[string]bool
	unhealthyCritical map[Type]int
	initialized       bool
	listeners         []StateListener

	shuttingDown atomic.Bool

	shutdownWait        time.Duration
	initialOverallState bool

	scheduler *Scheduler
	logger    observe.Logger
	tracer    observe.Tracer
	metrics   observe.Metrics
	meter     metric.Meter
	gaugeReg  metric.Registration
}

// NewManager creates a health manager from the given configuration.
func NewManager(cfg Config, opts ...Option) (*Manager, error) {
	for i := range cfg.Probes {
		cfg.Probes[i].Schedule = cfg.Probes[i].Schedule.withDefaults()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.ShutdownWaitPeriod <= 0 {
		cfg.ShutdownWaitPeriod = 15 * time.Second
	}

	m := &Manager{
		configs:             make(map[string]ProbeConfig, len(cfg.Probes)),
		probes:              make(map[string]*ScheduledProbe),
		lastState:           make(map[string]bool),
		seeded:              make(map[string]bool),
		unhealthyCritical:   make(map[Type]int),
		shutdownWait:        cfg.ShutdownWaitPeriod,
		initialOverallState: cfg.InitialOverallState,
	}
	for _, pc := range cfg.Probes {
		m.configs[pc.Name] = pc
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.scheduler == nil {
		m.scheduler = NewScheduler()
	}
	if m.logger == nil {
		m.logger = observe.NoopLogger()
	}
	if m.tracer == nil {
		m.tracer = observe.NewNoopTracer()
	}

	if m.meter != nil {
		if m.metrics == nil {
			mx, err := observe.NewMetrics(m.meter)
			if err != nil {
				return nil, fmt.Errorf("health: create run metrics: %w", err)
			}
			m.metrics = mx
		}
		if err := m.registerGauges(); err != nil {
			return nil, fmt.Errorf("health: register aggregate gauges: %w", err)
		}
	}
	if m.metrics == nil {
		m.metrics = observe.NewNoopMetrics()
	}

	return m, nil
}

// registerGauges exports per-type counts of currently healthy and unhealthy
// scheduled probes (all probes, not just critical ones).
func (m *Manager) registerGauges() error {
	healthyGauge, err := m.meter.Int64ObservableGauge(
		"health.aggregate.healthy",
		metric.WithDescription("Number of currently healthy scheduled probes"),
		metric.WithUnit("{probe}"),
	)
	if err != nil {
		return err
	}

	unhealthyGauge, err := m.meter.Int64ObservableGauge(
		"health.aggregate.unhealthy",
		metric.WithDescription("Number of currently unhealthy scheduled probes"),
		metric.WithUnit("{probe}"),
	)
	if err != nil {
		return err
	}

	reg, err := m.meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		for _, t := range aggregateTypes {
			healthy, unhealthy := m.ProbeCount(t)
			opt := metric.WithAttributes(attribute.String("type", t.String()))
			o.ObserveInt64(healthyGauge, int64(healthy), opt)
			o.ObserveInt64(unhealthyGauge, int64(unhealthy), opt)
		}
		return nil
	}, healthyGauge, unhealthyGauge)
	if err != nil {
		return err
	}
	m.gaugeReg = reg
	return nil
}

// OnProbeAdded reacts to a probe joining the external registry. Probes with
// no matching configuration are ignored: configuration is the allowlist.
func (m *Manager) OnProbeAdded(name string, probe Probe) {
	ctx := context.Background()

	m.mu.Lock()
	cfg, ok := m.configs[name]
	if !ok {
		m.mu.Unlock()
		m.logger.Debug(ctx, "ignoring unconfigured probe",
			observe.Field{Key: "probe.name", Value: name},
		)
		return
	}
	if _, exists := m.probes[name]; exists {
		m.mu.Unlock()
		m.logger.Warn(ctx, "probe already scheduled",
			observe.Field{Key: "probe.name", Value: name},
		)
		return
	}

	sp := NewScheduledProbe(cfg, probe, m.scheduler, m, m.tracer, m.metrics, m.logger)
	m.probes[name] = sp
	m.lastState[name] = cfg.initialState()
	m.seedLocked(cfg)
	m.mu.Unlock()

	if err := m.scheduler.ScheduleInitial(sp); err != nil {
		// An unscheduled probe is an invisible monitoring gap; undo the
		// registration so the gap is at least visible in the snapshot.
		m.logger.Error(ctx, "failed to schedule probe",
			observe.Field{Key: "probe.name", Value: name},
			observe.Field{Key: "error", Value: err.Error()},
		)
		m.OnProbeRemoved(name, probe)
		return
	}

	m.logger.Info(ctx, "probe scheduled",
		observe.Field{Key: "probe.name", Value: name},
		observe.Field{Key: "probe.type", Value: cfg.Type.String()},
		observe.Field{Key: "probe.critical", Value: cfg.Critical},
	)
}

// OnProbeRemoved reacts to a probe leaving the external registry. Removing an
// unknown probe is a no-op. Removal detaches the probe's state synchronously
// so late reports from an in-flight run are inert, and a re-added probe
// starts from its configured initial state.
func (m *Manager) OnProbeRemoved(name string, probe Probe) {
	m.mu.Lock()
	sp, ok := m.probes[name]
	if !ok {
		m.mu.Unlock()
		return
	}
	delete(m.probes, name)
	last := m.lastState[name]
	delete(m.lastState, name)
	delete(m.seeded, name)
	if sp.Critical() && !last {
		m.unhealthyCritical[sp.Type()]--
	}
	m.mu.Unlock()

	sp.deactivate()
	m.scheduler.Unschedule(name)

	m.logger.Info(context.Background(), "probe unscheduled",
		observe.Field{Key: "probe.name", Value: name},
	)
}

// OnStateChanged applies a debounced transition to the aggregate state and
// fans it out to listeners. Reports for unregistered names are no-ops.
func (m *Manager) OnStateChanged(name string, healthy bool) {
	m.mu.Lock()
	sp, ok := m.probes[name]
	if !ok {
		m.mu.Unlock()
		return
	}
	if prev, tracked := m.lastState[name]; tracked && prev == healthy {
		m.mu.Unlock()
		return
	}
	m.lastState[name] = healthy
	if sp.Critical() {
		if healthy {
			m.unhealthyCritical[sp.Type()]--
		} else {
			m.unhealthyCritical[sp.Type()]++
		}
	}
	listeners := m.snapshotListenersLocked()
	m.mu.Unlock()

	for _, l := range listeners {
		l.OnStateChanged(name, healthy)
	}
}

// OnHealthyCheck fans a healthy run outcome out to listeners. It fires for
// every completed run, not only on transitions.
func (m *Manager) OnHealthyCheck(name string) {
	m.mu.RLock()
	listeners := m.snapshotListenersLocked()
	m.mu.RUnlock()

	for _, l := range listeners {
		l.OnHealthyCheck(name)
	}
}

// OnUnhealthyCheck fans an unhealthy run outcome out to listeners. It fires
// for every completed run, not only on transitions.
func (m *Manager) OnUnhealthyCheck(name string) {
	m.mu.RLock()
	listeners := m.snapshotListenersLocked()
	m.mu.RUnlock()

	for _, l := range listeners {
		l.OnUnhealthyCheck(name)
	}
}

// AddListener registers a state listener.
func (m *Manager) AddListener(l StateListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

func (m *Manager) snapshotListenersLocked() []StateListener {
	out := make([]StateListener, len(m.listeners))
	copy(out, m.listeners)
	return out
}

// seedLocked seeds the aggregate count for a critical probe that is
// configured to start unhealthy. Idempotent per probe name.
func (m *Manager) seedLocked(cfg ProbeConfig) {
	if !cfg.Critical || cfg.initialState() || m.seeded[cfg.Name] {
		return
	}
	m.unhealthyCritical[cfg.Type]++
	m.seeded[cfg.Name] = true
}

// InitializeAppHealth seeds the aggregate counts from each configured
// critical probe's initial state, so IsHealthy is meaningful at startup
// before any probe has actually run. Call once after all probes are
// configured, before traffic is accepted.
func (m *Manager) InitializeAppHealth() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cfg := range m.configs {
		m.seedLocked(cfg)
	}
	m.initialized = true
}

// IsHealthy reports the aggregate state for the given types; with no
// arguments it reports readiness. A type is healthy iff no critical probe of
// that type is currently unhealthy. Readiness additionally reports false
// while the shutdown wait window is open; liveness does not, so the process
// is drained rather than killed.
func (m *Manager) IsHealthy(types ...Type) bool {
	if len(types) == 0 {
		types = []Type{TypeReady}
	}
	shuttingDown := m.shuttingDown.Load()

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, t := range types {
		if t == TypeAlive {
			if m.unhealthyCritical[t] > 0 {
				return false
			}
			continue
		}
		if shuttingDown {
			return false
		}
		if m.unhealthyCritical[t] > 0 {
			return false
		}
		if !m.initialized && !m.initialOverallState {
			return false
		}
	}
	return true
}

// ProbeCount returns how many scheduled probes of the given type are
// currently healthy and unhealthy. All probes count, not just critical ones.
func (m *Manager) ProbeCount(t Type) (healthy, unhealthy int) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for name, sp := range m.probes {
		if sp.Type() != t {
			continue
		}
		if m.lastState[name] {
			healthy++
		} else {
			unhealthy++
		}
	}
	return healthy, unhealthy
}

// ProbeStatus is a point-in-time view of one scheduled probe.
type ProbeStatus struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Critical bool   `json:"critical"`
	Healthy  bool   `json:"healthy"`
}

// Snapshot returns the current state of every scheduled probe, sorted by name.
func (m *Manager) Snapshot() []ProbeStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ProbeStatus, 0, len(m.probes))
	for name, sp := range m.probes {
		out = append(out, ProbeStatus{
			Name:     name,
			Type:     sp.Type().String(),
			Critical: sp.Critical(),
			Healthy:  m.lastState[name],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ShuttingDown reports whether the shutdown wait window has been entered.
func (m *Manager) ShuttingDown() bool {
	return m.shuttingDown.Load()
}

// NotifyShutdownStarted enters the shutdown wait window: readiness flips to
// unhealthy, every already-scheduled probe keeps running on its existing
// schedule, and the calling goroutine blocks for the configured wait period
// so external load balancers can observe the transition before the process
// stops accepting connections. It does not stop probes; that is Stop's job.
//
// Call it synchronously from the process shutdown hook; its return signals
// that the wait window has elapsed. It must not run on a goroutine other
// components depend on for liveness.
func (m *Manager) NotifyShutdownStarted() error {
	if !m.shuttingDown.CompareAndSwap(false, true) {
		return ErrAlreadyShuttingDown
	}

	m.logger.Info(context.Background(), "shutdown started, delaying to allow observation",
		observe.Field{Key: "wait", Value: m.shutdownWait.String()},
	)
	time.Sleep(m.shutdownWait)
	return nil
}

// Stop unschedules every probe and clears the registry, releasing scheduler
// resources. Idempotent. The scheduler itself is left usable so a shared
// scheduler can keep serving other managers.
func (m *Manager) Stop() {
	m.mu.Lock()
	probes := m.probes
	m.probes = make(map[string]*ScheduledProbe)
	m.lastState = make(map[string]bool)
	m.seeded = make(map[string]bool)
	m.unhealthyCritical = make(map[Type]int)
	reg := m.gaugeReg
	m.gaugeReg = nil
	m.mu.Unlock()

	for name, sp := range probes {
		sp.deactivate()
		m.scheduler.Unschedule(name)
	}
	if reg != nil {
		_ = reg.Unregister()
	}
}

// Listen subscribes the manager to a probe registry and replays its current
// membership, scheduling any already-registered configured probes.
func (m *Manager) Listen(reg *Registry) {
	reg.Subscribe(m)
}

var _ StateListener = (*Manager)(nil)
var _ RegistryListener = (*Manager)(nil)
