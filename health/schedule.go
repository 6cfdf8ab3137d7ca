package health

import (
	"fmt"
	"time"
)

// Type identifies an independent aggregate health signal.
type Type int

const (
	// TypeReady gates traffic routing decisions.
	TypeReady Type = iota
	// TypeAlive gates process restart decisions.
	TypeAlive
)

// String returns the string representation of the type.
func (t Type) String() string {
	switch t {
	case TypeReady:
		return "ready"
	case TypeAlive:
		return "alive"
	default:
		return "unknown"
	}
}

// ParseType parses a string aggregate type name.
func ParseType(s string) (Type, error) {
	switch s {
	case "ready":
		return TypeReady, nil
	case "alive":
		return TypeAlive, nil
	default:
		return TypeReady, fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
}

// Schedule holds the timing parameters for one class of probe.
// It is immutable once constructed and may be shared across probes.
type Schedule struct {
	// CheckInterval is the delay between runs while the probe is healthy.
	// Default: 5 seconds
	CheckInterval time.Duration

	// DowntimeInterval is the delay between runs while the probe is
	// unhealthy, typically shorter so recovery is detected quickly.
	// Default: 2 seconds
	DowntimeInterval time.Duration

	// InitialDelay is the delay before the first run. Zero means use
	// CheckInterval; the first run is never immediate, to avoid a
	// thundering herd across many probes at startup.
	InitialDelay time.Duration

	// FailureAttempts is the number of consecutive failures required to
	// flip a healthy probe to unhealthy. Must be >= 1. Default: 3
	FailureAttempts int

	// SuccessAttempts is the number of consecutive successes required to
	// flip an unhealthy probe to healthy. Must be >= 1. Default: 2
	SuccessAttempts int

	// InitialState is the health assumed before the first run.
	InitialState bool
}

// DefaultSchedule returns a schedule with the default timing parameters.
func DefaultSchedule() Schedule {
	return Schedule{
		CheckInterval:    5 * time.Second,
		DowntimeInterval: 2 * time.Second,
		FailureAttempts:  3,
		SuccessAttempts:  2,
		InitialState:     true,
	}
}

// withDefaults fills zero fields with the default values.
func (s Schedule) withDefaults() Schedule {
	def := DefaultSchedule()
	if s.CheckInterval <= 0 {
		s.CheckInterval = def.CheckInterval
	}
	if s.DowntimeInterval <= 0 {
		s.DowntimeInterval = def.DowntimeInterval
	}
	if s.FailureAttempts <= 0 {
		s.FailureAttempts = def.FailureAttempts
	}
	if s.SuccessAttempts <= 0 {
		s.SuccessAttempts = def.SuccessAttempts
	}
	return s
}

// Validate validates the schedule.
func (s Schedule) Validate() error {
	if s.CheckInterval <= 0 {
		return fmt.Errorf("%w: check interval must be positive", ErrInvalidSchedule)
	}
	if s.DowntimeInterval <= 0 {
		return fmt.Errorf("%w: downtime interval must be positive", ErrInvalidSchedule)
	}
	if s.InitialDelay < 0 {
		return fmt.Errorf("%w: initial delay must not be negative", ErrInvalidSchedule)
	}
	if s.FailureAttempts < 1 {
		return fmt.Errorf("%w: failure attempts must be >= 1", ErrInvalidSchedule)
	}
	if s.SuccessAttempts < 1 {
		return fmt.Errorf("%w: success attempts must be >= 1", ErrInvalidSchedule)
	}
	return nil
}

// ProbeConfig describes one named probe the manager is allowed to schedule.
// Configuration is the allowlist: probes added to the manager under names
// with no matching config are ignored.
type ProbeConfig struct {
	// Name is the unique identity of the probe.
	Name string

	// Critical marks a probe whose unhealthy state forces the aggregate
	// for its type to unhealthy. Non-critical probes are tracked but do
	// not by themselves flip aggregate state.
	Critical bool

	// Type is the aggregate signal this probe gates.
	Type Type

	// InitialState overrides the schedule's initial state for this probe.
	// Nil means use the schedule's value.
	InitialState *bool

	// Schedule holds the probe's timing parameters.
	Schedule Schedule
}

// Validate validates the probe configuration.
func (c ProbeConfig) Validate() error {
	if c.Name == "" {
		return ErrMissingProbeName
	}
	if err := c.Schedule.Validate(); err != nil {
		return fmt.Errorf("probe %q: %w", c.Name, err)
	}
	return nil
}

// initialState resolves the effective initial state for this probe.
func (c ProbeConfig) initialState() bool {
	if c.InitialState != nil {
		return *c.InitialState
	}
	return c.Schedule.InitialState
}
