package health

import (
	"context"
	"time"
)

// Result contains the outcome of a single probe run.
type Result struct {
	// Healthy is the raw boolean outcome of the run.
	Healthy bool

	// Message provides additional context about the outcome.
	Message string

	// Error is the error if the probe failed.
	Error error

	// Duration is how long the run took.
	Duration time.Duration

	// Timestamp is when the run was performed.
	Timestamp time.Time
}

// Healthy creates a healthy result.
func Healthy(message string) Result {
	return Result{
		Healthy:   true,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Unhealthy creates an unhealthy result.
func Unhealthy(message string, err error) Result {
	return Result{
		Healthy:   false,
		Message:   message,
		Error:     err,
		Timestamp: time.Now(),
	}
}

// Probe is the interface for health probes.
//
// A probe is an opaque success/failure function; everything else (debouncing,
// scheduling, aggregation) is the manager's business. Implementations may
// block on I/O; a slow probe delays only its own next run.
type Probe interface {
	// Name returns the name of this probe.
	Name() string

	// Check performs the probe and returns the outcome.
	Check(ctx context.Context) Result
}

// ProbeFunc is an adapter to allow ordinary functions to be used as Probes.
type ProbeFunc struct {
	name string
	fn   func(context.Context) Result
}

// NewProbeFunc creates a new ProbeFunc.
func NewProbeFunc(name string, fn func(context.Context) Result) *ProbeFunc {
	return &ProbeFunc{name: name, fn: fn}
}

// Name returns the name of this probe.
func (f *ProbeFunc) Name() string {
	return f.name
}

// Check performs the probe.
func (f *ProbeFunc) Check(ctx context.Context) Result {
	return f.fn(ctx)
}
