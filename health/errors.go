package health

import "errors"

var (
	// ErrSchedulerStopped indicates a schedule request against a stopped scheduler.
	ErrSchedulerStopped = errors.New("health: scheduler stopped")

	// ErrAlreadyShuttingDown indicates shutdown notification was delivered twice.
	ErrAlreadyShuttingDown = errors.New("health: already shutting down")

	// ErrInvalidSchedule indicates a schedule with non-positive intervals or thresholds.
	ErrInvalidSchedule = errors.New("health: invalid schedule")

	// ErrMissingProbeName indicates a probe configuration without a name.
	ErrMissingProbeName = errors.New("health: probe name is required")

	// ErrDuplicateProbe indicates a probe name registered twice.
	ErrDuplicateProbe = errors.New("health: duplicate probe")

	// ErrProbeNotFound indicates a probe was not found.
	ErrProbeNotFound = errors.New("health: probe not found")

	// ErrProbeUnhealthy marks a failing run that carried no probe error.
	ErrProbeUnhealthy = errors.New("health: probe unhealthy")

	// ErrUnknownType indicates an unrecognized aggregate type name.
	ErrUnknownType = errors.New("health: unknown type")
)
