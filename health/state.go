package health

// DebounceState converts raw probe outcomes into stable health transitions.
//
// A failing outcome increments the consecutive-failure counter and zeroes the
// consecutive-success counter; when a healthy probe accumulates
// failureThreshold consecutive failures it flips to unhealthy. Successes work
// symmetrically against successThreshold. Below-threshold flapping produces
// no transitions; that is the debounce.
//
// DebounceState owns no I/O and is not safe for concurrent use: the scheduler
// guarantees runs for a single probe never overlap, so Update is only ever
// called from one run at a time.
type DebounceState struct {
	name                 string
	failureThreshold     int
	successThreshold     int
	consecutiveFailures  int
	consecutiveSuccesses int
	healthy              bool
}

// NewDebounceState creates the per-probe debounce state machine.
// Thresholds of 1 make every outcome immediately authoritative.
func NewDebounceState(name string, failureThreshold, successThreshold int, initiallyHealthy bool) *DebounceState {
	return &DebounceState{
		name:             name,
		failureThreshold: failureThreshold,
		successThreshold: successThreshold,
		healthy:          initiallyHealthy,
	}
}

// Name returns the probe name this state tracks.
func (s *DebounceState) Name() string {
	return s.name
}

// Healthy returns the current stable health value.
func (s *DebounceState) Healthy() bool {
	return s.healthy
}

// Update advances the state machine with one raw outcome. It returns true
// only on the tick where a threshold is first reached and the stable state
// flips, never on subsequent same-direction outcomes.
func (s *DebounceState) Update(success bool) bool {
	if success {
		s.consecutiveFailures = 0
		s.consecutiveSuccesses++
		if !s.healthy && s.consecutiveSuccesses >= s.successThreshold {
			s.healthy = true
			return true
		}
		return false
	}

	s.consecutiveSuccesses = 0
	s.consecutiveFailures++
	if s.healthy && s.consecutiveFailures >= s.failureThreshold {
		s.healthy = false
		return true
	}
	return false
}
