package health

// StateListener receives health events from the manager.
//
// OnHealthyCheck and OnUnhealthyCheck fire for every completed run, whether
// or not the debounced state moved; OnStateChanged fires only on stable
// transitions. Implementations must be safe for concurrent use and must
// return quickly: they are invoked inline from probe runs.
type StateListener interface {
	// OnHealthyCheck is called after every run with a healthy outcome.
	OnHealthyCheck(name string)

	// OnUnhealthyCheck is called after every run with an unhealthy outcome.
	OnUnhealthyCheck(name string)

	// OnStateChanged is called when a probe's debounced state flips.
	OnStateChanged(name string, healthy bool)
}

// NoopListener provides default no-op implementations of StateListener.
// Embed it to implement only the events you care about.
type NoopListener struct{}

func (NoopListener) OnHealthyCheck(name string)               {}
func (NoopListener) OnUnhealthyCheck(name string)             {}
func (NoopListener) OnStateChanged(name string, healthy bool) {}

var _ StateListener = NoopListener{}
