package health

import (
	"sync"
)

// RegistryListener receives probe membership notifications.
//
// The manager consumes registry changes through this interface so the core
// stays ignorant of how probes are discovered.
type RegistryListener interface {
	// OnProbeAdded is called when a probe joins the registry.
	OnProbeAdded(name string, probe Probe)

	// OnProbeRemoved is called when a probe leaves the registry.
	OnProbeRemoved(name string, probe Probe)
}

// Registry is an in-process probe registry with membership notifications.
type Registry struct {
	mu        sync.RWMutex
	probes    map[string]Probe
	listeners []RegistryListener
}

// NewRegistry creates an empty probe registry.
func NewRegistry() *Registry {
	return &Registry{
		probes: make(map[string]Probe),
	}
}

// Register adds a probe to the registry and notifies subscribers.
func (r *Registry) Register(probe Probe) error {
	name := probe.Name()

	r.mu.Lock()
	if _, exists := r.probes[name]; exists {
		r.mu.Unlock()
		return ErrDuplicateProbe
	}
	r.probes[name] = probe
	listeners := make([]RegistryListener, len(r.listeners))
	copy(listeners, r.listeners)
	r.mu.Unlock()

	for _, l := range listeners {
		l.OnProbeAdded(name, probe)
	}
	return nil
}

// Unregister removes a probe from the registry and notifies subscribers.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	probe, exists := r.probes[name]
	if !exists {
		r.mu.Unlock()
		return ErrProbeNotFound
	}
	delete(r.probes, name)
	listeners := make([]RegistryListener, len(r.listeners))
	copy(listeners, r.listeners)
	r.mu.Unlock()

	for _, l := range listeners {
		l.OnProbeRemoved(name, probe)
	}
	return nil
}

// Get returns the named probe.
func (r *Registry) Get(name string) (Probe, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	probe, ok := r.probes[name]
	return probe, ok
}

// Names returns the names of all registered probes.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.probes))
	for name := range r.probes {
		names = append(names, name)
	}
	return names
}

// Subscribe adds a membership listener and replays the current membership to
// it, so a late subscriber observes probes registered before it arrived.
func (r *Registry) Subscribe(l RegistryListener) {
	r.mu.Lock()
	r.listeners = append(r.listeners, l)
	existing := make(map[string]Probe, len(r.probes))
	for name, probe := range r.probes {
		existing[name] = probe
	}
	r.mu.Unlock()

	for name, probe := range existing {
		l.OnProbeAdded(name, probe)
	}
}
