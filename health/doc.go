// Package health provides a health-check scheduling and aggregation engine.
//
// It periodically executes named boolean probes, debounces transient flapping
// into stable healthy/unhealthy states, aggregates per-probe state into
// overall readiness and liveness signals, and coordinates a graceful-shutdown
// wait window during which probes keep running so external load balancers can
// observe the transition before the process exits.
//
// # Core Concepts
//
// A Probe is an opaque success/failure function. Each configured probe gets a
// Schedule (how often to run, how many consecutive outcomes flip its state)
// and a DebounceState that suppresses flapping. The Manager aggregates
// critical probes per Type: TypeReady gates traffic routing, TypeAlive gates
// restart decisions.
//
// # Basic Usage
//
//	manager, err := health.NewManager(health.Config{
//	    Probes: []health.ProbeConfig{{
//	        Name:     "database",
//	        Critical: true,
//	        Type:     health.TypeReady,
//	        Schedule: health.DefaultSchedule(),
//	    }},
//	    ShutdownWaitPeriod:  15 * time.Second,
//	    InitialOverallState: true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	registry := health.NewRegistry()
//	manager.Listen(registry)
//	_ = registry.Register(health.NewProbeFunc("database", pingDB))
//
//	manager.InitializeAppHealth()
//	if manager.IsHealthy() {
//	    // accept traffic
//	}
//
// # Shutdown
//
// From the process shutdown hook, call NotifyShutdownStarted. Readiness flips
// to unhealthy and the call blocks for the configured wait period while
// probes keep running, giving load balancers time to drain the instance.
// Then call Stop to unschedule everything.
//
// # HTTP Endpoints
//
// The package provides HTTP handlers for common orchestrator patterns:
//
//	// Liveness probe (for Kubernetes)
//	http.Handle("/healthz", health.LivenessHandler(manager))
//
//	// Readiness probe
//	http.Handle("/readyz", health.ReadinessHandler(manager))
//
//	// Detailed per-probe status
//	http.Handle("/health", health.DetailedHandler(manager))
package health
