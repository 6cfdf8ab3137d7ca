package health

import (
	"encoding/json"
	"net/http"
	"time"
)

// LivenessHandler returns an HTTP handler for liveness probes.
// It reports the aggregate alive state; unhealthy means the process should
// be restarted.
func LivenessHandler(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")

		if m.IsHealthy(TypeAlive) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("OK"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("UNHEALTHY"))
	}
}

// ReadinessHandler returns an HTTP handler for readiness probes.
// It reports the aggregate ready state; unhealthy means traffic should be
// routed elsewhere. During the shutdown wait window this always reports
// unhealthy while probes keep running.
func ReadinessHandler(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")

		if m.IsHealthy(TypeReady) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("OK"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("UNHEALTHY"))
	}
}

// StatusResponse is the JSON response for the detailed status endpoint.
type StatusResponse struct {
	Ready        bool          `json:"ready"`
	Alive        bool          `json:"alive"`
	ShuttingDown bool          `json:"shutting_down"`
	Timestamp    string        `json:"timestamp"`
	Probes       []ProbeStatus `json:"probes,omitempty"`
}

// DetailedHandler returns an HTTP handler serving a JSON snapshot of every
// scheduled probe plus the aggregate signals. The snapshot reflects the last
// debounced state; no probe is executed on demand, scheduling drives all runs.
func DetailedHandler(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ready := m.IsHealthy(TypeReady)

		response := StatusResponse{
			Ready:        ready,
			Alive:        m.IsHealthy(TypeAlive),
			ShuttingDown: m.ShuttingDown(),
			Timestamp:    time.Now().UTC().Format(time.RFC3339),
			Probes:       m.Snapshot(),
		}

		w.Header().Set("Content-Type", "application/json")
		if ready {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		_ = json.NewEncoder(w).Encode(response)
	}
}

// RegisterHandlers registers the standard status handlers on the given mux.
func RegisterHandlers(mux *http.ServeMux, m *Manager) {
	mux.HandleFunc("/healthz", LivenessHandler(m))
	mux.HandleFunc("/readyz", ReadinessHandler(m))
	mux.HandleFunc("/health", DetailedHandler(m))
}
