package health

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonwraymond/healthops/observe"
)

// BenchmarkProbeFunc_Check measures single probe execution.
func BenchmarkProbeFunc_Check(b *testing.B) {
	probe := NewProbeFunc("bench", func(ctx context.Context) Result {
		return Healthy("ok")
	})
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = probe.Check(ctx)
	}
}

// BenchmarkMemoryProbe_Check measures memory probe execution.
func BenchmarkMemoryProbe_Check(b *testing.B) {
	probe := NewMemoryProbe(MemoryProbeConfig{CriticalThreshold: 0.95})
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = probe.Check(ctx)
	}
}

// BenchmarkDebounceState_Update measures debounce bookkeeping.
func BenchmarkDebounceState_Update(b *testing.B) {
	s := NewDebounceState("bench", 3, 2, true)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = s.Update(i%7 != 0)
	}
}

// BenchmarkManager_IsHealthy measures the aggregate health read path.
func BenchmarkManager_IsHealthy(b *testing.B) {
	m := benchManager(b, 10)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m.IsHealthy()
	}
}

// BenchmarkManager_IsHealthy_Concurrent measures concurrent health reads.
func BenchmarkManager_IsHealthy_Concurrent(b *testing.B) {
	m := benchManager(b, 10)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = m.IsHealthy()
		}
	})
}

// BenchmarkManager_Snapshot measures snapshot construction and sorting.
func BenchmarkManager_Snapshot(b *testing.B) {
	sizes := []int{1, 10, 50}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("probes=%d", size), func(b *testing.B) {
			m := benchManager(b, size)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = m.Snapshot()
			}
		})
	}
}

// BenchmarkManager_OnStateChanged measures the transition hot path.
func BenchmarkManager_OnStateChanged(b *testing.B) {
	m := benchManager(b, 10)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.OnStateChanged("probe0", i%2 == 0)
	}
}

// BenchmarkScheduledProbe_Run measures one full run including debounce and
// reschedule.
func BenchmarkScheduledProbe_Run(b *testing.B) {
	s := NewScheduler()
	defer s.Stop()

	sp := NewScheduledProbe(inertProbeConfig("bench"), newCountingProbe("bench", true), s, NoopListener{},
		observe.NewNoopTracer(), observe.NewNoopMetrics(), observe.NoopLogger())
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sp.Run(ctx)
	}
}

// BenchmarkReadinessHandler_ServeHTTP measures readiness handler overhead.
func BenchmarkReadinessHandler_ServeHTTP(b *testing.B) {
	m := benchManager(b, 5)
	handler := ReadinessHandler(m)
	req := httptest.NewRequest("GET", "/readyz", nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
	}
}

// BenchmarkDetailedHandler_ServeHTTP measures JSON status overhead.
func BenchmarkDetailedHandler_ServeHTTP(b *testing.B) {
	m := benchManager(b, 5)
	handler := DetailedHandler(m)
	req := httptest.NewRequest("GET", "/health", nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
	}
}

// benchManager builds a manager with n scheduled probes on hour-long
// intervals so no timer fires during the benchmark.
func benchManager(b *testing.B, n int) *Manager {
	b.Helper()

	configs := make([]ProbeConfig, 0, n)
	for i := 0; i < n; i++ {
		configs = append(configs, ProbeConfig{
			Name:     fmt.Sprintf("probe%d", i),
			Critical: i%2 == 0,
			Schedule: Schedule{
				CheckInterval:    time.Hour,
				DowntimeInterval: time.Hour,
				FailureAttempts:  3,
				SuccessAttempts:  2,
				InitialState:     true,
			},
		})
	}

	m, err := NewManager(Config{Probes: configs, InitialOverallState: true})
	if err != nil {
		b.Fatalf("NewManager() error = %v", err)
	}
	b.Cleanup(func() {
		m.Stop()
		m.scheduler.Stop()
	})

	m.InitializeAppHealth()
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("probe%d", i)
		m.OnProbeAdded(name, newCountingProbe(name, true))
	}
	return m
}
