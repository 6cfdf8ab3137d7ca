package health

import (
	"context"
	"fmt"
	"runtime"
)

// MemoryProbeConfig configures the built-in memory probe.
type MemoryProbeConfig struct {
	// CriticalThreshold is the fraction of allocated memory that makes the
	// probe report unhealthy. Value should be between 0 and 1.
	// Default: 0.95 (95%)
	CriticalThreshold float64

	// MaxAlloc is the maximum expected allocation in bytes.
	// If zero, the runtime's reported system memory is used.
	MaxAlloc uint64
}

// MemoryProbe reports unhealthy when heap allocation crosses a threshold.
// It is the one built-in probe; everything else is supplied by the caller.
type MemoryProbe struct {
	config MemoryProbeConfig
}

// NewMemoryProbe creates a new memory probe.
func NewMemoryProbe(config MemoryProbeConfig) *MemoryProbe {
	if config.CriticalThreshold <= 0 || config.CriticalThreshold >= 1 {
		config.CriticalThreshold = 0.95
	}
	return &MemoryProbe{config: config}
}

// Name returns the name of this probe.
func (m *MemoryProbe) Name() string {
	return "memory"
}

// Check performs the memory probe.
func (m *MemoryProbe) Check(ctx context.Context) Result {
	select {
	case <-ctx.Done():
		return Unhealthy("context cancelled", ctx.Err())
	default:
	}

	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	maxAlloc := m.config.MaxAlloc
	if maxAlloc == 0 {
		maxAlloc = stats.Sys
	}
	if maxAlloc == 0 {
		return Healthy("memory stats unavailable")
	}

	usageRatio := float64(stats.Alloc) / float64(maxAlloc)
	if usageRatio >= m.config.CriticalThreshold {
		return Unhealthy(
			fmt.Sprintf("memory usage critical: %.1f%%", usageRatio*100),
			ErrProbeUnhealthy,
		)
	}

	return Healthy(fmt.Sprintf("memory usage normal: %.1f%%", usageRatio*100))
}
