// Package telemetry provides local, opt-in operation counters.
//
// Nothing here transmits data anywhere. The default Recorder is a no-op;
// a Memory recorder can be injected when the caller wants visibility into
// repository and queue activity (CLI status output, tests). Any future
// exporting implementation must remain explicit opt-in.
package telemetry

import "sync"

// Recorder receives operation counts from the data layer.
type Recorder interface {
	// Count records a counter increment.
	Count(name string, delta int, tags map[string]string)
}

// Noop discards all counts. It is the default Recorder.
type Noop struct{}

// Count implements Recorder.
func (Noop) Count(name string, delta int, tags map[string]string) {}

// Memory accumulates counts in memory.
type Memory struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewMemory creates an empty in-memory Recorder.
func NewMemory() *Memory {
	return &Memory{counts: make(map[string]int)}
}

// Count implements Recorder.
func (m *Memory) Count(name string, delta int, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[name] += delta
}

// Snapshot returns a copy of the accumulated counts.
func (m *Memory) Snapshot() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]int, len(m.counts))
	for k, v := range m.counts {
		out[k] = v
	}
	return out
}
