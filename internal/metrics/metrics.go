// Package metrics provides lock-free counters for engine observability.
//
// Counters are stored in cache-line-padded uint64 slots and incremented
// atomically, so the write path is allocation-free. Export lives in
// metrics/export/ and reads [Snapshot] values; this package performs no
// I/O and imports no sibling package.
package metrics

import "sync/atomic"

// MetricID identifies a specific counter.
type MetricID int

const (
	MetricRegisterSuccess MetricID = iota
	MetricLoginSuccess
	MetricLoginFailure
	MetricLoginRateLimited
	MetricGuardDegraded
	MetricRefreshSuccess
	MetricRefreshFailure
	MetricSessionCreated
	MetricSessionRotated

	// MetricIDCount is the number of defined counters.
	MetricIDCount
)

type paddedCounter struct {
	value uint64
	_     [7]uint64 // avoid false sharing between adjacent counters
}

// Metrics holds the counter slots. When disabled, all operations are
// no-ops.
type Metrics struct {
	enabled  bool
	counters [MetricIDCount]paddedCounter
}

// New creates a Metrics instance.
func New(enabled bool) *Metrics {
	return &Metrics{enabled: enabled}
}

// Inc atomically increments the counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id < 0 || id >= MetricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	Counters map[MetricID]uint64
}

// Snapshot returns a deep copy of the current counter values.
func (m *Metrics) Snapshot() Snapshot {
	out := Snapshot{Counters: make(map[MetricID]uint64, MetricIDCount)}
	if m == nil || !m.enabled {
		return out
	}
	for id := MetricID(0); id < MetricIDCount; id++ {
		out.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return out
}
