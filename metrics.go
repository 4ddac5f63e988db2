package fitgate

import (
	"sync/atomic"
	"time"
)

// MetricID identifies a counter or histogram bucket in the in-process
// metrics system.
type MetricID uint16

const (
	// MetricRequestSuccess counts calls that terminated in a 2xx response.
	MetricRequestSuccess MetricID = iota
	// MetricRequestRejected counts non-2xx responses other than recoverable
	// auth expiry.
	MetricRequestRejected
	// MetricNetworkError counts transport-level failures.
	MetricNetworkError
	// MetricRefreshSuccess counts refresh calls that minted a new token.
	MetricRefreshSuccess
	// MetricRefreshFailure counts refresh calls rejected by the backend or
	// lost to the network.
	MetricRefreshFailure
	// MetricRefreshCoalesced counts unauthorized calls that reused a token
	// refreshed by a concurrent call instead of issuing their own refresh.
	MetricRefreshCoalesced
	// MetricAuthExpired counts calls that terminated in ErrAuthExpired.
	MetricAuthExpired
	// MetricLoginSuccess counts successful logins and registrations.
	MetricLoginSuccess
	// MetricLoginFailure counts rejected logins and registrations.
	MetricLoginFailure
	// MetricLogout counts logouts.
	MetricLogout
	// MetricSessionRestored counts startup restores that found a session.
	MetricSessionRestored
	// MetricSessionCleared counts session clears from any cause.
	MetricSessionCleared
	// MetricRequestLatency is the request round-trip histogram.
	MetricRequestLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds lock-free counters and an optional request-latency
// histogram. The write path is allocation-free.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics creates a [Metrics] instance. When cfg.Enabled is false, all
// operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether the instance records anything.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc atomically increments a counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records a request round-trip duration into the latency histogram.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enableLatency || id != MetricRequestLatency {
		return
	}
	atomic.AddUint64(&m.histograms[id].buckets[bucketIndex(d)], 1)
}

// Value reads one counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot deep-copies all counters and histograms.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricRequestLatency].buckets[i])
		}
		s.Histograms[MetricRequestLatency] = buckets
	}

	return s
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
