package main

import (
	"sync"
	"sync/atomic"
	"time"
)

// timeBucket is one slot of the rolling window ring. A zero start time
// means the bucket has never been used.
type timeBucket struct {
	start        time.Time
	requests     uint64
	successes    uint64
	failures     uint64
	endpointHits map[string]uint64
}

func (b *timeBucket) reset(start time.Time) {
	b.start = start
	b.requests = 0
	b.successes = 0
	b.failures = 0
	b.endpointHits = make(map[string]uint64)
}

func (b *timeBucket) expired(now time.Time, bucketDur time.Duration) bool {
	return b.start.IsZero() || now.Sub(b.start) >= bucketDur
}

func (b *timeBucket) withinWindow(now time.Time, window time.Duration) bool {
	return !b.start.IsZero() && now.Sub(b.start) < window
}

// MetricsStore tracks all-time request counters plus a rolling window of
// per-bucket statistics. All-time scalar totals are lock-free atomics;
// the endpoint maps and the bucket ring share one short-held mutex so
// that expiry check, rotation, and increment are a single atomic step.
//
// A store is constructed once at startup and shared by reference; it is
// safe for unbounded concurrent Record and Snapshot calls.
type MetricsStore struct {
	totalRequests  atomic.Uint64
	totalSuccesses atomic.Uint64
	totalFailures  atomic.Uint64

	mu           sync.Mutex
	endpointHits map[string]uint64
	buckets      []timeBucket
	current      int

	bucketDur time.Duration
	window    time.Duration
	now       func() time.Time // swapped in tests
}

// newMetricsStore creates a store with the given ring size and bucket
// duration. 60 buckets of 60s give the default trailing-hour window.
func newMetricsStore(buckets int, bucketDur time.Duration) *MetricsStore {
	return &MetricsStore{
		endpointHits: make(map[string]uint64),
		buckets:      make([]timeBucket, buckets),
		bucketDur:    bucketDur,
		window:       time.Duration(buckets) * bucketDur,
		now:          time.Now,
	}
}

// Record registers one completed request. Called exactly once per
// request with the normalized endpoint path and the final status code.
// 2xx counts as success, >=400 as failure; 1xx/3xx only increment
// request totals.
func (m *MetricsStore) Record(endpoint string, statusCode int) {
	now := m.now()
	success := statusCode >= 200 && statusCode < 300
	failure := statusCode >= 400

	m.totalRequests.Add(1)
	if success {
		m.totalSuccesses.Add(1)
	} else if failure {
		m.totalFailures.Add(1)
	}

	m.mu.Lock()
	m.endpointHits[endpoint]++

	bucket := &m.buckets[m.current]
	if bucket.expired(now, m.bucketDur) {
		m.current = (m.current + 1) % len(m.buckets)
		bucket = &m.buckets[m.current]
		bucket.reset(now)
	}
	bucket.requests++
	if success {
		bucket.successes++
	} else if failure {
		bucket.failures++
	}
	bucket.endpointHits[endpoint]++
	m.mu.Unlock()
}

// MetricsSnapshot is the JSON document served by /metrics.
type MetricsSnapshot struct {
	AllTime  WindowStats `json:"all_time"`
	LastHour WindowStats `json:"last_hour"`
}

// WindowStats aggregates counters for one time span.
type WindowStats struct {
	TotalRequests uint64            `json:"total_requests"`
	Successes     uint64            `json:"successes"`
	Failures      uint64            `json:"failures"`
	EndpointHits  map[string]uint64 `json:"endpoint_hits"`
}

// Snapshot returns a consistent copy of all-time and rolling-window
// statistics. The trailing window sums every bucket younger than the
// window span; never-used or stale buckets are skipped, which yields
// bucket-granularity rather than second-granularity precision.
func (m *MetricsStore) Snapshot() MetricsSnapshot {
	now := m.now()

	m.mu.Lock()
	allHits := make(map[string]uint64, len(m.endpointHits))
	for endpoint, count := range m.endpointHits {
		allHits[endpoint] = count
	}

	var rolling WindowStats
	rolling.EndpointHits = make(map[string]uint64)
	for i := range m.buckets {
		bucket := &m.buckets[i]
		if !bucket.withinWindow(now, m.window) {
			continue
		}
		rolling.TotalRequests += bucket.requests
		rolling.Successes += bucket.successes
		rolling.Failures += bucket.failures
		for endpoint, count := range bucket.endpointHits {
			rolling.EndpointHits[endpoint] += count
		}
	}
	m.mu.Unlock()

	return MetricsSnapshot{
		AllTime: WindowStats{
			TotalRequests: m.totalRequests.Load(),
			Successes:     m.totalSuccesses.Load(),
			Failures:      m.totalFailures.Load(),
			EndpointHits:  allHits,
		},
		LastHour: rolling,
	}
}
