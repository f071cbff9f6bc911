package main

import (
	"time"
)

// setupTest resets the global config to known defaults for isolation.
func setupTest() {
	configLock.Lock()
	config = defaultConfig()
	config.Hostname = "test-host"
	configLock.Unlock()
	rateLimiter = nil
}

// scriptedRand is a randSource whose draws are pinned, so roll
// outcomes in chaos tests are deterministic. Float64 values and Intn
// results cycle through the given slices.
type scriptedRand struct {
	floats []float64
	ints   []int
	fi, ii int
}

func (s *scriptedRand) Float64() float64 {
	if len(s.floats) == 0 {
		return 0
	}
	v := s.floats[s.fi%len(s.floats)]
	s.fi++
	return v
}

func (s *scriptedRand) Intn(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[s.ii%len(s.ints)]
	s.ii++
	return v % n
}

// fakeClock drives a MetricsStore through simulated time.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time { return f.t }

func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }
