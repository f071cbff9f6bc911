package main

import (
	"sync"
	"testing"
	"time"
)

func newTestStore(clock *fakeClock) *MetricsStore {
	store := newMetricsStore(60, time.Minute)
	store.now = clock.Now
	return store
}

func TestMetricsStoreStartsAtZero(t *testing.T) {
	store := newTestStore(newFakeClock())
	snap := store.Snapshot()
	if snap.AllTime.TotalRequests != 0 || snap.AllTime.Successes != 0 || snap.AllTime.Failures != 0 {
		t.Errorf("new store must be zero, got %+v", snap.AllTime)
	}
	if len(snap.AllTime.EndpointHits) != 0 {
		t.Errorf("new store must have no endpoint hits, got %v", snap.AllTime.EndpointHits)
	}
}

func TestRecordSuccess(t *testing.T) {
	store := newTestStore(newFakeClock())
	store.Record("/get", 200)

	snap := store.Snapshot()
	if snap.AllTime.TotalRequests != 1 || snap.AllTime.Successes != 1 || snap.AllTime.Failures != 0 {
		t.Errorf("unexpected counters %+v", snap.AllTime)
	}
	if snap.AllTime.EndpointHits["/get"] != 1 {
		t.Errorf("expected one /get hit, got %v", snap.AllTime.EndpointHits)
	}
}

func TestRecordFailures(t *testing.T) {
	store := newTestStore(newFakeClock())
	store.Record("/post", 500)
	store.Record("/invalid", 404)

	snap := store.Snapshot()
	if snap.AllTime.TotalRequests != 2 || snap.AllTime.Successes != 0 || snap.AllTime.Failures != 2 {
		t.Errorf("4xx and 5xx must both count as failures, got %+v", snap.AllTime)
	}
}

func TestRecord3xxNeitherSuccessNorFailure(t *testing.T) {
	store := newTestStore(newFakeClock())
	store.Record("/redirect/:n", 301)
	store.Record("/ws", 101)

	snap := store.Snapshot()
	if snap.AllTime.TotalRequests != 2 {
		t.Errorf("expected 2 total requests, got %d", snap.AllTime.TotalRequests)
	}
	if snap.AllTime.Successes != 0 || snap.AllTime.Failures != 0 {
		t.Errorf("1xx/3xx must count toward totals only, got %+v", snap.AllTime)
	}
}

func TestRecordMultipleEndpoints(t *testing.T) {
	store := newTestStore(newFakeClock())
	store.Record("/get", 200)
	store.Record("/get", 200)
	store.Record("/post", 201)
	store.Record("/delete", 500)

	snap := store.Snapshot()
	if snap.AllTime.TotalRequests != 4 || snap.AllTime.Successes != 3 || snap.AllTime.Failures != 1 {
		t.Errorf("unexpected counters %+v", snap.AllTime)
	}
	hits := snap.AllTime.EndpointHits
	if hits["/get"] != 2 || hits["/post"] != 1 || hits["/delete"] != 1 {
		t.Errorf("unexpected endpoint hits %v", hits)
	}
}

func TestSnapshotWithinFirstHourMatchesAllTime(t *testing.T) {
	clock := newFakeClock()
	store := newTestStore(clock)

	for i := 0; i < 50; i++ {
		store.Record("/get", 200)
		clock.Advance(12 * time.Second) // 10 minutes total
	}

	snap := store.Snapshot()
	if snap.LastHour.TotalRequests != snap.AllTime.TotalRequests {
		t.Errorf("within the first hour last_hour (%d) must equal all_time (%d)",
			snap.LastHour.TotalRequests, snap.AllTime.TotalRequests)
	}
	if snap.LastHour.EndpointHits["/get"] != 50 {
		t.Errorf("unexpected rolling endpoint hits %v", snap.LastHour.EndpointHits)
	}
}

func TestRollingWindowExpiresOldBuckets(t *testing.T) {
	clock := newFakeClock()
	store := newTestStore(clock)

	store.Record("/get", 200)
	clock.Advance(2 * time.Hour)
	store.Record("/get", 200)

	snap := store.Snapshot()
	if snap.AllTime.TotalRequests != 2 {
		t.Errorf("all_time must keep everything, got %d", snap.AllTime.TotalRequests)
	}
	if snap.LastHour.TotalRequests != 1 {
		t.Errorf("last_hour must drop the stale bucket, got %d", snap.LastHour.TotalRequests)
	}
}

func TestRollingWindowOneRequestPerSecond(t *testing.T) {
	clock := newFakeClock()
	store := newTestStore(clock)

	// One request per second for 3700 seconds. The ring rotates once a
	// minute, so the trailing window is bucket-granular: with the
	// snapshot taken at t=3700s it holds the 60 live minute-buckets
	// covering t=120..3699, i.e. 3580 requests.
	for i := 0; i < 3700; i++ {
		store.Record("/get", 200)
		clock.Advance(time.Second)
	}

	snap := store.Snapshot()
	if snap.AllTime.TotalRequests != 3700 {
		t.Errorf("all_time must be 3700, got %d", snap.AllTime.TotalRequests)
	}
	if snap.LastHour.TotalRequests > 3600 {
		t.Errorf("last_hour must never exceed the window, got %d", snap.LastHour.TotalRequests)
	}
	if snap.LastHour.TotalRequests != 3580 {
		t.Errorf("expected bucket-granular trailing window of 3580, got %d", snap.LastHour.TotalRequests)
	}
	if snap.LastHour.TotalRequests > snap.AllTime.TotalRequests {
		t.Error("rolling sum must never exceed the all-time total")
	}
}

func TestRecordConcurrentCommutes(t *testing.T) {
	store := newTestStore(newFakeClock())

	const workers = 8
	const perWorker = 500
	statuses := []int{200, 201, 301, 404, 500}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				store.Record("/get", statuses[i%len(statuses)])
			}
		}()
	}
	wg.Wait()

	snap := store.Snapshot()
	total := workers * perWorker
	if snap.AllTime.TotalRequests != uint64(total) {
		t.Errorf("expected %d total requests, got %d", total, snap.AllTime.TotalRequests)
	}
	// 2 of 5 statuses are 2xx, 2 are >=400, 1 is 3xx.
	if snap.AllTime.Successes != uint64(total*2/5) {
		t.Errorf("expected %d successes, got %d", total*2/5, snap.AllTime.Successes)
	}
	if snap.AllTime.Failures != uint64(total*2/5) {
		t.Errorf("expected %d failures, got %d", total*2/5, snap.AllTime.Failures)
	}
	other := snap.AllTime.TotalRequests - snap.AllTime.Successes - snap.AllTime.Failures
	if other != uint64(total/5) {
		t.Errorf("expected %d 1xx/3xx responses, got %d", total/5, other)
	}
	if snap.AllTime.EndpointHits["/get"] != uint64(total) {
		t.Errorf("expected %d endpoint hits, got %d", total, snap.AllTime.EndpointHits["/get"])
	}
}

func TestSnapshotConcurrentWithRecord(t *testing.T) {
	store := newTestStore(newFakeClock())

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 2000; i++ {
			store.Record("/get", 200)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			snap := store.Snapshot()
			if snap.LastHour.TotalRequests > snap.AllTime.TotalRequests {
				t.Error("rolling sum exceeded all-time total")
				return
			}
		}
	}()
	wg.Wait()
}
