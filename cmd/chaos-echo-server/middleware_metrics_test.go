package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/", "/"},
		{"/get", "/get"},
		{"/post", "/post"},
		{"/status/404", "/status/:code"},
		{"/status/200", "/status/:code"},
		{"/delay/5", "/delay/:n"},
		{"/redirect/3", "/redirect/:n"},
		{"/anything/foo", "/anything/*path"},
		{"/anything/foo/bar/baz", "/anything/*path"},
		{"/cookies", "/cookies"},
		{"/cookies/set", "/cookies/set"},
		{"/cookies/delete", "/cookies/delete"},
		{"/healthz", "/healthz"},
	}
	for _, tt := range tests {
		if got := normalizePath(tt.path); got != tt.want {
			t.Errorf("normalizePath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestMetricsMiddlewareRecordsFinalStatus(t *testing.T) {
	setupTest()
	store := newMetricsStore(60, time.Minute)

	handler := metricsMiddleware(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest("GET", "/get", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	snap := store.Snapshot()
	if snap.AllTime.TotalRequests != 1 || snap.AllTime.Failures != 1 {
		t.Errorf("418 must record as a failure, got %+v", snap.AllTime)
	}
}

func TestMetricsMiddlewareDefaultsTo200(t *testing.T) {
	setupTest()
	store := newMetricsStore(60, time.Minute)

	handler := metricsMiddleware(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "implicit 200")
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/get", nil))

	snap := store.Snapshot()
	if snap.AllTime.Successes != 1 {
		t.Errorf("implicit 200 must record as success, got %+v", snap.AllTime)
	}
}

func TestMetricsNormalizationCollapsesStatusPaths(t *testing.T) {
	setupTest()
	store := newMetricsStore(60, time.Minute)
	router := setupRoutes(store, nil)

	for i := 0; i < 120; i++ {
		req := httptest.NewRequest("GET", "/status/404", nil)
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	snap := store.Snapshot()
	if snap.AllTime.TotalRequests != 120 || snap.AllTime.Failures != 120 {
		t.Errorf("unexpected counters %+v", snap.AllTime)
	}
	if snap.AllTime.EndpointHits["/status/:code"] != 120 {
		t.Errorf("expected 120 hits under /status/:code, got %v", snap.AllTime.EndpointHits)
	}
	if len(snap.AllTime.EndpointHits) != 1 {
		t.Errorf("expected a single normalized key, got %v", snap.AllTime.EndpointHits)
	}
}

func TestMetricsRecordChaosInjectedFailure(t *testing.T) {
	setupTest()
	store := newMetricsStore(60, time.Minute)
	config.Chaos = ChaosConfig{
		Modes:        []string{chaosFailure},
		FailureRate:  1.0,
		FailureCodes: []int{503},
		InformHeader: true,
	}
	chaos := newChaosInjector(&config.Chaos)
	router := setupRoutes(store, chaos)

	req := httptest.NewRequest("GET", "/get", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	snap := store.Snapshot()
	if snap.AllTime.Failures != 1 || snap.AllTime.Successes != 0 {
		t.Errorf("injected failure must be recorded as failure, got %+v", snap.AllTime)
	}
	if snap.AllTime.EndpointHits["/get"] != 1 {
		t.Errorf("unexpected endpoint hits %v", snap.AllTime.EndpointHits)
	}
}

func TestMetricsEndpointServesSnapshot(t *testing.T) {
	setupTest()
	store := newMetricsStore(60, time.Minute)
	router := setupRoutes(store, nil)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/get", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/status/500", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON content type, got %q", ct)
	}

	var snap MetricsSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("invalid JSON from /metrics: %v", err)
	}
	// The middleware records after the handler returns, so the snapshot
	// sees the two prior requests but not the /metrics request itself.
	if snap.AllTime.TotalRequests != 2 || snap.AllTime.Successes != 1 || snap.AllTime.Failures != 1 {
		t.Errorf("unexpected snapshot %+v", snap.AllTime)
	}
	if snap.AllTime.EndpointHits["/status/:code"] != 1 || snap.AllTime.EndpointHits["/get"] != 1 {
		t.Errorf("unexpected endpoint hits %v", snap.AllTime.EndpointHits)
	}
}

func TestMetricsInvariantTotalsAddUp(t *testing.T) {
	setupTest()
	store := newMetricsStore(60, time.Minute)
	router := setupRoutes(store, nil)

	paths := []string{"/get", "/status/301", "/status/503", "/healthz", "/status/204"}
	for _, p := range paths {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", p, nil))
	}

	snap := store.Snapshot()
	other := snap.AllTime.TotalRequests - snap.AllTime.Successes - snap.AllTime.Failures
	if snap.AllTime.TotalRequests != 5 {
		t.Errorf("expected 5 requests, got %d", snap.AllTime.TotalRequests)
	}
	if snap.AllTime.Successes != 3 || snap.AllTime.Failures != 1 || other != 1 {
		t.Errorf("expected 3 successes, 1 failure, 1 other; got %+v", snap.AllTime)
	}
}
