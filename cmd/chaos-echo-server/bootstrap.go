package main

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

var (
	configLock  sync.RWMutex
	config      Config
	rateLimiter *rate.Limiter
)

// initializeServer loads and validates configuration, then builds the
// process-lifetime components: the metrics store (only when enabled),
// the chaos injector (only when any mode is active), and the rate
// limiter. Configuration errors are fatal here, never at request time.
func initializeServer(configFile string) (*MetricsStore, *chaosInjector, error) {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return nil, nil, err
	}

	configLock.Lock()
	config = cfg
	configLock.Unlock()

	var store *MetricsStore
	if cfg.Metrics.Enabled {
		store = newMetricsStore(cfg.Metrics.Buckets, time.Duration(cfg.Metrics.BucketSeconds)*time.Second)
	}

	var chaos *chaosInjector
	if cfg.Chaos.enabled() {
		chaos = newChaosInjector(&cfg.Chaos)
	}

	if cfg.RateLimitRPS > 0 && cfg.RateLimitBurst > 0 {
		rateLimiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	}

	registerPrometheusMetrics()

	return store, chaos, nil
}
