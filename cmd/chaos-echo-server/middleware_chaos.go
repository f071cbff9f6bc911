package main

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// chaosHeader annotates responses with the applied effect names when
// inform_header is enabled.
const chaosHeader = "X-Chaos"

// randSource is the subset of math/rand the injector draws from. The
// production source is a fresh rand.Rand per request; tests substitute a
// scripted source to pin roll outcomes.
type randSource interface {
	Float64() float64
	Intn(n int) int
}

// chaosInjector wraps handlers with probabilistic fault injection.
// Each request gets its own random source, so concurrent requests never
// contend on a shared generator.
type chaosInjector struct {
	cfg     *ChaosConfig
	newRand func() randSource
}

func newChaosInjector(cfg *ChaosConfig) *chaosInjector {
	return &chaosInjector{
		cfg: cfg,
		newRand: func() randSource {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

// middleware rolls each active chaos mode independently, in a fixed
// order: failure (short-circuits), delay (sleeps, then proceeds),
// corruption (rewrites the handler's response body). WebSocket upgrades
// are passed through untouched since corruption requires buffering the
// response, which is incompatible with hijacked connections.
func (c *chaosInjector) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !c.cfg.enabled() || r.URL.Path == "/ws" {
			next.ServeHTTP(w, r)
			return
		}

		rng := c.newRand()
		var applied []string

		// 1. Failure: synthetic error response, handler never runs.
		if c.cfg.hasFailure() && rng.Float64() < c.cfg.FailureRate {
			if c.injectFailure(w, rng) {
				return
			}
		}

		// 2. Delay: suspend only this request, no lock held.
		if c.cfg.hasDelay() && rng.Float64() < c.cfg.DelayRate {
			if !sleepContext(r.Context(), c.delayDuration(rng)) {
				// Request cancelled mid-delay; nothing to clean up.
				return
			}
			applied = append(applied, chaosDelay)
			chaosInjections.WithLabelValues(chaosDelay).Inc()
		}

		if !c.cfg.hasCorruption() {
			if c.cfg.InformHeader && len(applied) > 0 {
				w.Header().Set(chaosHeader, strings.Join(applied, ","))
			}
			next.ServeHTTP(w, r)
			return
		}

		// 3. Corruption requires the full body in memory, so the
		// handler writes into a capture buffer and the (possibly
		// rewritten) response is flushed afterwards.
		cw := newCaptureWriter(w)
		next.ServeHTTP(cw, r)

		body := cw.body.Bytes()
		if rng.Float64() < c.cfg.CorruptionRate {
			body = c.corruptBody(body, rng)
			applied = append(applied, chaosCorruption)
			chaosInjections.WithLabelValues(chaosCorruption).Inc()
		}

		if c.cfg.InformHeader && len(applied) > 0 {
			w.Header().Set(chaosHeader, strings.Join(applied, ","))
		}
		w.Header().Del("Content-Length")
		w.WriteHeader(cw.status)
		w.Write(body)
	})
}

// injectFailure writes the synthetic error response. Returns false if
// the failure-code list is unexpectedly empty, in which case the effect
// is skipped rather than breaking the request.
func (c *chaosInjector) injectFailure(w http.ResponseWriter, rng randSource) bool {
	if len(c.cfg.FailureCodes) == 0 {
		log.Printf("Chaos: failure mode active with no failure codes, skipping")
		return false
	}
	code := c.cfg.FailureCodes[rng.Intn(len(c.cfg.FailureCodes))]

	w.Header().Set("Content-Type", "application/json")
	if c.cfg.InformHeader {
		w.Header().Set(chaosHeader, chaosFailure)
	}
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": "Chaos failure injected",
		"chaos": map[string]interface{}{
			"type":        chaosFailure,
			"status_code": code,
		},
	})
	chaosInjections.WithLabelValues(chaosFailure).Inc()
	return true
}

func (c *chaosInjector) delayDuration(rng randSource) time.Duration {
	var ms int
	if c.cfg.DelayMs == delayRandom {
		ms = rng.Intn(c.cfg.DelayMaxMs)
	} else {
		ms, _ = strconv.Atoi(c.cfg.DelayMs)
	}
	return time.Duration(ms) * time.Millisecond
}

func (c *chaosInjector) corruptBody(body []byte, rng randSource) []byte {
	switch c.cfg.CorruptionKind {
	case corruptEmpty:
		return nil
	case corruptTruncate:
		return body[:len(body)/2]
	case corruptGarbage:
		garbage := make([]byte, len(body))
		for i := range garbage {
			// Printable ASCII, 0x21-0x7E.
			garbage[i] = byte(0x21 + rng.Intn(0x7E-0x21+1))
		}
		return garbage
	}
	// Unreachable after validation; pass the body through.
	return body
}

// sleepContext sleeps for d or until ctx is cancelled. Reports whether
// the full duration elapsed.
func sleepContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
