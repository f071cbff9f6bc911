package main

import (
	"log"
	"net/http"
	"strconv"
	"time"
)

// loggingMiddleware logs requests and records Prometheus metrics. The
// duration is measured from the timing middleware's stamp, so chaos
// delay shows up in the logged latency.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := requestStart(r.Context())

		configLock.RLock()
		logRequests := config.LogRequests
		logHeaders := config.LogHeaders
		configLock.RUnlock()

		if logRequests {
			log.Printf("%s %s %s", r.RemoteAddr, r.Method, r.URL.Path)
		}
		if logHeaders {
			log.Printf("Headers: %+v", r.Header)
		}

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		elapsed := time.Since(start)
		if logRequests {
			log.Printf("%s %s %s - %d %v", r.RemoteAddr, r.Method, r.URL.Path, rw.statusCode, elapsed)
		}

		requestLatency.Observe(elapsed.Seconds())
		requestTotal.WithLabelValues(r.Method, normalizePath(r.URL.Path), strconv.Itoa(rw.statusCode)).Inc()
	})
}
