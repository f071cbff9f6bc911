package main

import (
	"context"
	"net/http"
	"time"
)

type timingKey struct{}

// timingMiddleware stamps the request's arrival instant into the
// context. It is the outermost stage, so injected chaos delay is
// included in any duration measured downstream.
func timingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), timingKey{}, time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestStart returns the arrival instant stamped by timingMiddleware,
// falling back to now for requests that bypassed it (direct handler
// tests).
func requestStart(ctx context.Context) time.Time {
	if start, ok := ctx.Value(timingKey{}).(time.Time); ok {
		return start
	}
	return time.Now()
}
