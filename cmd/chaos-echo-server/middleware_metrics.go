package main

import (
	"net/http"
	"strings"
)

// metricsMiddleware records every completed request against the shared
// store. It sits outside the chaos injector so the recorded status is
// the final one the client sees, injected failures and corruption
// included.
func metricsMiddleware(store *MetricsStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			endpoint := normalizePath(r.URL.Path)

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)

			store.Record(endpoint, rw.statusCode)
		})
	}
}

// normalizePath collapses dynamic path segments to their route
// templates so the endpoint maps stay bounded by the number of routes,
// not the number of distinct paths ever requested.
//
//	/status/404       -> /status/:code
//	/delay/5          -> /delay/:n
//	/redirect/3       -> /redirect/:n
//	/anything/foo/bar -> /anything/*path
//	/cookies/set      -> /cookies/set (kept verbatim)
func normalizePath(path string) string {
	segments := strings.Split(path, "/")
	if len(segments) < 3 {
		return path
	}
	switch segments[1] {
	case "status":
		return "/status/:code"
	case "delay":
		return "/delay/:n"
	case "redirect":
		return "/redirect/:n"
	case "anything":
		return "/anything/*path"
	case "cookies":
		return "/cookies/" + segments[2]
	}
	return path
}
