package main

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRoutes configures all HTTP routes and the middleware pipeline.
//
// Middleware ordering is the pipeline contract: timing is outermost so
// injected delay counts toward measured duration; the metrics recorder
// wraps the chaos injector so it records the final status the client
// sees; chaos wraps the handler so it can short-circuit it or rewrite
// its response. A nil store or injector leaves that stage out.
func setupRoutes(store *MetricsStore, chaos *chaosInjector) *mux.Router {
	router := mux.NewRouter()

	router.Use(timingMiddleware)
	router.Use(loggingMiddleware)
	router.Use(corsMiddleware)
	router.Use(requestIDMiddleware)
	if rateLimiter != nil {
		router.Use(rateLimitMiddleware)
	}
	if store != nil {
		router.Use(metricsMiddleware(store))
	}
	if chaos != nil {
		router.Use(chaos.middleware)
	}

	router.HandleFunc("/", rootHandler).Methods("GET")
	router.HandleFunc("/get", getHandler).Methods("GET", "HEAD")
	router.HandleFunc("/post", bodyEchoHandler).Methods("POST")
	router.HandleFunc("/put", bodyEchoHandler).Methods("PUT")
	router.HandleFunc("/patch", bodyEchoHandler).Methods("PATCH")
	router.HandleFunc("/delete", deleteHandler).Methods("DELETE")
	router.HandleFunc("/options", optionsHandler).Methods("OPTIONS")

	router.HandleFunc("/status/{code}", statusHandler)
	router.HandleFunc("/anything", anythingHandler)
	router.HandleFunc("/anything/{path:.*}", anythingHandler)
	router.HandleFunc("/delay/{n}", delayHandler)
	router.HandleFunc("/redirect/{n}", redirectHandler)

	router.HandleFunc("/cookies", cookiesHandler).Methods("GET")
	router.HandleFunc("/cookies/set", setCookiesHandler).Methods("GET")
	router.HandleFunc("/cookies/delete", deleteCookiesHandler).Methods("GET")

	router.HandleFunc("/healthz", healthzHandler).Methods("GET")
	router.HandleFunc("/endpoints", endpointsHandler).Methods("GET")
	router.HandleFunc("/ws", websocketHandler)

	if store != nil {
		router.HandleFunc("/metrics", metricsHandler(store)).Methods("GET")
	}
	router.Handle("/prometheus", promhttp.Handler())

	return router
}
