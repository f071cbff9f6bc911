package main

import (
	"fmt"
	"net/http"
)

// metricsHandler serves the JSON statistics document built from a
// point-in-time snapshot of the store.
func metricsHandler(store *MetricsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, store.Snapshot(), prettyRequested(r))
	}
}

func healthzHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprint(w, "OK")
}

// endpointInfo describes one API endpoint for the /endpoints listing.
type endpointInfo struct {
	Path        string `json:"path"`
	Method      string `json:"method"`
	Description string `json:"description"`
}

var apiEndpoints = []endpointInfo{
	{Path: "/", Method: "GET", Description: "Root welcome message."},
	{Path: "/get", Method: "GET", Description: "Echoes request details for GET."},
	{Path: "/get", Method: "HEAD", Description: "Responds with headers for GET query."},
	{Path: "/post", Method: "POST", Description: "Echoes request details for POST, expects JSON body."},
	{Path: "/put", Method: "PUT", Description: "Echoes request details for PUT, expects JSON body."},
	{Path: "/patch", Method: "PATCH", Description: "Echoes request details for PATCH, expects JSON body."},
	{Path: "/delete", Method: "DELETE", Description: "Echoes request details for DELETE."},
	{Path: "/options", Method: "OPTIONS", Description: "Responds with allowed HTTP methods."},
	{Path: "/status/{code}", Method: "ANY", Description: "Returns the specified HTTP status code."},
	{Path: "/anything", Method: "ANY", Description: "Echoes request details for any HTTP method."},
	{Path: "/anything/{path}", Method: "ANY", Description: "Echoes request details for any HTTP method under a specific path."},
	{Path: "/delay/{n}", Method: "ANY", Description: "Delays the response by n seconds (max 300)."},
	{Path: "/redirect/{n}", Method: "ANY", Description: "Returns a redirect chain of n hops (max 20)."},
	{Path: "/cookies", Method: "GET", Description: "Returns cookies sent with the request."},
	{Path: "/cookies/set", Method: "GET", Description: "Sets cookies from query parameters."},
	{Path: "/cookies/delete", Method: "GET", Description: "Deletes the named cookies."},
	{Path: "/healthz", Method: "GET", Description: "Performs a health check."},
	{Path: "/metrics", Method: "GET", Description: "Returns request statistics (all-time and last hour)."},
	{Path: "/prometheus", Method: "GET", Description: "Exposes Prometheus metrics."},
	{Path: "/ws", Method: "GET", Description: "WebSocket echo endpoint."},
	{Path: "/endpoints", Method: "GET", Description: "Lists all available API endpoints."},
}

func endpointsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, apiEndpoints, prettyRequested(r))
}
