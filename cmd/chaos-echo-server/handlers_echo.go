package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
)

// Caps on abusable path parameters.
const (
	maxDelaySeconds = 300
	maxRedirectHops = 20
)

func rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "Welcome to Echo Server!")
}

// getHandler echoes the request method and headers as JSON. HEAD
// requests get the status and headers only.
func getHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"method":  r.Method,
		"headers": serializeHeaders(r.Header),
	}, prettyRequested(r))
}

// bodyEchoHandler backs /post, /put, and /patch: it echoes the method,
// headers, and parsed JSON body. A non-JSON body is a 400.
func bodyEchoHandler(w http.ResponseWriter, r *http.Request) {
	payload, err := readJSONBody(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON payload"}, prettyRequested(r))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"method":  r.Method,
		"headers": serializeHeaders(r.Header),
		"body":    payload,
	}, prettyRequested(r))
}

// deleteHandler echoes like bodyEchoHandler but a missing or invalid
// body is reflected as null instead of rejected.
func deleteHandler(w http.ResponseWriter, r *http.Request) {
	payload, err := readJSONBody(r)
	if err != nil {
		payload = nil
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"method":  r.Method,
		"headers": serializeHeaders(r.Header),
		"body":    payload,
	}, prettyRequested(r))
}

func readJSONBody(r *http.Request) (interface{}, error) {
	configLock.RLock()
	maxBodySize := config.MaxBodySize
	configLock.RUnlock()
	if maxBodySize <= 0 {
		maxBodySize = 10485760
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return nil, err
	}
	var payload interface{}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func optionsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", "GET, POST, PUT, PATCH, DELETE, OPTIONS, HEAD")
	w.WriteHeader(http.StatusNoContent)
}

// statusHandler returns the status code given in the path, any method.
// Codes outside the valid HTTP range fall back to 400.
func statusHandler(w http.ResponseWriter, r *http.Request) {
	code, err := strconv.Atoi(mux.Vars(r)["code"])
	if err != nil || code < 100 || code > 599 {
		code = http.StatusBadRequest
	}
	w.WriteHeader(code)
}

// anythingHandler reflects the full request for any method and subpath.
func anythingHandler(w http.ResponseWriter, r *http.Request) {
	configLock.RLock()
	maxBodySize := config.MaxBodySize
	configLock.RUnlock()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Failed to read body"}, prettyRequested(r))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"method":  r.Method,
		"path":    r.URL.Path,
		"query":   r.URL.RawQuery,
		"headers": serializeHeaders(r.Header),
		"body":    string(body),
	}, prettyRequested(r))
}

// delayHandler sleeps n seconds before responding, any method. The cap
// keeps a single request from holding a connection indefinitely. The
// sleep aborts if the client goes away.
func delayHandler(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(mux.Vars(r)["n"])
	if err != nil || n < 0 {
		http.Error(w, "Invalid delay value", http.StatusBadRequest)
		return
	}
	if n > maxDelaySeconds {
		http.Error(w, fmt.Sprintf("Delay of %d seconds exceeds maximum allowed value of %d", n, maxDelaySeconds), http.StatusBadRequest)
		return
	}
	if !sleepContext(r.Context(), time.Duration(n)*time.Second) {
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintf(w, "Response delayed by %d seconds", n)
}

// redirectHandler returns a 302 chain that decrements n each hop,
// landing on /get from n=1. n=0 means the chain is complete.
func redirectHandler(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(mux.Vars(r)["n"])
	if err != nil || n < 0 {
		http.Error(w, "Invalid redirect count", http.StatusBadRequest)
		return
	}
	if n > maxRedirectHops {
		http.Error(w, fmt.Sprintf("Redirect count of %d exceeds maximum allowed value of %d", n, maxRedirectHops), http.StatusBadRequest)
		return
	}
	if n == 0 {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, "Redirect complete")
		return
	}
	location := "/get"
	if n > 1 {
		location = fmt.Sprintf("/redirect/%d", n-1)
	}
	http.Redirect(w, r, location, http.StatusFound)
}
