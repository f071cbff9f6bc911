package main

import (
	"encoding/json"
	"log"
	"net/http"
)

// writeJSON serializes payload with a trailing newline. When pretty is
// true (the ?pretty=true query parameter) the output is indented.
func writeJSON(w http.ResponseWriter, status int, payload interface{}, pretty bool) {
	var data []byte
	var err error
	if pretty {
		data, err = json.MarshalIndent(payload, "", "  ")
	} else {
		data, err = json.Marshal(payload)
	}
	if err != nil {
		log.Printf("Failed to serialize JSON response: %v", err)
		http.Error(w, "Internal serialization error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(data, '\n'))
}

// prettyRequested reports whether the request asked for indented JSON.
func prettyRequested(r *http.Request) bool {
	return r.URL.Query().Get("pretty") == "true"
}

// serializeHeaders flattens request headers into a string map for JSON
// reflection, joining repeated values.
func serializeHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		if len(values) == 1 {
			out[name] = values[0]
		} else {
			joined := ""
			for i, v := range values {
				if i > 0 {
					joined += ", "
				}
				joined += v
			}
			out[name] = joined
		}
	}
	return out
}
