package main

import (
	"bufio"
	"bytes"
	"fmt"
	"net"
	"net/http"
)

// responseWriter wraps http.ResponseWriter to capture the status code
// for logging and metrics while passing writes through, and supports
// Flush/Hijack for streaming and WebSocket upgrades.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.ResponseWriter.WriteHeader(code)
		rw.written = true
	}
}

func (rw *responseWriter) Write(p []byte) (int, error) {
	rw.written = true
	return rw.ResponseWriter.Write(p)
}

func (rw *responseWriter) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := rw.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, fmt.Errorf("response does not implement http.Hijacker")
}

// captureWriter buffers the response instead of writing it to the
// client, so the chaos injector can inspect and rewrite the body before
// anything is sent. Headers go straight to the underlying writer's
// header map, which is not flushed until WriteHeader is called on it.
type captureWriter struct {
	underlying http.ResponseWriter
	status     int
	body       bytes.Buffer
}

func newCaptureWriter(w http.ResponseWriter) *captureWriter {
	return &captureWriter{underlying: w, status: http.StatusOK}
}

func (cw *captureWriter) Header() http.Header {
	return cw.underlying.Header()
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
}

func (cw *captureWriter) Write(p []byte) (int, error) {
	return cw.body.Write(p)
}
