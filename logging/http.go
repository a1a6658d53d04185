package logging

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RequestIDHeader carries the per-request ID assigned by HTTPLogger.
const RequestIDHeader = "X-Request-ID"

// HTTPLogger logs one entry per HTTP request.
type HTTPLogger struct {
	logger *Logger
	// quiet paths are logged at DEBUG instead of INFO (static assets, health).
	quiet map[string]bool
}

// NewHTTPLogger creates a new HTTP logger. Requests to quietPaths that
// succeed are logged at DEBUG.
func NewHTTPLogger(logger *Logger, quietPaths ...string) *HTTPLogger {
	quiet := make(map[string]bool, len(quietPaths))
	for _, p := range quietPaths {
		quiet[p] = true
	}
	return &HTTPLogger{logger: logger, quiet: quiet}
}

type responseRecorder struct {
	http.ResponseWriter
	status      int
	size        int
	wroteHeader bool
}

func (r *responseRecorder) WriteHeader(status int) {
	if !r.wroteHeader {
		r.status = status
		r.wroteHeader = true
		r.ResponseWriter.WriteHeader(status)
	}
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	n, err := r.ResponseWriter.Write(b)
	r.size += n
	return n, err
}

// Hijack is required for the dev reload websocket upgrade.
func (r *responseRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := r.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, fmt.Errorf("responseRecorder does not support hijacking")
}

func (r *responseRecorder) Flush() {
	if flusher, ok := r.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Middleware returns an HTTP middleware that logs requests and responses.
func (h *HTTPLogger) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.New().String()

		recorder := &responseRecorder{
			ResponseWriter: w,
			status:         http.StatusOK,
		}
		recorder.Header().Set(RequestIDHeader, requestID)

		next.ServeHTTP(recorder, r)

		level := INFO
		switch {
		case recorder.status >= 500:
			level = ERROR
		case recorder.status >= 400:
			level = WARN
		case h.quiet[r.URL.Path]:
			level = DEBUG
		}
		if !h.logger.Enabled(level) {
			return
		}

		entry := h.logger.WithRequestID(requestID).
			WithCategory("http").
			WithDuration(time.Since(start)).
			WithField("method", r.Method).
			WithField("path", r.URL.Path).
			WithField("query", r.URL.RawQuery).
			WithField("status", recorder.status).
			WithField("size", recorder.size).
			WithField("remote_addr", r.RemoteAddr).
			WithField("user_agent", r.UserAgent()).
			WithField("referer", r.Referer())

		headers := make(map[string]string)
		for name, values := range r.Header {
			if !isSensitiveHeader(name) {
				headers[name] = strings.Join(values, ", ")
			}
		}
		if len(headers) > 0 {
			entry.WithField("request_headers", headers)
		}
		entry.Log(level, fmt.Sprintf("%s %s %d", r.Method, r.URL.Path, recorder.status), nil)
	})
}

func isSensitiveHeader(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "auth") ||
		strings.Contains(lower, "token") ||
		strings.Contains(lower, "cookie") ||
		strings.Contains(lower, "key") ||
		strings.Contains(lower, "secret")
}
