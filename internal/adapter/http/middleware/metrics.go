package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

// RequestMetrics receives per-request observations.
type RequestMetrics interface {
	RequestStarted()
	RequestFinished(method, path string, status int, duration time.Duration)
}

// Metrics returns a middleware recording HTTP metrics into m.
func Metrics(m RequestMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			m.RequestStarted()

			wrapped := &metricsRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			m.RequestFinished(r.Method, routeLabel(r), wrapped.statusCode, time.Since(start))
		})
	}
}

type metricsRecorder struct {
	http.ResponseWriter

	statusCode int
}

func (r *metricsRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

// routeLabel prefers the matched chi pattern and falls back to normalizePath.
func routeLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}

	return normalizePath(r.URL.Path)
}

// normalizePath replaces the identifier following a collection segment to
// avoid high cardinality.
// /api/v1/accounts/ACC-... -> /api/v1/accounts/{number}
func normalizePath(path string) string {
	segments := strings.Split(path, "/")

	for i := 0; i+1 < len(segments); i++ {
		if segments[i+1] == "" {
			continue
		}

		switch segments[i] {
		case "accounts":
			segments[i+1] = "{number}"
			i++
		case "transfers":
			segments[i+1] = "{id}"
			i++
		}
	}

	return strings.Join(segments, "/")
}
