// SPDX-License-Identifier: MIT

package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Surfaces group routes by who calls them.
const (
	SurfaceDisplay   = "display"
	SurfaceAdmin     = "admin"
	SurfaceMedia     = "media"
	SurfaceProbe     = "probe"
	SurfaceUnmatched = "unmatched"
)

var (
	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bardisplay_http_request_duration_seconds",
		Help:    "HTTP request latencies in seconds, by surface and route pattern",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"surface", "method", "route"})

	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bardisplay_http_requests_total",
		Help: "HTTP requests by surface and status class (2xx, 4xx, ...)",
	}, []string{"surface", "code"})

	httpRequestsInFlight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "bardisplay_http_requests_in_flight",
		Help: "Requests currently being served, by surface",
	}, []string{"surface"})

	httpMediaBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bardisplay_http_media_bytes_total",
		Help: "Bytes of uploaded media written to display clients",
	})
)

// Metrics records request metrics labelled by the chi route pattern, never
// the raw URL. The in-flight gauge is keyed by the request path because the
// route is only known after routing.
func Metrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			inflight := httpRequestsInFlight.WithLabelValues(surfaceOf(r.URL.Path))
			inflight.Inc()
			defer inflight.Dec()

			mw := &metricsWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(mw, r)

			route := SurfaceUnmatched
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}
			surface := SurfaceUnmatched
			if route != SurfaceUnmatched {
				surface = surfaceOf(route)
			}

			httpRequestDuration.WithLabelValues(surface, r.Method, route).Observe(time.Since(start).Seconds())
			httpRequestsTotal.WithLabelValues(surface, statusClass(mw.statusCode)).Inc()
			if surface == SurfaceMedia && mw.bytesWritten > 0 {
				httpMediaBytes.Add(float64(mw.bytesWritten))
			}
		})
	}
}

// surfaceOf classifies a path or route pattern. Anything that is neither an
// API route nor a probe is the media file server.
func surfaceOf(path string) string {
	switch {
	case path == "/healthz" || path == "/readyz":
		return SurfaceProbe
	case path == "/api/data":
		return SurfaceDisplay
	case strings.HasPrefix(path, "/api/"):
		return SurfaceAdmin
	default:
		return SurfaceMedia
	}
}

func statusClass(code int) string {
	if code < 100 || code > 599 {
		return "other"
	}
	return strconv.Itoa(code/100) + "xx"
}

// metricsWriter captures the status and body size.
type metricsWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
	written      bool
}

func (mw *metricsWriter) WriteHeader(statusCode int) {
	if !mw.written {
		mw.statusCode = statusCode
		mw.written = true
	}
	mw.ResponseWriter.WriteHeader(statusCode)
}

func (mw *metricsWriter) Write(b []byte) (int, error) {
	if !mw.written {
		mw.WriteHeader(http.StatusOK)
	}
	n, err := mw.ResponseWriter.Write(b)
	mw.bytesWritten += n
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (mw *metricsWriter) Unwrap() http.ResponseWriter { return mw.ResponseWriter }
