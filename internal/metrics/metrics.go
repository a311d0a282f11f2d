// Package metrics exposes prometheus instrumentation for map requests and
// viewport transitions
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mapview",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total map service requests by kind and status",
	}, []string{"kind", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mapview",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Map service request latency in seconds",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"kind"})

	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mapview",
		Subsystem: "viewport",
		Name:      "transitions_total",
		Help:      "Viewport transitions by action and outcome",
	}, []string{"action", "outcome"})

	ImageCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mapview",
		Subsystem: "cache",
		Name:      "image_hits_total",
		Help:      "Map images served from the disk cache",
	})

	ImageCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mapview",
		Subsystem: "cache",
		Name:      "image_misses_total",
		Help:      "Map images fetched because the disk cache had no copy",
	})
)

// ObserveRequest records a finished request
func ObserveRequest(kind, status string, d time.Duration) {
	requestsTotal.WithLabelValues(kind, status).Inc()
	requestDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// ObserveTransition records the outcome of a user action
func ObserveTransition(action, outcome string) {
	transitionsTotal.WithLabelValues(action, outcome).Inc()
}

// Serve exposes /metrics on addr in the background. Shut it down with the
// returned server; listen errors go to errFn.
func Serve(addr string, errFn func(error)) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errFn(err)
		}
	}()

	return srv
}

// Shutdown stops a server started by Serve
func Shutdown(srv *http.Server) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
