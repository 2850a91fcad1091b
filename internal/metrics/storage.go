// SPDX-License-Identifier: MIT
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storeOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bardisplay_store_operations_total",
		Help: "Record store operations by backend, operation and outcome",
	}, []string{"backend", "op", "outcome"}) // op=get|put, outcome=success|not_found|error

	storeOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bardisplay_store_operation_duration_seconds",
		Help:    "Record store operation latency",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	}, []string{"backend", "op"})
)

// Store outcomes
const (
	StoreSuccess  = "success"
	StoreNotFound = "not_found"
	StoreError    = "error"
)

// RecordStoreOperation records one backend call.
func RecordStoreOperation(backend, op, outcome string, d time.Duration) {
	storeOperationsTotal.WithLabelValues(backend, op, outcome).Inc()
	storeOperationDuration.WithLabelValues(backend, op).Observe(d.Seconds())
}
