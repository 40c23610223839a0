// Inkgate - Authorization and Audit Gateway for Content APIs
// Copyright 2026 Inkgate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/inkgate/inkgate

package guard

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/inkgate/inkgate/internal/models"
)

var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkgate_guard_operations_total",
		Help: "Guarded operations, by operation and outcome.",
	}, []string{"operation", "outcome"})

	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inkgate_guard_operation_duration_seconds",
		Help:    "End-to-end guarded operation duration, including the executor.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
)

func recordOperation(op models.Operation, outcome string, elapsed time.Duration) {
	operationsTotal.WithLabelValues(string(op), outcome).Inc()
	operationDuration.WithLabelValues(string(op)).Observe(elapsed.Seconds())
}
