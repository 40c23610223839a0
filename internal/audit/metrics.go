// Inkgate - Authorization and Audit Gateway for Content APIs
// Copyright 2026 Inkgate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/inkgate/inkgate

package audit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// eventsTotal counts audit events accepted into the buffer.
	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkgate_audit_events_total",
		Help: "Audit events accepted for writing, by outcome.",
	}, []string{"outcome"})

	// droppedTotal counts events dropped because the buffer was full.
	// A nonzero rate means the store cannot keep up and the trail has gaps.
	droppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkgate_audit_dropped_total",
		Help: "Audit events dropped due to a full write buffer.",
	})

	// writeFailuresTotal counts failed sink writes.
	writeFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkgate_audit_write_failures_total",
		Help: "Failed audit writes, by sink.",
	}, []string{"sink"})
)
