// Inkgate - Authorization and Audit Gateway for Content APIs
// Copyright 2026 Inkgate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/inkgate/inkgate

// Prometheus metrics for the authorization system: decision counts and
// latency, denial counts for alerting, and field omission counts from
// read filtering.
package authz

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/inkgate/inkgate/internal/models"
)

var (
	// DecisionsTotal counts role-gate decisions by actor kind and outcome.
	DecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inkgate_authz_decisions_total",
			Help: "Total number of role-level authorization decisions",
		},
		[]string{"actor_kind", "decision"},
	)

	// DecisionDuration tracks role-gate decision latency.
	DecisionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "inkgate_authz_decision_duration_seconds",
			Help: "Duration of role-level authorization decisions in seconds",
			// Decisions are in-memory set intersections; buckets stay in
			// the microsecond range.
			Buckets: []float64{0.000001, 0.000005, 0.00001, 0.00005, 0.0001, 0.0005, 0.001},
		},
	)

	// DeniedTotal counts denials for alerting.
	DeniedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inkgate_authz_denied_total",
			Help: "Total number of role-level authorization denials",
		},
		[]string{"actor_kind"},
	)

	// FieldsOmittedTotal counts fields removed from read views by
	// field-level filtering.
	FieldsOmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inkgate_authz_fields_omitted_total",
			Help: "Total number of fields omitted from responses by field-level filtering",
		},
		[]string{"entity_type"},
	)
)

// actorKind labels metrics without per-actor cardinality.
func actorKind(actor *models.Actor) string {
	switch {
	case actor == nil || !actor.IsAuthenticated:
		return "anonymous"
	case actor.IsAdmin:
		return "admin"
	default:
		return "user"
	}
}

// recordRoleDecision records one role-gate decision.
func recordRoleDecision(actor *models.Actor, allowed bool, elapsed time.Duration) {
	kind := actorKind(actor)
	decision := "denied"
	if allowed {
		decision = "allowed"
	} else {
		DeniedTotal.WithLabelValues(kind).Inc()
	}
	DecisionsTotal.WithLabelValues(kind, decision).Inc()
	DecisionDuration.Observe(elapsed.Seconds())
}

// recordFieldsOmitted records fields dropped from one filtered read.
func recordFieldsOmitted(entityType string, count int) {
	FieldsOmittedTotal.WithLabelValues(entityType).Add(float64(count))
}
