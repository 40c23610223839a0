// Inkgate - Authorization and Audit Gateway for Content APIs
// Copyright 2026 Inkgate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/inkgate/inkgate

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/inkgate/inkgate/internal/audit"
	"github.com/inkgate/inkgate/internal/logging"
	"github.com/inkgate/inkgate/internal/models"
)

// maxVerifyEvents caps how many events a single chain verification
// request will load.
const maxVerifyEvents = 100000

// AuditStore is the read surface the audit endpoints need. Both the
// memory store and the DuckDB store satisfy it.
type AuditStore interface {
	Query(ctx context.Context, filter audit.QueryFilter) ([]audit.Event, error)
	Count(ctx context.Context, filter audit.QueryFilter) (int64, error)
	Get(ctx context.Context, id string) (*audit.Event, error)
}

// StatsProvider is optionally implemented by stores that can compute
// aggregate statistics natively.
type StatsProvider interface {
	GetStats(ctx context.Context) (*audit.Stats, error)
}

// AuditHandlers provides HTTP handlers for audit trail endpoints.
// All of them sit behind the admin gate.
type AuditHandlers struct {
	store AuditStore
}

// NewAuditHandlers creates new audit handlers.
func NewAuditHandlers(store AuditStore) *AuditHandlers {
	return &AuditHandlers{store: store}
}

// ListEvents handles GET /api/v1/audit/events.
// Returns a paginated list of audit events with optional filtering.
func (h *AuditHandlers) ListEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rw := NewResponseWriter(w, r)

	filter := parseQueryFilter(r)

	events, err := h.store.Query(ctx, filter)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Failed to query audit events")
		rw.InternalError("failed to query audit events")
		return
	}

	total, err := h.store.Count(ctx, filter)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Failed to count audit events")
		rw.InternalError("failed to count audit events")
		return
	}

	rw.Success(map[string]any{
		"events": events,
		"total":  total,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

// GetEvent handles GET /api/v1/audit/events/{id}.
func (h *AuditHandlers) GetEvent(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id := chi.URLParam(r, "id")
	if id == "" {
		rw.BadRequest("event id is required")
		return
	}

	event, err := h.store.Get(r.Context(), id)
	if err != nil {
		rw.NotFound("audit event not found")
		return
	}

	rw.Success(event)
}

// Stats handles GET /api/v1/audit/stats.
// Uses the store's native stats when available, otherwise derives
// outcome counts from filtered queries.
func (h *AuditHandlers) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rw := NewResponseWriter(w, r)

	if provider, ok := h.store.(StatsProvider); ok {
		stats, err := provider.GetStats(ctx)
		if err != nil {
			logging.Ctx(ctx).Error().Err(err).Msg("Failed to compute audit stats")
			rw.InternalError("failed to compute audit stats")
			return
		}
		rw.Success(stats)
		return
	}

	byOutcome := make(map[string]int64, 3)
	var total int64
	for _, outcome := range []audit.Outcome{audit.OutcomeSuccess, audit.OutcomeFailure, audit.OutcomeDenied} {
		count, err := h.store.Count(ctx, audit.QueryFilter{Outcomes: []audit.Outcome{outcome}})
		if err != nil {
			logging.Ctx(ctx).Error().Err(err).Msg("Failed to compute audit stats")
			rw.InternalError("failed to compute audit stats")
			return
		}
		byOutcome[string(outcome)] = count
		total += count
	}

	rw.Success(&audit.Stats{
		TotalEvents:     total,
		EventsByOutcome: byOutcome,
	})
}

// ChainVerification is the response of the chain verification endpoint.
type ChainVerification struct {
	Valid       bool   `json:"valid"`
	EventCount  int    `json:"event_count"`
	BreakIndex  int    `json:"break_index,omitempty"`
	BreakReason string `json:"break_reason,omitempty"`
}

// VerifyChain handles GET /api/v1/audit/verify.
// Recomputes the hash chain over the stored events in insertion order
// and reports the first break, if any.
func (h *AuditHandlers) VerifyChain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rw := NewResponseWriter(w, r)

	events, err := h.store.Query(ctx, audit.QueryFilter{
		Limit:     maxVerifyEvents,
		OrderDesc: false,
	})
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Failed to load events for chain verification")
		rw.InternalError("failed to load audit events")
		return
	}

	result := ChainVerification{Valid: true, EventCount: len(events)}
	if err := audit.VerifyChain(events, ""); err != nil {
		result.Valid = false
		var chainErr *audit.ChainError
		if errors.As(err, &chainErr) {
			result.BreakIndex = chainErr.Index
			result.BreakReason = chainErr.Reason
		} else {
			result.BreakReason = err.Error()
		}
	}

	rw.Success(result)
}

// parseQueryFilter extracts an audit query filter from URL parameters.
func parseQueryFilter(r *http.Request) audit.QueryFilter {
	filter := audit.DefaultQueryFilter()
	q := r.URL.Query()

	if v := q.Get("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil && limit > 0 && limit <= 1000 {
			filter.Limit = limit
		}
	}
	if v := q.Get("offset"); v != "" {
		if offset, err := strconv.Atoi(v); err == nil && offset >= 0 {
			filter.Offset = offset
		}
	}
	for _, op := range q["operation"] {
		filter.Operations = append(filter.Operations, models.Operation(op))
	}
	for _, outcome := range q["outcome"] {
		filter.Outcomes = append(filter.Outcomes, audit.Outcome(outcome))
	}
	filter.EntityType = q.Get("entity_type")
	filter.EntityID = q.Get("entity_id")
	filter.ActorID = q.Get("actor_id")
	filter.RequestID = q.Get("request_id")
	filter.SensitiveOnly = q.Get("sensitive") == "true"

	if v := q.Get("start_time"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.StartTime = &t
		}
	}
	if v := q.Get("end_time"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.EndTime = &t
		}
	}

	return filter
}
