// Inkgate - Authorization and Audit Gateway for Content APIs
// Copyright 2026 Inkgate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/inkgate/inkgate

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/inkgate/inkgate/internal/audit"
)

// =============================================================================
// Mock Audit Store
// =============================================================================

type mockAuditStore struct {
	events   []audit.Event
	queryErr error
	countErr error
}

func (m *mockAuditStore) Query(_ context.Context, _ audit.QueryFilter) ([]audit.Event, error) {
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	return m.events, nil
}

func (m *mockAuditStore) Count(_ context.Context, _ audit.QueryFilter) (int64, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	return int64(len(m.events)), nil
}

func (m *mockAuditStore) Get(_ context.Context, id string) (*audit.Event, error) {
	for i := range m.events {
		if m.events[i].ID == id {
			return &m.events[i], nil
		}
	}
	return nil, errors.New("not found")
}

// chainedTestEvents builds n events with a valid hash chain.
func chainedTestEvents(n int) []audit.Event {
	events := make([]audit.Event, n)
	prev := ""
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := range events {
		events[i] = audit.Event{
			ID:         "evt-" + string(rune('a'+i)),
			Timestamp:  base.Add(time.Duration(i) * time.Minute),
			Operation:  "create",
			EntityType: "post",
			EntityID:   "post-1",
			Outcome:    audit.OutcomeSuccess,
			Actor:      audit.Actor{ID: "user-1"},
			PrevHash:   prev,
		}
		events[i].Hash = audit.ComputeHash(&events[i], prev)
		prev = events[i].Hash
	}
	return events
}

// execute runs the handler through a chi route so URL params resolve.
func executeAuditRequest(t *testing.T, handler http.HandlerFunc, pattern, path string) (int, map[string]any) {
	t.Helper()

	r := chi.NewRouter()
	r.Get(pattern, handler)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var envelope map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return rec.Code, envelope
}

// =============================================================================
// ListEvents Tests
// =============================================================================

func TestAuditListEvents(t *testing.T) {
	t.Parallel()

	store := &mockAuditStore{events: chainedTestEvents(3)}
	handlers := NewAuditHandlers(store)

	status, envelope := executeAuditRequest(t, handlers.ListEvents, "/events", "/events?limit=10")

	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	data := envelope["data"].(map[string]any)
	if data["total"] != float64(3) {
		t.Errorf("total = %v, want 3", data["total"])
	}
	events, ok := data["events"].([]any)
	if !ok || len(events) != 3 {
		t.Errorf("events = %v, want 3 entries", data["events"])
	}
}

func TestAuditListEvents_QueryError(t *testing.T) {
	t.Parallel()

	store := &mockAuditStore{queryErr: errors.New("disk on fire")}
	handlers := NewAuditHandlers(store)

	status, envelope := executeAuditRequest(t, handlers.ListEvents, "/events", "/events")

	if status != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", status)
	}
	// Internal details stay server-side.
	apiErr := envelope["error"].(map[string]any)
	if msg, _ := apiErr["message"].(string); msg == "disk on fire" {
		t.Error("error message leaks internal store error")
	}
}

// =============================================================================
// GetEvent Tests
// =============================================================================

func TestAuditGetEvent(t *testing.T) {
	t.Parallel()

	events := chainedTestEvents(2)
	store := &mockAuditStore{events: events}
	handlers := NewAuditHandlers(store)

	status, envelope := executeAuditRequest(t, handlers.GetEvent, "/events/{id}", "/events/"+events[1].ID)

	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	data := envelope["data"].(map[string]any)
	if data["id"] != events[1].ID {
		t.Errorf("event id = %v, want %s", data["id"], events[1].ID)
	}
}

func TestAuditGetEvent_NotFound(t *testing.T) {
	t.Parallel()

	store := &mockAuditStore{}
	handlers := NewAuditHandlers(store)

	status, _ := executeAuditRequest(t, handlers.GetEvent, "/events/{id}", "/events/missing")

	if status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", status)
	}
}

// =============================================================================
// Stats Tests
// =============================================================================

func TestAuditStats_DerivedFromCounts(t *testing.T) {
	t.Parallel()

	// mockAuditStore does not implement StatsProvider, so the handler
	// derives per-outcome counts.
	store := &mockAuditStore{events: chainedTestEvents(2)}
	handlers := NewAuditHandlers(store)

	status, envelope := executeAuditRequest(t, handlers.Stats, "/stats", "/stats")

	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	data := envelope["data"].(map[string]any)
	if data["total_events"] == nil {
		t.Errorf("stats = %v, want total_events", data)
	}
}

func TestAuditStats_NativeProvider(t *testing.T) {
	t.Parallel()

	store := audit.NewMemoryStore(100)
	for _, event := range chainedTestEvents(3) {
		if err := store.Save(context.Background(), &event); err != nil {
			t.Fatalf("failed to seed store: %v", err)
		}
	}
	handlers := NewAuditHandlers(store)

	status, envelope := executeAuditRequest(t, handlers.Stats, "/stats", "/stats")

	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	data := envelope["data"].(map[string]any)
	if data["total_events"] != float64(3) {
		t.Errorf("total_events = %v, want 3", data["total_events"])
	}
}

// =============================================================================
// VerifyChain Tests
// =============================================================================

func TestAuditVerifyChain_Valid(t *testing.T) {
	t.Parallel()

	store := &mockAuditStore{events: chainedTestEvents(5)}
	handlers := NewAuditHandlers(store)

	status, envelope := executeAuditRequest(t, handlers.VerifyChain, "/verify", "/verify")

	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	data := envelope["data"].(map[string]any)
	if data["valid"] != true {
		t.Errorf("valid = %v, want true", data["valid"])
	}
	if data["event_count"] != float64(5) {
		t.Errorf("event_count = %v, want 5", data["event_count"])
	}
}

func TestAuditVerifyChain_Tampered(t *testing.T) {
	t.Parallel()

	events := chainedTestEvents(5)
	events[2].EntityID = "post-tampered"
	store := &mockAuditStore{events: events}
	handlers := NewAuditHandlers(store)

	status, envelope := executeAuditRequest(t, handlers.VerifyChain, "/verify", "/verify")

	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	data := envelope["data"].(map[string]any)
	if data["valid"] != false {
		t.Fatalf("valid = %v, want false", data["valid"])
	}
	if data["break_index"] != float64(2) {
		t.Errorf("break_index = %v, want 2", data["break_index"])
	}
}

// =============================================================================
// Query Filter Parsing Tests
// =============================================================================

func TestParseQueryFilter(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet,
		"/events?limit=25&offset=50&operation=create&operation=update&outcome=denied"+
			"&entity_type=post&actor_id=user-1&sensitive=true&start_time=2026-08-01T00:00:00Z", nil)

	filter := parseQueryFilter(r)

	if filter.Limit != 25 {
		t.Errorf("Limit = %d, want 25", filter.Limit)
	}
	if filter.Offset != 50 {
		t.Errorf("Offset = %d, want 50", filter.Offset)
	}
	if len(filter.Operations) != 2 {
		t.Errorf("Operations = %v, want 2 entries", filter.Operations)
	}
	if len(filter.Outcomes) != 1 || filter.Outcomes[0] != audit.OutcomeDenied {
		t.Errorf("Outcomes = %v, want [denied]", filter.Outcomes)
	}
	if filter.EntityType != "post" {
		t.Errorf("EntityType = %q, want post", filter.EntityType)
	}
	if !filter.SensitiveOnly {
		t.Error("SensitiveOnly = false, want true")
	}
	if filter.StartTime == nil {
		t.Error("StartTime = nil, want parsed time")
	}
}

func TestParseQueryFilter_Defaults(t *testing.T) {
	t.Parallel()

	filter := parseQueryFilter(httptest.NewRequest(http.MethodGet, "/events", nil))

	if filter.Limit != 100 {
		t.Errorf("Limit = %d, want default 100", filter.Limit)
	}
	if !filter.OrderDesc {
		t.Error("OrderDesc = false, want default true")
	}
}

func TestParseQueryFilter_ClampsLimit(t *testing.T) {
	t.Parallel()

	filter := parseQueryFilter(httptest.NewRequest(http.MethodGet, "/events?limit=99999", nil))

	if filter.Limit != 100 {
		t.Errorf("Limit = %d, want default 100 when out of range", filter.Limit)
	}
}
