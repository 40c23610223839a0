// Inkgate - Authorization and Audit Gateway for Content APIs
// Copyright 2026 Inkgate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/inkgate/inkgate

package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/inkgate/inkgate/internal/logging"
	"github.com/inkgate/inkgate/internal/models"
)

// DuckDBStore implements Store using DuckDB for persistent storage.
// This provides a durable audit trail suitable for production use.
type DuckDBStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewDuckDBStore creates a new DuckDB-backed audit store.
// Call CreateTable during initialization before the first Save.
func NewDuckDBStore(db *sql.DB) *DuckDBStore {
	return &DuckDBStore{db: db}
}

// CreateTable creates the audit_events table if it doesn't exist.
func (s *DuckDBStore) CreateTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS audit_events (
			id TEXT PRIMARY KEY,
			timestamp TIMESTAMPTZ NOT NULL,
			operation TEXT NOT NULL,
			entity_type TEXT NOT NULL,
			entity_id TEXT,
			outcome TEXT NOT NULL,

			-- Actor information
			actor_id TEXT,
			actor_roles JSON,
			actor_is_admin BOOLEAN NOT NULL DEFAULT FALSE,

			-- Event details
			error_message TEXT,
			fields JSON,
			sensitive_touched BOOLEAN NOT NULL DEFAULT FALSE,
			metadata JSON,
			request_id TEXT,

			-- Tamper evidence
			prev_hash TEXT NOT NULL,
			hash TEXT NOT NULL,

			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		-- Indexes for common query patterns
		CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_events(timestamp DESC);
		CREATE INDEX IF NOT EXISTS idx_audit_operation ON audit_events(operation);
		CREATE INDEX IF NOT EXISTS idx_audit_entity_type ON audit_events(entity_type);
		CREATE INDEX IF NOT EXISTS idx_audit_entity_id ON audit_events(entity_id);
		CREATE INDEX IF NOT EXISTS idx_audit_outcome ON audit_events(outcome);
		CREATE INDEX IF NOT EXISTS idx_audit_actor_id ON audit_events(actor_id);
		CREATE INDEX IF NOT EXISTS idx_audit_request_id ON audit_events(request_id);
	`

	statements := strings.Split(query, ";")
	for _, stmt := range statements {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	logging.Info().Msg("Audit events table created/verified")
	return nil
}

// Save persists an audit event to DuckDB.
func (s *DuckDBStore) Save(ctx context.Context, event *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}

	query := `
		INSERT INTO audit_events (
			id, timestamp, operation, entity_type, entity_id, outcome,
			actor_id, actor_roles, actor_is_admin,
			error_message, fields, sensitive_touched, metadata, request_id,
			prev_hash, hash, created_at
		) VALUES (
			?, ?, ?, ?, ?, ?,
			?, ?, ?,
			?, ?, ?, ?, ?,
			?, ?, ?
		)
	`

	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		event.Timestamp,
		string(event.Operation),
		event.EntityType,
		event.EntityID,
		string(event.Outcome),
		event.Actor.ID,
		marshalStrings(event.Actor.Roles),
		event.Actor.IsAdmin,
		event.ErrorMessage,
		marshalStrings(event.Fields),
		event.SensitiveTouched,
		nullableJSON(event.Metadata),
		event.RequestID,
		event.PrevHash,
		event.Hash,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save audit event: %w", err)
	}

	return nil
}

// marshalStrings marshals a string slice to a JSON string for DuckDB.
func marshalStrings(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	if data, err := json.Marshal(values); err == nil {
		return string(data)
	}
	return "[]"
}

// nullableJSON converts raw JSON to a nullable string column value.
func nullableJSON(raw json.RawMessage) *string {
	if len(raw) == 0 {
		return nil
	}
	s := string(raw)
	return &s
}

// Get retrieves an event by ID.
func (s *DuckDBStore) Get(ctx context.Context, id string) (*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, s.baseSelect()+" WHERE id = ?", id)
	var data scannedEventData
	if err := row.Scan(data.scanDestinations()...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("event not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get audit event: %w", err)
	}

	return data.toEvent(), nil
}

// Query retrieves events matching the filter.
func (s *DuckDBStore) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query, args := s.buildQuery(filter, false)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var data scannedEventData
		if err := rows.Scan(data.scanDestinations()...); err != nil {
			logging.Warn().Err(err).Msg("Failed to scan audit event row")
			continue
		}
		events = append(events, *data.toEvent())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit events: %w", err)
	}

	return events, nil
}

// Count returns the number of events matching the filter.
func (s *DuckDBStore) Count(ctx context.Context, filter QueryFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query, args := s.buildQuery(filter, true)

	var count int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count audit events: %w", err)
	}

	return count, nil
}

// Delete removes events older than the given time.
func (s *DuckDBStore) Delete(ctx context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `DELETE FROM audit_events WHERE timestamp < ?`, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old audit events: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get deleted count: %w", err)
	}

	if count > 0 {
		logging.Info().Int64("deleted", count).Time("older_than", olderThan).Msg("Deleted old audit events")
	}

	return count, nil
}

// baseSelect returns the SELECT clause with JSON columns cast for scanning.
func (s *DuckDBStore) baseSelect() string {
	return `
		SELECT
			id, timestamp, operation, entity_type, entity_id, outcome,
			actor_id,
			CAST(actor_roles AS VARCHAR) as actor_roles,
			actor_is_admin,
			error_message,
			CAST(fields AS VARCHAR) as fields,
			sensitive_touched,
			CAST(metadata AS VARCHAR) as metadata,
			request_id,
			prev_hash, hash
		FROM audit_events
	`
}

// buildQuery constructs the SQL query based on the filter.
func (s *DuckDBStore) buildQuery(filter QueryFilter, countOnly bool) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if cond := buildSliceCondition("operation", filter.Operations, &args); cond != "" {
		conditions = append(conditions, cond)
	}
	if cond := buildSliceCondition("outcome", filter.Outcomes, &args); cond != "" {
		conditions = append(conditions, cond)
	}

	conditions, args = appendStringCondition(conditions, args, "entity_type", filter.EntityType)
	conditions, args = appendStringCondition(conditions, args, "entity_id", filter.EntityID)
	conditions, args = appendStringCondition(conditions, args, "actor_id", filter.ActorID)
	conditions, args = appendStringCondition(conditions, args, "request_id", filter.RequestID)

	if filter.SensitiveOnly {
		conditions = append(conditions, "sensitive_touched = TRUE")
	}
	if filter.StartTime != nil {
		conditions = append(conditions, "timestamp >= ?")
		args = append(args, *filter.StartTime)
	}
	if filter.EndTime != nil {
		conditions = append(conditions, "timestamp <= ?")
		args = append(args, *filter.EndTime)
	}

	query := s.baseSelect()
	if countOnly {
		query = "SELECT COUNT(*) FROM audit_events"
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	if !countOnly {
		if filter.OrderDesc {
			query += " ORDER BY timestamp DESC"
		} else {
			query += " ORDER BY timestamp ASC"
		}
		if filter.Limit > 0 {
			query += fmt.Sprintf(" LIMIT %d", filter.Limit)
		}
		if filter.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", filter.Offset)
		}
	}

	return query, args
}

// buildSliceCondition creates a SQL IN condition for a slice of string-like values.
func buildSliceCondition[T ~string](column string, values []T, args *[]interface{}) string {
	if len(values) == 0 {
		return ""
	}
	placeholders := make([]string, len(values))
	for i, v := range values {
		placeholders[i] = "?"
		*args = append(*args, string(v))
	}
	return fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ","))
}

// appendStringCondition adds a string equality condition if value is non-empty.
func appendStringCondition(conditions []string, args []interface{}, column, value string) ([]string, []interface{}) {
	if value != "" {
		conditions = append(conditions, column+" = ?")
		args = append(args, value)
	}
	return conditions, args
}

// scannedEventData holds raw scanned values from the database.
type scannedEventData struct {
	event        Event
	operation    string
	outcome      string
	entityID     sql.NullString
	actorID      sql.NullString
	actorRoles   sql.NullString
	errorMessage sql.NullString
	fields       sql.NullString
	metadata     sql.NullString
	requestID    sql.NullString
}

// scanDestinations returns pointers to all fields for scanning, in
// baseSelect column order.
func (d *scannedEventData) scanDestinations() []interface{} {
	return []interface{}{
		&d.event.ID,
		&d.event.Timestamp,
		&d.operation,
		&d.event.EntityType,
		&d.entityID,
		&d.outcome,
		&d.actorID,
		&d.actorRoles,
		&d.event.Actor.IsAdmin,
		&d.errorMessage,
		&d.fields,
		&d.event.SensitiveTouched,
		&d.metadata,
		&d.requestID,
		&d.event.PrevHash,
		&d.event.Hash,
	}
}

// toEvent converts scanned data to a fully populated Event.
func (d *scannedEventData) toEvent() *Event {
	d.event.Operation = models.Operation(d.operation)
	d.event.Outcome = Outcome(d.outcome)
	d.event.EntityID = d.entityID.String
	d.event.Actor.ID = d.actorID.String
	d.event.ErrorMessage = d.errorMessage.String
	d.event.RequestID = d.requestID.String

	if d.actorRoles.Valid && d.actorRoles.String != "" {
		if err := json.Unmarshal([]byte(d.actorRoles.String), &d.event.Actor.Roles); err != nil {
			logging.Debug().Err(err).Msg("Failed to parse actor roles JSON")
		}
	}
	if d.fields.Valid && d.fields.String != "" {
		if err := json.Unmarshal([]byte(d.fields.String), &d.event.Fields); err != nil {
			logging.Debug().Err(err).Msg("Failed to parse event fields JSON")
		}
	}
	if d.metadata.Valid && d.metadata.String != "" {
		d.event.Metadata = json.RawMessage(d.metadata.String)
	}

	return &d.event
}
