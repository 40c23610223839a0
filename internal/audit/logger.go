// Inkgate - Authorization and Audit Gateway for Content APIs
// Copyright 2026 Inkgate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/inkgate/inkgate

package audit

import (
	"context"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/inkgate/inkgate/internal/logging"
	"github.com/inkgate/inkgate/internal/models"
)

// Config holds configuration for the audit logger.
type Config struct {
	// Enabled controls whether audit logging is active.
	Enabled bool `json:"enabled" koanf:"enabled"`

	// RecordDenials also writes events for operations rejected by the
	// role gate or sanitizer, not just executed ones.
	RecordDenials bool `json:"record_denials" koanf:"record_denials"`

	// RetentionDays is how long to keep audit events.
	RetentionDays int `json:"retention_days" koanf:"retention_days"`

	// CleanupInterval is how often to run retention cleanup.
	CleanupInterval time.Duration `json:"cleanup_interval" koanf:"cleanup_interval"`

	// BufferSize is the size of the async write buffer.
	BufferSize int `json:"buffer_size" koanf:"buffer_size"`

	// LogToStdout also emits events on the diagnostic log.
	LogToStdout bool `json:"log_to_stdout" koanf:"log_to_stdout"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		RecordDenials:   false,
		RetentionDays:   90,
		CleanupInterval: 24 * time.Hour,
		BufferSize:      1000,
		LogToStdout:     false,
	}
}

// Logger is the audit trail writer. Record never blocks and never
// returns an error to the caller; persistence trouble surfaces on the
// diagnostic log and the drop counter, not on the request path.
//
// A single writer goroutine applies the hash chain, so chain order is
// buffer order even when many requests record concurrently.
type Logger struct {
	config    *Config
	store     Store
	sinks     []Sink
	eventChan chan *Event
	stopChan  chan struct{}
	wg        sync.WaitGroup
	mu        sync.RWMutex

	// lastHash is owned by the writer goroutine after construction.
	lastHash string
}

// NewLogger creates an audit logger writing to store, with optional
// additional sinks that receive a copy of every event.
func NewLogger(store Store, config *Config, sinks ...Sink) *Logger {
	if config == nil {
		config = DefaultConfig()
	}

	l := &Logger{
		config:    config,
		store:     store,
		sinks:     sinks,
		eventChan: make(chan *Event, config.BufferSize),
		stopChan:  make(chan struct{}),
	}

	l.wg.Add(1)
	go l.asyncWriter()

	return l
}

// Record accepts an event for asynchronous writing. Missing IDs and
// timestamps are filled in; a full buffer drops the event with a
// diagnostic warning rather than blocking the operation that produced it.
func (l *Logger) Record(event *Event) {
	l.mu.RLock()
	enabled := l.config.Enabled
	recordDenials := l.config.RecordDenials
	l.mu.RUnlock()

	if !enabled {
		return
	}
	if event.Outcome == OutcomeDenied && !recordDenials {
		return
	}

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	select {
	case l.eventChan <- event:
		eventsTotal.WithLabelValues(string(event.Outcome)).Inc()
	default:
		droppedTotal.Inc()
		logging.Warn().
			Str("event_id", event.ID).
			Str("entity_type", event.EntityType).
			Msg("Audit event buffer full, dropping event")
	}
}

// RecordOperation builds and records an event for one guarded operation.
// Field names are recorded, field values are not.
func (l *Logger) RecordOperation(ctx context.Context, actor *models.Actor, op models.Operation, entityType, entityID string, outcome Outcome, errMessage string, fields []string, sensitive bool) {
	roles := make([]string, len(actor.Roles))
	for i, role := range actor.Roles {
		roles[i] = string(role)
	}

	l.Record(&Event{
		Operation:  op,
		EntityType: entityType,
		EntityID:   entityID,
		Outcome:    outcome,
		Actor: Actor{
			ID:      actor.ID,
			Roles:   roles,
			IsAdmin: actor.IsAdmin,
		},
		ErrorMessage:     errMessage,
		Fields:           fields,
		SensitiveTouched: sensitive,
		RequestID:        logging.RequestIDFromContext(ctx),
	})
}

// asyncWriter chains and persists events from the buffer.
func (l *Logger) asyncWriter() {
	defer l.wg.Done()

	for {
		select {
		case <-l.stopChan:
			// Drain remaining events
			for {
				select {
				case event := <-l.eventChan:
					l.writeEvent(event)
				default:
					return
				}
			}
		case event := <-l.eventChan:
			l.writeEvent(event)
		}
	}
}

// writeEvent links the event into the hash chain and saves it to the
// store and every sink. Sink failures are independent; one broken
// destination does not starve the others.
func (l *Logger) writeEvent(event *Event) {
	event.PrevHash = l.lastHash
	event.Hash = ComputeHash(event, event.PrevHash)
	l.lastHash = event.Hash

	l.mu.RLock()
	toStdout := l.config.LogToStdout
	l.mu.RUnlock()

	if toStdout {
		l.logToStdout(event)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if l.store != nil {
		if err := l.store.Save(ctx, event); err != nil {
			writeFailuresTotal.WithLabelValues("store").Inc()
			logging.Error().Err(err).Str("event_id", event.ID).Msg("Failed to save audit event")
		}
	}
	for _, sink := range l.sinks {
		if err := sink.Save(ctx, event); err != nil {
			writeFailuresTotal.WithLabelValues("sink").Inc()
			logging.Error().Err(err).Str("event_id", event.ID).Msg("Failed to forward audit event")
		}
	}
}

// logToStdout writes an event to the diagnostic log in JSON form.
func (l *Logger) logToStdout(event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal audit event")
		return
	}
	logging.Info().RawJSON("event", data).Msg("Audit event")
}

// Close shuts down the logger, draining buffered events first.
func (l *Logger) Close() error {
	close(l.stopChan)
	l.wg.Wait()
	return nil
}

// Query retrieves events matching the filter.
func (l *Logger) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	return l.store.Query(ctx, filter)
}

// Count returns the number of events matching the filter.
func (l *Logger) Count(ctx context.Context, filter QueryFilter) (int64, error) {
	return l.store.Count(ctx, filter)
}

// SetEnabled enables or disables audit logging.
func (l *Logger) SetEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.config.Enabled = enabled
}

// Enabled returns whether audit logging is enabled.
func (l *Logger) Enabled() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.config.Enabled
}
