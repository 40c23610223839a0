// Inkgate - Authorization and Audit Gateway for Content APIs
// Copyright 2026 Inkgate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/inkgate/inkgate

package audit

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
)

// PublisherSink forwards audit events to a message broker through a
// Watermill publisher. Chain hashes travel with the event, so a
// downstream consumer can verify integrity independently of the primary
// store.
type PublisherSink struct {
	publisher message.Publisher
	topic     string
	mu        sync.RWMutex
	closed    bool
}

// NewPublisherSink creates a sink publishing events on the given topic.
func NewPublisherSink(publisher message.Publisher, topic string) *PublisherSink {
	return &PublisherSink{
		publisher: publisher,
		topic:     topic,
	}
}

// Save marshals the event to JSON and publishes it. The message UUID is
// the event ID so brokers with deduplication drop replays.
func (p *PublisherSink) Save(ctx context.Context, event *Event) error {
	p.mu.RLock()
	closed := p.closed
	p.mu.RUnlock()
	if closed {
		return fmt.Errorf("publisher sink is closed")
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	msgID := event.ID
	if msgID == "" {
		msgID = watermill.NewUUID()
	}
	msg := message.NewMessage(msgID, payload)
	msg.Metadata.Set("entity_type", event.EntityType)
	msg.Metadata.Set("operation", string(event.Operation))
	msg.SetContext(ctx)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("publish audit event: %w", err)
	}
	return nil
}

// Close marks the sink closed and closes the underlying publisher.
func (p *PublisherSink) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	return p.publisher.Close()
}

// WebhookSinkConfig configures a WebhookSink.
type WebhookSinkConfig struct {
	// URL receives a POST per event with a JSON body.
	URL string

	// Timeout bounds each delivery attempt.
	Timeout time.Duration

	// FailureThreshold is the number of consecutive failures that opens
	// the circuit.
	FailureThreshold uint32

	// OpenTimeout is how long the circuit stays open before probing.
	OpenTimeout time.Duration
}

// DefaultWebhookSinkConfig returns sensible defaults for url.
func DefaultWebhookSinkConfig(url string) WebhookSinkConfig {
	return WebhookSinkConfig{
		URL:              url,
		Timeout:          5 * time.Second,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
	}
}

// WebhookSink delivers audit events to an external collector over HTTP.
// A circuit breaker stops hammering a dead collector; while the circuit
// is open, Save fails fast and the logger records the write failure on
// the diagnostic log.
type WebhookSink struct {
	config  WebhookSinkConfig
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[interface{}]
}

// NewWebhookSink creates a webhook sink for the configured collector.
func NewWebhookSink(config WebhookSinkConfig) *WebhookSink {
	settings := gobreaker.Settings{
		Name:    "audit-webhook",
		Timeout: config.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.FailureThreshold
		},
	}

	return &WebhookSink{
		config:  config,
		client:  &http.Client{Timeout: config.Timeout},
		breaker: gobreaker.NewCircuitBreaker[interface{}](settings),
	}
}

// Save posts the event to the collector through the circuit breaker.
func (w *WebhookSink) Save(ctx context.Context, event *Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	_, err = w.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.config.URL, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := w.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			return nil, fmt.Errorf("collector returned status %d", resp.StatusCode)
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("deliver audit event: %w", err)
	}
	return nil
}

// State returns the breaker state for monitoring.
func (w *WebhookSink) State() string {
	return w.breaker.State().String()
}
