// Inkgate - Authorization and Audit Gateway for Content APIs
// Copyright 2026 Inkgate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/inkgate/inkgate

package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/inkgate/inkgate/internal/audit"
	"github.com/inkgate/inkgate/internal/config"
	"github.com/inkgate/inkgate/internal/logging"
)

// auditComponents bundles everything the audit subsystem hands back to
// main: the trail logger, the queryable store, and cleanup hooks.
type auditComponents struct {
	trail     *audit.Logger
	store     audit.Store
	publisher message.Publisher
	db        *sql.DB
}

// initAudit builds the audit store, sinks, and trail logger from config.
func initAudit(ctx context.Context, cfg *config.Config) (*auditComponents, error) {
	components := &auditComponents{}

	switch cfg.Audit.Store {
	case "duckdb":
		db, err := sql.Open("duckdb", cfg.Audit.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit database: %w", err)
		}
		store := audit.NewDuckDBStore(db)
		if err := store.CreateTable(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to create audit schema: %w", err)
		}
		components.db = db
		components.store = store
		logging.Info().Str("path", cfg.Audit.DatabasePath).Msg("Audit trail persisted to DuckDB")

	case "memory":
		components.store = audit.NewMemoryStore(100000)
		logging.Info().Msg("Audit trail held in memory (events are lost on restart)")

	default:
		return nil, fmt.Errorf("unknown audit store %q", cfg.Audit.Store)
	}

	var sinks []audit.Sink

	if cfg.Audit.WebhookURL != "" {
		webhook := audit.NewWebhookSink(audit.DefaultWebhookSinkConfig(cfg.Audit.WebhookURL))
		sinks = append(sinks, webhook)
		logging.Info().Str("url", cfg.Audit.WebhookURL).Msg("Audit webhook sink enabled")
	}

	if cfg.Audit.PublishTopic != "" {
		pubsub := gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 256,
		}, logging.NewWatermillLogger())
		components.publisher = pubsub
		sinks = append(sinks, audit.NewPublisherSink(pubsub, cfg.Audit.PublishTopic))
		logging.Info().Str("topic", cfg.Audit.PublishTopic).Msg("Audit publisher sink enabled")
	}

	components.trail = audit.NewLogger(components.store, &audit.Config{
		Enabled:         cfg.Audit.Enabled,
		RecordDenials:   cfg.Audit.RecordDenials,
		RetentionDays:   cfg.Audit.RetentionDays,
		CleanupInterval: cfg.Audit.CleanupInterval,
		BufferSize:      cfg.Audit.BufferSize,
	}, sinks...)

	return components, nil
}

// close shuts the audit subsystem down in dependency order: logger
// first so its final events still reach the store and sinks.
func (c *auditComponents) close() {
	if c.trail != nil {
		if err := c.trail.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing audit logger")
		}
	}
	if c.publisher != nil {
		if err := c.publisher.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing audit publisher")
		}
	}
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing audit database")
		}
	}
}
