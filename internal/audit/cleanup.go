// Inkgate - Authorization and Audit Gateway for Content APIs
// Copyright 2026 Inkgate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/inkgate/inkgate

package audit

import (
	"context"
	"time"

	"github.com/inkgate/inkgate/internal/logging"
)

// CleanupService periodically deletes events past the retention window.
// It implements suture.Service so the supervision tree restarts it if a
// cleanup pass panics or the store misbehaves.
type CleanupService struct {
	store     Store
	interval  time.Duration
	retention time.Duration
}

// NewCleanupService creates a retention cleanup service.
func NewCleanupService(store Store, interval time.Duration, retentionDays int) *CleanupService {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	if retentionDays <= 0 {
		retentionDays = 90
	}
	return &CleanupService{
		store:     store,
		interval:  interval,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
	}
}

// Serve runs cleanup passes until the context is canceled.
func (c *CleanupService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.runOnce(ctx)
		}
	}
}

func (c *CleanupService) runOnce(ctx context.Context) {
	cutoff := time.Now().Add(-c.retention)
	count, err := c.store.Delete(ctx, cutoff)
	if err != nil {
		logging.Error().Err(err).Msg("Audit cleanup error")
		return
	}
	if count > 0 {
		logging.Info().Int64("count", count).Msg("Cleaned up expired audit events")
	}
}

// String names the service in supervisor logs.
func (c *CleanupService) String() string {
	return "audit-cleanup"
}
