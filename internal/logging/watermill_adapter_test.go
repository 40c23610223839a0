// Inkgate - Authorization and Audit Gateway for Content APIs
// Copyright 2026 Inkgate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/inkgate/inkgate

package logging

import (
	"errors"
	"strings"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
)

// =====================================================
// Tests
// =====================================================

func TestWatermillLogger_AllLevels(t *testing.T) {
	buf := captureOutput(t)
	wl := NewWatermillLogger()

	wl.Error("publish failed", errors.New("broker gone"), watermill.LogFields{"topic": "audit"})
	wl.Info("message published", nil)
	wl.Debug("subscriber polling", nil)
	wl.Trace("ack received", nil)

	out := buf.String()
	for _, want := range []string{
		`"level":"error"`, "publish failed", "broker gone", `"topic":"audit"`,
		`"level":"info"`, "message published",
		`"level":"debug"`, "subscriber polling",
		`"level":"trace"`, "ack received",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWatermillLogger_WithCarriesFields(t *testing.T) {
	buf := captureOutput(t)

	wl := NewWatermillLogger().With(watermill.LogFields{"component": "pubsub"})
	wl.Info("started", watermill.LogFields{"topic": "audit"})

	out := buf.String()
	if !strings.Contains(out, `"component":"pubsub"`) {
		t.Errorf("output missing persistent field:\n%s", out)
	}
	if !strings.Contains(out, `"topic":"audit"`) {
		t.Errorf("output missing per-message field:\n%s", out)
	}
}

func TestWatermillLogger_ImplementsAdapter(t *testing.T) {
	var _ watermill.LoggerAdapter = NewWatermillLogger()
}
