// Inkgate - Authorization and Audit Gateway for Content APIs
// Copyright 2026 Inkgate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/inkgate/inkgate

package audit

import (
	"errors"
	"testing"
	"time"

	"github.com/inkgate/inkgate/internal/models"
)

func chainedEvents(t *testing.T, n int) []Event {
	t.Helper()
	events := make([]Event, n)
	prev := ""
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	for i := range events {
		events[i] = Event{
			ID:         string(rune('a' + i)),
			Timestamp:  base.Add(time.Duration(i) * time.Second),
			Operation:  models.OpUpdate,
			EntityType: "post",
			EntityID:   "p1",
			Outcome:    OutcomeSuccess,
			Actor:      Actor{ID: "u1"},
			PrevHash:   prev,
		}
		events[i].Hash = ComputeHash(&events[i], prev)
		prev = events[i].Hash
	}
	return events
}

func TestComputeHash_Deterministic(t *testing.T) {
	events := chainedEvents(t, 1)
	if got := ComputeHash(&events[0], ""); got != events[0].Hash {
		t.Error("ComputeHash() is not deterministic")
	}
}

func TestComputeHash_SensitiveToPrevHash(t *testing.T) {
	events := chainedEvents(t, 1)
	if ComputeHash(&events[0], "") == ComputeHash(&events[0], "other") {
		t.Error("ComputeHash() ignores prev hash")
	}
}

func TestVerifyChain(t *testing.T) {
	t.Run("valid chain", func(t *testing.T) {
		if err := VerifyChain(chainedEvents(t, 5), ""); err != nil {
			t.Fatalf("VerifyChain() error = %v", err)
		}
	})

	t.Run("empty chain", func(t *testing.T) {
		if err := VerifyChain(nil, ""); err != nil {
			t.Fatalf("VerifyChain() error = %v", err)
		}
	})

	t.Run("tampered field", func(t *testing.T) {
		events := chainedEvents(t, 5)
		events[2].EntityID = "p2"

		err := VerifyChain(events, "")
		var chainErr *ChainError
		if !errors.As(err, &chainErr) {
			t.Fatalf("VerifyChain() error = %v, want *ChainError", err)
		}
		if chainErr.Index != 2 {
			t.Errorf("ChainError.Index = %d, want 2", chainErr.Index)
		}
	})

	t.Run("deleted event", func(t *testing.T) {
		events := chainedEvents(t, 5)
		spliced := append(events[:2:2], events[3:]...)

		if err := VerifyChain(spliced, ""); err == nil {
			t.Fatal("VerifyChain() = nil on a chain with a deleted event")
		}
	})

	t.Run("recomputed hash still breaks link", func(t *testing.T) {
		// An attacker rewriting one event and its hash invalidates the
		// next event's prev_hash.
		events := chainedEvents(t, 5)
		events[1].ErrorMessage = "scrubbed"
		events[1].Hash = ComputeHash(&events[1], events[1].PrevHash)

		if err := VerifyChain(events, ""); err == nil {
			t.Fatal("VerifyChain() = nil after mid-chain rewrite")
		}
	})

	t.Run("wrong seed", func(t *testing.T) {
		events := chainedEvents(t, 3)
		if err := VerifyChain(events, "bogus"); err == nil {
			t.Fatal("VerifyChain() = nil with wrong seed")
		}
	})
}
