// Inkgate - Authorization and Audit Gateway for Content APIs
// Copyright 2026 Inkgate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/inkgate/inkgate

package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// ChainError reports where a hash chain verification failed.
type ChainError struct {
	Index   int
	EventID string
	Reason  string
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("audit chain broken at event %d (%s): %s", e.Index, e.EventID, e.Reason)
}

// ComputeHash returns the SHA-256 hash of the event's identifying fields
// plus the previous event's hash. The covered fields are fixed; adding a
// field to Event does not silently change existing chains.
func ComputeHash(event *Event, prevHash string) string {
	canonical := strings.Join([]string{
		event.ID,
		event.Timestamp.UTC().Format(time.RFC3339Nano),
		string(event.Operation),
		event.EntityType,
		event.EntityID,
		string(event.Outcome),
		event.Actor.ID,
		event.ErrorMessage,
		prevHash,
	}, "\x1f")

	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// VerifyChain checks a sequence of events in write order. It verifies
// that each event's Hash matches its contents and that each PrevHash
// matches the preceding event's Hash. The first event's PrevHash must
// match seed (empty for a chain verified from its start).
func VerifyChain(events []Event, seed string) error {
	prev := seed
	for i := range events {
		event := &events[i]
		if event.PrevHash != prev {
			return &ChainError{Index: i, EventID: event.ID, Reason: "prev_hash does not match preceding event"}
		}
		if got := ComputeHash(event, event.PrevHash); got != event.Hash {
			return &ChainError{Index: i, EventID: event.ID, Reason: "hash does not match event contents"}
		}
		prev = event.Hash
	}
	return nil
}
