// Inkgate - Authorization and Audit Gateway for Content APIs
// Copyright 2026 Inkgate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/inkgate/inkgate

package validation

import (
	"fmt"
	"html"
	"sort"
	"strings"
)

// denylist holds the substrings that reject a string value outright.
// Matching is case-insensitive. The set covers script injection and the
// crude SQL tampering seen in drive-by scans; parameterized queries
// remain the real defense downstream.
var denylist = []string{
	"<script",
	"javascript:",
	"onload=",
	"onerror=",
	"drop table",
	"delete from",
}

// SanitizationError reports a rejected field. It names the matched
// denylist pattern, never the offending value; the denylist is static,
// so no request input reaches the error.
type SanitizationError struct {
	Field   string
	Pattern string
}

func (e *SanitizationError) Error() string {
	return fmt.Sprintf("dangerous input detected in field %s: %s", e.Field, e.Pattern)
}

// MissingFieldsError reports every required field that was absent or
// empty in one pass, so the caller can fix them all at once.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// Sanitizer scans operation payloads before they reach an executor.
// The zero value is not usable; construct with NewSanitizer.
type Sanitizer struct {
	patterns []string
}

// NewSanitizer creates a sanitizer with the default denylist.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{patterns: denylist}
}

// NewSanitizerWithPatterns creates a sanitizer with additional patterns
// on top of the default denylist. Extra patterns are lowercased; matching
// stays case-insensitive.
func NewSanitizerWithPatterns(extra ...string) *Sanitizer {
	patterns := make([]string, 0, len(denylist)+len(extra))
	patterns = append(patterns, denylist...)
	for _, p := range extra {
		patterns = append(patterns, strings.ToLower(p))
	}
	return &Sanitizer{patterns: patterns}
}

// Scan inspects every string value in the payload, including strings
// inside nested maps and slices, and returns a *SanitizationError for the
// first field whose value matches the denylist. Scanning short-circuits;
// one bad field is enough to reject the payload.
func (s *Sanitizer) Scan(payload map[string]any) error {
	for _, field := range sortedKeys(payload) {
		if pattern, bad := s.scanValue(payload[field]); bad {
			return &SanitizationError{Field: field, Pattern: pattern}
		}
	}
	return nil
}

// scanValue walks one payload value and reports the first matched
// pattern. Non-string scalars are always clean.
func (s *Sanitizer) scanValue(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return s.matches(v)
	case map[string]any:
		for _, nested := range v {
			if pattern, bad := s.scanValue(nested); bad {
				return pattern, true
			}
		}
	case []any:
		for _, nested := range v {
			if pattern, bad := s.scanValue(nested); bad {
				return pattern, true
			}
		}
	}
	return "", false
}

func (s *Sanitizer) matches(value string) (string, bool) {
	lowered := strings.ToLower(value)
	for _, pattern := range s.patterns {
		if strings.Contains(lowered, pattern) {
			return pattern, true
		}
	}
	return "", false
}

// RequireFields checks that every named field is present and non-falsy in
// the payload. Unlike Scan it does not short-circuit: the returned
// *MissingFieldsError lists every failing field, in the order required
// names them. A field fails when absent, nil, a blank string, false,
// numeric zero, or an empty collection.
func (s *Sanitizer) RequireFields(payload map[string]any, required ...string) error {
	var missing []string
	for _, field := range required {
		value, ok := payload[field]
		if !ok || isEmpty(value) {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}
	return nil
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case bool:
		return !v
	case int:
		return v == 0
	case int32:
		return v == 0
	case int64:
		return v == 0
	case float32:
		return v == 0
	case float64:
		// JSON numbers decode to float64.
		return v == 0
	case map[string]any:
		return len(v) == 0
	case []any:
		return len(v) == 0
	default:
		return false
	}
}

// Cleanse returns a copy of the payload with every string value
// HTML-escaped and whitespace-trimmed, recursing into nested maps and
// slices. Cleanse is a separate step from Scan: Scan rejects, Cleanse
// neutralizes what passed. The input map is never mutated.
func (s *Sanitizer) Cleanse(payload map[string]any) map[string]any {
	cleansed := make(map[string]any, len(payload))
	for field, value := range payload {
		cleansed[field] = cleanseValue(value)
	}
	return cleansed
}

func cleanseValue(value any) any {
	switch v := value.(type) {
	case string:
		return html.EscapeString(strings.TrimSpace(v))
	case map[string]any:
		nested := make(map[string]any, len(v))
		for key, inner := range v {
			nested[key] = cleanseValue(inner)
		}
		return nested
	case []any:
		nested := make([]any, len(v))
		for i, inner := range v {
			nested[i] = cleanseValue(inner)
		}
		return nested
	default:
		return v
	}
}

// sortedKeys makes Scan deterministic when several fields are bad; the
// reported field is the lexicographically first offender.
func sortedKeys(payload map[string]any) []string {
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
