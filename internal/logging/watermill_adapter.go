// Inkgate - Authorization and Audit Gateway for Content APIs
// Copyright 2026 Inkgate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/inkgate/inkgate

package logging

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

// WatermillLogger adapts the global zerolog logger to watermill's
// LoggerAdapter so publisher internals log through the same pipeline.
type WatermillLogger struct {
	fields watermill.LogFields
}

// NewWatermillLogger creates a watermill logger backed by the global
// zerolog logger.
func NewWatermillLogger() *WatermillLogger {
	return &WatermillLogger{}
}

// Error implements watermill.LoggerAdapter.
func (l *WatermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	lg := Logger()
	l.emit(lg.Error().Err(err), fields, msg)
}

// Info implements watermill.LoggerAdapter.
func (l *WatermillLogger) Info(msg string, fields watermill.LogFields) {
	lg := Logger()
	l.emit(lg.Info(), fields, msg)
}

// Debug implements watermill.LoggerAdapter.
func (l *WatermillLogger) Debug(msg string, fields watermill.LogFields) {
	lg := Logger()
	l.emit(lg.Debug(), fields, msg)
}

// Trace implements watermill.LoggerAdapter.
func (l *WatermillLogger) Trace(msg string, fields watermill.LogFields) {
	lg := Logger()
	l.emit(lg.Trace(), fields, msg)
}

// With implements watermill.LoggerAdapter. The returned logger carries
// the merged fields on every message.
func (l *WatermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &WatermillLogger{fields: l.fields.Add(fields)}
}

func (l *WatermillLogger) emit(event *zerolog.Event, fields watermill.LogFields, msg string) {
	for k, v := range l.fields {
		event = event.Interface(k, v)
	}
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	event.Msg(msg)
}
