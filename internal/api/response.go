// Inkgate - Authorization and Audit Gateway for Content APIs
// Copyright 2026 Inkgate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/inkgate/inkgate

// Package api provides standardized API response handling.
// All endpoints use the models.APIResponse envelope.
package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/inkgate/inkgate/internal/logging"
	"github.com/inkgate/inkgate/internal/models"
)

// Error codes for API responses
const (
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeAuthRequired     = "AUTHENTICATION_REQUIRED"
	ErrCodeInsufficientRole = "INSUFFICIENT_ROLE"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeValidationFailed = "VALIDATION_ERROR"
	ErrCodeUnregisteredType = "UNREGISTERED_TYPE"
	ErrCodeExecutionFailed  = "EXECUTION_ERROR"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// Response status values
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ResponseWriter provides methods for writing standardized API responses.
type ResponseWriter struct {
	w         http.ResponseWriter
	r         *http.Request
	startTime time.Time

	// entityType and operation, when set, are echoed in the response
	// metadata so clients can correlate without re-parsing the URL.
	entityType string
	operation  string
}

// NewResponseWriter creates a new response writer.
func NewResponseWriter(w http.ResponseWriter, r *http.Request) *ResponseWriter {
	return &ResponseWriter{
		w:         w,
		r:         r,
		startTime: time.Now(),
	}
}

// WithOperation tags the response metadata with the entity type and
// operation being performed.
func (rw *ResponseWriter) WithOperation(entityType, operation string) *ResponseWriter {
	rw.entityType = entityType
	rw.operation = operation
	return rw
}

// Success writes a 200 response with data.
func (rw *ResponseWriter) Success(data any) {
	response := models.APIResponse{
		Status:   StatusSuccess,
		Data:     data,
		Metadata: rw.metadata(),
	}

	rw.writeJSON(http.StatusOK, response)
}

// Error writes an error response with the given status code.
func (rw *ResponseWriter) Error(statusCode int, code, message string) {
	rw.ErrorWithDetails(statusCode, code, message, nil)
}

// ErrorWithDetails writes an error response with additional details.
func (rw *ResponseWriter) ErrorWithDetails(statusCode int, code, message string, details map[string]any) {
	rw.WriteAPIError(statusCode, &models.APIError{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// WriteAPIError writes a prebuilt API error, such as one produced by the
// validation package.
func (rw *ResponseWriter) WriteAPIError(statusCode int, apiErr *models.APIError) {
	response := models.APIResponse{
		Status:   StatusError,
		Error:    apiErr,
		Metadata: rw.metadata(),
	}

	rw.writeJSON(statusCode, response)
}

// BadRequest writes a 400 Bad Request error.
func (rw *ResponseWriter) BadRequest(message string) {
	rw.Error(http.StatusBadRequest, ErrCodeBadRequest, message)
}

// Unauthorized writes a 401 Unauthorized error.
func (rw *ResponseWriter) Unauthorized(message string) {
	rw.Error(http.StatusUnauthorized, ErrCodeAuthRequired, message)
}

// Forbidden writes a 403 Forbidden error.
func (rw *ResponseWriter) Forbidden(message string) {
	rw.Error(http.StatusForbidden, ErrCodeInsufficientRole, message)
}

// NotFound writes a 404 Not Found error.
func (rw *ResponseWriter) NotFound(message string) {
	rw.Error(http.StatusNotFound, ErrCodeNotFound, message)
}

// InternalError writes a 500 Internal Server Error.
func (rw *ResponseWriter) InternalError(message string) {
	rw.Error(http.StatusInternalServerError, ErrCodeInternalError, message)
}

// metadata builds the response metadata block.
func (rw *ResponseWriter) metadata() models.Metadata {
	return models.Metadata{
		Timestamp:  time.Now().UTC(),
		ElapsedMS:  time.Since(rw.startTime).Milliseconds(),
		EntityType: rw.entityType,
		Operation:  rw.operation,
		RequestID:  logging.RequestIDFromContext(rw.r.Context()),
	}
}

// writeJSON writes a JSON response with proper headers.
func (rw *ResponseWriter) writeJSON(statusCode int, data any) {
	rw.w.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.w.WriteHeader(statusCode)

	if err := json.NewEncoder(rw.w).Encode(data); err != nil {
		logging.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// WriteSuccess is a convenience function for writing success responses.
func WriteSuccess(w http.ResponseWriter, r *http.Request, data any) {
	NewResponseWriter(w, r).Success(data)
}

// WriteError is a convenience function for writing error responses.
func WriteError(w http.ResponseWriter, r *http.Request, statusCode int, code, message string) {
	NewResponseWriter(w, r).Error(statusCode, code, message)
}
