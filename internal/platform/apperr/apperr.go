// Copyright (c) 2026 TopLivres. All rights reserved.
// Author: fleuronvilik

/*
Package apperr defines the centralized error handling framework for the
TopLivres client.

It provides a rich error type that bridges the gap between raw HTTP failures
and the notification layer.

Architecture:

  - AppError: A struct carrying a machine-readable Code, a user-facing
    message, the originating HTTP status, and optional field-level details.
  - Decoding: The API returns either a structured map {errors:{field:[msg]}}
    or a single {msg:"..."} fallback; both decode into one AppError.
  - Classification: Helpers (IsUnauthorized, IsForbidden) let callers branch
    on recovery policy without string matching.

Every error that leaves the API client is an [*AppError] so the UI layers
can rely on a single shape.
*/
package apperr

import (
	"errors"
	"net/http"
)

// AppError is the canonical error type for the TopLivres client.
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "UNAUTHORIZED").
	Code string `json:"code"`
	// Message is a human-readable description safe to surface to the user.
	Message string `json:"error"`
	// HTTPStatus is the HTTP status the server answered with, 0 when the
	// failure happened before any response (transport error).
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, kept for logging only.
	Cause error `json:"-"`
	// Details holds per-field validation failures from the API.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the user-facing message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Constructors

// Transport creates an AppError for a failure before any HTTP response
// (connection refused, DNS, context cancellation).
func Transport(cause error) *AppError {
	return &AppError{
		Code:    "TRANSPORT_ERROR",
		Message: "Request failed",
		Cause:   cause,
	}
}

// FromStatus creates an AppError classified by the HTTP response status.
// The message defaults to the status text when the server sent none.
func FromStatus(status int, message string) *AppError {
	if message == "" {
		message = http.StatusText(status)
	}
	return &AppError{
		Code:       codeForStatus(status),
		Message:    message,
		HTTPStatus: status,
	}
}

// Validation creates an AppError carrying per-field details.
func Validation(message string, details ...FieldError) *AppError {
	return &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// Unauthorized creates a 401-equivalent AppError.
func Unauthorized(message string) *AppError {
	return &AppError{
		Code:       "UNAUTHORIZED",
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Blocked creates an AppError for the server-signaled order-blocked
// rejection. It is special-cased by the order form: the persistent banner
// is updated instead of a transient toast.
func Blocked(message string) *AppError {
	return &AppError{
		Code:       "ORDER_BLOCKED",
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusConflict:
		return "CONFLICT"
	case http.StatusBadRequest:
		return "VALIDATION_ERROR"
	default:
		if status >= 500 {
			return "SERVER_ERROR"
		}
		return "REQUEST_FAILED"
	}
}

// # Helpers

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// IsUnauthorized reports whether err is a 401-classified AppError.
func IsUnauthorized(err error) bool {
	ae := As(err)
	return ae != nil && ae.HTTPStatus == http.StatusUnauthorized
}

// IsBlocked reports whether err is the server-signaled order-blocked
// rejection.
func IsBlocked(err error) bool {
	ae := As(err)
	return ae != nil && ae.Code == "ORDER_BLOCKED"
}
