// Package errors provides the standardized error taxonomy for the intake service.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Dialogue responder (upstream GenAI) errors. These are the only hard
	// failures a turn can surface; the session is left untouched.
	ErrCodeUpstreamUnavailable ErrorCode = "UPSTREAM_UNAVAILABLE"
	ErrCodeUpstreamTimeout     ErrorCode = "UPSTREAM_TIMEOUT"

	// Platform resolution outcome that needs caller-side disambiguation.
	// Never a hard failure of a turn.
	ErrCodeAmbiguousPlatform ErrorCode = "AMBIGUOUS_PLATFORM"

	// Ticket materialization preconditions and persistence.
	ErrCodeIncompleteTicket   ErrorCode = "INCOMPLETE_TICKET"
	ErrCodeTicketInsertFailed ErrorCode = "TICKET_INSERT_FAILED"

	ErrCodeSessionNotFound ErrorCode = "SESSION_NOT_FOUND"

	ErrCodeCatalogInvalid ErrorCode = "CATALOG_INVALID"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Is lets errors.Is match two StandardErrors by code.
func (e *StandardError) Is(target error) bool {
	var std *StandardError
	if errors.As(target, &std) {
		return e.Code == std.Code
	}
	return false
}

// HTTPStatus maps an error code to the status the API layer should return.
func (e *StandardError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeUpstreamUnavailable, ErrCodeUpstreamTimeout:
		return http.StatusBadGateway
	case ErrCodeIncompleteTicket, ErrCodeCatalogInvalid:
		return http.StatusUnprocessableEntity
	case ErrCodeSessionNotFound, ErrCodeAmbiguousPlatform:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// CodeOf extracts the standardized code from any error, defaulting to INTERNAL_ERROR.
func CodeOf(err error) ErrorCode {
	var std *StandardError
	if errors.As(err, &std) {
		return std.Code
	}
	return "INTERNAL_ERROR"
}

// NewUpstreamUnavailableError marks a failed dialogue responder call. Retryable:
// the caller may resend the same message, the session was not mutated.
func NewUpstreamUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamUnavailable,
		Message:   "Dialogue responder unavailable for this turn",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamTimeoutError marks a dialogue responder call that ran out of time.
func NewUpstreamTimeoutError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamTimeout,
		Message:   "Dialogue responder timed out",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAmbiguousPlatformError carries ranked candidates for an unresolved platform
// string. Turns never fail on it; the suggest endpoint returns it when no
// candidate clears the floor.
func NewAmbiguousPlatformError(raw string, candidates []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAmbiguousPlatform,
		Message:   "Platform could not be resolved to a single catalog entry",
		Details:   fmt.Sprintf("input: %q", raw),
		Retryable: false,
		Metadata:  map[string]interface{}{"candidates": candidates},
		Timestamp: time.Now().UTC(),
	}
}

// NewIncompleteTicketError rejects ticket materialization while slots are missing.
func NewIncompleteTicketError(missing []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeIncompleteTicket,
		Message:   "Ticket cannot be created until all fields are confirmed",
		Details:   "missing: " + strings.Join(missing, ", "),
		Retryable: false,
		Metadata:  map[string]interface{}{"missingFields": missing},
		Timestamp: time.Now().UTC(),
	}
}

// NewTicketInsertFailedError creates a retryable ticket persistence error.
func NewTicketInsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTicketInsertFailed,
		Message:   "Ticket persistence failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionNotFoundError creates a non-retryable missing session error.
func NewSessionNotFoundError(sessionID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionNotFound,
		Message:   "Conversation session not found",
		Details:   fmt.Sprintf("sessionId: %s", sessionID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogInvalidError rejects a catalog payload that failed schema validation.
func NewCatalogInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogInvalid,
		Message:   "Platform catalog payload is invalid",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification delivery error.
// Notification failures are logged only, never propagated to the turn path.
func NewNotificationSendFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}
