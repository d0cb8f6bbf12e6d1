package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrHTTPStatus matches any *HTTPStatusError via errors.Is.
	ErrHTTPStatus = errors.New("non-success http status")

	// ErrTransport matches any *TransportError via errors.Is.
	ErrTransport = errors.New("transport failure")

	// ErrDecode matches any *DecodeError via errors.Is.
	ErrDecode = errors.New("decode failure")

	// ErrValidation matches any *ValidationError via errors.Is.
	ErrValidation = errors.New("invalid request")
)

// HTTPStatusError is returned when the service answers with a status other
// than 200. Body holds the raw response body text.
type HTTPStatusError struct {
	Code int
	Body string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("http status %d: %s", e.Code, e.Body)
}

func (e *HTTPStatusError) Is(target error) bool {
	return target == ErrHTTPStatus
}

// TransportError wraps a connection failure, timeout or premature close.
// It is terminal for the call that produced it.
type TransportError struct {
	// Op names the step that failed (e.g. "sending request", "reading stream").
	Op    string
	Cause error

	// timedOut is set when the failure was caused by an idle or request timeout
	// that the cause itself does not report.
	timedOut bool
}

// NewTransportError wraps cause as a TransportError for the given operation.
func NewTransportError(op string, cause error) *TransportError {
	return &TransportError{Op: op, Cause: cause}
}

// NewTimeoutError wraps cause as a TransportError that reports Timeout.
func NewTimeoutError(op string, cause error) *TransportError {
	return &TransportError{Op: op, Cause: cause, timedOut: true}
}

func (e *TransportError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("transport: %v", e.Cause)
	}
	return fmt.Sprintf("transport: %s: %v", e.Op, e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// Timeout reports whether the failure was a timeout.
func (e *TransportError) Timeout() bool {
	if e.timedOut {
		return true
	}
	if errors.Is(e.Cause, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Cause, &netErr) && netErr.Timeout()
}

// DecodeError reports a payload that could not be parsed as JSON. In a
// stream it describes a single frame and does not end the stream.
type DecodeError struct {
	RawPayload string

	// Offset is the byte offset of the frame's line in the stream, or -1 for
	// single-shot bodies.
	Offset int64
	Cause  error
}

func (e *DecodeError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("decode payload at offset %d: %v", e.Offset, e.Cause)
	}
	return fmt.Sprintf("decode payload: %v", e.Cause)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// ValidationError is raised before any network call when a request is
// missing a required field or names an unsupported model.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError returns a ValidationError for field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid request: " + e.Reason
	}
	return fmt.Sprintf("invalid request: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
