package protocol

import (
	"fmt"
	"time"
)

// RequestFailedError represents a non-2xx HTTP response from the backend.
// Detail carries the backend-supplied "detail" field when the body was
// parseable JSON, or a generic message otherwise. It enables typed error
// discrimination via errors.As.
type RequestFailedError struct {
	Status int
	Detail string
}

func (e *RequestFailedError) Error() string {
	return fmt.Sprintf("backend request failed (%d): %s", e.Status, e.Detail)
}

// TimeoutError reports that a backend call exceeded the client's own
// request timeout. It is distinct from cancellation or expiry of the
// caller's context, which pass through as plain context errors.
type TimeoutError struct {
	Path    string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("backend request to %s timed out after %s", e.Path, e.Timeout)
}

// StreamError represents an error-class SSE frame received mid-stream.
type StreamError struct {
	Message string
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("generation stream error: %s", e.Message)
}

// ProtocolError represents a backend response that matched none of the
// contracted shapes. It is treated like a request failure rather than
// ignored, so a misbehaving backend cannot leave the client stuck in a
// non-terminal state.
type ProtocolError struct {
	Detail string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol violation: %s", e.Detail)
}
