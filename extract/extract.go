// Package extract defines the contract with the external address
// extraction service: given image bytes and a media type, return the
// ordered list of address strings found in the image.
//
// The queue treats the service as asynchronous and fallible. It imposes
// no contract on the service's own retry or backoff behaviour.
package extract

import (
	"context"
	"fmt"
)

// Service extracts address strings from an image payload. An empty
// result is a valid success. Implementations should honour ctx
// cancellation; the queue may attach a deadline.
type Service interface {
	Extract(ctx context.Context, payload []byte, mediaType string) ([]string, error)
}

// Func adapts an ordinary function to the Service interface.
type Func func(ctx context.Context, payload []byte, mediaType string) ([]string, error)

// Extract implements Service.
func (f Func) Extract(ctx context.Context, payload []byte, mediaType string) ([]string, error) {
	return f(ctx, payload, mediaType)
}

// Kind classifies an extraction failure.
type Kind string

const (
	// KindUnreadable means the service could not decode the payload.
	KindUnreadable Kind = "unreadable"
	// KindUnavailable means the service could not be reached or refused
	// the request.
	KindUnavailable Kind = "unavailable"
	// KindInternal means the service accepted the request but failed
	// while processing it.
	KindInternal Kind = "internal"
)

// Error is a classified extraction failure.
type Error struct {
	Kind    Kind
	Message string
}

// NewError creates a classified extraction error.
func NewError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("extract: %s: %s", e.Kind, e.Message)
}
