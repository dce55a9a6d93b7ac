package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidRequest signals a request rejected before touching the index.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrIndexUnavailable signals that the index has not been built or loaded.
	// Retryable after an explicit rebuild.
	ErrIndexUnavailable = errors.New("index unavailable")
	// ErrRebuildInProgress signals that another rebuild holds the index writer.
	ErrRebuildInProgress = errors.New("index rebuild in progress")
	// ErrSourceUnavailable signals a metadata source failure.
	ErrSourceUnavailable = errors.New("metadata source unavailable")
	// ErrSynthesisFailure signals a failed or timed-out text generation call.
	ErrSynthesisFailure = errors.New("answer synthesis failed")
	// ErrMalformedSynthesisOutput signals answer text whose citation markers could not be parsed.
	ErrMalformedSynthesisOutput = errors.New("malformed synthesis output")
)

// InvalidRequestError wraps ErrInvalidRequest with the offending field.
type InvalidRequestError struct {
	Field  string
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidRequest.Error(), e.Field, e.Reason)
}

func (e *InvalidRequestError) Unwrap() error { return ErrInvalidRequest }

// NewInvalidRequest creates an invalid request error for a field.
func NewInvalidRequest(field, reason string) error {
	return &InvalidRequestError{Field: field, Reason: reason}
}
