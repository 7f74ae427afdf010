package session

import (
	"errors"
	"fmt"
)

var (
	// ErrNoImage is returned when an operation needs a source image and none
	// has been uploaded.
	ErrNoImage = errors.New("session: please upload an image first")
	// ErrNotComposed is returned by edits, navigation and rendering before the
	// first successful generation.
	ErrNotComposed = errors.New("session: no poster has been generated yet")
	// ErrSuperseded is returned by a Generate call whose result was discarded
	// because a newer Generate or upload started while it was in flight.
	ErrSuperseded = errors.New("session: generation superseded by a newer request")

	errNoSuggester = errors.New("no suggestion service configured")
)

// ServiceError wraps a failure of the style-suggestion service. History is
// left unchanged and the caller may retry.
type ServiceError struct {
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("style suggestion failed, please try again: %v", e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// IsRetryable reports whether retrying Generate may succeed. Service
// failures always are.
func (e *ServiceError) IsRetryable() bool { return true }

// DecodeError is returned when uploaded bytes are not a supported image.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid image: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
