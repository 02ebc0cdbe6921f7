// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument marks a request rejected before retrieval runs.
var ErrInvalidArgument = errors.New("invalid argument")

// GenerationError reports that the model was unavailable, failed, timed out
// or produced nothing usable.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// ValidationError reports normalized text that fails the final gate.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "generated post " + e.Reason
}

// Validation failure reasons.
const (
	ReasonTooShort = "too short"
	ReasonTooLong  = "too long"
	ReasonEmpty    = "empty"
)

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
