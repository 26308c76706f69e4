package engine

import (
	"errors"
	"fmt"
)

// TickPhase names the step of a tick that failed.
type TickPhase string

const (
	// PhaseRead means the snapshot read failed and the tick was skipped.
	PhaseRead TickPhase = "read"

	// PhaseCommit means the batch was rolled back.
	PhaseCommit TickPhase = "commit"
)

// TickError reports a failed tick. Nothing was written in either phase.
type TickError struct {
	// Phase identifies where the tick stopped.
	Phase TickPhase

	// TickID correlates the error with the tick's log lines.
	TickID string

	// Err is the underlying store or gate error.
	Err error
}

// Error implements the error interface.
func (e *TickError) Error() string {
	return fmt.Sprintf("tick %s failed (tick=%s): %v", e.Phase, e.TickID, e.Err)
}

// Unwrap returns the underlying error.
func (e *TickError) Unwrap() error {
	return e.Err
}

// IsReadError reports whether err is a tick skipped on its snapshot read.
// Uses errors.As to handle wrapped errors.
func IsReadError(err error) bool {
	var te *TickError
	if errors.As(err, &te) {
		return te.Phase == PhaseRead
	}
	return false
}

// IsCommitError reports whether err is a tick whose batch was rolled back.
func IsCommitError(err error) bool {
	var te *TickError
	if errors.As(err, &te) {
		return te.Phase == PhaseCommit
	}
	return false
}
