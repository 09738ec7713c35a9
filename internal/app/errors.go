package app

import (
	"errors"
	"fmt"

	"github.com/biruisred/IdleGear/internal/event/events"
)

// Runtime errors.
var (
	// ErrInvalidState indicates an operation that the current state does not allow.
	ErrInvalidState = errors.New("invalid runtime state")

	// ErrNoSession indicates that no session has been created.
	ErrNoSession = errors.New("no active session")
)

// StateError reports an operation attempted in the wrong state.
type StateError struct {
	Op    string // Operation name (e.g., "initialize")
	State State  // State at the time of the call
	Busy  string // Phase in flight, if any
}

func (e *StateError) Error() string {
	if e.Busy != "" {
		return fmt.Sprintf("%s: phase %s still running", e.Op, e.Busy)
	}
	return fmt.Sprintf("%s: not allowed in state %s", e.Op, e.State)
}

// Is matches ErrInvalidState.
func (e *StateError) Is(target error) bool {
	return target == ErrInvalidState
}

// PhaseError reports the component whose hook failed a phase. After a
// PhaseError the session can only be destroyed.
type PhaseError struct {
	Phase     events.Phase
	Component string
	Err       error
}

func (e *PhaseError) Error() string {
	if e.Component == "" {
		return fmt.Sprintf("%s: %v", e.Phase, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Phase, e.Component, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}
