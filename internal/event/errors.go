package event

import (
	"errors"
	"fmt"
)

// Sentinel errors for the event bus.
var (
	// ErrNilHandler is returned when a nil handler is provided.
	ErrNilHandler = errors.New("handler cannot be nil")

	// ErrSubscriptionNotFound is returned when a handle matches no subscription.
	ErrSubscriptionNotFound = errors.New("subscription not found")
)

// DispatchError reports the handler that stopped a dispatch.
type DispatchError struct {
	// Event is the payload type name.
	Event string

	// Index is the handler's position in the dispatch snapshot.
	Index int

	// Subscription identifies the failing handler.
	Subscription Subscription

	// Err is the handler's error.
	Err error
}

// Error implements the error interface.
func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch %s: handler %d (%s): %v", e.Event, e.Index, e.Subscription.ID(), e.Err)
}

// Unwrap returns the underlying error.
func (e *DispatchError) Unwrap() error {
	return e.Err
}
