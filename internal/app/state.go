package app

// State is the lifecycle state of a Runtime.
type State int

const (
	// StateUninitialized is the state before the first Create.
	StateUninitialized State = iota
	// StateCreated means components exist but have not initialized.
	StateCreated
	// StateInitialized means Initialize and PostInitialize completed.
	StateInitialized
	// StateSessionActive means StartSession and PostStartSession completed.
	StateSessionActive
	// StateSessionEnded means EndSession completed. A new session may start.
	StateSessionEnded
	// StateFailed means a phase failed. Only Destroy is allowed.
	StateFailed
	// StateDestroyed means the session was torn down. Create may start a new one.
	StateDestroyed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateCreated:
		return "created"
	case StateInitialized:
		return "initialized"
	case StateSessionActive:
		return "session-active"
	case StateSessionEnded:
		return "session-ended"
	case StateFailed:
		return "failed"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// HasSession reports whether components are alive in this state.
func (s State) HasSession() bool {
	switch s {
	case StateUninitialized, StateDestroyed:
		return false
	default:
		return true
	}
}
