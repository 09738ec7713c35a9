package events

// Phase names a global lifecycle stage.
type Phase string

// Lifecycle phases in the order a session passes through them.
const (
	PhaseInitialize       Phase = "initialize"
	PhasePostInitialize   Phase = "post_initialize"
	PhaseStartSession     Phase = "start_session"
	PhasePostStartSession Phase = "post_start_session"
	PhaseEndSession       Phase = "end_session"
	PhaseDestroy          Phase = "destroy"
)

// PhaseCompleted is published after every component has finished a phase.
type PhaseCompleted struct {
	// Phase is the stage that just completed.
	Phase Phase

	// Components is the number of components that ran it.
	Components int
}

// PlayerInit is published once the primary component knows the player.
type PlayerInit struct {
	PlayerID   string
	PlayerName string
	GoldAmount int
}

// ConfigReloaded is published when the host re-reads its configuration file.
type ConfigReloaded struct {
	// Path is the file that changed.
	Path string

	// Err is set when the new file could not be applied; the previous
	// configuration stays in effect.
	Err error
}
