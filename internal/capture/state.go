package capture

// State names a phase of the capture lifecycle.
type State string

const (
	// StateIdle means no session has run yet.
	StateIdle State = "idle"
	// StateRequesting means device access is being verified and the
	// recorder process is being spawned.
	StateRequesting State = "requesting"
	// StateRecording means the recorder process is running.
	StateRecording State = "recording"
	// StateFinalizing means the recorder is being stopped and its output
	// encoded.
	StateFinalizing State = "finalizing"
	// StateReady means a finished payload is held for the next compose.
	StateReady State = "ready"
	// StateFailed means the last session ended in an error. A new toggle
	// starts over.
	StateFailed State = "failed"
)

// canStart reports whether a toggle in the given state begins a new
// session. Requesting and Finalizing are transient and reject toggles;
// Recording stops instead of starting.
func canStart(s State) bool {
	switch s {
	case StateIdle, StateReady, StateFailed:
		return true
	default:
		return false
	}
}
