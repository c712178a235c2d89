// Package playback provides the queue sequencer that simulates playback with timers.
package playback

// State represents the playback state.
type State int

const (
	StateIdle    State = iota // Nothing playing (initial state, after stop or queue exhaustion)
	StatePlaying              // A song is playing
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	default:
		return "unknown"
	}
}
