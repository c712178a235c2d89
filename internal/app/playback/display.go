package playback

import "github.com/osa030/songqueue/internal/domain/song"

// Display receives sequencer notifications.
// Implementations must not call back into the sequencer synchronously
// from within a notification if they hold locks of their own.
type Display interface {
	// OnNowPlayingChanged is called with the new song name, or "" when playback stops.
	OnNowPlayingChanged(name string)
	// OnUserError reports an invalid user action (e.g. nothing selected).
	OnUserError(message string)
	// OnQueueExhausted is called once when playback ran out of queued songs.
	OnQueueExhausted()
	// OnQueueChanged is called with a snapshot of the queue after it changed.
	OnQueueChanged(entries []song.QueueEntry)
}

// NopDisplay discards all notifications.
type NopDisplay struct{}

func (NopDisplay) OnNowPlayingChanged(string)       {}
func (NopDisplay) OnUserError(string)               {}
func (NopDisplay) OnQueueExhausted()                {}
func (NopDisplay) OnQueueChanged([]song.QueueEntry) {}

var _ Display = NopDisplay{}
