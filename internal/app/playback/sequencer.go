package playback

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/songqueue/internal/domain/song"
)

// Errors
var (
	ErrInvalidSelection = errors.New("no song selected")
	ErrNotPlaying       = errors.New("not playing")
)

// Messages holds the user-facing texts for invalid selections.
type Messages struct {
	PlayNoSelection    string
	EnqueueNoSelection string
}

// Config holds sequencer configuration.
type Config struct {
	Scheduler Scheduler // Defaults to WallClockScheduler
	TimeScale float64   // Multiplier applied to song durations (<= 0 means 1)
	Messages  Messages
}

// notice is a pending Display notification, delivered after the lock is released.
type notice func(Display)

// Sequencer owns the play queue and the currently playing song, and advances
// playback when a song's simulated duration elapses.
type Sequencer struct {
	// opMu serializes operations together with their notifications so that
	// displays observe changes in the order they happened. mu guards state.
	opMu sync.Mutex
	mu   sync.Mutex

	// Queue management
	queue  []song.QueueEntry // Songs waiting to be played, head first
	played []song.QueueEntry // Songs that finished, were replaced or were skipped

	// Current song state
	current   *song.QueueEntry
	state     State
	startTime time.Time
	length    time.Duration // Scaled duration of the current song

	// Timer
	generation  uint64 // Incremented whenever the pending timer is invalidated
	timerCancel func()

	config  Config
	display Display
	closed  bool
}

// NewSequencer creates an idle sequencer that reports to display.
func NewSequencer(config Config, display Display) *Sequencer {
	if config.Scheduler == nil {
		config.Scheduler = WallClockScheduler{}
	}
	if config.TimeScale <= 0 {
		config.TimeScale = 1
	}
	if display == nil {
		display = NopDisplay{}
	}
	return &Sequencer{
		queue:   make([]song.QueueEntry, 0),
		played:  make([]song.QueueEntry, 0),
		state:   StateIdle,
		config:  config,
		display: display,
	}
}

// Enqueue appends s to the tail of the queue.
// A nil song reports an invalid selection to the display and leaves the queue untouched.
func (c *Sequencer) Enqueue(s *song.Song) (song.QueueEntry, error) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	if s == nil {
		c.notify(userError(c.config.Messages.EnqueueNoSelection))
		return song.QueueEntry{}, ErrInvalidSelection
	}

	c.mu.Lock()
	entry := song.NewQueueEntry(*s)
	c.queue = append(c.queue, entry)
	zlog.Debug().Msgf("playback: enqueued: song=%s entry=%s queue_size=%d", s.Name, entry.EntryID, len(c.queue))
	notes := []notice{c.queueChangedLocked()}
	c.mu.Unlock()

	c.notify(notes...)
	return entry, nil
}

// Play starts playing s immediately, replacing whatever is playing.
// If s is queued, its first queue entry leaves the queue now.
// A nil song reports an invalid selection to the display and changes nothing.
func (c *Sequencer) Play(s *song.Song) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	if s == nil {
		c.notify(userError(c.config.Messages.PlayNoSelection))
		return ErrInvalidSelection
	}

	c.mu.Lock()
	var notes []notice

	entry, ok := c.removeQueuedLocked(s.ID)
	if ok {
		notes = append(notes, c.queueChangedLocked())
	} else {
		entry = song.NewQueueEntry(*s)
	}

	if c.current != nil {
		c.played = append(c.played, *c.current)
	}
	notes = append(notes, c.startLocked(entry))
	c.mu.Unlock()

	c.notify(notes...)
	return nil
}

// Stop cancels the pending timer and returns to idle.
// Calling Stop while idle does nothing.
func (c *Sequencer) Stop() {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	if c.state == StateIdle {
		c.mu.Unlock()
		return
	}

	zlog.Debug().Msgf("playback: stopped: song=%s", c.current.Song.Name)
	c.cancelTimerLocked()
	c.current = nil
	c.state = StateIdle
	c.length = 0
	c.startTime = time.Time{}
	c.mu.Unlock()

	c.notify(nowPlaying(""))
}

// Skip ends the current song now and advances as if its timer had elapsed.
func (c *Sequencer) Skip() error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	if c.state != StatePlaying {
		c.mu.Unlock()
		return ErrNotPlaying
	}
	zlog.Debug().Msgf("playback: skipped: song=%s", c.current.Song.Name)
	notes := c.advanceLocked()
	c.mu.Unlock()

	c.notify(notes...)
	return nil
}

// ClearQueue removes all queued songs and returns them.
func (c *Sequencer) ClearQueue() []song.QueueEntry {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	removed := c.queue
	c.queue = make([]song.QueueEntry, 0)
	notes := []notice{c.queueChangedLocked()}
	c.mu.Unlock()

	c.notify(notes...)
	return removed
}

// State returns the current playback state.
func (c *Sequencer) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CurrentSong returns the currently playing song.
func (c *Sequencer) CurrentSong() (song.Song, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return song.Song{}, false
	}
	return c.current.Song, true
}

// Queue returns a copy of the queued entries, head first.
func (c *Sequencer) Queue() []song.QueueEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make([]song.QueueEntry, len(c.queue))
	copy(result, c.queue)
	return result
}

// History returns a copy of the entries that have left playback, oldest first.
func (c *Sequencer) History() []song.QueueEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make([]song.QueueEntry, len(c.played))
	copy(result, c.played)
	return result
}

// Remaining returns the simulated time left for the current song.
func (c *Sequencer) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return 0
	}
	remaining := c.length - toWallTime(time.Now()).Sub(c.startTime)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// QueuedDuration returns the total (unscaled) duration of all queued songs.
func (c *Sequencer) QueuedDuration() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total time.Duration
	for _, e := range c.queue {
		total += e.Song.Duration
	}
	return total
}

// Close stops playback. Timers that fire afterwards are ignored.
func (c *Sequencer) Close() {
	c.Stop()

	c.opMu.Lock()
	defer c.opMu.Unlock()
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

// onTimerElapsed is called by the scheduler when a song's duration has passed.
// Firings from an invalidated timer are discarded.
func (c *Sequencer) onTimerElapsed(generation uint64) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	if c.closed || generation != c.generation || c.state != StatePlaying {
		c.mu.Unlock()
		zlog.Debug().Msgf("playback: discarding stale timer: generation=%d", generation)
		return
	}

	elapsed := toWallTime(time.Now()).Sub(c.startTime)
	zlog.Debug().Msgf("playback: song ended: song=%s expected=%v actual=%v",
		c.current.Song.Name, c.length, elapsed)
	notes := c.advanceLocked()
	c.mu.Unlock()

	c.notify(notes...)
}

// removeQueuedLocked takes the first queue entry for songID out of the queue.
// Must be called with lock held.
func (c *Sequencer) removeQueuedLocked(songID int) (song.QueueEntry, bool) {
	for i, e := range c.queue {
		if e.Song.ID == songID {
			c.queue = append(c.queue[:i:i], c.queue[i+1:]...)
			return e, true
		}
	}
	return song.QueueEntry{}, false
}

// advanceLocked retires the current song and plays the queue head, or goes idle
// when the queue is empty. A copy of the finished song queued while it was
// playing is dropped first.
// Must be called with lock held.
func (c *Sequencer) advanceLocked() []notice {
	c.cancelTimerLocked()
	finished := *c.current
	c.played = append(c.played, finished)
	c.current = nil

	_, removed := c.removeQueuedLocked(finished.Song.ID)

	if len(c.queue) == 0 {
		c.state = StateIdle
		c.length = 0
		c.startTime = time.Time{}
		zlog.Debug().Msg("playback: queue exhausted")
		var notes []notice
		if removed {
			notes = append(notes, c.queueChangedLocked())
		}
		return append(notes, nowPlaying(""), queueExhausted)
	}

	next := c.queue[0]
	c.queue = c.queue[1:]
	return []notice{c.queueChangedLocked(), c.startLocked(next)}
}

// startLocked makes entry the current song and schedules its end.
// Must be called with lock held.
func (c *Sequencer) startLocked(entry song.QueueEntry) notice {
	c.cancelTimerLocked()

	c.current = &entry
	c.state = StatePlaying
	c.length = time.Duration(float64(entry.Song.Duration) * c.config.TimeScale)
	c.startTime = toWallTime(time.Now())

	generation := c.generation
	c.timerCancel = c.config.Scheduler.ScheduleOnce(c.length, func() {
		c.onTimerElapsed(generation)
	})

	zlog.Debug().Msgf("playback: playing: song=%s duration=%v scaled=%v generation=%d",
		entry.Song.Name, entry.Song.Duration, c.length, generation)
	return nowPlaying(entry.Song.Name)
}

// cancelTimerLocked cancels the pending timer and invalidates any firing already in flight.
// Must be called with lock held.
func (c *Sequencer) cancelTimerLocked() {
	if c.timerCancel != nil {
		c.timerCancel()
		c.timerCancel = nil
	}
	c.generation++
}

// queueChangedLocked snapshots the queue into a notice.
// Must be called with lock held.
func (c *Sequencer) queueChangedLocked() notice {
	snapshot := make([]song.QueueEntry, len(c.queue))
	copy(snapshot, c.queue)
	return func(d Display) { d.OnQueueChanged(snapshot) }
}

// notify delivers notices in order.
// Must be called with opMu held and mu released.
func (c *Sequencer) notify(notes ...notice) {
	for _, n := range notes {
		n(c.display)
	}
}

func nowPlaying(name string) notice {
	return func(d Display) { d.OnNowPlayingChanged(name) }
}

func userError(message string) notice {
	return func(d Display) { d.OnUserError(message) }
}

func queueExhausted(d Display) {
	d.OnQueueExhausted()
}
