// Package song provides the Song domain entity and its queued form.
package song

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Song represents an immutable catalog entry.
type Song struct {
	ID          int           `validate:"gt=0"`     // Unique catalog ID
	Name        string        `validate:"required"` // Display name
	CoverArtRef string        // Cover art reference (path or URL)
	Duration    time.Duration `validate:"gt=0"` // Simulated playback duration
}

// QueueEntry represents one occurrence of a song in the play queue.
// The same song may be queued several times; each entry has its own EntryID.
type QueueEntry struct {
	EntryID string    // UUID
	Song    Song      // Queued song
	AddedAt time.Time // Time when added to queue
}

var validate = validator.New()

// NewQueueEntry creates a queue entry for the given song.
func NewQueueEntry(s Song) QueueEntry {
	return QueueEntry{
		EntryID: uuid.New().String(),
		Song:    s,
		AddedAt: time.Now(),
	}
}

// Validate checks that the song carries a usable ID, name and duration.
func (s Song) Validate() error {
	if err := validate.Struct(s); err != nil {
		return errors.Wrapf(err, "invalid song (id=%d)", s.ID)
	}
	return nil
}

// String returns the song name.
func (s Song) String() string {
	return s.Name
}
