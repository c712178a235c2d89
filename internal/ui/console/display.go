// Package console provides a headless display that writes playback
// notifications as text lines and structured log entries.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/songqueue/internal/app/playback"
	"github.com/osa030/songqueue/internal/domain/song"
	"github.com/osa030/songqueue/internal/infra/config"
)

// Settings are the console display options.
type Settings struct {
	Prefix    string `mapstructure:"prefix" default:"♪" validate:"max=8"` // empty selects the default
	ShowQueue *bool  `mapstructure:"show_queue" default:"true"`
}

// Display implements playback.Display on an io.Writer.
type Display struct {
	mu       sync.Mutex
	out      io.Writer
	settings Settings

	exhaustedMessage string
	exhausted        chan struct{}
	exhaustedOnce    sync.Once
}

var _ playback.Display = (*Display)(nil)

// New creates a console display writing to out.
func New(out io.Writer, settings map[string]any, exhaustedMessage string) (*Display, error) {
	var s Settings
	if err := config.DecodeSettings(settings, &s); err != nil {
		return nil, errors.Wrap(err, "console display settings")
	}
	return &Display{
		out:              out,
		settings:         s,
		exhaustedMessage: exhaustedMessage,
		exhausted:        make(chan struct{}),
	}, nil
}

// Exhausted is closed the first time the queue runs out.
func (d *Display) Exhausted() <-chan struct{} {
	return d.exhausted
}

func (d *Display) OnNowPlayingChanged(name string) {
	if name == "" {
		zlog.Info().Msg("playback stopped")
		d.printf("Stopped")
		return
	}
	zlog.Info().Str("song", name).Msg("now playing")
	d.printf("Now playing: %s", name)
}

func (d *Display) OnUserError(message string) {
	zlog.Warn().Msgf("user error: %s", message)
	d.printf("%s", message)
}

func (d *Display) OnQueueExhausted() {
	zlog.Info().Msg("queue exhausted")
	d.printf("%s", d.exhaustedMessage)
	d.exhaustedOnce.Do(func() { close(d.exhausted) })
}

func (d *Display) OnQueueChanged(entries []song.QueueEntry) {
	zlog.Debug().Int("size", len(entries)).Msg("queue changed")
	if d.settings.ShowQueue != nil && !*d.settings.ShowQueue {
		return
	}
	d.printf("Queue: %s", FormatQueue(entries))
}

func (d *Display) printf(format string, args ...any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, _ = fmt.Fprintln(d.out, d.settings.Prefix+" "+fmt.Sprintf(format, args...))
}

// FormatQueue renders queue entries as a comma separated list of song names.
func FormatQueue(entries []song.QueueEntry) string {
	if len(entries) == 0 {
		return "(empty)"
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Song.Name
	}
	return strings.Join(names, ", ")
}
