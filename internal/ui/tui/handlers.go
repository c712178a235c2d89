package tui

import (
	"github.com/cockroachdb/errors"
	"github.com/gdamore/tcell/v2"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/songqueue/internal/app/playback"
	"github.com/osa030/songqueue/internal/domain/song"
)

func (ui *Ui) handleInput(event *tcell.EventKey) *tcell.EventKey {
	if ui.messageBoxVisible || event.Key() != tcell.KeyRune {
		return event
	}

	switch event.Rune() {
	case 'p':
		ui.handlePlay()
	case 'a':
		ui.handleEnqueue()
	case 's':
		ui.handleStop()
	case 'n':
		ui.handleSkip()
	case 'c':
		ui.handleClearQueue()
	case 'q':
		ui.Quit()
	default:
		return event
	}
	return nil
}

// button handler
func (ui *Ui) handlePlay() {
	// invalid selections are reported back through OnUserError
	if err := ui.controls.Play(ui.selectedSong()); err != nil {
		zlog.Debug().Msgf("tui: play: %v", err)
	}
}

// button handler
func (ui *Ui) handleEnqueue() {
	if _, err := ui.controls.Enqueue(ui.selectedSong()); err != nil {
		zlog.Debug().Msgf("tui: enqueue: %v", err)
	}
}

// button handler
func (ui *Ui) handleStop() {
	ui.controls.Stop()
}

func (ui *Ui) handleSkip() {
	if err := ui.controls.Skip(); err != nil && !errors.Is(err, playback.ErrNotPlaying) {
		zlog.Error().Msgf("tui: skip: %v", err)
	}
}

func (ui *Ui) handleClearQueue() {
	removed := ui.controls.ClearQueue()
	zlog.Debug().Msgf("tui: cleared %d queued songs", len(removed))
}

// Display notifications arrive from the sequencer on the main loop (user
// input) or on a timer goroutine, so every widget update is queued.

func (ui *Ui) OnNowPlayingChanged(name string) {
	ui.queueUpdate(func() {
		ui.nowPlaying.SetText(formatNowPlaying(name))
	})
}

func (ui *Ui) OnUserError(message string) {
	ui.queueUpdate(func() {
		ui.showMessageBox(message)
	})
}

func (ui *Ui) OnQueueExhausted() {
	ui.queueUpdate(func() {
		ui.showMessageBox(ui.exhaustedMessage)
	})
}

func (ui *Ui) OnQueueChanged(entries []song.QueueEntry) {
	ui.queueUpdate(func() {
		ui.renderQueue(entries)
	})
}
