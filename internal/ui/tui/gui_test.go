package tui

import (
	"fmt"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/songqueue/internal/app/playback"
	"github.com/osa030/songqueue/internal/domain/catalog"
	"github.com/osa030/songqueue/internal/domain/song"
)

type fakeControls struct {
	played   []*song.Song
	enqueued []*song.Song
	stops    int
	skips    int
	clears   int
}

func (f *fakeControls) Enqueue(s *song.Song) (song.QueueEntry, error) {
	f.enqueued = append(f.enqueued, s)
	if s == nil {
		return song.QueueEntry{}, playback.ErrInvalidSelection
	}
	return song.NewQueueEntry(*s), nil
}

func (f *fakeControls) Play(s *song.Song) error {
	f.played = append(f.played, s)
	if s == nil {
		return playback.ErrInvalidSelection
	}
	return nil
}

func (f *fakeControls) Stop() { f.stops++ }

func (f *fakeControls) Skip() error {
	f.skips++
	return playback.ErrNotPlaying
}

func (f *fakeControls) ClearQueue() []song.QueueEntry {
	f.clears++
	return nil
}

func newTestUi(t *testing.T, cat *catalog.Catalog) (*Ui, *fakeControls) {
	t.Helper()
	ui, err := New(cat, nil, "Queue is empty. Playback stopped.")
	require.NoError(t, err)
	controls := &fakeControls{}
	ui.SetControls(controls)
	return ui, controls
}

func keyRune(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestUi_KeyBindings(t *testing.T) {
	ui, controls := newTestUi(t, catalog.Default())

	ui.songList.SetCurrentItem(2)
	assert.Nil(t, ui.handleInput(keyRune('p')))
	assert.Nil(t, ui.handleInput(keyRune('a')))
	assert.Nil(t, ui.handleInput(keyRune('s')))
	assert.Nil(t, ui.handleInput(keyRune('n')))
	assert.Nil(t, ui.handleInput(keyRune('c')))

	require.Len(t, controls.played, 1)
	require.NotNil(t, controls.played[0])
	assert.Equal(t, "Song 3", controls.played[0].Name)
	require.Len(t, controls.enqueued, 1)
	assert.Equal(t, 3, controls.enqueued[0].ID)
	assert.Equal(t, 1, controls.stops)
	assert.Equal(t, 1, controls.skips)
	assert.Equal(t, 1, controls.clears)

	unhandled := keyRune('x')
	assert.Same(t, unhandled, ui.handleInput(unhandled))
	enter := tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone)
	assert.Same(t, enter, ui.handleInput(enter))
}

func TestUi_NoSelection(t *testing.T) {
	empty, err := catalog.New(nil)
	require.NoError(t, err)
	ui, controls := newTestUi(t, empty)

	ui.handlePlay()
	ui.handleEnqueue()

	require.Len(t, controls.played, 1)
	assert.Nil(t, controls.played[0])
	require.Len(t, controls.enqueued, 1)
	assert.Nil(t, controls.enqueued[0])
}

func TestUi_MessageBoxBlocksShortcuts(t *testing.T) {
	ui, controls := newTestUi(t, catalog.Default())

	ui.showMessageBox("Please select a song to play.")
	name, _ := ui.pages.GetFrontPage()
	assert.Equal(t, PageMessageBox, name)

	ui.handleInput(keyRune('p'))
	assert.Empty(t, controls.played)

	ui.closeMessageBox()
	ui.handleInput(keyRune('p'))
	assert.Len(t, controls.played, 1)
}

func TestUi_RenderQueue(t *testing.T) {
	ui, _ := newTestUi(t, catalog.Default())

	ui.renderQueue([]song.QueueEntry{
		song.NewQueueEntry(song.Song{ID: 1, Name: "Song 1", Duration: 10 * time.Second}),
		song.NewQueueEntry(song.Song{ID: 4, Name: "Song 4", Duration: 25 * time.Second}),
	})

	require.Equal(t, 2, ui.queueList.GetRowCount())
	assert.Equal(t, "1.", ui.queueList.GetCell(0, 0).Text)
	assert.Equal(t, "Song 4", ui.queueList.GetCell(1, 1).Text)
	assert.Equal(t, "0:25", ui.queueList.GetCell(1, 2).Text)

	ui.renderQueue(nil)
	assert.Zero(t, ui.queueList.GetRowCount())
}

func TestUi_CoverArtSetting(t *testing.T) {
	tests := []struct {
		name     string
		settings map[string]any
		want     bool
	}{
		{name: "default shows cover art", settings: nil, want: true},
		{name: "explicit false hides it", settings: map[string]any{"show_cover_art": false}, want: false},
		{name: "string value", settings: map[string]any{"show_cover_art": "true"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ui, err := New(catalog.Default(), tt.settings, "")
			require.NoError(t, err)
			require.NotNil(t, ui.settings.ShowCoverArt)
			assert.Equal(t, tt.want, *ui.settings.ShowCoverArt)
		})
	}
}

func TestUi_InvalidSettings(t *testing.T) {
	_, err := New(catalog.Default(), map[string]any{"show_cover_art": "not a bool"}, "")
	assert.Error(t, err)
}

func TestUi_RunWithoutControls(t *testing.T) {
	ui, err := New(catalog.Default(), nil, "")
	require.NoError(t, err)
	assert.Error(t, ui.Run())
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "Currently Playing:", formatNowPlaying(""))
	assert.Contains(t, formatNowPlaying("Song 1"), "Song 1")
	assert.Equal(t, "0:10", formatDuration(10*time.Second))
	assert.Equal(t, "1:05", formatDuration(65*time.Second))
	assert.Equal(t, "0:00", formatDuration(-time.Second))
	assert.Equal(t, "3.", formatPosition(2))
	assert.Contains(t, formatSongInfo(song.Song{CoverArtRef: "cover.jpg", Duration: 20 * time.Second}), "cover.jpg")
}

func TestUi_DisplayUpdatesAreQueued(t *testing.T) {
	ui, _ := newTestUi(t, catalog.Default())

	ui.OnQueueChanged([]song.QueueEntry{
		song.NewQueueEntry(song.Song{ID: 2, Name: "Song 2", Duration: 20 * time.Second}),
	})
	ui.OnNowPlayingChanged("Song 1")
	ui.OnQueueExhausted()

	// nothing changes until the gui event loop applies the updates
	assert.Zero(t, ui.queueList.GetRowCount())

	updates := ui.takeUpdates()
	require.Len(t, updates, 3)
	for _, update := range updates {
		update()
	}

	assert.Equal(t, 1, ui.queueList.GetRowCount())
	assert.Contains(t, ui.nowPlaying.GetText(false), "Song 1")
	name, _ := ui.pages.GetFrontPage()
	assert.Equal(t, PageMessageBox, name)
	assert.True(t, ui.messageBoxVisible)
}

func TestUi_QueueUpdateNeverBlocks(t *testing.T) {
	ui, _ := newTestUi(t, catalog.Default())

	finished := make(chan struct{})
	go func() {
		// no gui event loop is running, as when the main loop itself is busy
		for i := 0; i < 1000; i++ {
			ui.OnNowPlayingChanged(fmt.Sprintf("Song %d", i))
		}
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("queueing display updates blocked")
	}

	updates := ui.takeUpdates()
	require.Len(t, updates, 1000)
	for _, update := range updates {
		update()
	}
	assert.Contains(t, ui.nowPlaying.GetText(false), "Song 999")
}

func TestUi_UpdatesDroppedAfterRun(t *testing.T) {
	ui, _ := newTestUi(t, catalog.Default())
	close(ui.done)

	ui.OnNowPlayingChanged("Song 1")

	assert.Empty(t, ui.takeUpdates())
}
