// Package tui provides the terminal display: catalog list, play queue,
// now-playing bar and message dialogs.
package tui

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/osa030/songqueue/internal/app/playback"
	"github.com/osa030/songqueue/internal/domain/catalog"
	"github.com/osa030/songqueue/internal/domain/song"
	"github.com/osa030/songqueue/internal/infra/config"
)

const (
	// page identifiers
	PageMain       = "main"
	PageMessageBox = "messageBox"
)

const helpText = "[::b]p[::-] play  [::b]a[::-] add to queue  [::b]s[::-] stop  " +
	"[::b]n[::-] skip  [::b]c[::-] clear queue  [::b]q[::-] quit"

// Controls is the part of the sequencer driven by user input.
type Controls interface {
	Enqueue(s *song.Song) (song.QueueEntry, error)
	Play(s *song.Song) error
	Stop()
	Skip() error
	ClearQueue() []song.QueueEntry
}

// Settings are the terminal display options.
type Settings struct {
	Title        string `mapstructure:"title" default:"Music Player"`
	ShowCoverArt *bool  `mapstructure:"show_cover_art" default:"true"`
}

// Ui holds all the updatable elements of the terminal display.
type Ui struct {
	app   *tview.Application
	pages *tview.Pages

	// top bar
	nowPlaying *tview.TextView

	// catalog side
	songList *tview.List
	songInfo *tview.TextView

	// queue side
	queueList *tview.Table

	// modals
	messageBox        *tview.Modal
	messageBoxVisible bool

	// display updates waiting for the gui event loop, oldest first
	updatesMu sync.Mutex
	updates   []func()
	wake      chan struct{}
	done      chan struct{}

	catalog          *catalog.Catalog
	controls         Controls
	settings         Settings
	exhaustedMessage string
}

var _ playback.Display = (*Ui)(nil)

// New builds the terminal display for the given catalog.
// Controls must be attached with SetControls before Run.
func New(cat *catalog.Catalog, settings map[string]any, exhaustedMessage string) (*Ui, error) {
	var s Settings
	if err := config.DecodeSettings(settings, &s); err != nil {
		return nil, errors.Wrap(err, "tui display settings")
	}

	ui := &Ui{
		app:              tview.NewApplication(),
		pages:            tview.NewPages(),
		wake:             make(chan struct{}, 1),
		done:             make(chan struct{}),
		catalog:          cat,
		settings:         s,
		exhaustedMessage: exhaustedMessage,
	}

	// now playing bar
	ui.nowPlaying = tview.NewTextView().
		SetText(formatNowPlaying("")).
		SetTextAlign(tview.AlignLeft).
		SetDynamicColors(true).
		SetScrollable(false)

	// catalog list
	ui.songList = tview.NewList().
		ShowSecondaryText(false)
	ui.songList.Box.
		SetTitle(" songs ").
		SetTitleAlign(tview.AlignLeft).
		SetBorder(true)
	for _, sng := range cat.List() {
		ui.songList.AddItem(tview.Escape(sng.Name), "", 0, nil)
	}

	ui.songInfo = tview.NewTextView().
		SetDynamicColors(true)
	ui.songInfo.Box.
		SetTitle(" song info ").
		SetTitleAlign(tview.AlignLeft).
		SetBorder(true)
	ui.songList.SetChangedFunc(func(index int, _ string, _ string, _ rune) {
		ui.updateSongInfo(index)
	})
	ui.updateSongInfo(ui.songList.GetCurrentItem())

	// queue table
	ui.queueList = tview.NewTable().
		SetSelectable(true, false).
		SetSelectedStyle(tcell.StyleDefault.Background(tcell.ColorLightGray).Foreground(tcell.ColorBlack))
	ui.queueList.Box.
		SetTitle(" queue ").
		SetTitleAlign(tview.AlignLeft).
		SetBorder(true)
	ui.renderQueue(nil)

	// buttons
	addButton := tview.NewButton("Add to Queue").SetSelectedFunc(ui.handleEnqueue)
	playButton := tview.NewButton("Play").SetSelectedFunc(ui.handlePlay)
	stopButton := tview.NewButton("Stop").SetSelectedFunc(ui.handleStop)

	// message box for dialogs
	ui.messageBox = tview.NewModal().
		AddButtons([]string{"OK"}).
		SetDoneFunc(func(int, string) {
			ui.closeMessageBox()
		})

	songPanel := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(ui.songList, 0, 1, true)
	if s.ShowCoverArt == nil || *s.ShowCoverArt {
		songPanel.AddItem(ui.songInfo, 5, 0, false)
	}
	songPanel.AddItem(addButton, 1, 0, false)

	queuePanel := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(playButton, 1, 0, false).
		AddItem(ui.queueList, 0, 1, false).
		AddItem(stopButton, 1, 0, false)

	mainPanel := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(songPanel, 0, 1, true).
		AddItem(queuePanel, 0, 1, false)

	help := tview.NewTextView().
		SetText(helpText).
		SetDynamicColors(true)

	rootFlex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(ui.nowPlaying, 1, 0, false).
		AddItem(mainPanel, 0, 1, true).
		AddItem(help, 1, 0, false)
	rootFlex.Box.
		SetTitle(" " + tview.Escape(s.Title) + " ").
		SetBorder(true)

	// main input handler
	rootFlex.SetInputCapture(ui.handleInput)

	ui.pages.AddPage(PageMain, rootFlex, true, true).
		AddPage(PageMessageBox, ui.messageBox, true, false)

	ui.app.SetRoot(ui.pages, true).
		SetFocus(ui.songList).
		EnableMouse(true)

	return ui, nil
}

// SetControls attaches the sequencer that user input drives.
func (ui *Ui) SetControls(c Controls) {
	ui.controls = c
}

// Run runs the terminal main loop until Quit is called.
func (ui *Ui) Run() error {
	if ui.controls == nil {
		return errors.New("tui: controls not set")
	}
	go ui.guiEventLoop()
	defer close(ui.done)

	// gui main loop (blocking)
	return ui.app.Run()
}

// guiEventLoop applies queued display updates on the application goroutine.
// QueueUpdateDraw waits for the main loop, so it must not be called from
// input handlers directly.
func (ui *Ui) guiEventLoop() {
	for {
		select {
		case <-ui.wake:
			batch := ui.takeUpdates()
			if len(batch) == 0 {
				continue
			}
			ui.app.QueueUpdateDraw(func() {
				for _, f := range batch {
					f()
				}
			})
		case <-ui.done:
			return
		}
	}
}

// queueUpdate hands a widget update to the gui event loop. It never blocks,
// so it is safe to call from the main loop.
// Updates arriving after the main loop ended are dropped.
func (ui *Ui) queueUpdate(f func()) {
	select {
	case <-ui.done:
		return
	default:
	}

	ui.updatesMu.Lock()
	ui.updates = append(ui.updates, f)
	ui.updatesMu.Unlock()

	select {
	case ui.wake <- struct{}{}:
	default:
	}
}

// takeUpdates removes and returns all pending updates.
func (ui *Ui) takeUpdates() []func() {
	ui.updatesMu.Lock()
	defer ui.updatesMu.Unlock()
	batch := ui.updates
	ui.updates = nil
	return batch
}

// Quit stops the main loop.
func (ui *Ui) Quit() {
	ui.app.Stop()
}

// selectedSong returns the highlighted catalog song, or nil if nothing is selected.
func (ui *Ui) selectedSong() *song.Song {
	if ui.songList.GetItemCount() == 0 {
		return nil
	}
	return ui.catalog.At(ui.songList.GetCurrentItem())
}

func (ui *Ui) showMessageBox(text string) {
	ui.messageBox.SetText(text)
	ui.pages.ShowPage(PageMessageBox)
	ui.pages.SendToFront(PageMessageBox)
	ui.app.SetFocus(ui.messageBox)
	ui.messageBoxVisible = true
}

func (ui *Ui) closeMessageBox() {
	ui.messageBoxVisible = false
	ui.pages.HidePage(PageMessageBox)
	ui.app.SetFocus(ui.songList)
}

func (ui *Ui) updateSongInfo(index int) {
	ui.songInfo.Clear()
	s := ui.catalog.At(index)
	if s == nil {
		return
	}
	ui.songInfo.SetText(formatSongInfo(*s))
}

func (ui *Ui) renderQueue(entries []song.QueueEntry) {
	ui.queueList.Clear()
	for row, e := range entries {
		ui.queueList.SetCell(row, 0, tview.NewTableCell(formatPosition(row)))
		ui.queueList.SetCell(row, 1, tview.NewTableCell(tview.Escape(e.Song.Name)).SetExpansion(1))
		ui.queueList.SetCell(row, 2, tview.NewTableCell(formatDuration(e.Song.Duration)).SetAlign(tview.AlignRight))
	}
}
