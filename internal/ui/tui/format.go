package tui

import (
	"fmt"
	"time"

	"github.com/rivo/tview"

	"github.com/osa030/songqueue/internal/domain/song"
)

func formatNowPlaying(name string) string {
	if name == "" {
		return "Currently Playing:"
	}
	return "Currently Playing: [green::b]" + tview.Escape(name) + "[::-]"
}

func formatSongInfo(s song.Song) string {
	return fmt.Sprintf("[::b]Cover:[::-] %s\n[::b]Duration:[::-] %s",
		tview.Escape(s.CoverArtRef), formatDuration(s.Duration))
}

func formatPosition(row int) string {
	return fmt.Sprintf("%d.", row+1)
}

// formatDuration renders a duration as m:ss.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
