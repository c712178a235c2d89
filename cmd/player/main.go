// Package main provides the player entry point.
package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/songqueue/internal/app/notification"
	"github.com/osa030/songqueue/internal/app/playback"
	"github.com/osa030/songqueue/internal/domain/catalog"
	"github.com/osa030/songqueue/internal/infra/config"
	"github.com/osa030/songqueue/internal/infra/logger"
	"github.com/osa030/songqueue/internal/ui/console"
	"github.com/osa030/songqueue/internal/ui/tui"
)

var (
	app        = kingpin.New("songqueue", "Song queue player with simulated playback")
	configPath = app.Flag("config", "Path to config file (default: built-in settings)").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file").String()

	// ui command (default)
	uiCmd = app.Command("ui", "Run the terminal player (default)").Default()

	// catalog command
	catalogCmd = app.Command("catalog", "List available songs and exit")

	// play command
	playCmd     = app.Command("play", "Play songs headless and exit when the queue runs out")
	playSongID  = playCmd.Arg("song-id", "Song to play first").Required().Int()
	playEnqueue = playCmd.Flag("enqueue", "Song to queue after the first one (repeatable)").Short('e').Ints()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	// The terminal UI owns stdout, so it logs to a file or nowhere.
	loggerConfig := logger.Config{
		Output: "stdout",
		Level:  cfg.Log.Level,
	}
	if command == uiCmd.FullCommand() {
		loggerConfig.Output = "discard"
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
		loggerConfig.File = *logfile
	}
	logCloser, err := logger.Init(loggerConfig)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logCloser.Close()

	cat, err := cfg.BuildCatalog()
	if err != nil {
		zlog.Fatal().Msgf("Failed to build catalog: %v", err)
	}

	switch command {
	case catalogCmd.FullCommand():
		printCatalog(os.Stdout, cat)
		return
	case playCmd.FullCommand():
		err = runHeadless(os.Stdout, cfg, cat, *playSongID, *playEnqueue)
	default:
		err = runUI(cfg, cat)
	}
	if err != nil {
		zlog.Error().Msgf("Player error: %v", err)
		os.Exit(1)
	}
}

// newSequencer wires a sequencer to the broadcaster using the configured timing and messages.
func newSequencer(cfg *config.Config, display playback.Display) *playback.Sequencer {
	return playback.NewSequencer(playback.Config{
		Scheduler: playback.WallClockScheduler{Tick: cfg.TickInterval()},
		TimeScale: cfg.TimeScale(),
		Messages: playback.Messages{
			PlayNoSelection:    cfg.Messages.PlayNoSelection,
			EnqueueNoSelection: cfg.Messages.EnqueueNoSelection,
		},
	}, display)
}

// runUI runs the terminal player until the user quits.
func runUI(cfg *config.Config, cat *catalog.Catalog) error {
	if cfg.Display.Type != config.DisplayTUI {
		return errors.Newf("display type %q cannot run interactively; use the play command", cfg.Display.Type)
	}

	broadcaster := notification.NewBroadcaster()
	defer broadcaster.Close()

	ui, err := tui.New(cat, cfg.Display.Settings, cfg.Messages.QueueExhausted)
	if err != nil {
		return errors.Wrap(err, "failed to create terminal display")
	}
	broadcaster.Subscribe(ui)

	seq := newSequencer(cfg, broadcaster)
	defer seq.Close()
	ui.SetControls(seq)

	zlog.Info().Msgf("Starting terminal player: songs=%d", cat.Len())
	return ui.Run()
}

// runHeadless plays songID, queues the rest, writes notifications to out and
// returns once the queue is exhausted or a shutdown signal arrives.
func runHeadless(out io.Writer, cfg *config.Config, cat *catalog.Catalog, songID int, enqueueIDs []int) error {
	first, ok := cat.Find(songID)
	if !ok {
		return errors.Newf("unknown song id %d", songID)
	}
	for _, id := range enqueueIDs {
		if _, ok := cat.Find(id); !ok {
			return errors.Newf("unknown song id %d", id)
		}
	}

	settings := cfg.Display.Settings
	if cfg.Display.Type != config.DisplayConsole {
		// settings belong to another display type
		settings = nil
	}
	display, err := console.New(out, settings, cfg.Messages.QueueExhausted)
	if err != nil {
		return errors.Wrap(err, "failed to create console display")
	}

	broadcaster := notification.NewBroadcaster()
	defer broadcaster.Close()
	broadcaster.Subscribe(display)

	seq := newSequencer(cfg, broadcaster)
	defer seq.Close()

	for _, id := range enqueueIDs {
		s, _ := cat.Find(id)
		if _, err := seq.Enqueue(&s); err != nil {
			return errors.Wrapf(err, "failed to enqueue song %d", id)
		}
	}
	if err := seq.Play(&first); err != nil {
		return errors.Wrapf(err, "failed to play song %d", songID)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-display.Exhausted():
		zlog.Info().Msg("Queue exhausted, exiting...")
	case <-sigCh:
		zlog.Info().Msg("Received shutdown signal...")
		seq.Stop()
	}
	return nil
}

// printCatalog prints the available songs.
func printCatalog(w io.Writer, cat *catalog.Catalog) {
	fmt.Fprintln(w, "Available Songs:")
	for _, s := range cat.List() {
		fmt.Fprintf(w, "  %3d  %-20s %6s  %s\n", s.ID, s.Name, s.Duration, s.CoverArtRef)
	}
	fmt.Fprintf(w, "Total: %d songs, %s\n", cat.Len(), cat.TotalDuration())
}
