package playback

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/songqueue/internal/domain/song"
)

func TestWallClockScheduler_Fires(t *testing.T) {
	s := WallClockScheduler{Tick: 5 * time.Millisecond}
	fired := make(chan struct{})

	s.ScheduleOnce(20*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("callback did not fire")
	}
}

func TestWallClockScheduler_Cancel(t *testing.T) {
	s := WallClockScheduler{Tick: 5 * time.Millisecond}
	var calls atomic.Int32

	cancel := s.ScheduleOnce(30*time.Millisecond, func() { calls.Add(1) })
	cancel()

	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

func TestSequencer_WallClockPlayback(t *testing.T) {
	display := &recordingDisplay{}
	seq := NewSequencer(Config{
		Scheduler: WallClockScheduler{Tick: 5 * time.Millisecond},
		TimeScale: 0.01,
	}, display)
	defer seq.Close()

	short := song.Song{ID: 9, Name: "Short", Duration: 2 * time.Second} // 20ms scaled
	_, err := seq.Enqueue(&songC)                                       // 30ms scaled
	require.NoError(t, err)
	require.NoError(t, seq.Play(&short))

	require.Eventually(t, func() bool {
		display.mu.Lock()
		defer display.mu.Unlock()
		return display.exhausted == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, StateIdle, seq.State())
	display.mu.Lock()
	defer display.mu.Unlock()
	assert.Equal(t, []string{"Short", "C", ""}, display.nowPlaying)
}
