package playback

import (
	"context"
	"time"
)

// Scheduler runs a callback once after a delay.
// The returned cancel function prevents a callback that has not fired yet from running.
type Scheduler interface {
	ScheduleOnce(delay time.Duration, fn func()) (cancel func())
}

// DefaultTick is the polling interval used when WallClockScheduler.Tick is unset.
const DefaultTick = 100 * time.Millisecond

// WallClockScheduler fires callbacks based on wall clock time.
// It polls on a ticker instead of relying on the monotonic clock so that
// durations track real elapsed time.
type WallClockScheduler struct {
	Tick time.Duration
}

// ScheduleOnce implements Scheduler.
func (s WallClockScheduler) ScheduleOnce(delay time.Duration, fn func()) func() {
	tick := s.Tick
	if tick <= 0 {
		tick = DefaultTick
	}

	ctx, cancel := context.WithCancel(context.Background())
	endTime := toWallTime(time.Now()).Add(delay)

	go func() {
		ticker := time.NewTicker(tick)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !toWallTime(time.Now()).Before(endTime) {
					// Re-check so a cancel racing with the tick wins.
					if ctx.Err() != nil {
						return
					}
					fn()
					return
				}
			}
		}
	}()

	return cancel
}

// toWallTime returns the time with monotonic clock stripped.
func toWallTime(t time.Time) time.Time {
	return time.Unix(t.Unix(), int64(t.Nanosecond()))
}
