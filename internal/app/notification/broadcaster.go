// Package notification fans sequencer notifications out to several displays.
package notification

import (
	"sync"

	"github.com/google/uuid"

	"github.com/osa030/songqueue/internal/app/playback"
	"github.com/osa030/songqueue/internal/domain/song"
)

// subscription represents a subscribed display.
type subscription struct {
	id      string
	display playback.Display
}

// Broadcaster forwards every notification to all subscribed displays,
// in subscription order.
type Broadcaster struct {
	mu            sync.RWMutex
	subscriptions []*subscription
	sequenceNo    uint64
	sequenceNoMu  sync.Mutex
}

var _ playback.Display = (*Broadcaster)(nil)

// NewBroadcaster creates a broadcaster with no subscribers.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscriptions: make([]*subscription, 0),
	}
}

// Subscribe adds a display and returns its subscription ID.
func (b *Broadcaster) Subscribe(d playback.Display) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.New().String()
	b.subscriptions = append(b.subscriptions, &subscription{
		id:      id,
		display: d,
	})
	return id
}

// Unsubscribe removes a subscription. Unknown IDs are ignored.
func (b *Broadcaster) Unsubscribe(subscriptionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, sub := range b.subscriptions {
		if sub.id == subscriptionID {
			b.subscriptions = append(b.subscriptions[:i], b.subscriptions[i+1:]...)
			return
		}
	}
}

// SubscriberCount returns the number of active subscribers.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscriptions)
}

// SequenceNo returns the number of notifications broadcast so far.
func (b *Broadcaster) SequenceNo() uint64 {
	b.sequenceNoMu.Lock()
	defer b.sequenceNoMu.Unlock()
	return b.sequenceNo
}

// Close removes all subscriptions.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscriptions = make([]*subscription, 0)
}

func (b *Broadcaster) OnNowPlayingChanged(name string) {
	b.broadcast(func(d playback.Display) { d.OnNowPlayingChanged(name) })
}

func (b *Broadcaster) OnUserError(message string) {
	b.broadcast(func(d playback.Display) { d.OnUserError(message) })
}

func (b *Broadcaster) OnQueueExhausted() {
	b.broadcast(func(d playback.Display) { d.OnQueueExhausted() })
}

func (b *Broadcaster) OnQueueChanged(entries []song.QueueEntry) {
	b.broadcast(func(d playback.Display) { d.OnQueueChanged(entries) })
}

// broadcast delivers a notification to a snapshot of the subscribers,
// so displays may (un)subscribe from inside a callback.
func (b *Broadcaster) broadcast(send func(playback.Display)) {
	b.sequenceNoMu.Lock()
	b.sequenceNo++
	b.sequenceNoMu.Unlock()

	b.mu.RLock()
	subs := make([]*subscription, len(b.subscriptions))
	copy(subs, b.subscriptions)
	b.mu.RUnlock()

	for _, sub := range subs {
		send(sub.display)
	}
}
