package directory

import (
	"sync"

	"github.com/mamadbah2/salesdesk/internal/domain/models"
)

const subscriberBuffer = 16

// Broadcaster fans location events out to every subscriber. A subscriber
// that falls behind misses events instead of blocking publishers.
type Broadcaster struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan models.LocationEvent
}

// NewBroadcaster returns a broadcaster without subscribers.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]chan models.LocationEvent)}
}

// Subscribe registers a listener. The returned cancel func unregisters it
// and closes the channel.
func (b *Broadcaster) Subscribe() (<-chan models.LocationEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan models.LocationEvent, subscriberBuffer)
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers ev to every subscriber and returns how many received it.
func (b *Broadcaster) Publish(ev models.LocationEvent) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	delivered := 0
	for _, ch := range b.subs {
		select {
		case ch <- ev:
			delivered++
		default:
		}
	}
	return delivered
}

// Subscribers returns the number of registered listeners.
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
