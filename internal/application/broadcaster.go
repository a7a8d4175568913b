package application

import (
	"log/slog"
	"sync"

	"github.com/jmanzanog/leek-tracker/internal/domain"
)

const subscriberBuffer = 16

// Broadcaster fans data-changed events out to subscribers. Sends never
// block; an event is dropped for a subscriber whose buffer is full.
type Broadcaster struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan domain.ListKind
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]chan domain.ListKind)}
}

// Subscribe registers a listener. The returned func unsubscribes and closes
// the channel; calling it twice is safe.
func (b *Broadcaster) Subscribe() (<-chan domain.ListKind, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan domain.ListKind, subscriberBuffer)
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
}

func (b *Broadcaster) DataChanged(kind domain.ListKind) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subs {
		select {
		case ch <- kind:
		default:
			slog.Debug("Subscriber buffer full, event dropped", "subscriber", id, "kind", kind)
		}
	}
}

func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
