package feed

import (
	"sync"
	"time"

	"github.com/zhouzirui/movies/backend/internal/model/movie"
)

// EventType names a catalog change.
type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventDeleted EventType = "deleted"
)

// Event announces a successful write to the catalog.
type Event struct {
	Type      EventType   `json:"type"`
	Movie     movie.Movie `json:"movie"`
	Timestamp int64       `json:"timestamp"`
}

// DefaultBuffer is the per-subscriber queue length used when none is configured.
const DefaultBuffer = 16

// Hub fans change events out to subscribers. Publish never blocks; a subscriber
// whose queue is full misses the event.
type Hub struct {
	mu     sync.Mutex
	subs   map[chan Event]struct{}
	buffer int
	now    func() time.Time
}

// NewHub creates a hub with the given per-subscriber buffer.
func NewHub(buffer int) *Hub {
	if buffer < 1 {
		buffer = DefaultBuffer
	}
	return &Hub{
		subs:   make(map[chan Event]struct{}),
		buffer: buffer,
		now:    time.Now,
	}
}

// Subscribe registers a listener. The returned cancel func unregisters it and
// closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, h.buffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers an event of type t for m to every subscriber.
func (h *Hub) Publish(t EventType, m movie.Movie) {
	evt := Event{Type: t, Movie: m, Timestamp: h.now().Unix()}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}

// Subscribers reports the number of active listeners.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
