package game

import "sync"

// MaxBufferEvents is the number of recent events retained per game.
const MaxBufferEvents = 5

// Event is one relayed message stored in the ring buffer, kept for the
// conversation snapshot attached to rejected-message audit records.
type Event struct {
	From string `json:"from"` // session ID of sender
	Kind string `json:"kind"` // message type that produced the event
	Ts   int64  `json:"ts"`
}

// EventBuffer stores the last N events per game in memory. It is
// goroutine-safe and uses a ring buffer internally.
type EventBuffer struct {
	mu      sync.RWMutex
	buffers map[string]*ringBuffer // gameID -> ring buffer
}

type ringBuffer struct {
	items []Event
	pos   int
	count int
}

// NewEventBuffer creates a new empty EventBuffer.
func NewEventBuffer() *EventBuffer {
	return &EventBuffer{
		buffers: make(map[string]*ringBuffer),
	}
}

// Add appends an event to the game's ring buffer. If the buffer is full,
// the oldest event is overwritten.
func (eb *EventBuffer) Add(gameID string, ev Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	rb, ok := eb.buffers[gameID]
	if !ok {
		rb = &ringBuffer{
			items: make([]Event, MaxBufferEvents),
		}
		eb.buffers[gameID] = rb
	}

	rb.items[rb.pos] = ev
	rb.pos = (rb.pos + 1) % MaxBufferEvents
	if rb.count < MaxBufferEvents {
		rb.count++
	}
}

// Get returns the last N events for a game in chronological order (oldest
// first). Returns an empty slice if the game has no buffer.
func (eb *EventBuffer) Get(gameID string) []Event {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	rb, ok := eb.buffers[gameID]
	if !ok {
		return []Event{}
	}

	result := make([]Event, rb.count)
	// The oldest event is at position (pos - count) mod MaxBufferEvents.
	start := (rb.pos - rb.count + MaxBufferEvents) % MaxBufferEvents
	for i := 0; i < rb.count; i++ {
		result[i] = rb.items[(start+i)%MaxBufferEvents]
	}
	return result
}

// Remove deletes the buffer for a game (called when the game ends).
func (eb *EventBuffer) Remove(gameID string) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	delete(eb.buffers, gameID)
}
