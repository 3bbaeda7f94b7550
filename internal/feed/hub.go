// Package feed pushes session change events to WebSocket subscribers.
package feed

import (
	"log/slog"
	"sync"

	"github.com/sush8471/ScamDEX-AI/internal/session"
)

// subscriberBuffer is the number of events a slow subscriber may lag behind.
const subscriberBuffer = 16

// Hub fans session events out to subscribers of that session.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[int64]chan session.Event
	nextID int64
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[int64]chan session.Event)}
}

// Subscribe returns a channel of events for sessionID and a function that
// ends the subscription and closes the channel.
func (h *Hub) Subscribe(sessionID string) (<-chan session.Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID
	ch := make(chan session.Event, subscriberBuffer)
	if h.subs[sessionID] == nil {
		h.subs[sessionID] = make(map[int64]chan session.Event)
	}
	h.subs[sessionID][id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if subs, ok := h.subs[sessionID]; ok {
				delete(subs, id)
				if len(subs) == 0 {
					delete(h.subs, sessionID)
				}
			}
			close(ch)
		})
	}
}

// Notify delivers ev to every subscriber of its session. Subscribers whose
// buffer is full miss the event.
func (h *Hub) Notify(ev session.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs[ev.SessionID] {
		select {
		case ch <- ev:
		default:
			slog.Warn("feed subscriber lagging, dropping event", "session_id", ev.SessionID, "type", ev.Type)
		}
	}
}

// Subscribers returns the number of subscribers for sessionID.
func (h *Hub) Subscribers(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[sessionID])
}

var _ session.Notifier = (*Hub)(nil)
