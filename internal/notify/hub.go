package notify

import "sync"

// Hub fans events out to in-process subscribers (websocket sessions).
// Sends never block: a subscriber that stops draining its channel
// just misses events.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string][]chan Event
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string][]chan Event),
	}
}

// Subscribe registers interest in one user's events. The returned
// cancel func removes the subscription and closes the channel.
func (h *Hub) Subscribe(userID string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, 10)
	h.subscribers[userID] = append(h.subscribers[userID], ch)

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		chans := h.subscribers[userID]
		for i, c := range chans {
			if c == ch {
				h.subscribers[userID] = append(chans[:i], chans[i+1:]...)
				close(ch)
				break
			}
		}
		if len(h.subscribers[userID]) == 0 {
			delete(h.subscribers, userID)
		}
	}
	return ch, cancel
}

func (h *Hub) Publish(userID string, ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subscribers[userID] {
		select {
		case ch <- ev:
		default:
			// Channel full, skip (don't block)
		}
	}
}
