package events

import "sync"

type subscriber struct {
	userID string
}

type Hub struct {
	mu      sync.Mutex
	clients map[chan Event]subscriber
}

func NewHub() *Hub {
	return &Hub{clients: make(map[chan Event]subscriber)}
}

// Subscribe registers a listener. It receives broadcast events and events
// scoped to userID (none when userID is empty).
func (h *Hub) Subscribe(userID string) chan Event {
	ch := make(chan Event, 10)
	h.mu.Lock()
	h.clients[ch] = subscriber{userID: userID}
	h.mu.Unlock()
	return ch
}

func (h *Hub) Unsubscribe(ch chan Event) {
	h.mu.Lock()
	if _, ok := h.clients[ch]; ok {
		delete(h.clients, ch)
		close(ch)
	}
	h.mu.Unlock()
}

func (h *Hub) Publish(evt Event) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch, sub := range h.clients {
		if evt.UserID != "" && evt.UserID != sub.userID {
			continue
		}
		select {
		case ch <- evt:
		default:
			// drop if slow
		}
	}
}

// Len reports the number of live subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
