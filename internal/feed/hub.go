// Package feed fans executed trades out to live subscribers. Sends are
// buffered and non-blocking: a slow consumer drops messages rather than
// stalling the publisher.
package feed

import (
	"sync"

	"github.com/efreitasn/limitbook/internal/domain"
)

// Subscription is one consumer's buffered stream of executions. The channel
// is closed by Unsubscribe.
type Subscription struct {
	C chan domain.Execution
}

// Hub broadcasts executions to all current subscriptions.
type Hub struct {
	mu   sync.RWMutex
	subs map[*Subscription]struct{}
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[*Subscription]struct{})}
}

// Subscribe registers a new subscription with the given channel buffer.
func (h *Hub) Subscribe(buffer int) *Subscription {
	sub := &Subscription{C: make(chan domain.Execution, buffer)}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// Unsubscribe removes the subscription and closes its channel.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub]; !ok {
		return
	}
	delete(h.subs, sub)
	close(sub.C)
}

// Broadcast delivers e to every subscription whose buffer has room.
func (h *Hub) Broadcast(e domain.Execution) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		select {
		case sub.C <- e:
		default:
		}
	}
}

// SubscriberCount returns the number of active subscriptions.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
