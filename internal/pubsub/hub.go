package pubsub

import (
	"sync"

	"github.com/google/uuid"
)

// Event is a broadcast notification name. Events carry no payload; clients
// re-fetch whatever state they care about.
type Event string

// EventSubmissionsChanged signals that the submissions table changed in any way.
const EventSubmissionsChanged Event = "submissions-changed"

const subscriberBuffer = 8

// Subscription is one connected client's receive handle.
type Subscription struct {
	id string
	ch chan Event
}

// Events returns the channel delivering broadcasts for this subscription.
// The channel is closed by Unsubscribe.
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

// ID returns the subscription's unique identifier.
func (s *Subscription) ID() string {
	return s.id
}

// Hub fans events out to every live subscription. Delivery is best-effort: a
// subscriber that cannot keep up has events dropped rather than blocking the
// publisher.
type Hub struct {
	mu   sync.Mutex
	subs map[string]*Subscription
}

// NewHub constructs an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]*Subscription)}
}

// Subscribe registers a new client and returns its handle.
func (h *Hub) Subscribe() *Subscription {
	sub := &Subscription{
		id: uuid.NewString(),
		ch: make(chan Event, subscriberBuffer),
	}
	h.mu.Lock()
	h.subs[sub.id] = sub
	h.mu.Unlock()
	return sub
}

// Unsubscribe removes a client and closes its channel. Safe to call twice.
func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub.id]; !ok {
		return
	}
	delete(h.subs, sub.id)
	close(sub.ch)
}

// Publish sends the event to every current subscriber without blocking.
func (h *Hub) Publish(evt Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.subs {
		select {
		case sub.ch <- evt:
		default:
		}
	}
}

// Len reports the number of live subscriptions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
