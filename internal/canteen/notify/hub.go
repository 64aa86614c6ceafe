// Package notify implements an in-process publish/subscribe hub used to push
// live updates (menu changes, new orders, balance changes) to watch streams.
package notify

import (
	"sync"
)

// Topic names group events by the resource they describe.
const (
	TopicMenu     = "menu"
	TopicOrders   = "orders"
	TopicBalances = "balances"
)

// Event is a single notification delivered to subscribers. Payload carries a
// resource snapshot or identifier; subscribers re-fetch when they need more.
type Event struct {
	Topic   string
	Kind    string // "created", "updated", "deleted", "reset"
	Payload any
}

// Hub fans events out to topic subscribers. Slow subscribers are skipped
// rather than blocking the publisher: watch streams always re-sync on
// reconnect, so a dropped event costs a refresh, not correctness.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*subscriber]struct{}
}

type subscriber struct {
	ch     chan Event
	closed bool
	mu     sync.Mutex
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*subscriber]struct{})}
}

// Subscribe registers for events on topic. The returned channel receives
// events until cancel is called; cancel is idempotent and safe to call
// concurrently with Publish.
func (h *Hub) Subscribe(topic string, buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 8
	}
	sub := &subscriber{ch: make(chan Event, buffer)}

	h.mu.Lock()
	set, ok := h.subs[topic]
	if !ok {
		set = make(map[*subscriber]struct{})
		h.subs[topic] = set
	}
	set[sub] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[topic]; ok {
			delete(set, sub)
			if len(set) == 0 {
				delete(h.subs, topic)
			}
		}
		h.mu.Unlock()

		sub.mu.Lock()
		if !sub.closed {
			sub.closed = true
			close(sub.ch)
		}
		sub.mu.Unlock()
	}
	return sub.ch, cancel
}

// Publish delivers ev to every current subscriber of ev.Topic. Delivery is
// best-effort: a subscriber with a full buffer misses the event.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	set := h.subs[ev.Topic]
	subs := make([]*subscriber, 0, len(set))
	for sub := range set {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	for _, sub := range subs {
		sub.mu.Lock()
		if !sub.closed {
			select {
			case sub.ch <- ev:
			default:
			}
		}
		sub.mu.Unlock()
	}
}

// SubscriberCount reports how many subscribers a topic currently has. Used by
// readiness probes and tests.
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[topic])
}
