package server

import (
	"sync"
	"time"

	"github.com/trusteehq/trustee/internal/applog"
	"github.com/trusteehq/trustee/internal/checkpoint"
)

// Event is a storage change notification pushed to websocket subscribers.
type Event struct {
	Type      string                 `json:"type"` // "project_changed", "session_changed", "reindexed"
	Hash      checkpoint.ProjectHash `json:"hash,omitempty"`
	SessionID string                 `json:"session_id,omitempty"`
	At        time.Time              `json:"at"`
}

// Hub fans events out to websocket subscribers. Slow consumers whose
// buffers are full have events dropped rather than blocking the publisher.
type Hub struct {
	mu   sync.RWMutex
	subs []*hubSubscriber
	log  *applog.Logger
}

type hubSubscriber struct {
	ch     chan Event
	closed bool
}

// NewHub creates an event hub.
func NewHub() *Hub {
	return &Hub{log: applog.Log}
}

// Subscribe returns a channel receiving published events. Call the returned
// function to unsubscribe and close the channel.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 64)
	sub := &hubSubscriber{ch: ch}

	h.mu.Lock()
	h.subs = append(h.subs, sub)
	h.mu.Unlock()

	unsub := func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		for i, s := range h.subs {
			if s == sub {
				h.subs = append(h.subs[:i], h.subs[i+1:]...)
				if !s.closed {
					s.closed = true
					close(s.ch)
				}
				break
			}
		}
	}

	return ch, unsub
}

// Publish sends an event to every subscriber.
func (h *Hub) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	h.mu.RLock()
	subs := make([]*hubSubscriber, len(h.subs))
	copy(subs, h.subs)
	h.mu.RUnlock()

	for _, sub := range subs {
		if sub.closed {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			h.log.Warn("dropping event for slow websocket subscriber", "type", ev.Type)
		}
	}
}

// SubscriberCount reports the number of active subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
