// Package bus fans values out to any number of subscribers.
package bus

import (
	"context"
	"sync"
)

// NewHub returns an empty Hub.
func NewHub[T any]() *Hub[T] {
	return &Hub[T]{
		subs: make(map[*chan T]struct{}),
	}
}

// Hub broadcasts values to subscribers. Every subscriber channel holds at
// most one pending value: a subscriber that falls behind sees only the most
// recent one, and Broadcast never blocks.
type Hub[T any] struct {
	mu   sync.Mutex
	subs map[*chan T]struct{}
}

// Broadcast delivers event to every subscriber.
func (h *Hub[T]) Broadcast(event T) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs {
		for {
			select {
			case *sub <- event:
			default:
				// Drop the stale value and retry.
				select {
				case <-*sub:
				default:
				}
				continue
			}
			break
		}
	}
}

// Subscribe registers a subscriber. The returned function unsubscribes; it
// is also called when ctx ends.
func (h *Hub[T]) Subscribe(ctx context.Context) (<-chan T, func()) {
	h.mu.Lock()
	c := make(chan T, 1)

	key := &c
	h.subs[key] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, key)
			h.mu.Unlock()
		})
	}
	stop := context.AfterFunc(ctx, cancel)
	return c, func() {
		stop()
		cancel()
	}
}

// Len returns the number of subscribers.
func (h *Hub[T]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
