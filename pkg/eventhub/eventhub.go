// Copyright (c) 2026 TopLivres. All rights reserved.
// Author: fleuronvilik

// Package eventhub provides a typed event-subscription primitive.
//
// # Usage
//
// It generalizes the classic "delegate(root, type, selector, handler)"
// pattern: a handler fires once per emitted event that its predicate
// matches, and the returned unsubscribe function removes exactly that
// binding.
package eventhub

import "sync"

// Hub dispatches events of type E to predicate-matched subscribers.
//
// # Concurrency
//
// Hub is safe for concurrent use. Handlers run synchronously on the
// emitting goroutine, in subscription order.
type Hub[E any] struct {
	mu     sync.Mutex
	nextID int
	subs   []subscription[E]
}

type subscription[E any] struct {
	id      int
	match   func(E) bool
	handler func(E)
}

// On registers handler for every event matched by match. A nil match
// matches everything. The returned function unsubscribes exactly this
// binding; calling it more than once is a no-op.
func (h *Hub[E]) On(match func(E) bool, handler func(E)) (unsubscribe func()) {
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.subs = append(h.subs, subscription[E]{id: id, match: match, handler: handler})
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			for i, sub := range h.subs {
				if sub.id == id {
					h.subs = append(h.subs[:i], h.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Emit delivers event to every matching subscriber.
func (h *Hub[E]) Emit(event E) {
	h.mu.Lock()
	snapshot := make([]subscription[E], len(h.subs))
	copy(snapshot, h.subs)
	h.mu.Unlock()

	for _, sub := range snapshot {
		if sub.match == nil || sub.match(event) {
			sub.handler(event)
		}
	}
}

// Len reports the current number of subscriptions. Exposed so tests can
// assert listener counts across mount/unmount cycles.
func (h *Hub[E]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
