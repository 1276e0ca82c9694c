package events

import (
	"context"
	"sync"
)

// DefaultBuffer is the per-subscriber channel capacity.
const DefaultBuffer = 10

// Hub fans a stream of values out to any number of subscribers.
// Publish never blocks: a subscriber whose buffer is full misses the value.
type Hub[T any] struct {
	mu          sync.RWMutex
	subscribers map[chan T]struct{}
	buffer      int
	closed      bool
}

// NewHub creates a hub with DefaultBuffer capacity per subscriber.
func NewHub[T any]() *Hub[T] {
	return &Hub[T]{
		subscribers: make(map[chan T]struct{}),
		buffer:      DefaultBuffer,
	}
}

// Subscribe registers a subscriber until ctx is done; the returned channel is
// closed at that point.
func (h *Hub[T]) Subscribe(ctx context.Context) <-chan T {
	ch := make(chan T, h.buffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch
	}
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.remove(ch)
	}()

	return ch
}

// Publish delivers v to every subscriber and returns how many received it.
func (h *Hub[T]) Publish(v T) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for ch := range h.subscribers {
		select {
		case ch <- v:
			delivered++
		default:
		}
	}
	return delivered
}

// Len returns the number of active subscribers.
func (h *Hub[T]) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Close closes every subscriber channel and rejects new subscriptions.
func (h *Hub[T]) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.subscribers {
		delete(h.subscribers, ch)
		close(ch)
	}
}

func (h *Hub[T]) remove(ch chan T) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subscribers[ch]; ok {
		delete(h.subscribers, ch)
		close(ch)
	}
}
