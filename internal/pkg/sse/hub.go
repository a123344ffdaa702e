package sse

import (
	"sync"
	"sync/atomic"
)

// Event is a server-sent event addressed to one user.
type Event struct {
	ID     uint64
	UserID string
	Event  string
	Data   interface{}
}

type subscriber struct {
	ch   chan Event
	once sync.Once
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.ch) })
}

// Hub fans events out to every open stream of a user. A slow stream never
// blocks the publisher: events that do not fit its buffer are dropped.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[*subscriber]struct{}
	bufferSize  int
	closed      bool

	seq     atomic.Uint64
	dropped atomic.Uint64
}

type Option func(*Hub)

// WithBufferSize sets the per-stream channel capacity.
func WithBufferSize(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.bufferSize = n
		}
	}
}

func NewHub(opts ...Option) *Hub {
	h := &Hub{
		subscribers: make(map[string]map[*subscriber]struct{}),
		bufferSize:  10,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Subscribe opens a stream for userID. The returned cleanup is safe to call
// more than once, and after Close.
func (h *Hub) Subscribe(userID string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &subscriber{ch: make(chan Event, h.bufferSize)}
	if h.closed {
		sub.close()
		return sub.ch, func() {}
	}

	if h.subscribers[userID] == nil {
		h.subscribers[userID] = make(map[*subscriber]struct{})
	}
	h.subscribers[userID][sub] = struct{}{}

	cleanup := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if subs, ok := h.subscribers[userID]; ok {
			delete(subs, sub)
			if len(subs) == 0 {
				delete(h.subscribers, userID)
			}
		}
		sub.close()
	}

	return sub.ch, cleanup
}

// Publish stamps the event with the next sequence number and delivers it to
// every stream of userID. It returns how many streams accepted it.
func (h *Hub) Publish(userID string, event Event) int {
	event.ID = h.seq.Add(1)
	event.UserID = userID

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for sub := range h.subscribers[userID] {
		select {
		case sub.ch <- event:
			delivered++
		default:
			h.dropped.Add(1)
		}
	}
	return delivered
}

// SubscriberCount returns the number of open streams for a user.
func (h *Hub) SubscriberCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[userID])
}

// Dropped returns how many events were discarded because a stream was full.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// Close ends every open stream. Later subscriptions get a closed channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for userID, subs := range h.subscribers {
		for sub := range subs {
			sub.close()
		}
		delete(h.subscribers, userID)
	}
}
