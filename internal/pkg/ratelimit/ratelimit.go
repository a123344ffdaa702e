package ratelimit

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const defaultMaxKeys = 10000

// Limiter is a per-key sliding window limiter. Keys idle for longer than the
// window are evicted by the underlying LRU.
type Limiter struct {
	mu     sync.Mutex
	hits   *expirable.LRU[string, []time.Time]
	limit  int
	window time.Duration
	now    func() time.Time
}

type Option func(*Limiter)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

func New(limit int, window time.Duration, opts ...Option) *Limiter {
	if limit <= 0 {
		limit = 5
	}
	if window <= 0 {
		window = time.Minute
	}

	l := &Limiter{
		hits:   expirable.NewLRU[string, []time.Time](defaultMaxKeys, nil, window),
		limit:  limit,
		window: window,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow records a hit for key and reports whether it is within the limit.
// Rejected hits are not recorded.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	prev, _ := l.hits.Get(key)
	recent := make([]time.Time, 0, len(prev)+1)
	for _, ts := range prev {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}

	if len(recent) >= l.limit {
		l.hits.Add(key, recent)
		return false
	}

	l.hits.Add(key, append(recent, now))
	return true
}
