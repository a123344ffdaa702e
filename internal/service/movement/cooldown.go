package movement

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const defaultCooldownEntries = 10000

// MemoryCooldownStore keeps the last alert time per user in process memory.
// It only deduplicates within one instance; use the postgres store when
// running more than one replica.
type MemoryCooldownStore struct {
	mu      sync.Mutex
	entries *expirable.LRU[string, time.Time]
}

// NewMemoryCooldownStore evicts entries after retention, which must be at
// least the cooldown passed to TryAcquire.
func NewMemoryCooldownStore(retention time.Duration) *MemoryCooldownStore {
	return &MemoryCooldownStore{
		entries: expirable.NewLRU[string, time.Time](defaultCooldownEntries, nil, retention),
	}
}

// TryAcquire implements movement.CooldownStore.
func (s *MemoryCooldownStore) TryAcquire(ctx context.Context, userID string, now time.Time, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if last, ok := s.entries.Get(userID); ok && now.Sub(last) < ttl {
		return false, nil
	}
	s.entries.Add(userID, now)
	return true, nil
}
