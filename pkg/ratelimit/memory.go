package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps counters in process. Counts are lost on restart and are
// not shared between instances.
type MemoryStore struct {
	mu      sync.Mutex
	entries *cache.Cache
}

func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: cache.New(cache.NoExpiration, cleanupInterval),
	}
}

func (s *MemoryStore) Hit(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The first hit fixes the window; later hits keep its expiry.
	if _, found := s.entries.Get(key); !found {
		s.entries.Set(key, int64(1), window)
		return 1, nil
	}
	return s.entries.IncrementInt64(key, 1)
}

// Len reports how many counters are held, expired ones included until the
// next cleanup.
func (s *MemoryStore) Len() int {
	return s.entries.ItemCount()
}
