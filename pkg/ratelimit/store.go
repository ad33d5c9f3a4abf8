package ratelimit

import (
	"context"
	"sync"
	"time"
)

//go:generate mockery --name=Store --dir=. --output=./mocks --filename=rate_limit_store_mock.go --case=underscore --with-expecter

// Store is the persistence behind the fixed-window counters. Increment must
// be atomic per key: a fresh window starts at count 1 when the previous one
// expired, otherwise the count bumps in place.
type Store interface {
	Increment(ctx context.Context, key string, window time.Duration) (count int64, resetAt time.Time, err error)
}

type memoryEntry struct {
	count   int64
	resetAt time.Time
}

// MemoryStore is the default single-process store. Expired entries are
// purged on a periodic sweep rather than on every read to bound cleanup
// cost on the hot path.
type MemoryStore struct {
	mu           sync.Mutex
	entries      map[string]*memoryEntry
	timeProvider func() time.Time
	stop         chan struct{}
	stopOnce     sync.Once
}

const sweepInterval = time.Minute

func NewMemoryStore(timeProvider func() time.Time) *MemoryStore {
	if timeProvider == nil {
		timeProvider = time.Now
	}
	s := &MemoryStore{
		entries:      make(map[string]*memoryEntry),
		timeProvider: timeProvider,
		stop:         make(chan struct{}),
	}
	go s.sweep()
	return s
}

func (s *MemoryStore) Increment(_ context.Context, key string, window time.Duration) (int64, time.Time, error) {
	now := s.timeProvider()

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok || !now.Before(entry.resetAt) {
		entry = &memoryEntry{count: 0, resetAt: now.Add(window)}
		s.entries[key] = entry
	}
	entry.count++
	return entry.count, entry.resetAt, nil
}

func (s *MemoryStore) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			now := s.timeProvider()
			s.mu.Lock()
			for key, entry := range s.entries {
				if !now.Before(entry.resetAt) {
					delete(s.entries, key)
				}
			}
			s.mu.Unlock()
		}
	}
}

func (s *MemoryStore) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}
