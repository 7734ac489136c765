package cache

import (
	"context"
	"sync"
	"time"
)

type pendingCloseEntry struct {
	requestedBy string
	expiresAt   time.Time
}

// MemoryPendingCloseStore is the fallback used when Redis is not configured.
// Entries expire lazily on access; the map stays small (one entry per channel
// with a close in flight) so no sweeper is needed.
type MemoryPendingCloseStore struct {
	mu      sync.Mutex
	entries map[string]pendingCloseEntry
	now     func() time.Time
}

func NewMemoryPendingCloseStore() *MemoryPendingCloseStore {
	return &MemoryPendingCloseStore{
		entries: make(map[string]pendingCloseEntry),
		now:     time.Now,
	}
}

func (s *MemoryPendingCloseStore) Put(_ context.Context, channelID, requestedBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[channelID] = pendingCloseEntry{
		requestedBy: requestedBy,
		expiresAt:   s.now().Add(pendingCloseTTL),
	}
	return nil
}

func (s *MemoryPendingCloseStore) Take(_ context.Context, channelID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[channelID]
	if !ok {
		return "", ErrNoPendingClose
	}
	delete(s.entries, channelID)
	if s.now().After(entry.expiresAt) {
		return "", ErrNoPendingClose
	}
	return entry.requestedBy, nil
}

func (s *MemoryPendingCloseStore) Cancel(_ context.Context, channelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, channelID)
	return nil
}
