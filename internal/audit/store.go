package audit

import (
	"context"
	"slices"
	"sync"

	id "maklarsystem/pkg/domain"
)

// Store persists events in arrival order.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByListing(ctx context.Context, listingID id.ListingID) ([]Event, error)
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu     sync.RWMutex
	events map[id.ListingID][]Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{events: make(map[id.ListingID][]Event)}
}

func (s *MemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.ListingID] = append(s.events[event.ListingID], event)
	return nil
}

// ListByListing returns a copy of the listing's events, oldest first.
func (s *MemoryStore) ListByListing(_ context.Context, listingID id.ListingID) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.events[listingID]), nil
}
