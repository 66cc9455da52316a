// Package store persists bids. Stores are pure I/O: they do not evaluate
// bidding rules and report infrastructure facts with pkg/platform/sentinel.
package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"maklarsystem/internal/bidding/domain"
	id "maklarsystem/pkg/domain"
	"maklarsystem/pkg/platform/sentinel"
)

// Memory is an in-process bid store.
type Memory struct {
	mu   sync.RWMutex
	bids map[id.BidID]*domain.Bid
}

func NewMemory() *Memory {
	return &Memory{bids: make(map[id.BidID]*domain.Bid)}
}

// WithinListing runs fn directly. The in-process store has no transaction;
// callers serialise listings with a lock.
func (s *Memory) WithinListing(ctx context.Context, _ id.ListingID, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (s *Memory) Insert(_ context.Context, bid *domain.Bid) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bids[bid.ID]; ok {
		return fmt.Errorf("bid %s: %w", bid.ID, sentinel.ErrConflict)
	}
	cp := *bid
	s.bids[bid.ID] = &cp
	return nil
}

func (s *Memory) Update(_ context.Context, bid *domain.Bid) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bids[bid.ID]; !ok {
		return fmt.Errorf("bid %s: %w", bid.ID, sentinel.ErrNotFound)
	}
	if bid.Status == domain.StatusAccepted {
		for _, other := range s.bids {
			if other.ID != bid.ID && other.ListingID == bid.ListingID && other.Status == domain.StatusAccepted {
				return fmt.Errorf("listing %s already has an accepted bid: %w", bid.ListingID, sentinel.ErrConflict)
			}
		}
	}
	cp := *bid
	s.bids[bid.ID] = &cp
	return nil
}

func (s *Memory) FindByID(_ context.Context, bidID id.BidID) (*domain.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bids[bidID]
	if !ok {
		return nil, fmt.Errorf("bid %s: %w", bidID, sentinel.ErrNotFound)
	}
	cp := *b
	return &cp, nil
}

// HighestActive returns the largest active bid, earliest first on ties.
func (s *Memory) HighestActive(ctx context.Context, listingID id.ListingID) (*domain.Bid, error) {
	active, err := s.ListByListing(ctx, listingID, domain.StatusActive)
	if err != nil {
		return nil, err
	}
	best := domain.Highest(active)
	if best == nil {
		return nil, fmt.Errorf("no active bid on listing %s: %w", listingID, sentinel.ErrNotFound)
	}
	return best, nil
}

// ListByListing returns copies ordered by placement time. No statuses means
// all of them.
func (s *Memory) ListByListing(_ context.Context, listingID id.ListingID, statuses ...domain.Status) ([]*domain.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Bid, 0)
	for _, b := range s.bids {
		if b.ListingID != listingID {
			continue
		}
		if len(statuses) > 0 && !slices.Contains(statuses, b.Status) {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	slices.SortFunc(out, comparePlaced)
	return out, nil
}

func comparePlaced(a, b *domain.Bid) int {
	if c := a.PlacedAt.Compare(b.PlacedAt); c != 0 {
		return c
	}
	if a.ID.String() < b.ID.String() {
		return -1
	}
	if a.ID.String() > b.ID.String() {
		return 1
	}
	return 0
}
