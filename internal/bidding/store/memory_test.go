package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"maklarsystem/internal/bidding/domain"
	id "maklarsystem/pkg/domain"
	"maklarsystem/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	store   *Memory
	listing id.ListingID
	now     time.Time
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewMemory()
	s.listing = id.ListingID(uuid.New())
	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func (s *MemoryStoreSuite) bid(amount int64, offset time.Duration) *domain.Bid {
	return &domain.Bid{
		ID:        id.NewBidID(),
		ListingID: s.listing,
		BidderID:  id.BidderID(uuid.New()),
		Amount:    amount,
		Status:    domain.StatusActive,
		PlacedAt:  s.now.Add(offset),
		UpdatedAt: s.now.Add(offset),
	}
}

func (s *MemoryStoreSuite) TestInsertAndFind() {
	ctx := context.Background()
	b := s.bid(1_000_000, 0)
	s.Require().NoError(s.store.Insert(ctx, b))

	got, err := s.store.FindByID(ctx, b.ID)
	s.Require().NoError(err)
	s.Equal(b, got)

	got.Amount = 1
	again, _ := s.store.FindByID(ctx, b.ID)
	s.Equal(int64(1_000_000), again.Amount, "reads return copies")
}

func (s *MemoryStoreSuite) TestInsertDuplicate() {
	ctx := context.Background()
	b := s.bid(1_000_000, 0)
	s.Require().NoError(s.store.Insert(ctx, b))
	s.True(errors.Is(s.store.Insert(ctx, b), sentinel.ErrConflict))
}

func (s *MemoryStoreSuite) TestFindMissing() {
	_, err := s.store.FindByID(context.Background(), id.NewBidID())
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *MemoryStoreSuite) TestHighestActive() {
	ctx := context.Background()
	_, err := s.store.HighestActive(ctx, s.listing)
	s.True(errors.Is(err, sentinel.ErrNotFound))

	low := s.bid(1_000_000, 0)
	high := s.bid(1_100_000, time.Minute)
	withdrawn := s.bid(2_000_000, 2*time.Minute)
	withdrawn.Status = domain.StatusWithdrawn
	for _, b := range []*domain.Bid{low, high, withdrawn} {
		s.Require().NoError(s.store.Insert(ctx, b))
	}

	got, err := s.store.HighestActive(ctx, s.listing)
	s.Require().NoError(err)
	s.Equal(high.ID, got.ID)
}

func (s *MemoryStoreSuite) TestListByListing() {
	ctx := context.Background()
	second := s.bid(1_100_000, time.Minute)
	first := s.bid(1_000_000, 0)
	rejected := s.bid(1_200_000, 2*time.Minute)
	rejected.Status = domain.StatusRejected
	other := s.bid(3_000_000, 0)
	other.ListingID = id.ListingID(uuid.New())
	for _, b := range []*domain.Bid{second, first, rejected, other} {
		s.Require().NoError(s.store.Insert(ctx, b))
	}

	all, err := s.store.ListByListing(ctx, s.listing)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal([]id.BidID{first.ID, second.ID, rejected.ID}, []id.BidID{all[0].ID, all[1].ID, all[2].ID})

	active, err := s.store.ListByListing(ctx, s.listing, domain.StatusActive)
	s.Require().NoError(err)
	s.Len(active, 2)
}

func (s *MemoryStoreSuite) TestUpdate() {
	ctx := context.Background()
	a := s.bid(1_000_000, 0)
	b := s.bid(1_100_000, time.Minute)
	s.Require().NoError(s.store.Insert(ctx, a))
	s.Require().NoError(s.store.Insert(ctx, b))

	a.Status = domain.StatusAccepted
	s.Require().NoError(s.store.Update(ctx, a))

	b.Status = domain.StatusAccepted
	s.True(errors.Is(s.store.Update(ctx, b), sentinel.ErrConflict), "one accepted bid per listing")

	missing := s.bid(1, 0)
	s.True(errors.Is(s.store.Update(ctx, missing), sentinel.ErrNotFound))
}
