package domain

import (
	"time"

	"maklarsystem/pkg/domain"
	dErrors "maklarsystem/pkg/domain-errors"
)

// Bid is one bidder's offer on a listing.
//
// Invariants:
//   - Amount lies in [MinimumBid, MaximumBid]
//   - Status starts active and leaves it at most once
//   - PlacedAt is immutable after construction
type Bid struct {
	ID        domain.BidID     `json:"id"`
	ListingID domain.ListingID `json:"objekt_id"`
	BidderID  domain.BidderID  `json:"spekulant_id"`
	Amount    int64            `json:"belopp"`
	Status    Status           `json:"status"`
	PlacedAt  time.Time        `json:"placed_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// NewBid builds an active bid from a validated placement.
func NewBid(id domain.BidID, p Placement, now time.Time) (*Bid, error) {
	if id.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "bid id cannot be nil")
	}
	if p.Amount < MinimumBid || p.Amount > MaximumBid {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "bid amount out of range")
	}
	placed := p.PlacedAt
	if placed.IsZero() {
		placed = now
	}
	return &Bid{
		ID:        id,
		ListingID: p.ListingID,
		BidderID:  p.BidderID,
		Amount:    p.Amount,
		Status:    StatusActive,
		PlacedAt:  placed,
		UpdatedAt: now,
	}, nil
}

func (b *Bid) IsActive() bool {
	return b.Status == StatusActive
}

// CanTransitionTo checks the move to target without applying it.
// Use with ApplyTransition when several bids change under one lock.
func (b *Bid) CanTransitionTo(target Status) error {
	_, err := EvaluateTransition(b.Status, target)
	return err
}

// ApplyTransition sets the status. Call CanTransitionTo first.
func (b *Bid) ApplyTransition(target Status, now time.Time) {
	b.Status = target
	b.UpdatedAt = now
}

// Transition validates and applies the move in one call.
func (b *Bid) Transition(target Status, now time.Time) error {
	if err := b.CanTransitionTo(target); err != nil {
		return err
	}
	b.ApplyTransition(target, now)
	return nil
}

func (b *Bid) Accept(now time.Time) error   { return b.Transition(StatusAccepted, now) }
func (b *Bid) Reject(now time.Time) error   { return b.Transition(StatusRejected, now) }
func (b *Bid) Withdraw(now time.Time) error { return b.Transition(StatusWithdrawn, now) }

// Highest returns the active bid with the largest amount, earliest first on
// ties, or nil when none is active.
func Highest(bids []*Bid) *Bid {
	var best *Bid
	for _, b := range bids {
		if !b.IsActive() {
			continue
		}
		if best == nil || b.Amount > best.Amount ||
			(b.Amount == best.Amount && b.PlacedAt.Before(best.PlacedAt)) {
			best = b
		}
	}
	return best
}
