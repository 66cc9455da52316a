package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,Locker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"maklarsystem/internal/audit"
	"maklarsystem/internal/bidding/domain"
	"maklarsystem/internal/bidding/lock"
	"maklarsystem/internal/bidding/metrics"
	id "maklarsystem/pkg/domain"
	dErrors "maklarsystem/pkg/domain-errors"
	"maklarsystem/pkg/platform/sentinel"
	"maklarsystem/pkg/requestcontext"
)

// Store persists bids. WithinListing runs fn so that reads and writes on one
// listing are atomic with respect to other WithinListing calls.
type Store interface {
	WithinListing(ctx context.Context, listingID id.ListingID, fn func(ctx context.Context) error) error
	Insert(ctx context.Context, bid *domain.Bid) error
	Update(ctx context.Context, bid *domain.Bid) error
	FindByID(ctx context.Context, bidID id.BidID) (*domain.Bid, error)
	HighestActive(ctx context.Context, listingID id.ListingID) (*domain.Bid, error)
	ListByListing(ctx context.Context, listingID id.ListingID, statuses ...domain.Status) ([]*domain.Bid, error)
}

// Locker serialises work per listing key.
type Locker interface {
	Acquire(ctx context.Context, key string) (lock.Release, error)
}

// Auditor receives an event for every committed bid change.
type Auditor interface {
	Emit(ctx context.Context, event audit.Event)
}

// Service places bids and moves them through their lifecycle. Every
// read-highest-then-write runs under the listing lock and inside
// Store.WithinListing.
type Service struct {
	bids         Store
	locks        Locker
	policy       domain.AcceptPolicy
	minIncrement int64
	newID        func() id.BidID
	logger       *slog.Logger
	metrics      *metrics.Metrics
	auditor      Auditor
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditor(a Auditor) Option {
	return func(s *Service) {
		s.auditor = a
	}
}

// WithMinimumIncrement overrides domain.DefaultMinimumIncrement.
func WithMinimumIncrement(sek int64) Option {
	return func(s *Service) {
		if sek > 0 {
			s.minIncrement = sek
		}
	}
}

// WithIDGenerator replaces the random bid id source.
func WithIDGenerator(fn func() id.BidID) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// New constructs a Service. policy has no default; an unknown value is an
// error.
func New(bids Store, locks Locker, policy domain.AcceptPolicy, opts ...Option) (*Service, error) {
	if bids == nil || locks == nil {
		return nil, errors.New("bid store and locker are required")
	}
	if _, err := domain.ParseAcceptPolicy(string(policy)); err != nil {
		return nil, err
	}
	s := &Service{
		bids:         bids,
		locks:        locks,
		policy:       policy,
		minIncrement: domain.DefaultMinimumIncrement,
		newID:        id.NewBidID,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// MinimumIncrement reports the configured step between bids.
func (s *Service) MinimumIncrement() int64 { return s.minIncrement }

// PlaceBid validates in and stores it as an active bid when it clears the
// current highest active bid by the minimum increment. A first bid only needs
// domain.MinimumBid.
func (s *Service) PlaceBid(ctx context.Context, in domain.Input) (*domain.Bid, error) {
	start := time.Now()
	defer s.observePlaceBid(start)

	now := requestcontext.Now(ctx)
	placement, err := domain.ValidateInput(in, now)
	if err != nil {
		s.incrementRefused("validation")
		return nil, err
	}

	var placed *domain.Bid
	err = s.withListing(ctx, placement.ListingID, func(ctx context.Context) error {
		accepted, err := s.bids.ListByListing(ctx, placement.ListingID, domain.StatusAccepted)
		if err != nil {
			return err
		}
		if len(accepted) > 0 {
			s.incrementRefused("closed")
			return dErrors.New(dErrors.CodeConflict, "listing already has an accepted bid")
		}

		highest, err := s.bids.HighestActive(ctx, placement.ListingID)
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			// first bid on the listing
		case err != nil:
			return err
		default:
			if err := domain.RequireIncrement(placement.Amount, highest.Amount, s.minIncrement); err != nil {
				s.incrementRefused("increment")
				return err
			}
		}

		bid, err := domain.NewBid(s.newID(), *placement, now)
		if err != nil {
			return err
		}
		if err := s.bids.Insert(ctx, bid); err != nil {
			return err
		}
		placed = bid
		return nil
	})
	if err != nil {
		return nil, wrapBidErr(err, "failed to place bid")
	}

	s.incrementPlaced()
	s.emit(ctx, audit.ActionBidPlaced, placed)
	s.logger.InfoContext(ctx, "bid placed",
		"bid_id", placed.ID,
		"listing_id", placed.ListingID,
		"amount", placed.Amount,
	)
	return placed, nil
}

// StatusChange is the outcome of ChangeStatus. Rejected lists the competing
// bids closed by the accept cascade.
type StatusChange struct {
	Bid      *domain.Bid `json:"bud"`
	Rejected []id.BidID  `json:"avslagna,omitempty"`
}

// ChangeStatus moves a bid to target. Accepting a bid under
// AcceptPolicyRejectOthers rejects every other active bid on the listing in
// the same unit of work. A listing never has two accepted bids.
func (s *Service) ChangeStatus(ctx context.Context, bidID id.BidID, target domain.Status) (*StatusChange, error) {
	if bidID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "bid id is required")
	}
	current, err := s.bids.FindByID(ctx, bidID)
	if err != nil {
		return nil, wrapBidErr(err, "failed to load bid")
	}

	now := requestcontext.Now(ctx)
	result := &StatusChange{}
	var cascaded []*domain.Bid
	err = s.withListing(ctx, current.ListingID, func(ctx context.Context) error {
		bid, err := s.bids.FindByID(ctx, bidID)
		if err != nil {
			return err
		}
		if err := bid.CanTransitionTo(target); err != nil {
			return err
		}

		var others []*domain.Bid
		if target == domain.StatusAccepted {
			siblings, err := s.bids.ListByListing(ctx, bid.ListingID, domain.StatusAccepted, domain.StatusActive)
			if err != nil {
				return err
			}
			for _, o := range siblings {
				if o.ID == bid.ID {
					continue
				}
				if o.Status == domain.StatusAccepted {
					return dErrors.New(dErrors.CodeConflict, "listing already has an accepted bid")
				}
				if s.policy == domain.AcceptPolicyRejectOthers {
					others = append(others, o)
				}
			}
		}

		bid.ApplyTransition(target, now)
		if err := s.bids.Update(ctx, bid); err != nil {
			return err
		}
		for _, o := range others {
			if err := o.Reject(now); err != nil {
				return err
			}
			if err := s.bids.Update(ctx, o); err != nil {
				return err
			}
			result.Rejected = append(result.Rejected, o.ID)
		}
		result.Bid = bid
		cascaded = others
		return nil
	})
	if err != nil {
		return nil, wrapBidErr(err, "failed to change bid status")
	}

	s.incrementStatusChange(target, len(result.Rejected))
	s.emit(ctx, statusActions[target], result.Bid)
	for _, o := range cascaded {
		s.emit(ctx, audit.ActionBidCascadeRejected, o)
	}
	s.logger.InfoContext(ctx, "bid status changed",
		"bid_id", bidID,
		"listing_id", result.Bid.ListingID,
		"status", target,
		"cascade_rejected", len(result.Rejected),
	)
	return result, nil
}

// ListBids returns a listing's bids in placement order, filtered and sorted
// by h.
func (s *Service) ListBids(ctx context.Context, listingID id.ListingID, h domain.History) ([]*domain.Bid, error) {
	if listingID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "listing id is required")
	}
	bids, err := s.bids.ListByListing(ctx, listingID)
	if err != nil {
		return nil, wrapBidErr(err, "failed to list bids")
	}
	if !h.IncludeWithdrawn {
		bids = slices.DeleteFunc(bids, func(b *domain.Bid) bool {
			return b.Status == domain.StatusWithdrawn
		})
	}
	if h.Descending {
		slices.Reverse(bids)
	}
	return bids, nil
}

// HighestActive returns the leading active bid, or not_found when the
// listing has none.
func (s *Service) HighestActive(ctx context.Context, listingID id.ListingID) (*domain.Bid, error) {
	if listingID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "listing id is required")
	}
	bid, err := s.bids.HighestActive(ctx, listingID)
	if err != nil {
		return nil, wrapBidErr(err, "failed to load highest bid")
	}
	return bid, nil
}

// withListing takes the listing lock, then runs fn inside the store's unit of
// work. The lock is released with a fresh context so a cancelled request
// still frees it.
func (s *Service) withListing(ctx context.Context, listingID id.ListingID, fn func(ctx context.Context) error) error {
	waitStart := time.Now()
	release, err := s.locks.Acquire(ctx, listingID.String())
	s.observeLockWait(waitStart)
	if err != nil {
		return err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.logger.WarnContext(ctx, "failed to release listing lock",
				"listing_id", listingID,
				"error", err,
			)
		}
	}()
	return s.bids.WithinListing(ctx, listingID, fn)
}

func wrapBidErr(err error, action string) error {
	var de *dErrors.Error
	switch {
	case errors.As(err, &de):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "bid not found")
	case errors.Is(err, sentinel.ErrLockHeld):
		return dErrors.New(dErrors.CodeConflict, "listing is busy, retry the request")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "concurrent bid update, retry the request")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "bidding backend unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeTimeout, fmt.Sprintf("%s: timed out", action))
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, action)
	}
}

var statusActions = map[domain.Status]audit.Action{
	domain.StatusAccepted:  audit.ActionBidAccepted,
	domain.StatusRejected:  audit.ActionBidRejected,
	domain.StatusWithdrawn: audit.ActionBidWithdrawn,
}

func (s *Service) emit(ctx context.Context, action audit.Action, bid *domain.Bid) {
	if s.auditor == nil {
		return
	}
	s.auditor.Emit(ctx, audit.Event{
		Timestamp: bid.UpdatedAt,
		Action:    action,
		ListingID: bid.ListingID,
		BidID:     bid.ID,
		BidderID:  bid.BidderID,
		Amount:    bid.Amount,
		Status:    bid.Status.String(),
	})
}

func (s *Service) incrementPlaced() {
	if s.metrics != nil {
		s.metrics.IncrementBidsPlaced()
	}
}

func (s *Service) incrementRefused(reason string) {
	if s.metrics != nil {
		s.metrics.IncrementBidsRefused(reason)
	}
}

func (s *Service) incrementStatusChange(status domain.Status, cascaded int) {
	if s.metrics != nil {
		s.metrics.IncrementStatusChange(string(status))
		s.metrics.AddCascadeRejected(cascaded)
	}
}

func (s *Service) observePlaceBid(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObservePlaceBid(start)
	}
}

func (s *Service) observeLockWait(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveLockWait(start)
	}
}
