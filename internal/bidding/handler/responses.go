package handler

import (
	"maklarsystem/internal/bidding/domain"
	"maklarsystem/internal/bidding/service"
)

// BidResponse is the wire form of a bid.
type BidResponse struct {
	ID          string `json:"id"`
	ObjektID    string `json:"objekt_id"`
	SpekulantID string `json:"spekulant_id"`
	Belopp      int64  `json:"belopp"`
	Datum       string `json:"datum"`
	Tid         string `json:"tid"`
	Status      string `json:"status"`
}

func FromBid(b *domain.Bid) BidResponse {
	return BidResponse{
		ID:          b.ID.String(),
		ObjektID:    b.ListingID.String(),
		SpekulantID: b.BidderID.String(),
		Belopp:      b.Amount,
		Datum:       b.PlacedAt.Format("2006-01-02"),
		Tid:         b.PlacedAt.Format("15:04:05"),
		Status:      string(b.Status),
	}
}

// BidListResponse wraps a bid history.
type BidListResponse struct {
	Bud   []BidResponse `json:"bud"`
	Antal int           `json:"antal"`
}

func FromBids(bids []*domain.Bid) BidListResponse {
	out := make([]BidResponse, len(bids))
	for i, b := range bids {
		out[i] = FromBid(b)
	}
	return BidListResponse{Bud: out, Antal: len(out)}
}

// StatusChangeResponse reports a status change and any cascaded rejections.
type StatusChangeResponse struct {
	Bud      BidResponse `json:"bud"`
	Avslagna []string    `json:"avslagna"`
}

func FromStatusChange(c *service.StatusChange) StatusChangeResponse {
	rejected := make([]string, len(c.Rejected))
	for i, r := range c.Rejected {
		rejected[i] = r.String()
	}
	return StatusChangeResponse{Bud: FromBid(c.Bid), Avslagna: rejected}
}
