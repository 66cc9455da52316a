// Package audit keeps an append-only trail of bid lifecycle events. Events
// are queued by Publisher and persisted by Worker off the request path.
package audit

import (
	"time"

	id "maklarsystem/pkg/domain"
)

type Action string

const (
	ActionBidPlaced    Action = "bid_placed"
	ActionBidAccepted  Action = "bid_accepted"
	ActionBidRejected  Action = "bid_rejected"
	ActionBidWithdrawn Action = "bid_withdrawn"

	// ActionBidCascadeRejected marks a bid closed because another was accepted.
	ActionBidCascadeRejected Action = "bid_cascade_rejected"
)

// Event records one action on a bid. It holds no personal identifiers.
type Event struct {
	Timestamp time.Time    `json:"tidpunkt"`
	RequestID string       `json:"request_id,omitempty"`
	Action    Action       `json:"handelse"`
	ListingID id.ListingID `json:"objekt_id"`
	BidID     id.BidID     `json:"bud_id"`
	BidderID  id.BidderID  `json:"spekulant_id"`
	Amount    int64        `json:"belopp"`
	Status    string       `json:"status"`
}
