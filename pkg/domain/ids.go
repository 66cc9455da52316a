package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "maklarsystem/pkg/domain-errors"
)

// Typed identifiers. Each wraps a UUID so a listing ID can never be passed
// where a bidder ID is expected.
//
// Usage: construct via the Parse* functions at trust boundaries; a direct
// conversion from uuid.UUID skips the nil check.
type (
	ListingID uuid.UUID
	BidderID  uuid.UUID
	BidID     uuid.UUID
	ContactID uuid.UUID
	ViewingID uuid.UUID
)

// maxIDLength bounds raw input before uuid parsing; a hyphenated or URN form
// never exceeds it.
const maxIDLength = 45

func parseUUID(raw, label string) (uuid.UUID, error) {
	if strings.TrimSpace(raw) == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is required")
	}
	if len(raw) > maxIDLength {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is too long")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return parsed, nil
}

func ParseListingID(raw string) (ListingID, error) {
	id, err := parseUUID(raw, "listing id")
	return ListingID(id), err
}

func ParseBidderID(raw string) (BidderID, error) {
	id, err := parseUUID(raw, "bidder id")
	return BidderID(id), err
}

func ParseBidID(raw string) (BidID, error) {
	id, err := parseUUID(raw, "bid id")
	return BidID(id), err
}

func ParseContactID(raw string) (ContactID, error) {
	id, err := parseUUID(raw, "contact id")
	return ContactID(id), err
}

func ParseViewingID(raw string) (ViewingID, error) {
	id, err := parseUUID(raw, "viewing id")
	return ViewingID(id), err
}

// NewBidID returns a random bid identifier.
func NewBidID() BidID { return BidID(uuid.New()) }

func (id ListingID) String() string { return uuid.UUID(id).String() }
func (id BidderID) String() string  { return uuid.UUID(id).String() }
func (id BidID) String() string     { return uuid.UUID(id).String() }
func (id ContactID) String() string { return uuid.UUID(id).String() }
func (id ViewingID) String() string { return uuid.UUID(id).String() }

func (id ListingID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id BidderID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id BidID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }

func (id ListingID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id BidderID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }
func (id BidID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }
func (id ContactID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id ViewingID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
