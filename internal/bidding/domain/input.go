package domain

import (
	"regexp"
	"time"

	"maklarsystem/internal/validation/schema"
	"maklarsystem/pkg/domain"
	pstrings "maklarsystem/pkg/platform/strings"
)

// Input is an untrusted bid payload.
type Input struct {
	ObjektID    *string  `json:"objekt_id,omitempty"`
	SpekulantID *string  `json:"spekulant_id,omitempty"`
	Belopp      *float64 `json:"belopp,omitempty"`
	Datum       *string  `json:"datum,omitempty"`
	Tid         *string  `json:"tid,omitempty"`
}

// Placement is a validated bid request.
type Placement struct {
	ListingID domain.ListingID
	BidderID  domain.BidderID
	Amount    int64
	PlacedAt  time.Time
}

const timeWithSeconds = "15:04:05"

var clockSecondsPattern = regexp.MustCompile(`^([01]?\d|2[0-3]):[0-5]\d(:[0-5]\d)?$`)

// ValidateInput checks a bid payload. datum and tid default to now.
func ValidateInput(in Input, now time.Time) (*Placement, error) {
	v := schema.New(schema.Create, now)
	out := normalize(in, now)

	schema.Check(v, "objekt_id", schema.Mandatory, out.ObjektID, schema.UUID())
	schema.Check(v, "spekulant_id", schema.Mandatory, out.SpekulantID, schema.UUID())
	schema.Check(v, "belopp", schema.Mandatory, out.Belopp,
		schema.Integer(), schema.Range(float64(MinimumBid), float64(MaximumBid)))
	schema.Check(v, "datum", schema.Mandatory, out.Datum, schema.Date())
	schema.Check(v, "tid", schema.Mandatory, out.Tid,
		schema.Pattern(clockSecondsPattern, "must be a time in HH:MM or HH:MM:SS format"))
	if err := v.Err(); err != nil {
		return nil, err
	}

	listing, _ := domain.ParseListingID(*out.ObjektID)
	bidder, _ := domain.ParseBidderID(*out.SpekulantID)
	placed, err := time.ParseInLocation(time.DateOnly+" "+timeWithSeconds, *out.Datum+" "+*out.Tid, now.Location())
	if err != nil {
		placed = now
	}
	return &Placement{
		ListingID: listing,
		BidderID:  bidder,
		Amount:    int64(*out.Belopp),
		PlacedAt:  placed,
	}, nil
}

func normalize(in Input, now time.Time) Input {
	out := Input{
		ObjektID:    pstrings.TrimPtr(in.ObjektID),
		SpekulantID: pstrings.TrimPtr(in.SpekulantID),
		Belopp:      in.Belopp,
		Datum:       pstrings.BlankToNil(pstrings.TrimPtr(in.Datum)),
		Tid:         pstrings.BlankToNil(pstrings.TrimPtr(in.Tid)),
	}
	if out.Datum == nil {
		d := now.Format(time.DateOnly)
		out.Datum = &d
	}
	if out.Tid == nil {
		t := now.Format(timeWithSeconds)
		out.Tid = &t
	} else {
		t := NormalizeTime(*out.Tid)
		out.Tid = &t
	}
	return out
}

// NormalizeTime pads the hour and appends ":00" when seconds are missing.
// Input that does not look like a time is returned unchanged.
func NormalizeTime(s string) string {
	if !clockSecondsPattern.MatchString(s) {
		return s
	}
	if s[1] == ':' {
		s = "0" + s
	}
	if len(s) == len("15:04") {
		s += ":00"
	}
	return s
}

// StatusInput is an untrusted status change payload.
type StatusInput struct {
	Status *string `json:"status,omitempty"`
}

var statusValues = func() []string {
	out := make([]string, len(Statuses))
	for i, s := range Statuses {
		out[i] = string(s)
	}
	return out
}()

// ValidateStatus checks a status change request. Whether the move is allowed
// is decided by EvaluateTransition against the stored bid.
func ValidateStatus(in StatusInput) (Status, error) {
	v := schema.New(schema.Create, time.Time{})
	s := pstrings.TrimPtr(in.Status)
	schema.Check(v, "status", schema.Mandatory, s, schema.OneOf(statusValues...))
	if err := v.Err(); err != nil {
		return "", err
	}
	return Status(*s), nil
}

// History selects which bids of a listing are listed.
type History struct {
	IncludeWithdrawn bool
	Descending       bool
}

// HistoryInput is the raw query of a bid history request.
type HistoryInput struct {
	IncludeWithdrawn *string
	SortOrder        *string
}

var boolValues = []string{"true", "false"}

// ValidateHistory defaults to hiding withdrawn bids, newest first.
func ValidateHistory(in HistoryInput) (History, error) {
	v := schema.New(schema.Create, time.Time{})
	inc := pstrings.BlankToNil(pstrings.LowerPtr(in.IncludeWithdrawn))
	sort := pstrings.BlankToNil(pstrings.LowerPtr(in.SortOrder))
	schema.Check(v, "includeWithdrawn", schema.Optional, inc, schema.OneOf(boolValues...))
	schema.Check(v, "sortOrder", schema.Optional, sort, schema.OneOf("asc", "desc"))
	if err := v.Err(); err != nil {
		return History{}, err
	}
	return History{
		IncludeWithdrawn: inc != nil && *inc == "true",
		Descending:       sort == nil || *sort == "desc",
	}, nil
}
