// Package viewing validates scheduled property viewings (visningar).
package viewing

import (
	"time"

	"maklarsystem/internal/validation/schema"
	"maklarsystem/pkg/domain"
	pstrings "maklarsystem/pkg/platform/strings"
)

type Typ string

const (
	TypOppen   Typ = "oppen"
	TypPrivat  Typ = "privat"
	TypDigital Typ = "digital"
)

// DefaultTyp applies on create when typ is omitted.
const DefaultTyp = TypOppen

var typValues = []string{string(TypOppen), string(TypPrivat), string(TypDigital)}

// Input is an untrusted viewing payload.
type Input struct {
	ObjektID      *string  `json:"objekt_id,omitempty"`
	Datum         *string  `json:"datum,omitempty"`
	Starttid      *string  `json:"starttid,omitempty"`
	Sluttid       *string  `json:"sluttid,omitempty"`
	Typ           *string  `json:"typ,omitempty"`
	AntalBesokare *float64 `json:"antal_besokare,omitempty"`
}

// Viewing is a validated viewing slot on one listing.
type Viewing struct {
	ListingID     domain.ListingID
	Date          time.Time
	Start         string // HH:MM
	End           string // HH:MM
	Typ           Typ
	AntalBesokare *int
}

// Duration is the length of the slot.
func (v Viewing) Duration() time.Duration {
	return time.Duration(schema.ClockMinutes(v.End)-schema.ClockMinutes(v.Start)) * time.Minute
}

// StartsAt combines Date and Start in loc.
func (v Viewing) StartsAt(loc *time.Location) time.Time {
	m := schema.ClockMinutes(v.Start)
	return time.Date(v.Date.Year(), v.Date.Month(), v.Date.Day(), m/60, m%60, 0, 0, loc)
}

// Validate checks in under variant and returns the normalized fields.
func Validate(in Input, variant schema.Variant, now time.Time) (*Input, error) {
	v := schema.New(variant, now)
	out := normalize(in)
	check(v, &out)
	if err := v.Err(); err != nil {
		return nil, err
	}
	if variant == schema.Create && out.Typ == nil {
		t := string(DefaultTyp)
		out.Typ = &t
	}
	return &out, nil
}

func check(v *schema.Validator, in *Input) {
	schema.Check(v, "objekt_id", schema.Mandatory, in.ObjektID, schema.UUID())
	schema.Check(v, "datum", schema.Mandatory, in.Datum, schema.Date())
	schema.Check(v, "starttid", schema.Mandatory, in.Starttid, schema.Clock())
	schema.Check(v, "sluttid", schema.Mandatory, in.Sluttid, schema.Clock())
	schema.Check(v, "typ", schema.Optional, in.Typ, schema.OneOf(typValues...))
	schema.Check(v, "antal_besokare", schema.Optional, in.AntalBesokare, schema.Integer(), schema.Min(0.0))

	v.Refine("sluttid", []string{"starttid", "sluttid"},
		func() bool { return schema.ClockMinutes(*in.Sluttid) > schema.ClockMinutes(*in.Starttid) },
		"must be after starttid")
}

func ValidateCreate(in Input, now time.Time) (*Viewing, error) {
	out, err := Validate(in, schema.Create, now)
	if err != nil {
		return nil, err
	}
	return out.Viewing(), nil
}

func ValidateUpdate(in Input, now time.Time) (*Input, error) {
	return Validate(in, schema.Update, now)
}

func normalize(in Input) Input {
	return Input{
		ObjektID:      pstrings.TrimPtr(in.ObjektID),
		Datum:         pstrings.TrimPtr(in.Datum),
		Starttid:      clock(in.Starttid),
		Sluttid:       clock(in.Sluttid),
		Typ:           pstrings.BlankToNil(pstrings.TrimPtr(in.Typ)),
		AntalBesokare: in.AntalBesokare,
	}
}

func clock(s *string) *string {
	t := pstrings.TrimPtr(s)
	if t == nil {
		return nil
	}
	n := schema.NormalizeClock(*t)
	return &n
}

// Viewing converts a validated create input to the typed record.
func (in *Input) Viewing() *Viewing {
	id, _ := domain.ParseListingID(*in.ObjektID)
	date, _ := time.Parse(time.DateOnly, *in.Datum)
	out := &Viewing{
		ListingID: id,
		Date:      date,
		Start:     *in.Starttid,
		End:       *in.Sluttid,
		Typ:       DefaultTyp,
	}
	if in.Typ != nil {
		out.Typ = Typ(*in.Typ)
	}
	if in.AntalBesokare != nil {
		n := int(*in.AntalBesokare)
		out.AntalBesokare = &n
	}
	return out
}
