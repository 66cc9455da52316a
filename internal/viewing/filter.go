package viewing

import (
	"strconv"
	"time"

	"maklarsystem/internal/validation/schema"
)

// Filter is a viewing list query.
type Filter struct {
	ObjektID *string `json:"objekt_id,omitempty"`
	Typ      *string `json:"typ,omitempty"`
	FromDate *string `json:"fromDate,omitempty"`
	ToDate   *string `json:"toDate,omitempty"`
	Upcoming *bool   `json:"upcoming,omitempty"`
}

// ValidateFilter checks f. fromDate may not be after toDate.
func ValidateFilter(f Filter) error {
	v := schema.New(schema.Update, time.Time{})
	schema.Check(v, "objekt_id", schema.Optional, f.ObjektID, schema.UUID())
	schema.Check(v, "typ", schema.Optional, f.Typ, schema.OneOf(typValues...))
	schema.Check(v, "fromDate", schema.Optional, f.FromDate, schema.Date())
	schema.Check(v, "toDate", schema.Optional, f.ToDate, schema.Date())
	// ISO dates order lexically.
	v.Refine("toDate", []string{"fromDate", "toDate"},
		func() bool { return *f.FromDate <= *f.ToDate }, "must not be before fromDate")
	return v.Err()
}

// Slot is one entry of a bulk schedule.
type Slot struct {
	Datum    *string `json:"datum,omitempty"`
	Starttid *string `json:"starttid,omitempty"`
	Sluttid  *string `json:"sluttid,omitempty"`
	Typ      *string `json:"typ,omitempty"`
}

// Bulk schedules several viewings on one listing.
type Bulk struct {
	ObjektID  *string `json:"objekt_id,omitempty"`
	Visningar []Slot  `json:"visningar"`
}

// ValidateBulk validates every slot as a create and returns the viewings in
// input order. Slot failures are reported under "visningar.<index>".
func ValidateBulk(b Bulk, now time.Time) ([]*Viewing, error) {
	v := schema.New(schema.Create, now)
	schema.Check(v, "objekt_id", schema.Mandatory, b.ObjektID, schema.UUID())
	if len(b.Visningar) == 0 {
		v.Add("visningar", schema.KindLength, "must contain at least one viewing")
	}

	inputs := make([]Input, len(b.Visningar))
	slots := v.Nested("visningar")
	for i, s := range b.Visningar {
		in := normalize(Input{ObjektID: b.ObjektID, Datum: s.Datum, Starttid: s.Starttid, Sluttid: s.Sluttid, Typ: s.Typ})
		sv := slots.Nested(strconv.Itoa(i))
		schema.Check(sv, "datum", schema.Mandatory, in.Datum, schema.Date())
		schema.Check(sv, "starttid", schema.Mandatory, in.Starttid, schema.Clock())
		schema.Check(sv, "sluttid", schema.Mandatory, in.Sluttid, schema.Clock())
		schema.Check(sv, "typ", schema.Optional, in.Typ, schema.OneOf(typValues...))
		sv.Refine("sluttid", []string{"starttid", "sluttid"},
			func() bool { return schema.ClockMinutes(*in.Sluttid) > schema.ClockMinutes(*in.Starttid) },
			"must be after starttid")
		inputs[i] = in
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	out := make([]*Viewing, len(inputs))
	for i := range inputs {
		out[i] = inputs[i].Viewing()
	}
	return out, nil
}
