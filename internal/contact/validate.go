package contact

import (
	"slices"
	"time"

	"maklarsystem/internal/validation/identifier"
	"maklarsystem/internal/validation/schema"
	pstrings "maklarsystem/pkg/platform/strings"
)

const (
	maxNameLength    = 100
	maxCompanyLength = 200
	maxAddressLength = 255
	maxCityLength    = 100
	maxSearchLength  = 100
)

var (
	typValues      = []string{string(TypPrivatperson), string(TypForetag)}
	kategoriValues = []string{string(KategoriSaljare), string(KategoriKopare), string(KategoriSpekulant), string(KategoriOvrig)}
)

// shape is the presence policy for the fields that depend on typ.
type shape struct {
	fornamn, efternamn, foretag, personnummer, orgnr schema.Presence
}

// shapeFor selects the per-typ presence rules before any field is checked.
// An absent or unknown typ leaves every shape field optional.
func shapeFor(t Typ) shape {
	switch t {
	case TypPrivatperson:
		return shape{
			fornamn:      schema.Mandatory,
			efternamn:    schema.Mandatory,
			foretag:      schema.Forbidden,
			personnummer: schema.Optional,
			orgnr:        schema.Forbidden,
		}
	case TypForetag:
		return shape{
			fornamn:      schema.Optional,
			efternamn:    schema.Optional,
			foretag:      schema.Mandatory,
			personnummer: schema.Forbidden,
			orgnr:        schema.Optional,
		}
	default:
		return shape{schema.Optional, schema.Optional, schema.Optional, schema.Optional, schema.Optional}
	}
}

// Validate checks in under variant and returns the normalized fields that
// were supplied. now is the reference time for personnummer century
// inference.
func Validate(in Input, variant schema.Variant, now time.Time) (*Patch, error) {
	v := schema.New(variant, now)
	in = clean(in)

	var typ Typ
	if schema.Check(v, "typ", schema.Mandatory, in.Typ, schema.OneOf(typValues...)) {
		typ = Typ(*in.Typ)
	}
	sh := shapeFor(typ)
	in.Fornamn = blankUnlessMandatory(in.Fornamn, sh.fornamn, variant)
	in.Efternamn = blankUnlessMandatory(in.Efternamn, sh.efternamn, variant)
	in.Foretag = blankUnlessMandatory(in.Foretag, sh.foretag, variant)

	schema.Check(v, "kategori", schema.Optional, in.Kategori, schema.OneOf(kategoriValues...))
	schema.Check(v, "fornamn", sh.fornamn, in.Fornamn, schema.MinLen(1), schema.MaxLen(maxNameLength))
	schema.Check(v, "efternamn", sh.efternamn, in.Efternamn, schema.MinLen(1), schema.MaxLen(maxNameLength))
	schema.Check(v, "foretag", sh.foretag, in.Foretag, schema.MinLen(1), schema.MaxLen(maxCompanyLength))
	schema.Check(v, "personnummer", sh.personnummer, in.Personnummer, schema.Personnummer(now))
	schema.Check(v, "organisationsnummer", sh.orgnr, in.Organisationsnummer, schema.Organisationsnummer())
	schema.Check(v, "email", schema.Optional, in.Email, schema.Email())
	schema.Check(v, "telefon", schema.Optional, in.Telefon, schema.Telefonnummer())
	schema.Check(v, "mobil", schema.Optional, in.Mobil, schema.Telefonnummer())
	schema.Check(v, "adress", schema.Optional, in.Adress, schema.MaxLen(maxAddressLength))
	schema.Check(v, "postnummer", schema.Optional, in.Postnummer, schema.Postnummer())
	schema.Check(v, "ort", schema.Optional, in.Ort, schema.MaxLen(maxCityLength))

	// Without a typ the shape cannot be dispatched, so at most one identifier
	// kind may be supplied.
	if typ == "" {
		v.Refine("organisationsnummer", []string{"personnummer", "organisationsnummer"},
			func() bool { return false },
			"cannot be combined with personnummer")
	}

	if err := v.Err(); err != nil {
		return nil, err
	}
	return normalize(in, variant, now), nil
}

// ValidateCreate validates a complete contact and returns it as a typed
// record.
func ValidateCreate(in Input, now time.Time) (*Contact, error) {
	p, err := Validate(in, schema.Create, now)
	if err != nil {
		return nil, err
	}
	return p.Contact(), nil
}

// ValidateUpdate validates a partial contact.
func ValidateUpdate(in Input, now time.Time) (*Patch, error) {
	return Validate(in, schema.Update, now)
}

// ValidateFilter checks a contact search query. typ and kategori also accept
// "alla".
func ValidateFilter(f Filter) error {
	v := schema.New(schema.Update, time.Time{})
	schema.Check(v, "typ", schema.Optional, f.Typ, schema.OneOf(slices.Concat(typValues, []string{FilterAll})...))
	schema.Check(v, "kategori", schema.Optional, f.Kategori, schema.OneOf(slices.Concat(kategoriValues, []string{FilterAll})...))
	schema.Check(v, "search", schema.Optional, f.Search, schema.MaxLen(maxSearchLength))
	return v.Err()
}

// clean trims every field and drops blank optional values so that an empty
// form field counts as absent.
func clean(in Input) Input {
	return Input{
		Typ:                 pstrings.TrimPtr(in.Typ),
		Kategori:            pstrings.BlankToNil(pstrings.TrimPtr(in.Kategori)),
		Fornamn:             pstrings.TrimPtr(in.Fornamn),
		Efternamn:           pstrings.TrimPtr(in.Efternamn),
		Foretag:             pstrings.TrimPtr(in.Foretag),
		Personnummer:        pstrings.BlankToNil(pstrings.TrimPtr(in.Personnummer)),
		Organisationsnummer: pstrings.BlankToNil(pstrings.TrimPtr(in.Organisationsnummer)),
		Email:               pstrings.BlankToNil(pstrings.LowerPtr(in.Email)),
		Telefon:             pstrings.BlankToNil(pstrings.TrimPtr(in.Telefon)),
		Mobil:               pstrings.BlankToNil(pstrings.TrimPtr(in.Mobil)),
		Adress:              pstrings.BlankToNil(pstrings.TrimPtr(in.Adress)),
		Postnummer:          pstrings.BlankToNil(pstrings.TrimPtr(in.Postnummer)),
		Ort:                 pstrings.BlankToNil(pstrings.TrimPtr(in.Ort)),
	}
}

// blankUnlessMandatory treats an empty name as absent unless the shape
// requires it, in which case the length rule reports it.
func blankUnlessMandatory(s *string, p schema.Presence, variant schema.Variant) *string {
	if p.In(variant) == schema.Mandatory {
		return s
	}
	return pstrings.BlankToNil(s)
}

// normalize maps validated input to canonical forms. It assumes every present
// field already passed validation.
func normalize(in Input, variant schema.Variant, now time.Time) *Patch {
	p := &Patch{
		Fornamn:   in.Fornamn,
		Efternamn: in.Efternamn,
		Foretag:   in.Foretag,
		Email:     in.Email,
		Adress:    in.Adress,
		Ort:       in.Ort,
	}
	if in.Typ != nil {
		t := Typ(*in.Typ)
		p.Typ = &t
	}
	if in.Kategori != nil {
		k := Kategori(*in.Kategori)
		p.Kategori = &k
	} else if variant == schema.Create {
		k := DefaultKategori
		p.Kategori = &k
	}
	if in.Personnummer != nil {
		pn, _ := identifier.ParsePersonnummerAt(*in.Personnummer, now)
		s := pn.String()
		p.Personnummer = &s
	}
	if in.Organisationsnummer != nil {
		s := identifier.NormalizeOrganisationsnummer(*in.Organisationsnummer)
		p.Organisationsnummer = &s
	}
	p.Telefon = mapPtr(in.Telefon, identifier.NormalizeTelefonnummer)
	p.Mobil = mapPtr(in.Mobil, identifier.NormalizeTelefonnummer)
	p.Postnummer = mapPtr(in.Postnummer, identifier.NormalizePostnummer)
	return p
}

func mapPtr(s *string, f func(string) string) *string {
	if s == nil {
		return nil
	}
	out := f(*s)
	return &out
}

// Contact assembles the typed record from a create patch. It panics when the
// patch lacks a typ, which Validate never produces for the create variant.
func (p *Patch) Contact() *Contact {
	c := &Contact{
		Email:      p.Email,
		Telefon:    p.Telefon,
		Mobil:      p.Mobil,
		Adress:     p.Adress,
		Postnummer: p.Postnummer,
		Ort:        p.Ort,
		Kategori:   DefaultKategori,
	}
	if p.Kategori != nil {
		c.Kategori = *p.Kategori
	}
	if p.Typ == nil {
		panic("contact: patch without typ cannot form a contact")
	}
	switch *p.Typ {
	case TypPrivatperson:
		ind := Individual{FirstName: deref(p.Fornamn), LastName: deref(p.Efternamn)}
		if p.Personnummer != nil {
			pn, _ := identifier.ParsePersonnummer(*p.Personnummer)
			ind.PersonalID = &pn
		}
		c.Party = ind
	case TypForetag:
		org := Organization{CompanyName: deref(p.Foretag), ContactFirstName: p.Fornamn, ContactLastName: p.Efternamn}
		if p.Organisationsnummer != nil {
			on, _ := identifier.ParseOrganisationsnummer(*p.Organisationsnummer)
			org.OrgNumber = &on
		}
		c.Party = org
	default:
		panic("contact: unknown typ " + string(*p.Typ))
	}
	return c
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
