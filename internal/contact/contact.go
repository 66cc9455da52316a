// Package contact validates brokerage contacts: private persons and companies
// acting as sellers, buyers or prospects.
package contact

import (
	"maklarsystem/internal/validation/identifier"
)

// Typ discriminates the contact shape.
type Typ string

const (
	TypPrivatperson Typ = "privatperson"
	TypForetag      Typ = "foretag"
)

func (t Typ) IsValid() bool { return t == TypPrivatperson || t == TypForetag }

// Kategori is the contact's role towards the agency.
type Kategori string

const (
	KategoriSaljare   Kategori = "saljare"
	KategoriKopare    Kategori = "kopare"
	KategoriSpekulant Kategori = "spekulant"
	KategoriOvrig     Kategori = "ovrig"
)

// DefaultKategori applies on create when kategori is omitted.
const DefaultKategori = KategoriOvrig

// FilterAll matches every typ or kategori in a contact search.
const FilterAll = "alla"

// Party is the shape-specific part of a contact: Individual or Organization.
type Party interface {
	Typ() Typ
	isParty()
}

// Individual is a private person.
type Individual struct {
	FirstName  string
	LastName   string
	PersonalID *identifier.Personnummer
}

func (Individual) Typ() Typ { return TypPrivatperson }
func (Individual) isParty()  {}

// Organization is a company with an optional named contact person.
type Organization struct {
	CompanyName      string
	OrgNumber        *identifier.Organisationsnummer
	ContactFirstName *string
	ContactLastName  *string
}

func (Organization) Typ() Typ { return TypForetag }
func (Organization) isParty()  {}

// Contact is a fully validated contact record. Optional text fields are nil
// when absent; phone numbers are in national form and postal codes in
// "NNN NN" form.
type Contact struct {
	Party      Party
	Kategori   Kategori
	Email      *string
	Telefon    *string
	Mobil      *string
	Adress     *string
	Postnummer *string
	Ort        *string
}

// DisplayName returns "Förnamn Efternamn" for individuals and the company
// name for organizations.
func (c *Contact) DisplayName() string {
	switch p := c.Party.(type) {
	case Individual:
		return p.FirstName + " " + p.LastName
	case Organization:
		return p.CompanyName
	default:
		return ""
	}
}
