// Package property validates listing records: designation, address,
// specifications, pricing and marketing content.
package property

import (
	"math"

	"maklarsystem/internal/validation/identifier"
)

type Type string

const (
	TypeVilla      Type = "villa"
	TypeLagenhet   Type = "lagenhet"
	TypeRadhus     Type = "radhus"
	TypeTomt       Type = "tomt"
	TypeFritidshus Type = "fritidshus"
)

type Status string

const (
	StatusKommande      Status = "kommande"
	StatusTillSalu      Status = "till_salu"
	StatusUnderKontrakt Status = "under_kontrakt"
	StatusSald          Status = "sald"
)

// DefaultStatus applies on create when status is omitted.
const DefaultStatus = StatusKommande

type EnergyClass string

const (
	EnergyClassA EnergyClass = "A"
	EnergyClassB EnergyClass = "B"
	EnergyClassC EnergyClass = "C"
	EnergyClassD EnergyClass = "D"
	EnergyClassE EnergyClass = "E"
	EnergyClassF EnergyClass = "F"
	EnergyClassG EnergyClass = "G"
)

type HeatingType string

const (
	HeatingFjarrvarme    HeatingType = "fjärrvärme"
	HeatingElvarme       HeatingType = "elvärme"
	HeatingPellets       HeatingType = "pelletsbrännare"
	HeatingVedeldning    HeatingType = "vedeldning"
	HeatingOlja          HeatingType = "olja"
	HeatingGas           HeatingType = "gas"
	HeatingBergvarme     HeatingType = "bergvärme"
	HeatingLuftvarmepump HeatingType = "luftvärmepump"
	HeatingAnnat         HeatingType = "annat"
)

var (
	typeValues        = []Type{TypeVilla, TypeLagenhet, TypeRadhus, TypeTomt, TypeFritidshus}
	statusValues      = []Status{StatusKommande, StatusTillSalu, StatusUnderKontrakt, StatusSald}
	energyClassValues = []EnergyClass{EnergyClassA, EnergyClassB, EnergyClassC, EnergyClassD, EnergyClassE, EnergyClassF, EnergyClassG}
	heatingValues     = []HeatingType{
		HeatingFjarrvarme, HeatingElvarme, HeatingPellets, HeatingVedeldning, HeatingOlja,
		HeatingGas, HeatingBergvarme, HeatingLuftvarmepump, HeatingAnnat,
	}
)

// Property is a fully validated listing.
type Property struct {
	Fastighetsbeteckning identifier.Fastighetsbeteckning
	Type                 Type
	Status               Status
	Address              Address
	Specifications       Specifications
	Pricing              Pricing
	Content              Content
}

type Coordinates struct {
	Lat float64
	Lng float64
}

type Address struct {
	Street       string
	PostalCode   string // "NNN NN"
	City         string
	Municipality *string
	County       *string
	Coordinates  *Coordinates
}

// Specifications holds areas in whole square metres.
type Specifications struct {
	LivingArea        int
	TotalArea         *int
	SupplementaryArea *int
	PlotArea          *int
	Rooms             float64
	Bathrooms         *int
	Floors            *int
	BuildYear         int
	EnergyClass       *EnergyClass
	HeatingType       *HeatingType
	Elevator          bool
	Balcony           bool
	Garden            bool
	Parking           bool
}

// Pricing holds amounts in whole SEK.
type Pricing struct {
	AskingPrice   int64
	AcceptedPrice *int64
	MonthlyFee    *int64
	OperatingCost *int64
	PropertyTax   *int64
}

type Content struct {
	Title            string
	ShortDescription *string
	FullDescription  string
	Features         []string
}

// PricePerSquareMeter returns the asking price per square metre of living
// area, rounded to whole SEK.
func (p *Property) PricePerSquareMeter() int64 {
	if p.Specifications.LivingArea <= 0 {
		return 0
	}
	return int64(math.Round(float64(p.Pricing.AskingPrice) / float64(p.Specifications.LivingArea)))
}
