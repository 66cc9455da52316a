package property

// Input is an untrusted listing payload. Nil pointers are absent fields;
// numbers arrive as JSON numbers and are checked for whole values where the
// record requires them.
type Input struct {
	Fastighetsbeteckning *string              `json:"fastighetsbeteckning,omitempty"`
	PropertyType         *string              `json:"propertyType,omitempty"`
	Status               *string              `json:"status,omitempty"`
	Address              *AddressInput        `json:"address,omitempty"`
	Specifications       *SpecificationsInput `json:"specifications,omitempty"`
	Pricing              *PricingInput        `json:"pricing,omitempty"`
	Content              *ContentInput        `json:"content,omitempty"`
}

type AddressInput struct {
	Street       *string           `json:"street,omitempty"`
	PostalCode   *string           `json:"postalCode,omitempty"`
	City         *string           `json:"city,omitempty"`
	Municipality *string           `json:"municipality,omitempty"`
	County       *string           `json:"county,omitempty"`
	Coordinates  *CoordinatesInput `json:"coordinates,omitempty"`
}

type CoordinatesInput struct {
	Lat *float64 `json:"lat,omitempty"`
	Lng *float64 `json:"lng,omitempty"`
}

type SpecificationsInput struct {
	LivingArea        *float64 `json:"livingArea,omitempty"`
	TotalArea         *float64 `json:"totalArea,omitempty"`
	SupplementaryArea *float64 `json:"supplementaryArea,omitempty"`
	PlotArea          *float64 `json:"plotArea,omitempty"`
	Rooms             *float64 `json:"rooms,omitempty"`
	Bathrooms         *float64 `json:"bathrooms,omitempty"`
	Floors            *float64 `json:"floors,omitempty"`
	BuildYear         *float64 `json:"buildYear,omitempty"`
	EnergyClass       *string  `json:"energyClass,omitempty"`
	HeatingType       *string  `json:"heatingType,omitempty"`
	Elevator          *bool    `json:"elevator,omitempty"`
	Balcony           *bool    `json:"balcony,omitempty"`
	Garden            *bool    `json:"garden,omitempty"`
	Parking           *bool    `json:"parking,omitempty"`
}

type PricingInput struct {
	AskingPrice   *float64 `json:"askingPrice,omitempty"`
	AcceptedPrice *float64 `json:"acceptedPrice,omitempty"`
	MonthlyFee    *float64 `json:"monthlyFee,omitempty"`
	OperatingCost *float64 `json:"operatingCost,omitempty"`
	PropertyTax   *float64 `json:"propertyTax,omitempty"`
}

type ContentInput struct {
	Title            *string   `json:"title,omitempty"`
	ShortDescription *string   `json:"shortDescription,omitempty"`
	FullDescription  *string   `json:"fullDescription,omitempty"`
	Features         *[]string `json:"features,omitempty"`
}
