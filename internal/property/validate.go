package property

import (
	"regexp"
	"time"

	"maklarsystem/internal/validation/identifier"
	"maklarsystem/internal/validation/schema"
	pstrings "maklarsystem/pkg/platform/strings"
)

const (
	MinAskingPrice   = 100_000
	MaxPrice         = 1_000_000_000
	MaxMonthlyFee    = 100_000
	MaxOperatingCost = 1_000_000
	minBuildYear     = 1800

	// Monthly fee per square metre of living area accepted for apartments.
	minFeePerSquareMeter = 20
	maxFeePerSquareMeter = 150

	// Accepted price relative to asking price, in percent.
	minAcceptedPercent = 50
	maxAcceptedPercent = 150

	maxFeatures      = 20
	maxFeatureLength = 100
)

var (
	swedishNamePattern = regexp.MustCompile(`^[a-zA-ZåäöÅÄÖ\s\-']+$`)
	titlePattern       = regexp.MustCompile(`^[a-zA-ZåäöÅÄÖ0-9\s\-,.!?()]+$`)
)

// Validate checks in under variant. It returns a normalized copy of the
// supplied fields: trimmed text, "NNN NN" postal code, collapsed designation
// and de-duplicated features. now bounds the build year.
func Validate(in Input, variant schema.Variant, now time.Time) (*Input, error) {
	v := schema.New(variant, now)
	out := normalize(in)

	schema.Check(v, "fastighetsbeteckning", schema.Mandatory, out.Fastighetsbeteckning, schema.Fastighetsbeteckning())
	schema.Check(v, "propertyType", schema.Mandatory, out.PropertyType, schema.OneOf(strs(typeValues)...))
	schema.Check(v, "status", schema.Optional, out.Status, schema.OneOf(strs(statusValues)...))
	schema.Object(v, "address", schema.Mandatory, out.Address, checkAddress)
	schema.Object(v, "specifications", schema.Mandatory, out.Specifications, checkSpecifications)
	schema.Object(v, "pricing", schema.Mandatory, out.Pricing, checkPricing)
	schema.Object(v, "content", schema.Mandatory, out.Content, checkContent)

	refine(v, out)

	if err := v.Err(); err != nil {
		return nil, err
	}
	if variant == schema.Create && out.Status == nil {
		s := string(DefaultStatus)
		out.Status = &s
	}
	return &out, nil
}

// ValidateCreate validates a complete listing and returns the typed record.
func ValidateCreate(in Input, now time.Time) (*Property, error) {
	out, err := Validate(in, schema.Create, now)
	if err != nil {
		return nil, err
	}
	return out.Property(), nil
}

// ValidateUpdate validates a partial listing.
func ValidateUpdate(in Input, now time.Time) (*Input, error) {
	return Validate(in, schema.Update, now)
}

func checkAddress(v *schema.Validator, a *AddressInput) {
	schema.Check(v, "street", schema.Mandatory, a.Street, schema.MinLen(3), schema.MaxLen(255))
	schema.Check(v, "postalCode", schema.Mandatory, a.PostalCode, schema.Postnummer())
	schema.Check(v, "city", schema.Mandatory, a.City, schema.MinLen(2), schema.MaxLen(100), swedishName())
	schema.Check(v, "municipality", schema.Optional, a.Municipality, schema.MaxLen(100), swedishName())
	schema.Check(v, "county", schema.Optional, a.County, schema.MaxLen(100), swedishName())
	schema.Object(v, "coordinates", schema.Optional, a.Coordinates, func(v *schema.Validator, c *CoordinatesInput) {
		schema.Check(v, "lat", schema.Mandatory, c.Lat, schema.Range(55.0, 69.1))
		schema.Check(v, "lng", schema.Mandatory, c.Lng, schema.Range(10.0, 24.2))
	})
}

func checkSpecifications(v *schema.Validator, s *SpecificationsInput) {
	whole := schema.Integer()
	schema.Check(v, "livingArea", schema.Mandatory, s.LivingArea, whole, schema.Range(1.0, 10_000))
	schema.Check(v, "totalArea", schema.Optional, s.TotalArea, whole, schema.Range(1.0, 10_000))
	schema.Check(v, "supplementaryArea", schema.Optional, s.SupplementaryArea, whole, schema.Range(0.0, 10_000))
	schema.Check(v, "plotArea", schema.Optional, s.PlotArea, whole, schema.Range(0.0, 1_000_000))
	schema.Check(v, "rooms", schema.Mandatory, s.Rooms, schema.Range(1.0, 20), schema.MultipleOf(0.5))
	schema.Check(v, "bathrooms", schema.Optional, s.Bathrooms, whole, schema.Range(0.0, 10))
	schema.Check(v, "floors", schema.Optional, s.Floors, whole, schema.Range(1.0, 50))
	schema.Check(v, "buildYear", schema.Mandatory, s.BuildYear, whole, schema.Range(float64(minBuildYear), float64(v.Now().Year()+1)))
	schema.Check(v, "energyClass", schema.Optional, s.EnergyClass, schema.OneOf(strs(energyClassValues)...))
	schema.Check(v, "heatingType", schema.Optional, s.HeatingType, schema.OneOf(strs(heatingValues)...))

	v.Refine("totalArea", []string{"livingArea", "totalArea"},
		func() bool { return *s.TotalArea >= *s.LivingArea },
		"must be at least the living area")
}

func checkPricing(v *schema.Validator, p *PricingInput) {
	whole := schema.Integer()
	schema.Check(v, "askingPrice", schema.Mandatory, p.AskingPrice, whole, schema.Range(float64(MinAskingPrice), MaxPrice))
	schema.Check(v, "acceptedPrice", schema.Optional, p.AcceptedPrice, whole, schema.Range(0.0, MaxPrice))
	schema.Check(v, "monthlyFee", schema.Optional, p.MonthlyFee, whole, schema.Range(0.0, MaxMonthlyFee))
	schema.Check(v, "operatingCost", schema.Optional, p.OperatingCost, whole, schema.Range(0.0, MaxOperatingCost))
	schema.Check(v, "propertyTax", schema.Optional, p.PropertyTax, whole, schema.Range(0.0, MaxPrice))

	v.Refine("acceptedPrice", []string{"askingPrice", "acceptedPrice"},
		func() bool {
			pct := *p.AcceptedPrice * 100 / *p.AskingPrice
			return pct >= minAcceptedPercent && pct <= maxAcceptedPercent
		},
		"must be within 50-150% of the asking price")
}

func checkContent(v *schema.Validator, c *ContentInput) {
	schema.Check(v, "title", schema.Mandatory, c.Title, schema.MinLen(10), schema.MaxLen(255),
		schema.Pattern(titlePattern, "contains characters that are not allowed"))
	schema.Check(v, "shortDescription", schema.Optional, c.ShortDescription, schema.MaxLen(200))
	schema.Check(v, "fullDescription", schema.Mandatory, c.FullDescription, schema.MinLen(50), schema.MaxLen(10_000))
	schema.Check(v, "features", schema.Optional, c.Features,
		schema.MaxItems[string](maxFeatures), schema.Each(schema.MaxLen(maxFeatureLength)))
}

// refine applies the rules that relate the property type to figures in the
// nested sections.
func refine(v *schema.Validator, in Input) {
	isLagenhet := func() bool { return *in.PropertyType == string(TypeLagenhet) }

	v.Refine("pricing.monthlyFee", []string{"propertyType", "pricing.monthlyFee"},
		func() bool { return *in.Pricing.MonthlyFee == 0 || isLagenhet() },
		"is only set for apartments")

	v.Refine("specifications.plotArea", []string{"propertyType", "specifications.plotArea"},
		func() bool { return *in.Specifications.PlotArea == 0 || !isLagenhet() },
		"is not set for apartments")

	v.Refine("pricing.monthlyFee", []string{"propertyType", "pricing.monthlyFee", "specifications.livingArea"},
		func() bool {
			fee := *in.Pricing.MonthlyFee
			if !isLagenhet() || fee == 0 {
				return true
			}
			perSqm := fee / *in.Specifications.LivingArea
			return perSqm >= minFeePerSquareMeter && perSqm <= maxFeePerSquareMeter
		},
		"must be between 20 and 150 SEK per square metre of living area")
}

func swedishName() schema.Rule[string] {
	return schema.Pattern(swedishNamePattern, "may only contain letters, spaces, hyphens and apostrophes")
}

func strs[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

// normalize trims text and canonicalizes identifier-like fields without
// judging validity. A blank string counts as absent.
func normalize(in Input) Input {
	out := Input{
		Fastighetsbeteckning: mapPtr(text(in.Fastighetsbeteckning), identifier.NormalizeFastighetsbeteckning),
		PropertyType:         text(in.PropertyType),
		Status:               text(in.Status),
	}
	if a := in.Address; a != nil {
		out.Address = &AddressInput{
			Street:       text(a.Street),
			PostalCode:   mapPtr(text(a.PostalCode), identifier.NormalizePostnummer),
			City:         text(a.City),
			Municipality: text(a.Municipality),
			County:       text(a.County),
			Coordinates:  a.Coordinates,
		}
	}
	if s := in.Specifications; s != nil {
		cp := *s
		cp.EnergyClass = text(s.EnergyClass)
		cp.HeatingType = text(s.HeatingType)
		out.Specifications = &cp
	}
	if p := in.Pricing; p != nil {
		cp := *p
		out.Pricing = &cp
	}
	if c := in.Content; c != nil {
		out.Content = &ContentInput{
			Title:            text(c.Title),
			ShortDescription: text(c.ShortDescription),
			FullDescription:  text(c.FullDescription),
		}
		if c.Features != nil {
			f := pstrings.DedupeAndTrim(*c.Features)
			out.Content.Features = &f
		}
	}
	return out
}

func text(s *string) *string {
	return pstrings.BlankToNil(pstrings.TrimPtr(s))
}

func mapPtr(s *string, f func(string) string) *string {
	if s == nil {
		return nil
	}
	out := f(*s)
	return &out
}

// Property converts a validated create input to the typed record. Call it
// only on the result of a successful create validation.
func (in *Input) Property() *Property {
	fb, _ := identifier.ParseFastighetsbeteckning(*in.Fastighetsbeteckning)
	p := &Property{
		Fastighetsbeteckning: fb,
		Type:                 Type(*in.PropertyType),
		Status:               DefaultStatus,
	}
	if in.Status != nil {
		p.Status = Status(*in.Status)
	}

	a := in.Address
	p.Address = Address{
		Street:       *a.Street,
		PostalCode:   *a.PostalCode,
		City:         *a.City,
		Municipality: a.Municipality,
		County:       a.County,
	}
	if c := a.Coordinates; c != nil {
		p.Address.Coordinates = &Coordinates{Lat: *c.Lat, Lng: *c.Lng}
	}

	s := in.Specifications
	p.Specifications = Specifications{
		LivingArea:        int(*s.LivingArea),
		TotalArea:         intPtr(s.TotalArea),
		SupplementaryArea: intPtr(s.SupplementaryArea),
		PlotArea:          intPtr(s.PlotArea),
		Rooms:             *s.Rooms,
		Bathrooms:         intPtr(s.Bathrooms),
		Floors:            intPtr(s.Floors),
		BuildYear:         int(*s.BuildYear),
		Elevator:          flag(s.Elevator),
		Balcony:           flag(s.Balcony),
		Garden:            flag(s.Garden),
		Parking:           flag(s.Parking),
	}
	if s.EnergyClass != nil {
		ec := EnergyClass(*s.EnergyClass)
		p.Specifications.EnergyClass = &ec
	}
	if s.HeatingType != nil {
		ht := HeatingType(*s.HeatingType)
		p.Specifications.HeatingType = &ht
	}

	pr := in.Pricing
	p.Pricing = Pricing{
		AskingPrice:   int64(*pr.AskingPrice),
		AcceptedPrice: int64Ptr(pr.AcceptedPrice),
		MonthlyFee:    int64Ptr(pr.MonthlyFee),
		OperatingCost: int64Ptr(pr.OperatingCost),
		PropertyTax:   int64Ptr(pr.PropertyTax),
	}

	c := in.Content
	p.Content = Content{
		Title:            *c.Title,
		ShortDescription: c.ShortDescription,
		FullDescription:  *c.FullDescription,
	}
	if c.Features != nil {
		p.Content.Features = *c.Features
	}
	return p
}

func intPtr(f *float64) *int {
	if f == nil {
		return nil
	}
	n := int(*f)
	return &n
}

func int64Ptr(f *float64) *int64 {
	if f == nil {
		return nil
	}
	n := int64(*f)
	return &n
}

func flag(b *bool) bool { return b != nil && *b }
