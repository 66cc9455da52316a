package identifier

import "fmt"

// LegalFormGroup is the entity group encoded by the first digit of an
// organisationsnummer.
type LegalFormGroup int

const (
	LegalFormUnknown              LegalFormGroup = iota
	LegalFormEstate                              // 1, dödsbon (not accepted here)
	LegalFormPublic                              // 2, stat, landsting, kommuner
	LegalFormForeign                             // 3, utländska företag
	LegalFormAktiebolag                          // 5
	LegalFormEnkeltBolag                         // 6
	LegalFormEkonomiskForening                   // 7, incl. bostadsrättsföreningar
	LegalFormIdeellForening                      // 8
	LegalFormHandelsbolag                        // 9
)

var legalFormByDigit = map[byte]LegalFormGroup{
	'2': LegalFormPublic,
	'3': LegalFormForeign,
	'5': LegalFormAktiebolag,
	'6': LegalFormEnkeltBolag,
	'7': LegalFormEkonomiskForening,
	'8': LegalFormIdeellForening,
	'9': LegalFormHandelsbolag,
}

// Organisationsnummer is a parsed Swedish organisation number.
type Organisationsnummer struct {
	digits string
}

// ParseOrganisationsnummer accepts exactly ten digits once whitespace and
// hyphens are removed. The first digit must be 2-9 and the number must pass
// the Luhn check.
func ParseOrganisationsnummer(raw string) (Organisationsnummer, error) {
	cleaned := strip(raw, "-")
	if len(cleaned) != 10 || !allDigits(cleaned) {
		return Organisationsnummer{}, fail(KindOrganisationsnummer, ReasonFormat, "expected exactly 10 digits")
	}
	if cleaned[0] < '2' {
		return Organisationsnummer{}, fail(KindOrganisationsnummer, ReasonRange, fmt.Sprintf("leading digit %c is not an organisation group", cleaned[0]))
	}
	if !luhnValid(cleaned) {
		return Organisationsnummer{}, fail(KindOrganisationsnummer, ReasonChecksum, "check digit mismatch")
	}
	return Organisationsnummer{digits: cleaned}, nil
}

// ValidOrganisationsnummer reports whether raw is a valid organisation number.
func ValidOrganisationsnummer(raw string) bool {
	_, err := ParseOrganisationsnummer(raw)
	return err == nil
}

// NormalizeOrganisationsnummer returns "NNNNNN-NNNN" for ten-digit input and
// raw unchanged otherwise.
func NormalizeOrganisationsnummer(raw string) string {
	cleaned := strip(raw, "-")
	if len(cleaned) != 10 || !allDigits(cleaned) {
		return raw
	}
	return cleaned[:6] + "-" + cleaned[6:]
}

func (o Organisationsnummer) IsZero() bool { return o.digits == "" }

// LegalForm returns the entity group of the leading digit.
func (o Organisationsnummer) LegalForm() LegalFormGroup {
	if o.IsZero() {
		return LegalFormUnknown
	}
	if g, ok := legalFormByDigit[o.digits[0]]; ok {
		return g
	}
	return LegalFormUnknown
}

// Digits returns the ten digits without separator.
func (o Organisationsnummer) Digits() string { return o.digits }

func (o Organisationsnummer) String() string {
	if o.IsZero() {
		return ""
	}
	return o.digits[:6] + "-" + o.digits[6:]
}
