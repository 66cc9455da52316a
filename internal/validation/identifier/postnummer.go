package identifier

import "fmt"

const (
	minPostnummer = 10000
	maxPostnummer = 99999
)

// Postnummer is a five-digit Swedish postal code.
type Postnummer struct {
	digits string
}

// ParsePostnummer accepts five digits with any whitespace. The numeric value
// must lie in 10000..99999, so codes with a leading zero are rejected.
func ParsePostnummer(raw string) (Postnummer, error) {
	cleaned := strip(raw, "")
	if len(cleaned) != 5 || !allDigits(cleaned) {
		return Postnummer{}, fail(KindPostnummer, ReasonFormat, "expected exactly 5 digits")
	}
	if n := atoi(cleaned); n < minPostnummer || n > maxPostnummer {
		return Postnummer{}, fail(KindPostnummer, ReasonRange, fmt.Sprintf("%s is outside %d-%d", cleaned, minPostnummer, maxPostnummer))
	}
	return Postnummer{digits: cleaned}, nil
}

func ValidPostnummer(raw string) bool {
	_, err := ParsePostnummer(raw)
	return err == nil
}

// NormalizePostnummer returns "NNN NN" for five-digit input and raw unchanged
// otherwise.
func NormalizePostnummer(raw string) string {
	cleaned := strip(raw, "")
	if len(cleaned) != 5 || !allDigits(cleaned) {
		return raw
	}
	return cleaned[:3] + " " + cleaned[3:]
}

func (p Postnummer) IsZero() bool   { return p.digits == "" }
func (p Postnummer) Digits() string { return p.digits }

func (p Postnummer) String() string {
	if p.IsZero() {
		return ""
	}
	return p.digits[:3] + " " + p.digits[3:]
}
