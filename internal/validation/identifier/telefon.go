package identifier

import "strings"

const countryPrefix = "+46"

// Telefonnummer is a Swedish phone number held in national form: a leading 0
// followed by 8 or 9 digits.
type Telefonnummer struct {
	national string
}

// nationalForm strips whitespace, hyphens and parentheses and rewrites a
// leading +46 to 0.
func nationalForm(raw string) string {
	cleaned := strip(raw, "-()")
	if strings.HasPrefix(cleaned, countryPrefix) {
		cleaned = "0" + cleaned[len(countryPrefix):]
	}
	return cleaned
}

func validNational(n string) bool {
	if len(n) != 9 && len(n) != 10 {
		return false
	}
	return n[0] == '0' && allDigits(n)
}

// ParseTelefonnummer accepts national (0...) and international (+46...)
// numbers with spaces, hyphens and parentheses.
func ParseTelefonnummer(raw string) (Telefonnummer, error) {
	n := nationalForm(raw)
	if !validNational(n) {
		return Telefonnummer{}, fail(KindTelefonnummer, ReasonFormat, "expected 0 or +46 followed by 8-9 digits")
	}
	return Telefonnummer{national: n}, nil
}

func ValidTelefonnummer(raw string) bool {
	_, err := ParseTelefonnummer(raw)
	return err == nil
}

// NormalizeTelefonnummer returns the national digit form, e.g. "0701234567",
// or raw unchanged when it is not a valid number.
func NormalizeTelefonnummer(raw string) string {
	t, err := ParseTelefonnummer(raw)
	if err != nil {
		return raw
	}
	return t.national
}

// FormatTelefonnummer renders raw for display: "+46 70 123 45 67" when it was
// written with the country prefix, "070-123 45 67" when written nationally.
// Input that is neither is returned unchanged.
func FormatTelefonnummer(raw string) string {
	cleaned := strip(raw, "-()")
	switch {
	case strings.HasPrefix(cleaned, countryPrefix) && validNational("0"+cleaned[len(countryPrefix):]):
		t := cleaned[len(countryPrefix):]
		return countryPrefix + " " + t[0:2] + " " + t[2:5] + " " + t[5:7] + " " + t[7:]
	case validNational(cleaned):
		return cleaned[0:3] + "-" + cleaned[3:6] + " " + cleaned[6:8] + " " + cleaned[8:]
	default:
		return raw
	}
}

func (t Telefonnummer) IsZero() bool { return t.national == "" }

// IsMobile reports whether t is in the 07 mobile range.
func (t Telefonnummer) IsMobile() bool { return strings.HasPrefix(t.national, "07") }

// E164 returns "+46" followed by the subscriber digits.
func (t Telefonnummer) E164() string {
	if t.IsZero() {
		return ""
	}
	return countryPrefix + t.national[1:]
}

func (t Telefonnummer) String() string { return t.national }
