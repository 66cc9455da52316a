package identifier

import (
	"fmt"
	"time"
)

// coordinationOffset is added to the day of birth in a samordningsnummer.
const coordinationOffset = 60

// earliestBirthYear bounds an explicit four-digit year from below.
const earliestBirthYear = 1800

// Personnummer is a parsed Swedish personal identity number or coordination
// number. The zero value is not a valid number.
type Personnummer struct {
	year   int // four-digit year of birth
	month  int
	day    int // day as written, 61..91 for coordination numbers
	serial string
	check  byte
}

// ParsePersonnummer parses raw using the current wall-clock year for century
// inference.
func ParsePersonnummer(raw string) (Personnummer, error) {
	return ParsePersonnummerAt(raw, time.Now())
}

// ParsePersonnummerAt parses a 10-digit (YYMMDDNNNC) or 12-digit
// (YYYYMMDDNNNC) number. Whitespace and hyphens are ignored. A ten-digit year
// is placed in the latest century that does not put it after now's year; a
// twelve-digit year must lie between 1800 and now's year.
// The "+" separator for centenarians is not supported.
func ParsePersonnummerAt(raw string, now time.Time) (Personnummer, error) {
	cleaned := strip(raw, "-")
	if !allDigits(cleaned) {
		return Personnummer{}, fail(KindPersonnummer, ReasonFormat, "must contain only digits, spaces and hyphens")
	}

	var year int
	var rest string
	switch len(cleaned) {
	case 12:
		year = atoi(cleaned[:4])
		rest = cleaned[4:]
		if year < earliestBirthYear || year > now.Year() {
			return Personnummer{}, fail(KindPersonnummer, ReasonCalendar,
				fmt.Sprintf("year %04d is outside %d-%d", year, earliestBirthYear, now.Year()))
		}
	case 10:
		year = inferCentury(atoi(cleaned[:2]), now.Year())
		rest = cleaned[2:]
	default:
		return Personnummer{}, fail(KindPersonnummer, ReasonFormat, fmt.Sprintf("expected 10 or 12 digits, got %d", len(cleaned)))
	}

	month := atoi(rest[0:2])
	day := atoi(rest[2:4])
	if month < 1 || month > 12 {
		return Personnummer{}, fail(KindPersonnummer, ReasonCalendar, fmt.Sprintf("month %02d does not exist", month))
	}
	dim := daysIn(year, month)
	switch {
	case day >= 1 && day <= dim:
	case day > coordinationOffset && day <= coordinationOffset+dim:
	default:
		return Personnummer{}, fail(KindPersonnummer, ReasonCalendar, fmt.Sprintf("day %02d does not exist in %04d-%02d", day, year, month))
	}

	// The check digit covers the ten trailing digits regardless of input length.
	if !luhnValid(cleaned[len(cleaned)-10:]) {
		return Personnummer{}, fail(KindPersonnummer, ReasonChecksum, "check digit mismatch")
	}
	return Personnummer{
		year:   year,
		month:  month,
		day:    day,
		serial: rest[4:7],
		check:  rest[7],
	}, nil
}

func inferCentury(yy, refYear int) int {
	century := refYear / 100 * 100
	if yy > refYear%100 {
		return century - 100 + yy
	}
	return century + yy
}

func daysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ValidPersonnummer reports whether raw is a valid personnummer or
// samordningsnummer.
func ValidPersonnummer(raw string) bool {
	_, err := ParsePersonnummer(raw)
	return err == nil
}

// NormalizePersonnummer inserts the canonical hyphen: 12 digits become
// "YYYYMMDD-NNNC" and 10 digits become "YYMMDD-NNNC". Any other input is
// returned unchanged. The checksum is not verified.
func NormalizePersonnummer(raw string) string {
	cleaned := strip(raw, "-")
	if !allDigits(cleaned) {
		return raw
	}
	switch len(cleaned) {
	case 12:
		return cleaned[:8] + "-" + cleaned[8:]
	case 10:
		return cleaned[:6] + "-" + cleaned[6:]
	default:
		return raw
	}
}

// IsZero reports whether p was never parsed. A parsed number always has a
// month.
func (p Personnummer) IsZero() bool { return p.month == 0 }

// IsCoordinationNumber reports whether p is a samordningsnummer.
func (p Personnummer) IsCoordinationNumber() bool { return p.day > coordinationOffset }

// BirthDate returns the date of birth, correcting coordination days.
func (p Personnummer) BirthDate() time.Time {
	d := p.day
	if p.IsCoordinationNumber() {
		d -= coordinationOffset
	}
	return time.Date(p.year, time.Month(p.month), d, 0, 0, 0, 0, time.UTC)
}

// AgeAt returns the age in whole years at t.
func (p Personnummer) AgeAt(t time.Time) int {
	b := p.BirthDate()
	age := t.Year() - b.Year()
	if t.Month() < b.Month() || (t.Month() == b.Month() && t.Day() < b.Day()) {
		age--
	}
	return age
}

// String returns the twelve-digit form "YYYYMMDD-NNNC".
func (p Personnummer) String() string {
	if p.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d%02d%02d-%s%c", p.year, p.month, p.day, p.serial, p.check)
}

// Short returns the ten-digit form "YYMMDD-NNNC".
func (p Personnummer) Short() string {
	if p.IsZero() {
		return ""
	}
	return p.String()[2:]
}
