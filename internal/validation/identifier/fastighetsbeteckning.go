package identifier

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Fastighetsbeteckning is a Swedish property designation such as
// "Stockholm Södermalm 1:23". The designation carries no delimiter between
// municipality and district, so Municipality holds the first word and
// District the remaining words.
type Fastighetsbeteckning struct {
	Municipality string
	District     string
	Block        int
	Unit         int
	Subunit      int // 0 when the designation has two numeric segments
}

// ParseFastighetsbeteckning accepts "<Municipality> [<district words>] B:U[:S]".
// Runs of whitespace are collapsed. The municipality must start with an
// upper-case letter and contain only letters; district words may mix letters
// and digits. Every numeric segment must be a positive integer.
func ParseFastighetsbeteckning(raw string) (Fastighetsbeteckning, error) {
	fields := strings.Fields(raw)
	if len(fields) < 2 {
		return Fastighetsbeteckning{}, fail(KindFastighetsbeteckning, ReasonFormat, "expected a name followed by block:unit")
	}

	numbers, err := parseDesignationNumbers(fields[len(fields)-1])
	if err != nil {
		return Fastighetsbeteckning{}, err
	}

	names := fields[:len(fields)-1]
	if !validMunicipalityWord(names[0]) {
		return Fastighetsbeteckning{}, fail(KindFastighetsbeteckning, ReasonFormat, fmt.Sprintf("municipality %q must be a capitalised word", names[0]))
	}
	for _, w := range names[1:] {
		if !validDistrictWord(w) {
			return Fastighetsbeteckning{}, fail(KindFastighetsbeteckning, ReasonFormat, fmt.Sprintf("district word %q may contain only letters and digits", w))
		}
	}

	f := Fastighetsbeteckning{
		Municipality: names[0],
		District:     strings.Join(names[1:], " "),
		Block:        numbers[0],
		Unit:         numbers[1],
	}
	if len(numbers) == 3 {
		f.Subunit = numbers[2]
	}
	return f, nil
}

func parseDesignationNumbers(s string) ([]int, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return nil, fail(KindFastighetsbeteckning, ReasonFormat, "expected block:unit or block:unit:subunit")
	}
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		if !allDigits(p) {
			return nil, fail(KindFastighetsbeteckning, ReasonFormat, fmt.Sprintf("segment %q is not a number", p))
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fail(KindFastighetsbeteckning, ReasonRange, fmt.Sprintf("segment %q is too large", p))
		}
		if n < 1 {
			return nil, fail(KindFastighetsbeteckning, ReasonRange, "segments must be positive")
		}
		out = append(out, n)
	}
	return out, nil
}

func validMunicipalityWord(w string) bool {
	first, _ := utf8.DecodeRuneInString(w)
	if !unicode.IsUpper(first) {
		return false
	}
	for _, r := range w {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func validDistrictWord(w string) bool {
	for _, r := range w {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return w != ""
}

func ValidFastighetsbeteckning(raw string) bool {
	_, err := ParseFastighetsbeteckning(raw)
	return err == nil
}

// NormalizeFastighetsbeteckning trims raw and collapses internal whitespace
// to single spaces. It does not validate.
func NormalizeFastighetsbeteckning(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

func (f Fastighetsbeteckning) IsZero() bool { return f.Municipality == "" }

// Name returns the municipality and district as written.
func (f Fastighetsbeteckning) Name() string {
	if f.District == "" {
		return f.Municipality
	}
	return f.Municipality + " " + f.District
}

func (f Fastighetsbeteckning) String() string {
	if f.IsZero() {
		return ""
	}
	s := fmt.Sprintf("%s %d:%d", f.Name(), f.Block, f.Unit)
	if f.Subunit > 0 {
		s += ":" + strconv.Itoa(f.Subunit)
	}
	return s
}
