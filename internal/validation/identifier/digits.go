package identifier

import (
	"strings"
	"unicode"
)

// strip removes whitespace and any of the extra runes from s.
func strip(s string, extra string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || strings.ContainsRune(extra, r) {
			return -1
		}
		return r
	}, s)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// atoi parses a short run of ASCII digits already checked by allDigits.
func atoi(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		n = n*10 + int(s[i]-'0')
	}
	return n
}

// luhnValid applies the Luhn mod-10 check to a string of ASCII digits.
// Walking right to left, every second digit (starting with the one left of the
// check digit) is doubled and reduced by 9 when it exceeds 9.
func luhnValid(digits string) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// LuhnCheckDigit returns the digit that makes body+digit pass the Luhn check.
func LuhnCheckDigit(body string) (byte, bool) {
	if !allDigits(body) {
		return 0, false
	}
	for c := byte('0'); c <= '9'; c++ {
		if luhnValid(body + string(c)) {
			return c, true
		}
	}
	return 0, false
}
