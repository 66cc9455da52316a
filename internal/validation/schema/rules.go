package schema

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"maklarsystem/internal/validation/identifier"
)

// Issue is a single rule failure.
type Issue struct {
	Kind    Kind
	Message string
}

// Rule checks one value; nil means it passed.
type Rule[T any] func(T) *Issue

func issue(kind Kind, format string, args ...any) *Issue {
	return &Issue{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// leafValidator evaluates the single-value rules as validator tags.
var leafValidator = validator.New()

// tagged builds a rule that fails with kind when value does not satisfy tag.
func tagged[T any](tag string, kind Kind, format string, args ...any) Rule[T] {
	return func(value T) *Issue {
		if err := leafValidator.Var(value, tag); err != nil {
			return issue(kind, format, args...)
		}
		return nil
	}
}

// number is the set of kinds the gte and lte tags compare numerically.
type number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// MinLen bounds the rune length from below.
func MinLen(n int) Rule[string] {
	return tagged[string](fmt.Sprintf("min=%d", n), KindLength, "must be at least %d characters", n)
}

// MaxLen bounds the rune length from above.
func MaxLen(n int) Rule[string] {
	return tagged[string](fmt.Sprintf("max=%d", n), KindLength, "must be at most %d characters", n)
}

// Pattern requires s to match re.
func Pattern(re *regexp.Regexp, message string) Rule[string] {
	return func(s string) *Issue {
		if !re.MatchString(s) {
			return &Issue{Kind: KindFormat, Message: message}
		}
		return nil
	}
}

// OneOf requires s to be one of the allowed literals. Literals the oneof tag
// cannot express are matched directly.
func OneOf[T ~string](allowed ...T) Rule[T] {
	names := make([]string, len(allowed))
	quoted := make([]string, len(allowed))
	expressible := len(allowed) > 0
	for i, a := range allowed {
		names[i] = string(a)
		switch {
		case names[i] == "" || strings.ContainsAny(names[i], ",|'"):
			expressible = false
		case strings.Contains(names[i], " "):
			quoted[i] = "'" + names[i] + "'"
		default:
			quoted[i] = names[i]
		}
	}
	message := "must be one of " + strings.Join(names, ", ")
	if !expressible {
		return func(s T) *Issue {
			if slices.Contains(allowed, s) {
				return nil
			}
			return &Issue{Kind: KindEnum, Message: message}
		}
	}
	rule := tagged[string]("oneof="+strings.Join(quoted, " "), KindEnum, "%s", message)
	return func(s T) *Issue { return rule(string(s)) }
}

// Email requires an RFC 5322 address.
func Email() Rule[string] {
	return func(s string) *Issue {
		if err := leafValidator.Var(s, "required,email"); err != nil {
			return issue(KindFormat, "must be a valid e-mail address")
		}
		return nil
	}
}

// UUID requires a canonical, non-nil UUID in either letter case.
func UUID() Rule[string] {
	return func(s string) *Issue {
		lower := strings.ToLower(s)
		if leafValidator.Var(lower, "uuid") != nil || lower == uuid.Nil.String() {
			return issue(KindFormat, "must be a valid UUID")
		}
		return nil
	}
}

// Range requires lo <= n <= hi.
func Range[T number](lo, hi T) Rule[T] {
	return tagged[T](fmt.Sprintf("gte=%v,lte=%v", lo, hi), KindRange, "must be between %v and %v", lo, hi)
}

// Min requires n >= lo.
func Min[T number](lo T) Rule[T] {
	return tagged[T](fmt.Sprintf("gte=%v", lo), KindRange, "must be at least %v", lo)
}

// Max requires n <= hi.
func Max[T number](hi T) Rule[T] {
	return tagged[T](fmt.Sprintf("lte=%v", hi), KindRange, "must be at most %v", hi)
}

// Integer requires a whole number.
func Integer() Rule[float64] {
	return func(n float64) *Issue {
		if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) {
			return issue(KindFormat, "must be a whole number")
		}
		return nil
	}
}

// MultipleOf requires n to be an exact multiple of step.
func MultipleOf(step float64) Rule[float64] {
	return func(n float64) *Issue {
		q := n / step
		if math.IsNaN(q) || math.IsInf(q, 0) || q != math.Trunc(q) {
			return issue(KindRange, "must be a multiple of %v", step)
		}
		return nil
	}
}

// MaxItems bounds a slice length.
func MaxItems[E any](n int) Rule[[]E] {
	return func(s []E) *Issue {
		if len(s) > n {
			return issue(KindLength, "must have at most %d items", n)
		}
		return nil
	}
}

// Each applies rule to every element, reporting the first failing index.
func Each[E any](rule Rule[E]) Rule[[]E] {
	return func(s []E) *Issue {
		for i, e := range s {
			if is := rule(e); is != nil {
				return issue(is.Kind, "item %d %s", i, is.Message)
			}
		}
		return nil
	}
}

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Date requires a calendar date written YYYY-MM-DD.
func Date() Rule[string] {
	return func(s string) *Issue {
		if !datePattern.MatchString(s) {
			return issue(KindFormat, "must be a date in YYYY-MM-DD format")
		}
		if leafValidator.Var(s, "datetime="+time.DateOnly) != nil {
			return issue(KindCalendar, "must be a real calendar date")
		}
		return nil
	}
}

var clockPattern = regexp.MustCompile(`^([01]?\d|2[0-3]):[0-5]\d$`)

// Clock requires a 24-hour time written HH:MM; the leading zero of the hour
// may be omitted.
func Clock() Rule[string] {
	return Pattern(clockPattern, "must be a time in HH:MM format")
}

// Identifier adapts an identifier parser, mapping its failure reason onto a
// field Kind.
func Identifier(label string, parse func(string) error) Rule[string] {
	return func(s string) *Issue {
		err := parse(s)
		if err == nil {
			return nil
		}
		switch identifier.ReasonOf(err) {
		case identifier.ReasonChecksum:
			return issue(KindChecksum, "is not a valid %s (check digit)", label)
		case identifier.ReasonCalendar:
			return issue(KindCalendar, "is not a valid %s (date)", label)
		case identifier.ReasonRange:
			return issue(KindRange, "is not a valid %s (out of range)", label)
		default:
			return issue(KindFormat, "is not a valid %s", label)
		}
	}
}

// Personnummer checks a personnummer with century inference against now.
func Personnummer(now time.Time) Rule[string] {
	return Identifier("personnummer", func(s string) error {
		_, err := identifier.ParsePersonnummerAt(s, now)
		return err
	})
}

func Organisationsnummer() Rule[string] {
	return Identifier("organisationsnummer", func(s string) error {
		_, err := identifier.ParseOrganisationsnummer(s)
		return err
	})
}

func Postnummer() Rule[string] {
	return Identifier("postnummer", func(s string) error {
		_, err := identifier.ParsePostnummer(s)
		return err
	})
}

func Telefonnummer() Rule[string] {
	return Identifier("telefonnummer", func(s string) error {
		_, err := identifier.ParseTelefonnummer(s)
		return err
	})
}

func Fastighetsbeteckning() Rule[string] {
	return Identifier("fastighetsbeteckning", func(s string) error {
		_, err := identifier.ParseFastighetsbeteckning(s)
		return err
	})
}

// NormalizeClock pads a valid H:MM time to HH:MM. Other input is returned
// unchanged.
func NormalizeClock(s string) string {
	if clockPattern.MatchString(s) && len(s) == 4 {
		return "0" + s
	}
	return s
}

// ClockMinutes returns minutes since midnight for a valid clock string.
func ClockMinutes(s string) int {
	h, m, _ := strings.Cut(NormalizeClock(s), ":")
	hours := int(h[0]-'0')*10 + int(h[1]-'0')
	minutes := int(m[0]-'0')*10 + int(m[1]-'0')
	return hours*60 + minutes
}
