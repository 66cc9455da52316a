package identifier

import (
	"errors"
	"fmt"
)

// Kind names the identifier type that failed.
type Kind string

const (
	KindPersonnummer         Kind = "personnummer"
	KindOrganisationsnummer  Kind = "organisationsnummer"
	KindPostnummer           Kind = "postnummer"
	KindTelefonnummer        Kind = "telefonnummer"
	KindFastighetsbeteckning Kind = "fastighetsbeteckning"
)

// Reason classifies why parsing failed.
type Reason string

const (
	// ReasonFormat: wrong length, characters or structure.
	ReasonFormat Reason = "format"
	// ReasonChecksum: the Luhn check digit does not match.
	ReasonChecksum Reason = "checksum"
	// ReasonCalendar: month or day is not a real date (including coordination days).
	ReasonCalendar Reason = "calendar"
	// ReasonRange: structurally valid but outside the allowed numeric range.
	ReasonRange Reason = "range"
)

// Sentinels for errors.Is matching on the failure reason.
var (
	ErrFormat   = errors.New("malformed identifier")
	ErrChecksum = errors.New("identifier checksum mismatch")
	ErrCalendar = errors.New("identifier date out of range")
	ErrRange    = errors.New("identifier value out of range")
)

// Error describes a rejected identifier. It unwraps to the sentinel matching
// its Reason.
type Error struct {
	Kind   Kind
	Reason Reason
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error {
	switch e.Reason {
	case ReasonChecksum:
		return ErrChecksum
	case ReasonCalendar:
		return ErrCalendar
	case ReasonRange:
		return ErrRange
	default:
		return ErrFormat
	}
}

func fail(kind Kind, reason Reason, detail string) *Error {
	return &Error{Kind: kind, Reason: reason, Detail: detail}
}

// ReasonOf extracts the failure reason from err, or "" when err is not an
// identifier error.
func ReasonOf(err error) Reason {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Reason
	}
	return ""
}
