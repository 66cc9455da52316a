// Package schema composes leaf checks into record validators.
//
// A record validator declares each field once with a Presence and a list of
// rules. Create enforces presence as declared; Update is derived from the same
// declaration by relaxing Mandatory to Optional, so the per-field and
// cross-field rules cannot drift between the two.
//
// Failures are collected, never returned early, and surface as an ordered
// Errors list wrapped in a CodeValidation domain error.
package schema

import (
	"fmt"
	"strings"
)

// Variant selects the presence policy.
type Variant int

const (
	Create Variant = iota + 1
	Update
)

func (v Variant) String() string {
	switch v {
	case Create:
		return "create"
	case Update:
		return "update"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// ParseVariant maps "create" / "update" (case-insensitive, blank = create).
func ParseVariant(s string) (Variant, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "create":
		return Create, true
	case "update":
		return Update, true
	default:
		return 0, false
	}
}

// Presence is a field's presence requirement in the create variant.
type Presence int

const (
	Mandatory Presence = iota
	Optional
	Forbidden
)

// In returns the effective presence under variant. It panics on an unknown
// variant.
func (p Presence) In(v Variant) Presence {
	switch v {
	case Create:
		return p
	case Update:
		if p == Mandatory {
			return Optional
		}
		return p
	default:
		panic(fmt.Sprintf("schema: unknown variant %d", int(v)))
	}
}

// Kind classifies a field failure.
type Kind string

const (
	KindFormat     Kind = "format"
	KindChecksum   Kind = "checksum"
	KindCalendar   Kind = "calendar"
	KindRange      Kind = "range"
	KindEnum       Kind = "enum"
	KindCrossField Kind = "cross_field"
	KindRequired   Kind = "required"
	KindForbidden  Kind = "forbidden"
	KindLength     Kind = "length"
)

// FieldError is one violated constraint.
type FieldError struct {
	Path    string `json:"path"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

func (e FieldError) String() string {
	return e.Path + ": " + e.Message
}

// Errors is the ordered failure list of one validation run.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.String()
	}
	return strings.Join(parts, "; ")
}

// Paths returns the failing paths in report order, with repeats.
func (e Errors) Paths() []string {
	out := make([]string, len(e))
	for i, fe := range e {
		out[i] = fe.Path
	}
	return out
}

// Has reports whether any failure is attributed to path.
func (e Errors) Has(path string) bool {
	for _, fe := range e {
		if fe.Path == path {
			return true
		}
	}
	return false
}

// At returns the failures attributed to path.
func (e Errors) At(path string) []FieldError {
	var out []FieldError
	for _, fe := range e {
		if fe.Path == path {
			out = append(out, fe)
		}
	}
	return out
}
