package schema

import (
	"errors"
	"fmt"
	"slices"
	"time"

	dErrors "maklarsystem/pkg/domain-errors"
)

// run is the state shared by a Validator and its nested scopes.
type run struct {
	variant Variant
	now     time.Time
	errs    Errors
	passed  map[string]bool
}

// Validator records failures for one record. Nested validators share the
// same failure list under a path prefix.
type Validator struct {
	*run
	prefix string
}

// New starts a validation run. now is the reference time for date bounds and
// defaults. It panics on an unknown variant.
func New(variant Variant, now time.Time) *Validator {
	switch variant {
	case Create, Update:
	default:
		panic(fmt.Sprintf("schema: unknown variant %d", int(variant)))
	}
	return &Validator{run: &run{variant: variant, now: now, passed: map[string]bool{}}}
}

func (v *Validator) Variant() Variant { return v.variant }
func (v *Validator) Now() time.Time   { return v.now }

// Nested returns a validator whose paths are prefixed with name.
func (v *Validator) Nested(name string) *Validator {
	return &Validator{run: v.run, prefix: v.Path(name)}
}

// Path returns the absolute path of field in this scope.
func (v *Validator) Path(field string) string {
	if v.prefix == "" {
		return field
	}
	return v.prefix + "." + field
}

// Add records a failure on field.
func (v *Validator) Add(field string, kind Kind, message string) {
	v.errs = append(v.errs, FieldError{Path: v.Path(field), Kind: kind, Message: message})
}

// Passed reports whether field was present and passed every rule. Paths are
// relative to this scope.
func (v *Validator) Passed(field string) bool {
	return v.passed[v.Path(field)]
}

// Refine runs a cross-field check attributed to field. holds is evaluated only
// when every field in refs (relative to this scope) is present and valid;
// otherwise the refinement is skipped.
func (v *Validator) Refine(field string, refs []string, holds func() bool, message string) {
	for _, r := range refs {
		if !v.Passed(r) {
			return
		}
	}
	if !holds() {
		v.Add(field, KindCrossField, message)
	}
}

// Errors returns the failures collected so far.
func (v *Validator) Errors() Errors { return v.errs }

// Err returns nil when nothing failed, otherwise a CodeValidation error whose
// details are the Errors list.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	out := make(Errors, len(v.errs))
	copy(out, v.errs)
	return dErrors.NewWithDetails(dErrors.CodeValidation, "validation failed", out)
}

// Check validates one field. It enforces presence under the run's variant,
// then applies every rule, recording one failure per violated rule. It returns
// true when the value is present and passed all rules.
func Check[T any](v *Validator, field string, p Presence, value *T, rules ...Rule[T]) bool {
	switch eff := p.In(v.variant); {
	case value == nil:
		if eff == Mandatory {
			v.Add(field, KindRequired, "is required")
		}
		return false
	case eff == Forbidden:
		v.Add(field, KindForbidden, "must not be set")
		return false
	}

	ok := true
	for _, rule := range rules {
		if issue := rule(*value); issue != nil {
			v.Add(field, issue.Kind, issue.Message)
			ok = false
		}
	}
	if ok {
		v.passed[v.Path(field)] = true
	}
	return ok
}

// Object validates a nested record. Presence is enforced like Check; when
// the value is present fn runs against a validator scoped to field.
func Object[T any](v *Validator, field string, p Presence, value *T, fn func(*Validator, *T)) bool {
	if !Check(v, field, p, value) {
		return false
	}
	fn(v.Nested(field), value)
	return true
}

// AsErrors extracts the field list from a validation error.
func AsErrors(err error) (Errors, bool) {
	if err == nil {
		return nil, false
	}
	var errs Errors
	if errors.As(err, &errs) {
		return errs, true
	}
	if e, ok := dErrors.DetailsOf(err).(Errors); ok {
		return e, true
	}
	return nil, false
}

// Merge folds failures found outside a validation run, such as a mistyped
// JSON value, into that run's result. A reported failure on the same path as
// an extra one is dropped. Errors that are not validation failures pass
// through unchanged.
func Merge(err error, extra ...FieldError) error {
	if len(extra) == 0 {
		return err
	}
	errs, ok := AsErrors(err)
	if err != nil && !ok {
		return err
	}
	out := make(Errors, 0, len(extra)+len(errs))
	out = append(out, extra...)
	for _, fe := range errs {
		if !slices.ContainsFunc(extra, func(x FieldError) bool { return x.Path == fe.Path }) {
			out = append(out, fe)
		}
	}
	return dErrors.NewWithDetails(dErrors.CodeValidation, "validation failed", out)
}
