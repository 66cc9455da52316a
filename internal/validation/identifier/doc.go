// Package identifier validates and normalizes Swedish identifiers: personnummer
// (including samordningsnummer), organisationsnummer, postnummer, telefonnummer
// and fastighetsbeteckning.
//
// Every identifier has three entry points:
//
//	ValidX(raw) bool          pass/fail, never panics
//	NormalizeX(raw) string    canonical separator form; raw is returned unchanged
//	                          when it cannot be canonicalized
//	ParseX(raw) (X, error)    structured value or an *Error with a Reason
//
// Domain purity: nothing here performs I/O. Century inference for ten-digit
// personnummer needs a reference year, which ParsePersonnummerAt receives as a
// parameter; the Valid/Parse shorthands read the wall clock.
package identifier
