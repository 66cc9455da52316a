package identifier

import (
	"testing"
	"time"
)

// FuzzPersonnummer checks that parsing never panics and that valid and
// normalized forms agree.
func FuzzPersonnummer(f *testing.F) {
	for _, seed := range []string{"811218-9876", "198112189876", "700162-0009", "", "+", "811318-9876", "000001010007"} {
		f.Add(seed)
	}
	ref := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	f.Fuzz(func(t *testing.T, raw string) {
		p, err := ParsePersonnummerAt(raw, ref)
		if err != nil {
			if ReasonOf(err) == "" {
				t.Fatalf("error without reason: %v", err)
			}
			return
		}
		if p.IsZero() {
			t.Fatalf("valid %q parsed as zero", raw)
		}
		again, err := ParsePersonnummerAt(NormalizePersonnummer(raw), ref)
		if err != nil {
			t.Fatalf("normalized form of valid %q rejected: %v", raw, err)
		}
		if again.String() != p.String() {
			t.Fatalf("normalization changed value: %q vs %q", again, p)
		}
	})
}

func FuzzFastighetsbeteckning(f *testing.F) {
	for _, seed := range []string{"Stockholm 1:23", "Stockholm Södermalm 1:23:4", "a:b", "  "} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, raw string) {
		fb, err := ParseFastighetsbeteckning(raw)
		if err != nil {
			return
		}
		if _, err := ParseFastighetsbeteckning(fb.String()); err != nil {
			t.Fatalf("rendered form %q of %q rejected: %v", fb.String(), raw, err)
		}
	})
}
