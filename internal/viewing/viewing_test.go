package viewing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maklarsystem/internal/validation/schema"
)

const listingID = "550e8400-e29b-41d4-a716-446655440000"

var now = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func str(s string) *string { return &s }

func validInput() Input {
	return Input{
		ObjektID: str(listingID),
		Datum:    str("2025-06-14"),
		Starttid: str("9:30"),
		Sluttid:  str("10:15"),
	}
}

func mustErrors(t *testing.T, err error) schema.Errors {
	t.Helper()
	errs, ok := schema.AsErrors(err)
	require.True(t, ok, "expected validation errors, got %v", err)
	return errs
}

func TestValidateCreate(t *testing.T) {
	t.Run("valid viewing with defaults", func(t *testing.T) {
		v, err := ValidateCreate(validInput(), now)
		require.NoError(t, err)
		assert.Equal(t, listingID, v.ListingID.String())
		assert.Equal(t, "09:30", v.Start)
		assert.Equal(t, TypOppen, v.Typ)
		assert.Equal(t, 45*time.Minute, v.Duration())
		assert.Equal(t, time.Date(2025, 6, 14, 9, 30, 0, 0, time.UTC), v.StartsAt(time.UTC))
	})

	t.Run("end before start is attributed to sluttid", func(t *testing.T) {
		in := validInput()
		in.Sluttid = str("09:00")
		_, err := ValidateCreate(in, now)
		errs := mustErrors(t, err)
		require.Len(t, errs, 1)
		assert.Equal(t, "sluttid", errs[0].Path)
		assert.Equal(t, schema.KindCrossField, errs[0].Kind)
	})

	t.Run("equal times rejected", func(t *testing.T) {
		in := validInput()
		in.Sluttid = str("09:30")
		_, err := ValidateCreate(in, now)
		assert.True(t, mustErrors(t, err).Has("sluttid"))
	})

	t.Run("malformed fields", func(t *testing.T) {
		n := -2.0
		_, err := ValidateCreate(Input{
			ObjektID:      str("listing-1"),
			Datum:         str("2025-02-30"),
			Starttid:      str("25:00"),
			Sluttid:       str("10:00"),
			Typ:           str("hemlig"),
			AntalBesokare: &n,
		}, now)
		errs := mustErrors(t, err)
		assert.Equal(t, []string{"objekt_id", "datum", "starttid", "typ", "antal_besokare"}, errs.Paths())
		assert.Equal(t, schema.KindCalendar, errs.At("datum")[0].Kind)
	})
}

func TestValidateUpdate(t *testing.T) {
	out, err := ValidateUpdate(Input{Sluttid: str("18:00")}, now)
	require.NoError(t, err)
	assert.Nil(t, out.Typ)

	_, err = ValidateUpdate(Input{Starttid: str("18:00"), Sluttid: str("17:00")}, now)
	assert.True(t, mustErrors(t, err).Has("sluttid"))
}

func TestValidateFilter(t *testing.T) {
	require.NoError(t, ValidateFilter(Filter{FromDate: str("2025-01-01"), ToDate: str("2025-12-31")}))

	err := ValidateFilter(Filter{FromDate: str("2025-12-31"), ToDate: str("2025-01-01")})
	assert.Equal(t, []string{"toDate"}, mustErrors(t, err).Paths())
}

func TestValidateBulk(t *testing.T) {
	t.Run("all slots valid", func(t *testing.T) {
		out, err := ValidateBulk(Bulk{
			ObjektID: str(listingID),
			Visningar: []Slot{
				{Datum: str("2025-06-14"), Starttid: str("10:00"), Sluttid: str("11:00")},
				{Datum: str("2025-06-15"), Starttid: str("13:00"), Sluttid: str("14:00"), Typ: str("privat")},
			},
		}, now)
		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.Equal(t, TypPrivat, out[1].Typ)
	})

	t.Run("slot errors are indexed", func(t *testing.T) {
		_, err := ValidateBulk(Bulk{
			ObjektID: str(listingID),
			Visningar: []Slot{
				{Datum: str("2025-06-14"), Starttid: str("10:00"), Sluttid: str("11:00")},
				{Datum: str("2025-06-15"), Starttid: str("14:00"), Sluttid: str("13:00")},
			},
		}, now)
		assert.Equal(t, []string{"visningar.1.sluttid"}, mustErrors(t, err).Paths())
	})

	t.Run("empty schedule", func(t *testing.T) {
		_, err := ValidateBulk(Bulk{ObjektID: str(listingID)}, now)
		assert.Equal(t, []string{"visningar"}, mustErrors(t, err).Paths())
	})
}
