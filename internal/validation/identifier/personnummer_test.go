package identifier

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var referenceTime = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

func TestParsePersonnummerAt(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantReason Reason
		want       string
	}{
		{"ten digits with hyphen", "811218-9876", "", "19811218-9876"},
		{"ten digits bare", "8112189876", "", "19811218-9876"},
		{"twelve digits", "198112189876", "", "19811218-9876"},
		{"twelve digits with hyphen", "19811218-9876", "", "19811218-9876"},
		{"spaces ignored", "811218 9876", "", "19811218-9876"},
		{"coordination number", "700162-0009", "", "19700162-0009"},
		{"coordination last day of month", "7001910004", "", "19700191-0004"},
		{"leap day 2000", "000229-0005", "", "20000229-0005"},
		{"leap day 1996", "960229-0000", "", "19960229-0000"},
		{"leap day 1996 twelve digits", "199602290000", "", "19960229-0000"},
		{"bad checksum", "811218-9877", ReasonChecksum, ""},
		{"bad checksum twelve digits", "198112189877", ReasonChecksum, ""},
		{"not leap year", "900229-0006", ReasonCalendar, ""},
		{"not leap year twelve digits", "19900229-0006", ReasonCalendar, ""},
		{"twelve digits earliest year", "180001010007", "", "18000101-0007"},
		{"twelve digits reference year", "202501010007", "", "20250101-0007"},
		{"twelve digits year zero", "000001010007", ReasonCalendar, ""},
		{"twelve digits before 1800", "179901010007", ReasonCalendar, ""},
		{"twelve digits future year", "209901010007", ReasonCalendar, ""},
		{"month 13", "811318-9876", ReasonCalendar, ""},
		{"day zero", "811200-9876", ReasonCalendar, ""},
		{"day sixty", "811260-9876", ReasonCalendar, ""},
		{"coordination overflow", "700192-0003", ReasonCalendar, ""},
		{"too short", "81121898", ReasonFormat, ""},
		{"eleven digits", "81121898761", ReasonFormat, ""},
		{"letters", "81121B-9876", ReasonFormat, ""},
		{"plus separator", "811218+9876", ReasonFormat, ""},
		{"empty", "", ReasonFormat, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePersonnummerAt(tt.input, referenceTime)
			if tt.wantReason != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantReason, ReasonOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.String())
		})
	}
}

func TestParsePersonnummerAt_CenturyInference(t *testing.T) {
	t.Run("year not after reference stays in current century", func(t *testing.T) {
		p, err := ParsePersonnummerAt("0101010007", referenceTime)
		require.NoError(t, err)
		assert.Equal(t, 2001, p.BirthDate().Year())
	})

	t.Run("year after reference goes to previous century", func(t *testing.T) {
		p, err := ParsePersonnummerAt("7012310004", referenceTime)
		require.NoError(t, err)
		assert.Equal(t, 1970, p.BirthDate().Year())
	})

	t.Run("reference year boundary", func(t *testing.T) {
		p, err := ParsePersonnummerAt("0101010007", time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, 1901, p.BirthDate().Year())
	})
}

func TestPersonnummer_Accessors(t *testing.T) {
	p, err := ParsePersonnummerAt("700162-0009", referenceTime)
	require.NoError(t, err)

	assert.True(t, p.IsCoordinationNumber())
	assert.Equal(t, time.Date(1970, time.January, 2, 0, 0, 0, 0, time.UTC), p.BirthDate())
	assert.Equal(t, "700162-0009", p.Short())
	assert.Equal(t, 55, p.AgeAt(referenceTime))
	assert.Equal(t, 54, p.AgeAt(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)))

	assert.False(t, p.IsZero())

	var zero Personnummer
	assert.True(t, zero.IsZero())
	assert.Empty(t, zero.String())
}

func TestPersonnummer_ErrorsIs(t *testing.T) {
	_, err := ParsePersonnummerAt("811218-9877", referenceTime)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrChecksum))
	assert.False(t, errors.Is(err, ErrFormat))

	var ie *Error
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, KindPersonnummer, ie.Kind)
}

func TestNormalizePersonnummer(t *testing.T) {
	assert.Equal(t, "811218-9876", NormalizePersonnummer("8112189876"))
	assert.Equal(t, "811218-9876", NormalizePersonnummer("811218 9876"))
	assert.Equal(t, "19811218-9876", NormalizePersonnummer("198112189876"))
	assert.Equal(t, "19811218-9876", NormalizePersonnummer("19811218-9876"))
	assert.Equal(t, "12345", NormalizePersonnummer("12345"))
	assert.Equal(t, "abc", NormalizePersonnummer("abc"))

	t.Run("separator variants agree", func(t *testing.T) {
		for _, in := range []string{"8112189876", "811218-9876", "811218 9876", "81 12 18-98 76"} {
			assert.True(t, ValidPersonnummer(in), in)
			assert.Equal(t, "811218-9876", NormalizePersonnummer(in), in)
		}
	})
}

func TestLuhn(t *testing.T) {
	assert.True(t, luhnValid("8112189876"))
	assert.True(t, luhnValid("5560169640"))
	assert.False(t, luhnValid("8112189877"))

	d, ok := LuhnCheckDigit("811218987")
	require.True(t, ok)
	assert.Equal(t, byte('6'), d)

	_, ok = LuhnCheckDigit("81a")
	assert.False(t, ok)
}
