package schema

import (
	"math"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "maklarsystem/pkg/domain-errors"
)

var now = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

type sample struct {
	Name  *string
	Email *string
	Low   *int
	High  *int
	Note  *string
}

// validateSample is a miniature record validator used to exercise the layer.
func validateSample(in sample, variant Variant) error {
	v := New(variant, now)
	Check(v, "name", Mandatory, in.Name, MinLen(2), MaxLen(10))
	Check(v, "email", Optional, in.Email, Email())
	Check(v, "note", Forbidden, in.Note)

	r := v.Nested("range")
	Check(r, "low", Mandatory, in.Low, Min(0))
	Check(r, "high", Mandatory, in.High, Min(0))
	r.Refine("high", []string{"low", "high"}, func() bool { return *in.High >= *in.Low }, "must not be below low")
	return v.Err()
}

func TestCheck_Presence(t *testing.T) {
	t.Run("create requires mandatory fields", func(t *testing.T) {
		err := validateSample(sample{}, Create)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

		errs, ok := AsErrors(err)
		require.True(t, ok)
		assert.Equal(t, []string{"name", "range.low", "range.high"}, errs.Paths())
		for _, fe := range errs {
			assert.Equal(t, KindRequired, fe.Kind)
		}
	})

	t.Run("update accepts empty input", func(t *testing.T) {
		assert.NoError(t, validateSample(sample{}, Update))
	})

	t.Run("forbidden stays forbidden on update", func(t *testing.T) {
		err := validateSample(sample{Note: ptr("x")}, Update)
		errs, ok := AsErrors(err)
		require.True(t, ok)
		require.Len(t, errs, 1)
		assert.Equal(t, FieldError{Path: "note", Kind: KindForbidden, Message: "must not be set"}, errs[0])
	})

	t.Run("update applies rules to present fields", func(t *testing.T) {
		err := validateSample(sample{Email: ptr("not-an-email")}, Update)
		errs, ok := AsErrors(err)
		require.True(t, ok)
		assert.True(t, errs.Has("email"))
		assert.Equal(t, KindFormat, errs.At("email")[0].Kind)
	})
}

func TestRefine(t *testing.T) {
	t.Run("attributed to downstream path", func(t *testing.T) {
		err := validateSample(sample{Name: ptr("Anna"), Low: ptr(10), High: ptr(5)}, Create)
		errs, ok := AsErrors(err)
		require.True(t, ok)
		require.Len(t, errs, 1)
		assert.Equal(t, "range.high", errs[0].Path)
		assert.Equal(t, KindCrossField, errs[0].Kind)
	})

	t.Run("skipped when a referenced field failed", func(t *testing.T) {
		err := validateSample(sample{Name: ptr("Anna"), Low: ptr(-1), High: ptr(-5)}, Create)
		errs, ok := AsErrors(err)
		require.True(t, ok)
		for _, fe := range errs {
			assert.NotEqual(t, KindCrossField, fe.Kind)
		}
	})

	t.Run("skipped when a referenced field is absent", func(t *testing.T) {
		assert.NoError(t, validateSample(sample{High: ptr(1)}, Update))
	})
}

func TestCheck_CollectsEveryViolatedRule(t *testing.T) {
	v := New(Create, now)
	ok := Check(v, "rooms", Mandatory, ptr(2.3), Range(1.0, 2.0), MultipleOf(0.5))
	assert.False(t, ok)
	assert.Len(t, v.Errors(), 2)
	assert.False(t, v.Passed("rooms"))
}

func TestUnknownVariantPanics(t *testing.T) {
	assert.Panics(t, func() { New(Variant(42), now) })
	assert.Panics(t, func() { New(Variant(0), now) })
	assert.Panics(t, func() { Mandatory.In(Variant(0)) })
}

func TestParseVariant(t *testing.T) {
	v, ok := ParseVariant("UPDATE")
	require.True(t, ok)
	assert.Equal(t, Update, v)

	v, ok = ParseVariant("")
	require.True(t, ok)
	assert.Equal(t, Create, v)

	_, ok = ParseVariant("patch")
	assert.False(t, ok)
	assert.Equal(t, "update", Update.String())
}

func TestRules(t *testing.T) {
	tests := []struct {
		name string
		rule Rule[string]
		in   string
		kind Kind
	}{
		{"date ok", Date(), "2025-02-28", ""},
		{"date calendar", Date(), "2025-02-30", KindCalendar},
		{"date format", Date(), "28/02/2025", KindFormat},
		{"clock ok", Clock(), "09:30", ""},
		{"clock hour", Clock(), "24:00", KindFormat},
		{"uuid ok", UUID(), "550e8400-e29b-41d4-a716-446655440000", ""},
		{"uuid nil", UUID(), "00000000-0000-0000-0000-000000000000", KindFormat},
		{"enum", OneOf("a", "b"), "c", KindEnum},
		{"pattern", Pattern(regexp.MustCompile(`^\d+$`), "digits only"), "12a", KindFormat},
		{"max len counts runes", MaxLen(3), "åäö", ""},
		{"personnummer checksum", Personnummer(now), "811218-9877", KindChecksum},
		{"personnummer calendar", Personnummer(now), "900229-0006", KindCalendar},
		{"orgnr range", Organisationsnummer(), "102100-5416", KindRange},
		{"postnummer ok", Postnummer(), "114 55", ""},
		{"telefon format", Telefonnummer(), "12345", KindFormat},
		{"fastighet ok", Fastighetsbeteckning(), "Stockholm 1:23", ""},
		{"email ok", Email(), "anna@example.se", ""},
		{"uuid upper case", UUID(), "550E8400-E29B-41D4-A716-446655440000", ""},
		{"uuid braces", UUID(), "{550e8400-e29b-41d4-a716-446655440000}", KindFormat},
		{"enum with space", OneOf("till salu", "sald"), "till salu", ""},
		{"enum with space rejects part", OneOf("till salu", "sald"), "till", KindEnum},
		{"enum with comma", OneOf("a,b", "c"), "a,b", ""},
		{"min len counts runes", MinLen(3), "åä", KindLength},
		{"empty below min len", MinLen(1), "", KindLength},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := tt.rule(tt.in)
			if tt.kind == "" {
				assert.Nil(t, is)
				return
			}
			require.NotNil(t, is)
			assert.Equal(t, tt.kind, is.Kind)
		})
	}
}

func TestNumericRules(t *testing.T) {
	assert.Nil(t, Range(1.0, 20)(20))
	assert.Equal(t, KindRange, Range(1.0, 20)(20.5).Kind)
	assert.NotNil(t, Range(0.0, 1e9)(math.NaN()))
	assert.Nil(t, Range(1, 100)(1))
	assert.NotNil(t, Range(1, 100)(0))
	assert.Nil(t, Min(0.5)(0.5))
	assert.NotNil(t, Max(10)(11))
	assert.Equal(t, KindRange, MultipleOf(0.5)(2.3).Kind)
	assert.Nil(t, Integer()(12))
	assert.NotNil(t, Integer()(12.5))
	assert.Nil(t, MultipleOf(0.5)(3.5))
	assert.NotNil(t, MultipleOf(0.5)(2.3))
	assert.NotNil(t, MaxItems[string](1)([]string{"a", "b"}))
	assert.NotNil(t, Each(MaxLen(2))([]string{"ok", "too long"}))
}

func TestObject(t *testing.T) {
	type inner struct{ N *int }
	check := func(v *Validator, in *inner) {
		Check(v, "n", Mandatory, in.N, Min(1))
	}

	v := New(Create, now)
	Object(v, "outer", Mandatory, (*inner)(nil), check)
	assert.Equal(t, []string{"outer"}, v.Errors().Paths())

	v = New(Create, now)
	Object(v, "outer", Mandatory, &inner{}, check)
	assert.Equal(t, []string{"outer.n"}, v.Errors().Paths())

	v = New(Update, now)
	Object(v, "outer", Mandatory, &inner{}, check)
	assert.Empty(t, v.Errors())
}

func TestClockHelpers(t *testing.T) {
	assert.Nil(t, Clock()("9:05"))
	assert.Equal(t, "09:05", NormalizeClock("9:05"))
	assert.Equal(t, "14:30", NormalizeClock("14:30"))
	assert.Equal(t, "bad", NormalizeClock("bad"))
	assert.Equal(t, 9*60+5, ClockMinutes("9:05"))
	assert.Equal(t, 23*60+59, ClockMinutes("23:59"))
}

func TestMerge(t *testing.T) {
	mistyped := FieldError{Path: "name", Kind: KindFormat, Message: "must not be a JSON number"}

	t.Run("replaces the failure on the same path", func(t *testing.T) {
		err := Merge(validateSample(sample{}, Create), mistyped)
		require.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		errs, ok := AsErrors(err)
		require.True(t, ok)
		assert.Equal(t, []string{"name", "range.low", "range.high"}, errs.Paths())
		assert.Equal(t, mistyped, errs[0])
	})

	t.Run("fails a passing run", func(t *testing.T) {
		err := Merge(nil, mistyped)
		errs, ok := AsErrors(err)
		require.True(t, ok)
		assert.Equal(t, Errors{mistyped}, errs)
	})

	t.Run("nothing extra keeps the result", func(t *testing.T) {
		assert.NoError(t, Merge(nil))
	})

	t.Run("other errors pass through", func(t *testing.T) {
		internal := dErrors.New(dErrors.CodeInternal, "boom")
		assert.Equal(t, internal, Merge(internal, mistyped))
	})
}
