package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "maklarsystem/pkg/domain-errors"
)

// TestParseUUID_Invariants covers the parsing invariant: ids are valid,
// non-empty, non-nil UUIDs.
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseListingID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseListingID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseBidderID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		valid := uuid.New()
		id, err := ParseListingID(valid.String())
		require.NoError(t, err)
		assert.Equal(t, ListingID(valid), id)
		assert.Equal(t, valid.String(), id.String())
	})
}

func TestParseID_HostileInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"SQL injection attempt", "'; DROP TABLE bud;--", true},
		{"Null byte injection", "550e8400\x00-e29b-41d4-a716-446655440000", true},
		{"Oversized input", strings.Repeat("a", 1000), true},
		{"Whitespace only", "   ", true},
		{"Uppercase valid UUID", "550E8400-E29B-41D4-A716-446655440000", false},
		{"Valid UUID lowercase", "550e8400-e29b-41d4-a716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBidID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestAllIDTypes_ConsistentBehavior(t *testing.T) {
	valid := uuid.New().String()
	for _, input := range []string{valid, "", "invalid", uuid.Nil.String()} {
		_, errListing := ParseListingID(input)
		_, errBidder := ParseBidderID(input)
		_, errBid := ParseBidID(input)
		_, errContact := ParseContactID(input)
		_, errViewing := ParseViewingID(input)

		want := errListing == nil
		assert.Equal(t, want, errBidder == nil, input)
		assert.Equal(t, want, errBid == nil, input)
		assert.Equal(t, want, errContact == nil, input)
		assert.Equal(t, want, errViewing == nil, input)
	}
}

func TestMarshalText(t *testing.T) {
	raw := uuid.New()
	text, err := BidID(raw).MarshalText()
	require.NoError(t, err)
	assert.Equal(t, raw.String(), string(text))
}
