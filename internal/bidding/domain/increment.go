package domain

import (
	"fmt"
	"strings"

	dErrors "maklarsystem/pkg/domain-errors"
)

const (
	// DefaultMinimumIncrement is the customary step between bids in SEK.
	DefaultMinimumIncrement int64 = 5000
	// MinimumBid is the smallest amount a first bid may carry.
	MinimumBid int64 = 1000
	// MaximumBid caps any single bid.
	MaximumBid int64 = 1_000_000_000
)

// CheckIncrement reports whether newAmount clears currentHighest by at least
// minimumIncrement.
func CheckIncrement(newAmount, currentHighest, minimumIncrement int64) bool {
	return newAmount >= currentHighest+minimumIncrement
}

// RequiredAmount is the lowest amount CheckIncrement accepts.
func RequiredAmount(currentHighest, minimumIncrement int64) int64 {
	return currentHighest + minimumIncrement
}

// IncrementDetails is attached to increment_violation errors.
type IncrementDetails struct {
	Amount         int64 `json:"belopp"`
	CurrentHighest int64 `json:"hogsta_bud"`
	Required       int64 `json:"minsta_belopp"`
}

// RequireIncrement is CheckIncrement as an error.
func RequireIncrement(newAmount, currentHighest, minimumIncrement int64) error {
	if CheckIncrement(newAmount, currentHighest, minimumIncrement) {
		return nil
	}
	required := RequiredAmount(currentHighest, minimumIncrement)
	return dErrors.NewWithDetails(dErrors.CodeIncrementViolation,
		fmt.Sprintf("bid must be at least %d SEK", required),
		IncrementDetails{Amount: newAmount, CurrentHighest: currentHighest, Required: required})
}

// AcceptPolicy decides what happens to the other active bids on a listing
// when one bid is accepted.
type AcceptPolicy string

const (
	AcceptPolicyKeepOthers   AcceptPolicy = "keep_others"
	AcceptPolicyRejectOthers AcceptPolicy = "reject_others"
)

// ParseAcceptPolicy requires an explicit policy; blank is an error.
func ParseAcceptPolicy(s string) (AcceptPolicy, error) {
	switch p := AcceptPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case AcceptPolicyKeepOthers, AcceptPolicyRejectOthers:
		return p, nil
	case "":
		return "", dErrors.New(dErrors.CodeInvalidInput, "accept policy is required")
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown accept policy %q", s))
	}
}
