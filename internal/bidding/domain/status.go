// Package domain holds the bidding rules: the bid status machine, the
// increment rule and the bid aggregate. Everything here is pure; callers own
// persistence and the atomicity of read-highest-then-insert.
package domain

import (
	"fmt"

	dErrors "maklarsystem/pkg/domain-errors"
)

// Status is the lifecycle state of a bid. Wire values are Swedish.
type Status string

const (
	StatusActive    Status = "aktivt"
	StatusAccepted  Status = "accepterat"
	StatusRejected  Status = "avslaget"
	StatusWithdrawn Status = "tillbakadraget"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{StatusActive, StatusAccepted, StatusRejected, StatusWithdrawn}

// ParseStatus maps a wire value onto a Status.
func ParseStatus(s string) (Status, bool) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

func (s Status) IsValid() bool {
	_, ok := ParseStatus(string(s))
	return ok
}

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	return s.IsValid() && s != StatusActive
}

// CanTransitionTo reports whether s may move to target. Only an active bid
// moves, and never to itself.
func (s Status) CanTransitionTo(target Status) bool {
	if s != StatusActive {
		return false
	}
	switch target {
	case StatusAccepted, StatusRejected, StatusWithdrawn:
		return true
	default:
		return false
	}
}

func (s Status) String() string { return string(s) }

// EvaluateTransition returns requested when current may move to it, or an
// invalid_transition error naming both states.
func EvaluateTransition(current, requested Status) (Status, error) {
	if !requested.IsValid() {
		return current, dErrors.New(dErrors.CodeInvalidTransition, fmt.Sprintf("unknown bid status %q", string(requested)))
	}
	if !current.CanTransitionTo(requested) {
		return current, dErrors.New(dErrors.CodeInvalidTransition,
			fmt.Sprintf("bid cannot move from %s to %s", current, requested))
	}
	return requested, nil
}
