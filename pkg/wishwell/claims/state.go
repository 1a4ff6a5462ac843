// Package claims implements the claim-status state machine for gifts and the
// rule deciding how much of a claim a viewer may see.
//
// From a co-member's point of view a gift is available, claimed or
// purchased. Only the claim holder may advance or clear a claim, and the
// gift's owner may never change its status.
package claims

import (
	"errors"
	"fmt"

	"github.com/mikepea/wishwell/pkg/wishwell/models"
)

// State is the status of a gift as seen by a co-member
type State string

const (
	StateAvailable State = "available"
	StateClaimed   State = "claimed"
	StatePurchased State = "purchased"
)

var (
	ErrForbidden         = errors.New("not allowed to change this gift's status")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotFound          = errors.New("gift not found")
	ErrAlreadyClaimed    = errors.New("gift has already been claimed")
	ErrUnknownState      = errors.New("unknown gift status")
)

// StateOf returns the state implied by a gift's claim row (nil = available)
func StateOf(claim *models.ClaimedGift) State {
	if claim == nil {
		return StateAvailable
	}
	switch claim.StatusID {
	case models.StatusPurchased:
		return StatePurchased
	default:
		return StateClaimed
	}
}

// ParseState parses a requested target state. A nil value means unclaim.
func ParseState(s *string) (State, error) {
	if s == nil {
		return StateAvailable, nil
	}
	switch State(*s) {
	case StateAvailable, StateClaimed, StatePurchased:
		return State(*s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownState, *s)
}

// Transition checks whether actor may move a gift owned by owner from one
// state to another. holder is the current claimant and is empty when the
// gift is available.
func Transition(from, to State, actor, holder, owner string) error {
	if actor == owner {
		return ErrForbidden
	}
	if holder != "" && actor != holder {
		if to == StateClaimed {
			return ErrAlreadyClaimed
		}
		return ErrForbidden
	}
	if from == to {
		return fmt.Errorf("%w: gift is already %s", ErrInvalidTransition, to)
	}

	switch from {
	case StateAvailable:
		if to != StateClaimed {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
		}
		return nil
	case StateClaimed, StatePurchased:
		if to == StateAvailable || (from == StateClaimed && to == StatePurchased) {
			return nil
		}
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return ErrUnknownState
}
