// Package disposition decides what happens to each selected target.
//
// For every target the Engine compares the frozen age against the run's TTL
// and, when the target is old enough, kills it or tags it according to the
// run's contract. Each target is handled in isolation: a failure is recorded
// in that target's Result and processing moves on to the next one.
package disposition

import (
	"strings"

	"github.com/hostops/terminate/internal/constants"
)

// Contract is the disposition policy for a run.
type Contract int

const (
	// Tag reports old processes to the inventory agent.
	Tag Contract = iota
	// Kill terminates old processes.
	Kill
)

func (c Contract) String() string {
	switch c {
	case Kill:
		return "Kill"
	default:
		return "Tag"
	}
}

// ParseContract maps a CONTRACT value to a Contract. Matching is
// case-insensitive; ok is false for anything other than TAG or KILL.
func ParseContract(s string) (c Contract, ok bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case constants.ContractKill:
		return Kill, true
	case constants.ContractTag:
		return Tag, true
	default:
		return Tag, false
	}
}
