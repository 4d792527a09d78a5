// Package run drives a single terminate invocation: argument parsing, the
// run header, target acquisition, disposition and the closing tally.
package run

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hostops/terminate/internal/constants"
	"github.com/hostops/terminate/internal/disposition"
	"github.com/hostops/terminate/internal/target"
)

// ErrInvalidTTL is returned by ParseArgs when TTL is not a non-negative integer.
var ErrInvalidTTL = errors.New("invalid TTL")

// Context holds the parameters of one invocation.
type Context struct {
	// Target is the normalized process name, or TargetUnset.
	Target string

	// TTL is the maximum age in minutes.
	TTL int

	Contract disposition.Contract
	Debug    bool

	// Processed counts targets acted on successfully.
	Processed int
}

// ParseArgs reads KEY=value tokens. Keys are case-insensitive and order does
// not matter; tokens without '=' or with unknown keys are ignored. The first
// TARGET and TTL tokens win. Any CONTRACT=KILL selects Kill.
//
// On a TTL error the returned Context still carries the other arguments.
func ParseArgs(args []string) (Context, error) {
	c := Context{Target: constants.TargetUnset, Contract: disposition.Tag}
	var (
		haveTarget, haveTTL bool
		ttlErr              error
	)

	for _, arg := range args {
		key, val, ok := strings.Cut(arg, "=")
		if !ok {
			continue
		}
		// A value ends at the next '='.
		val, _, _ = strings.Cut(val, "=")

		switch strings.ToLower(strings.TrimSpace(key)) {
		case constants.ArgTarget:
			if haveTarget || strings.TrimSpace(val) == "" {
				continue
			}
			c.Target = target.NormalizeName(val)
			haveTarget = true
		case constants.ArgTTL:
			if haveTTL {
				continue
			}
			haveTTL = true
			ttl, err := strconv.Atoi(strings.TrimSpace(val))
			if err != nil || ttl < 0 {
				ttlErr = fmt.Errorf("%w: %q", ErrInvalidTTL, val)
				continue
			}
			c.TTL = ttl
		case constants.ArgContract:
			if contract, ok := disposition.ParseContract(val); ok && contract == disposition.Kill {
				c.Contract = disposition.Kill
			}
		case constants.ArgLog:
			if strings.EqualFold(strings.TrimSpace(val), constants.LogDebug) {
				c.Debug = true
			}
		}
	}
	return c, ttlErr
}

// Valid reports whether the run has enough to proceed: a target and a
// non-zero TTL.
func (c Context) Valid() bool {
	return c.Target != constants.TargetUnset && c.TTL != 0
}
