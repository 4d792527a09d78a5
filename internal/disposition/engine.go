package disposition

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hostops/terminate/internal/target"
)

// Terminator kills a process by PID.
type Terminator interface {
	Terminate(ctx context.Context, pid int) error
}

// Tagger reports a process name and age to the inventory agent.
type Tagger interface {
	Tag(ctx context.Context, name string, ageMinutes int) error
}

var errNoExecutor = errors.New("no executor configured for contract")

// Engine applies a contract to targets.
type Engine struct {
	Terminator Terminator
	Tagger     Tagger

	// Log receives one line per decision. The zero Logger discards them.
	Log zerolog.Logger

	// Observe, if set, is called with each Result as soon as it is known.
	Observe func(Result)
}

// New returns an Engine using the given executors.
func New(term Terminator, tag Tagger, log zerolog.Logger) *Engine {
	return &Engine{Terminator: term, Tagger: tag, Log: log}
}

// Run processes targets in order and returns every Result along with the
// number of targets acted on successfully. A failing target never stops the
// targets after it.
func (e *Engine) Run(ctx context.Context, contract Contract, ttl int, targets []target.Target) Report {
	rep := Report{Results: make([]Result, 0, len(targets))}
	for _, t := range targets {
		res := e.Apply(ctx, contract, ttl, t)
		if res.Succeeded() {
			rep.Processed++
		}
		rep.Results = append(rep.Results, res)
		if e.Observe != nil {
			e.Observe(res)
		}
	}
	return rep
}

// Apply decides and executes the disposition for a single target.
func (e *Engine) Apply(ctx context.Context, contract Contract, ttl int, t target.Target) (res Result) {
	res = Result{Target: t, Action: ActionNone, Outcome: OutcomeTooYoung}

	// Executors are external code; a panic in one is this target's failure.
	defer func() {
		if r := recover(); r != nil {
			res.Outcome = OutcomeFailed
			res.Err = fmt.Errorf("panic: %v", r)
			e.logFailure(res)
		}
	}()

	if !t.Older(ttl) {
		e.Log.Info().Str("target", t.Name).Int("pid", t.PID).Int("age", t.Age).
			Msgf("Hit aborted.  target too young: %d minutes, name: %s", t.Age, t.Name)
		return res
	}

	var err error
	switch contract {
	case Kill:
		res.Action = ActionKill
		e.Log.Info().Str("target", t.Name).Int("pid", t.PID).Msgf("Killing process: %s", t.Name)
		err = e.kill(ctx, t)
	default:
		res.Action = ActionTag
		e.Log.Info().Str("target", t.Name).Int("pid", t.PID).Msgf("tagging process: %s", t.Name)
		err = e.tag(ctx, t)
	}

	if err != nil {
		res.Outcome = OutcomeFailed
		res.Err = err
		e.logFailure(res)
		return res
	}

	res.Outcome = OutcomeActed
	e.Log.Info().Str("target", t.Name).Int("pid", t.PID).Msg("     done")
	return res
}

func (e *Engine) kill(ctx context.Context, t target.Target) error {
	if e.Terminator == nil {
		return fmt.Errorf("%w: kill", errNoExecutor)
	}
	return e.Terminator.Terminate(ctx, t.PID)
}

func (e *Engine) tag(ctx context.Context, t target.Target) error {
	if e.Tagger == nil {
		return fmt.Errorf("%w: tag", errNoExecutor)
	}
	return e.Tagger.Tag(ctx, t.Name, t.Age)
}

func (e *Engine) logFailure(res Result) {
	e.Log.Error().Str("target", res.Target.Name).Int("pid", res.Target.PID).
		Str("kind", string(res.Kind())).
		Msgf("Error completing processing target: %s  error: %v", res.Target.Name, res.Err)
}
