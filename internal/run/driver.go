package run

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hostops/terminate/internal/disposition"
	"github.com/hostops/terminate/internal/eventlog"
	"github.com/hostops/terminate/internal/lock"
	"github.com/hostops/terminate/internal/proc"
	"github.com/hostops/terminate/internal/target"
)

// Locker serializes runs. *lock.RunLock implements it.
type Locker interface {
	Acquire(runID string) error
	Release() error
}

// Driver wires the components of a run together.
type Driver struct {
	Provider proc.Provider
	Engine   *disposition.Engine

	// Log is the diagnostics logger.
	Log zerolog.Logger

	// Events, if set, receives one line per lifecycle event and result.
	Events *eventlog.Logger

	// Lock, if set, is held for the duration of acquisition and disposition.
	Lock Locker

	// Now is the discovery clock. Nil means time.Now.
	Now func() time.Time

	RunID string
}

// Summary is what a run did.
type Summary struct {
	Context   Context
	Selection target.Selection
	Report    disposition.Report

	// Acquired is false if the run could not get a snapshot or the lock.
	Acquired bool
}

// Run executes a validated run. It never fails: acquisition and per-target
// errors are logged and the run always reaches its closing lines.
func (d *Driver) Run(ctx context.Context, rc Context) Summary {
	sum := Summary{Context: rc}

	d.Log.Info().Msg("Terminate is starting")
	d.Log.Info().Msgf("     target app: %s", rc.Target)
	d.Log.Info().Msgf("     max time to live (minutes): %d", rc.TTL)
	d.Log.Info().Msgf("     contract type: %s", rc.Contract)
	d.event(eventlog.EventRunStart, rc.Target, fmt.Sprintf("ttl %dm, contract %s", rc.TTL, rc.Contract))

	if d.Lock != nil {
		if err := d.Lock.Acquire(d.RunID); err != nil {
			if errors.Is(err, lock.ErrLocked) {
				d.Log.Warn().Err(err).Msg("another terminate run is in progress, skipping")
			} else {
				d.Log.Error().Err(err).Msg("could not take the run lock, skipping")
			}
			return d.finish(rc.Target, sum)
		}
		defer func() {
			if err := d.Lock.Release(); err != nil {
				d.Log.Warn().Err(err).Msg("releasing run lock")
			}
		}()
	}

	sum.Selection, sum.Acquired = d.acquire(ctx, rc.Target)
	targets := sum.Selection.Targets
	if len(targets) > 0 {
		d.Log.Info().Msgf("targets acquired: %d  processing targets...", len(targets))
	}

	eng := *d.Engine
	prev := eng.Observe
	eng.Observe = func(res disposition.Result) {
		d.recordResult(res)
		if prev != nil {
			prev(res)
		}
	}
	sum.Report = eng.Run(ctx, rc.Contract, rc.TTL, targets)
	sum.Context.Processed = sum.Report.Processed
	d.Log.Debug().
		Int("acted", sum.Report.Count(disposition.OutcomeActed)).
		Int("too_young", sum.Report.Count(disposition.OutcomeTooYoung)).
		Int("failed", sum.Report.Count(disposition.OutcomeFailed)).
		Msg("disposition summary")

	return d.finish(rc.Target, sum)
}

func (d *Driver) acquire(ctx context.Context, filter string) (target.Selection, bool) {
	d.Log.Info().Msg("acquiring targets...")

	snap, err := d.Provider.List(ctx)
	if err != nil {
		d.Log.Error().Err(err).Msgf("Error acquiring targets: %v", err)
		return target.Selection{}, false
	}
	for _, w := range snap.Warnings {
		d.Log.Warn().Int("pid", w.PID).Err(w.Err).
			Msgf("Warning:  could not get details on process: %d", w.PID)
	}

	sel := target.Select(filter, snap.Records, target.Options{Now: d.Now, Log: d.Log})
	for _, s := range sel.Skipped {
		d.event(eventlog.EventSkip, s.Record.Name,
			fmt.Sprintf("pid %d, not evaluated: %v", s.Record.PID, s.Err))
	}
	return sel, true
}

func (d *Driver) finish(filter string, sum Summary) Summary {
	d.Log.Info().Msgf("Total targets processed: %d", sum.Context.Processed)
	d.event(eventlog.EventRunComplete, filter,
		fmt.Sprintf("processed %d of %d", sum.Context.Processed, len(sum.Selection.Targets)))
	d.Log.Info().Msg("Terminate is complete.   Shutting down.")
	return sum
}

func (d *Driver) recordResult(res disposition.Result) {
	t := res.Target
	ctx := fmt.Sprintf("pid %d, age %dm", t.PID, t.Age)
	switch {
	case res.Outcome == disposition.OutcomeTooYoung:
		d.event(eventlog.EventSkip, t.Name, ctx)
	case res.Outcome == disposition.OutcomeFailed:
		d.event(eventlog.EventFail, t.Name, fmt.Sprintf("%s, %s: %v", ctx, res.Kind(), res.Err))
	case res.Action == disposition.ActionKill:
		d.event(eventlog.EventKill, t.Name, ctx)
	case res.Action == disposition.ActionTag:
		d.event(eventlog.EventTag, t.Name, ctx)
	}
}

func (d *Driver) event(t eventlog.EventType, name, ctx string) {
	if d.Events == nil {
		return
	}
	if err := d.Events.Log(t, name, ctx); err != nil {
		d.Log.Warn().Err(err).Msg("writing event log")
	}
}
