package proc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/hostops/terminate/internal/constants"
	"github.com/shirou/gopsutil/v4/process"
)

// SystemProvider lists processes on the local host.
type SystemProvider struct {
	// Now stamps Snapshot.Taken. Defaults to time.Now.
	Now func() time.Time
}

// NewSystemProvider returns a Provider backed by the host process table.
func NewSystemProvider() *SystemProvider {
	return &SystemProvider{Now: time.Now}
}

// List enumerates every process visible to the caller.
func (s *SystemProvider) List(ctx context.Context) (Snapshot, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("listing processes: %w", err)
	}

	snap := Snapshot{
		Taken:   now(),
		Records: make([]Record, 0, len(procs)),
	}
	for _, p := range procs {
		rec, err := describe(ctx, p)
		if err != nil {
			snap.Warnings = append(snap.Warnings, Warning{PID: int(p.Pid), Err: err})
			continue
		}
		snap.Records = append(snap.Records, rec)
	}
	return snap, nil
}

// describe reads one process. Only a missing name is fatal for the record;
// an unreadable start time leaves StartTime zero and an unreadable executable
// path falls back to the process name.
func describe(ctx context.Context, p *process.Process) (Record, error) {
	name, err := p.NameWithContext(ctx)
	if err != nil {
		return Record{}, fmt.Errorf("reading name: %w", classify(err))
	}
	if name == "" {
		return Record{}, errors.New("process has no name")
	}

	rec := Record{
		PID:  int(p.Pid),
		Name: strings.ToLower(name),
	}

	if ms, err := p.CreateTimeWithContext(ctx); err == nil && ms > 0 {
		rec.StartTime = time.UnixMilli(ms)
	}

	rec.Path = strings.ToLower(processPath(ctx, p, name))
	return rec, nil
}

func processPath(ctx context.Context, p *process.Process, name string) string {
	if runtime.GOOS == "windows" {
		switch p.Pid {
		case constants.PIDSystemIdle:
			return constants.PathSystemIdle
		case constants.PIDSystem:
			return constants.PathSystem
		}
	}
	// Protected processes refuse extended queries; use the caption instead.
	exe, err := p.ExeWithContext(ctx)
	if err != nil || exe == "" {
		return name
	}
	return exe
}

// SystemTerminator kills processes on the local host.
type SystemTerminator struct{}

// Terminate resolves pid and forcibly terminates it.
// It returns an error wrapping ErrProcessGone if the process already exited.
func (SystemTerminator) Terminate(ctx context.Context, pid int) error {
	if pid <= 0 {
		return fmt.Errorf("pid %d: %w", pid, ErrProcessGone)
	}

	p, err := process.NewProcessWithContext(ctx, int32(pid)) //nolint:gosec // G115: pids fit in int32
	if err != nil {
		return fmt.Errorf("resolving pid %d: %w", pid, classify(err))
	}
	if err := p.KillWithContext(ctx); err != nil {
		return fmt.Errorf("killing pid %d: %w", pid, classify(err))
	}
	return nil
}

// Exists reports whether a process with the given PID is running.
func Exists(ctx context.Context, pid int) bool {
	if pid <= 0 {
		return false
	}
	ok, err := process.PidExistsWithContext(ctx, int32(pid)) //nolint:gosec // G115: pids fit in int32
	return err == nil && ok
}

// classify maps platform errors onto the package sentinels, keeping the
// original error in the chain.
func classify(err error) error {
	switch {
	case errors.Is(err, process.ErrorProcessNotRunning),
		errors.Is(err, os.ErrProcessDone),
		errors.Is(err, syscall.ESRCH):
		return fmt.Errorf("%w: %w", ErrProcessGone, err)
	case errors.Is(err, os.ErrPermission),
		errors.Is(err, process.ErrorNotPermitted):
		return fmt.Errorf("%w: %w", ErrPermission, err)
	default:
		return err
	}
}
